package trade

import (
	"math"

	"github.com/calebmorris/papertrade/internal/models"
)

// ClampPercentage constrains a close percentage to [1,100].
func ClampPercentage(pct int) int {
	if pct < 1 {
		return 1
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CloseEstimate is the preview shown before closing a position.
type CloseEstimate struct {
	// Percentage is the clamped fraction of the position being closed.
	Percentage int

	// Value is the estimated proceeds at the current price.
	Value float64

	// ProfitLoss is the magnitude of realised profit or loss; Profitable
	// tells which.
	ProfitLoss float64

	// Profitable is true when the realised amount is a gain.
	Profitable bool
}

// EstimateClose computes the preview for closing pct percent of a
// holding. Both figures scale linearly with the percentage; the
// profit/loss figure is a magnitude, with direction carried separately.
func EstimateClose(h models.Holding, pct int) CloseEstimate {
	pct = ClampPercentage(pct)
	fraction := float64(pct) / 100

	return CloseEstimate{
		Percentage: pct,
		Value:      h.CurrentValue * fraction,
		ProfitLoss: math.Abs(h.ProfitLoss) * fraction,
		Profitable: h.Profitable(),
	}
}
