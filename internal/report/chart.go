// Package report renders portfolio summaries and charts
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/calebmorris/papertrade/internal/models"
)

// RenderAllocationChart renders a PNG donut of the portfolio split by
// current value, with the cash balance as its own slice. Returns raw
// PNG bytes.
func RenderAllocationChart(p *models.Portfolio) ([]byte, error) {
	if p == nil || (len(p.Holdings) == 0 && p.Balance <= 0) {
		return nil, fmt.Errorf("nothing to chart: portfolio is empty")
	}

	values := make([]chart.Value, 0, len(p.Holdings)+1)
	for _, h := range p.Holdings {
		if h.CurrentValue <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s $%.0f", strings.ToUpper(h.CoinSymbol), h.CurrentValue),
			Value: h.CurrentValue,
		})
	}
	if p.Balance > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("Cash $%.0f", p.Balance),
			Value: p.Balance,
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("nothing to chart: no positive values")
	}

	graph := chart.DonutChart{
		Title:  "Portfolio Allocation",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderProfitLossChart renders a PNG bar chart of per-holding profit
// and loss. Gains are green, losses red. Returns raw PNG bytes.
func RenderProfitLossChart(p *models.Portfolio) ([]byte, error) {
	if p == nil || len(p.Holdings) == 0 {
		return nil, fmt.Errorf("nothing to chart: no holdings")
	}

	gain := drawing.ColorFromHex("16a34a") // green-600
	loss := drawing.ColorFromHex("dc2626") // red-600

	bars := make([]chart.Value, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		color := gain
		if h.ProfitLoss < 0 {
			color = loss
		}
		bars = append(bars, chart.Value{
			Label: strings.ToUpper(h.CoinSymbol),
			Value: h.ProfitLoss,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Title:  "Profit / Loss by Position",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth: 60,
		// Anchor bars at zero so losses draw downward.
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
