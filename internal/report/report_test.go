package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calebmorris/papertrade/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func samplePortfolio() *models.Portfolio {
	return &models.Portfolio{
		Balance:    2500,
		TotalValue: 10000,
		Holdings: []models.Holding{
			{
				CoinID:               "bitcoin",
				CoinSymbol:           "btc",
				Quantity:             0.05,
				AverageBuyPrice:      80000,
				CurrentPrice:         100000,
				CurrentValue:         5000,
				ProfitLoss:           1000,
				ProfitLossPercentage: 25,
			},
			{
				CoinID:               "ethereum",
				CoinSymbol:           "eth",
				Quantity:             1,
				AverageBuyPrice:      3000,
				CurrentPrice:         2500,
				CurrentValue:         2500,
				ProfitLoss:           -500,
				ProfitLossPercentage: -16.67,
			},
		},
	}
}

func TestRenderAllocationChart(t *testing.T) {
	png, err := RenderAllocationChart(samplePortfolio())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("Expected PNG output")
	}
}

func TestRenderAllocationChartEmpty(t *testing.T) {
	if _, err := RenderAllocationChart(&models.Portfolio{}); err == nil {
		t.Error("Expected error for empty portfolio")
	}
	if _, err := RenderAllocationChart(nil); err == nil {
		t.Error("Expected error for nil portfolio")
	}
}

func TestRenderAllocationChartCashOnly(t *testing.T) {
	png, err := RenderAllocationChart(&models.Portfolio{Balance: 10000})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("Expected PNG output")
	}
}

func TestRenderProfitLossChart(t *testing.T) {
	png, err := RenderProfitLossChart(samplePortfolio())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("Expected PNG output")
	}

	if _, err := RenderProfitLossChart(&models.Portfolio{}); err == nil {
		t.Error("Expected error without holdings")
	}
}

func TestWriteSummary(t *testing.T) {
	out := WriteSummary(samplePortfolio())

	for _, want := range []string{"$2500.00", "$10000.00", "BTC", "ETH", "+$1000.00", "-$500.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryNoHoldings(t *testing.T) {
	out := WriteSummary(&models.Portfolio{Balance: 100, TotalValue: 100, Holdings: []models.Holding{}})
	if !strings.Contains(out, "No open positions") {
		t.Errorf("Expected empty-position notice:\n%s", out)
	}
}
