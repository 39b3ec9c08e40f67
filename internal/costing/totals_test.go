package costing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestClientAmount_RateWinsOverSubItems(t *testing.T) {
	item := model.BOQItem{
		Quantity: 10,
		Rate:     50,
		SubItems: []model.BOQSubItem{{Name: "ignored", Quantity: 100, Rate: 100}},
	}
	require.InDelta(t, 500.0, ClientAmount(item), 0.001)
}

func TestClientAmount_ZeroRateSumsSubItems(t *testing.T) {
	item := model.BOQItem{
		Quantity: 10,
		SubItems: []model.BOQSubItem{
			{Name: "a", Quantity: 2, Rate: 100},
			{Name: "b", Quantity: 3, Rate: 50},
		},
	}
	require.InDelta(t, 350.0, ClientAmount(item), 0.001)
}

func TestItemBreakdown_DefaultPercentages(t *testing.T) {
	item := model.BOQItem{
		Name:     "Plastering",
		Quantity: 10,
		Rate:     100,
		Materials: []model.BOQMaterial{
			{Name: "Plaster", Quantity: 20, Rate: 10},
		},
		Labour: []model.BOQLabour{
			{Name: "Plasterer", Quantity: 8, Rate: 25},
		},
	}

	b := ItemBreakdown(item)
	require.InDelta(t, 1000.0, b.ClientAmount, 0.001)
	require.InDelta(t, 200.0, b.MaterialCost, 0.001)
	require.InDelta(t, 200.0, b.LabourCost, 0.001)
	require.InDelta(t, 100.0, b.MiscAmount, 0.001)
	require.InDelta(t, 250.0, b.OverheadProfit, 0.001)
	require.InDelta(t, 50.0, b.Transport, 0.001)
	require.InDelta(t, 800.0, b.InternalCost, 0.001)
	require.InDelta(t, 200.0, b.Margin, 0.001)
}

func TestItemBreakdown_ExplicitPercentagesOverrideDefaults(t *testing.T) {
	item := model.BOQItem{
		Quantity:          1,
		Rate:              1000,
		MiscPct:           floatPtr(0),
		OverheadProfitPct: floatPtr(20),
		TransportPct:      floatPtr(0),
	}

	b := ItemBreakdown(item)
	require.InDelta(t, 0.0, b.MiscAmount, 0.001)
	require.InDelta(t, 200.0, b.OverheadProfit, 0.001)
	require.InDelta(t, 0.0, b.Transport, 0.001)
}

func TestDiscount_AmountWinsOverPercentage(t *testing.T) {
	require.InDelta(t, 75.0, Discount(1000, floatPtr(10), floatPtr(75)), 0.001)
	require.InDelta(t, 100.0, Discount(1000, floatPtr(10), nil), 0.001)
	require.InDelta(t, 0.0, Discount(1000, nil, nil), 0.001)
}

func TestComputeSnapshotTotals(t *testing.T) {
	snap := model.BOQSnapshot{
		Items: []model.BOQItem{
			{Name: "Item", Quantity: 10, Rate: 100},
		},
		PreliminariesAmount: 200,
		DiscountPercentage:  floatPtr(10),
	}

	totals := ComputeSnapshotTotals(snap)
	require.InDelta(t, 1000.0, totals.ItemsSubtotal, 0.001)
	require.InDelta(t, 200.0, totals.PreliminariesAmount, 0.001)
	// Discount applies to items plus preliminaries.
	require.InDelta(t, 120.0, totals.DiscountAmount, 0.001)
	require.InDelta(t, 1080.0, totals.GrandTotal, 0.001)
	// Internal cost from defaults: 10+25+5 percent of the client amount.
	require.InDelta(t, 400.0, totals.InternalCost, 0.001)
	require.InDelta(t, 800.0, totals.MarginBeforeDiscount, 0.001)
	require.InDelta(t, 680.0, totals.MarginAfterDiscount, 0.001)
	require.InDelta(t, 62.962962, totals.MarginPercentage, 0.001)
}

func TestComputeSnapshotTotals_NoItems(t *testing.T) {
	totals := ComputeSnapshotTotals(model.BOQSnapshot{})
	require.Equal(t, 0.0, totals.ItemsSubtotal)
	require.Equal(t, 0.0, totals.GrandTotal)
	require.Equal(t, 0.0, totals.MarginPercentage)
}
