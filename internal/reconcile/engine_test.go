package reconcile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

func TestCompare_UnderBudgetWithOrderVAT(t *testing.T) {
	engine := NewEngine(0, nil)
	crID := uuid.New()

	planned := []model.PlannedMaterial{
		{ItemName: "Foundation", MaterialName: "Cement", Quantity: 100, Rate: 20},
	}
	lines := []model.PurchaseLine{
		{
			ChangeRequestID: crID,
			ItemName:        "Foundation",
			MaterialName:    "Cement",
			Quantity:        90,
			QuantityUsed:    60,
			UnitPrice:       20,
			Amount:          1800,
			CRTotalVAT:      90,
			Status:          model.POStatusPurchaseCompleted,
		},
	}

	report := engine.Compare(planned, lines)
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	require.Equal(t, "Foundation", item.ItemName)
	require.InDelta(t, 2000.0, item.PlannedAmount, 0.001)
	require.InDelta(t, 1890.0, item.ActualAmount, 0.001)
	require.InDelta(t, 110.0, item.Variance, 0.001)
	require.Equal(t, model.ComparisonUnderBudget, item.Status)

	require.Len(t, item.Materials, 1)
	material := item.Materials[0]
	require.InDelta(t, 1890.0, material.Actual.Amount, 0.001)
	require.InDelta(t, 30.0, material.Actual.RemainingQuantity, 0.001)
	require.Equal(t, model.ComparisonUnderBudget, material.Status)
}

func TestCompare_OrderVATCountedOncePerOrder(t *testing.T) {
	engine := NewEngine(0, nil)
	crID := uuid.New()

	// Two lines of the same order both replicate the order-level VAT of 100.
	lines := []model.PurchaseLine{
		{
			ChangeRequestID: crID,
			ItemName:        "Walls",
			MaterialName:    "Blocks",
			Amount:          600,
			CRTotalVAT:      100,
			Status:          model.POStatusVendorApproved,
		},
		{
			ChangeRequestID: crID,
			ItemName:        "Walls",
			MaterialName:    "Mortar",
			Amount:          400,
			CRTotalVAT:      100,
			Status:          model.POStatusVendorApproved,
		},
	}

	report := engine.Compare(nil, lines)
	require.InDelta(t, 1100.0, report.ActualTotal, 0.001)

	item := report.Items[0]
	require.InDelta(t, 1100.0, item.ActualAmount, 0.001)

	// VAT spreads in proportion to line amounts, 60/40.
	blocks := item.Materials[0]
	mortar := item.Materials[1]
	require.Equal(t, "Blocks", blocks.MaterialName)
	require.InDelta(t, 600.0, blocks.Actual.Amount, 0.001)
	require.InDelta(t, 400.0, mortar.Actual.Amount, 0.001)
	require.InDelta(t, -660.0, blocks.Variance.Amount, 0.001)
	require.InDelta(t, -440.0, mortar.Variance.Amount, 0.001)
}

func TestCompare_UnplannedMaterialAmountExcludesVAT(t *testing.T) {
	engine := NewEngine(0, nil)

	lines := []model.PurchaseLine{
		{
			ChangeRequestID: uuid.New(),
			ItemName:        "Roof",
			MaterialName:    "Waterproofing membrane",
			Quantity:        10,
			UnitPrice:       50,
			Amount:          500,
			CRTotalVAT:      25,
			Status:          model.POStatusPurchaseCompleted,
		},
	}

	report := engine.Compare(nil, lines)
	material := report.Items[0].Materials[0]

	require.Equal(t, model.ComparisonUnplanned, material.Status)
	require.True(t, material.IsNewMaterial)
	require.InDelta(t, 500.0, material.Actual.Amount, 0.001)
	require.InDelta(t, -525.0, material.Variance.Amount, 0.001)

	// The VAT still reaches the item and report totals.
	require.InDelta(t, 525.0, report.Items[0].ActualAmount, 0.001)
	require.InDelta(t, 525.0, report.ActualTotal, 0.001)
}

func TestCompare_UnknownOrderBucketStillCounts(t *testing.T) {
	engine := NewEngine(0, nil)

	lines := []model.PurchaseLine{
		{
			ChangeRequestID: uuid.Nil,
			ItemName:        "Misc",
			MaterialName:    "Fasteners",
			Amount:          200,
			VATAmount:       10,
			Status:          model.POStatusPurchaseCompleted,
		},
	}

	report := engine.Compare(nil, lines)
	require.InDelta(t, 210.0, report.ActualTotal, 0.001)
}

func TestCompare_DraftAndRejectedLinesIgnored(t *testing.T) {
	engine := NewEngine(0, nil)

	planned := []model.PlannedMaterial{
		{ItemName: "Floors", MaterialName: "Tiles", Quantity: 50, Rate: 30},
	}
	lines := []model.PurchaseLine{
		{ChangeRequestID: uuid.New(), ItemName: "Floors", MaterialName: "Tiles", Amount: 900, Status: model.POStatusDraft},
		{ChangeRequestID: uuid.New(), ItemName: "Floors", MaterialName: "Tiles", Amount: 700, Status: model.POStatusRejected},
	}

	report := engine.Compare(planned, lines)
	item := report.Items[0]

	require.Equal(t, model.ComparisonNotPurchased, item.Status)
	require.Equal(t, model.ComparisonNotPurchased, item.Materials[0].Status)
	require.InDelta(t, 0.0, item.ActualAmount, 0.001)
	require.InDelta(t, 1500.0, item.Variance, 0.001)
}

func TestCompare_OnBudgetWithinTolerance(t *testing.T) {
	engine := NewEngine(0.01, nil)

	planned := []model.PlannedMaterial{
		{ItemName: "Paint", MaterialName: "Primer", Quantity: 1, Rate: 100},
	}
	lines := []model.PurchaseLine{
		{
			ChangeRequestID: uuid.New(),
			ItemName:        "Paint",
			MaterialName:    "Primer",
			Quantity:        1,
			Amount:          100.005,
			Status:          model.POStatusPurchaseCompleted,
		},
	}

	report := engine.Compare(planned, lines)
	require.Equal(t, model.ComparisonOnBudget, report.Items[0].Materials[0].Status)
	require.Equal(t, model.ComparisonOnBudget, report.Items[0].Status)
}

func TestCompare_EmptyInputsYieldEmptyReport(t *testing.T) {
	engine := NewEngine(0, nil)

	report := engine.Compare(nil, nil)
	require.Empty(t, report.Items)
	require.Equal(t, 0.0, report.PlannedTotal)
	require.Equal(t, 0.0, report.ActualTotal)
	require.Equal(t, 0.0, report.TotalVariance)
}

func TestCompare_ItemOrderFollowsPlannedFirstSeen(t *testing.T) {
	engine := NewEngine(0, nil)

	planned := []model.PlannedMaterial{
		{ItemName: "A", MaterialName: "m1", Quantity: 1, Rate: 1},
		{ItemName: "B", MaterialName: "m2", Quantity: 1, Rate: 1},
	}
	lines := []model.PurchaseLine{
		{ChangeRequestID: uuid.New(), ItemName: "C", MaterialName: "m3", Amount: 5, Status: model.POStatusPurchaseCompleted},
		{ChangeRequestID: uuid.New(), ItemName: "A", MaterialName: "m1", Amount: 1, Status: model.POStatusPurchaseCompleted},
	}

	report := engine.Compare(planned, lines)
	require.Len(t, report.Items, 3)
	require.Equal(t, "A", report.Items[0].ItemName)
	require.Equal(t, "B", report.Items[1].ItemName)
	require.Equal(t, "C", report.Items[2].ItemName)
}
