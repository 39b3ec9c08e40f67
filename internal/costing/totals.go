// Package costing is the single source of truth for BOQ money arithmetic.
// Cached total fields on stored entities are hints; every reader recomputes
// through these functions.
package costing

import "github.com/redlitmus-in/MeterSquare-sub008/internal/model"

// Default cost-breakdown shares of the client amount, applied when an item
// does not carry explicit percentages.
const (
	DefaultMiscPct           = 10.0
	DefaultOverheadProfitPct = 25.0
	DefaultTransportPct      = 5.0
)

// LineAmount is quantity times rate.
func LineAmount(quantity, rate float64) float64 {
	return quantity * rate
}

// ClientAmount is what the client is billed for an item: quantity times rate,
// or the sum of sub-item amounts when the item-level rate is zero.
func ClientAmount(item model.BOQItem) float64 {
	if item.Rate != 0 {
		return LineAmount(item.Quantity, item.Rate)
	}
	total := 0.0
	for _, sub := range item.SubItems {
		total += LineAmount(sub.Quantity, sub.Rate)
	}
	return total
}

// Breakdown is the recomputed cost structure of one item.
type Breakdown struct {
	ClientAmount   float64
	MaterialCost   float64
	LabourCost     float64
	MiscAmount     float64
	OverheadProfit float64
	Transport      float64
	InternalCost   float64
	Margin         float64
}

func pctOrDefault(pct *float64, fallback float64) float64 {
	if pct == nil {
		return fallback
	}
	return *pct
}

// ItemBreakdown recomputes an item's internal cost and margin independent of
// any cached total. Missing nested collections contribute zero.
func ItemBreakdown(item model.BOQItem) Breakdown {
	b := Breakdown{ClientAmount: ClientAmount(item)}
	for _, m := range item.Materials {
		b.MaterialCost += LineAmount(m.Quantity, m.Rate)
	}
	for _, l := range item.Labour {
		b.LabourCost += LineAmount(l.Quantity, l.Rate)
	}
	b.MiscAmount = b.ClientAmount * pctOrDefault(item.MiscPct, DefaultMiscPct) / 100
	b.OverheadProfit = b.ClientAmount * pctOrDefault(item.OverheadProfitPct, DefaultOverheadProfitPct) / 100
	b.Transport = b.ClientAmount * pctOrDefault(item.TransportPct, DefaultTransportPct) / 100
	b.InternalCost = b.MaterialCost + b.LabourCost + b.MiscAmount + b.OverheadProfit + b.Transport
	b.Margin = b.ClientAmount - b.InternalCost
	return b
}

// Discount resolves the overall discount against the combined subtotal. An
// explicit amount wins; the percentage applies only when no amount is set.
func Discount(subtotal float64, percentage, amount *float64) float64 {
	if amount != nil {
		return *amount
	}
	if percentage != nil {
		return subtotal * *percentage / 100
	}
	return 0
}

// SnapshotTotals are the recomputed grand figures for one snapshot.
type SnapshotTotals struct {
	ItemsSubtotal        float64 `json:"items_subtotal"`
	PreliminariesAmount  float64 `json:"preliminaries_amount"`
	DiscountAmount       float64 `json:"discount_amount"`
	GrandTotal           float64 `json:"grand_total"`
	InternalCost         float64 `json:"internal_cost"`
	MarginBeforeDiscount float64 `json:"margin_before_discount"`
	MarginAfterDiscount  float64 `json:"margin_after_discount"`
	MarginPercentage     float64 `json:"margin_percentage"`
}

// ComputeSnapshotTotals recomputes a snapshot's grand total and margin
// figures from its items. A snapshot with no items yields explicit zeros.
func ComputeSnapshotTotals(snap model.BOQSnapshot) SnapshotTotals {
	totals := SnapshotTotals{PreliminariesAmount: snap.PreliminariesAmount}
	for _, item := range snap.Items {
		b := ItemBreakdown(item)
		totals.ItemsSubtotal += b.ClientAmount
		totals.InternalCost += b.InternalCost
	}
	subtotal := totals.ItemsSubtotal + totals.PreliminariesAmount
	totals.DiscountAmount = Discount(subtotal, snap.DiscountPercentage, snap.DiscountAmount)
	totals.GrandTotal = subtotal - totals.DiscountAmount
	totals.MarginBeforeDiscount = subtotal - totals.InternalCost
	totals.MarginAfterDiscount = totals.MarginBeforeDiscount - totals.DiscountAmount
	if totals.GrandTotal != 0 {
		totals.MarginPercentage = totals.MarginAfterDiscount / totals.GrandTotal * 100
	}
	return totals
}
