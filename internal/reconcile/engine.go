// Package reconcile matches planned BOQ materials against purchase-order
// lines and classifies the budget variance. Reports degrade to zero on
// missing data instead of failing; a partially empty report is a valid
// outcome.
package reconcile

import (
	"math"

	"github.com/google/uuid"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/costing"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

// DefaultAmountTolerance is the currency-precision band within which planned
// and actual amounts compare as equal.
const DefaultAmountTolerance = 0.01

// unknownPOKey buckets purchase lines whose change-request reference is
// missing or malformed. They still count toward totals.
const unknownPOKey = "unknown"

// DefaultCountedStatuses are the purchase-order states whose lines count as
// actual spend. Drafts and rejected orders are excluded.
func DefaultCountedStatuses() []model.PurchaseOrderStatus {
	return []model.PurchaseOrderStatus{
		model.POStatusVendorApproved,
		model.POStatusPurchaseCompleted,
		model.POStatusPendingTDApproval,
	}
}

type Engine struct {
	tolerance float64
	counted   map[model.PurchaseOrderStatus]struct{}
}

func NewEngine(tolerance float64, counted []model.PurchaseOrderStatus) *Engine {
	if tolerance <= 0 {
		tolerance = DefaultAmountTolerance
	}
	if len(counted) == 0 {
		counted = DefaultCountedStatuses()
	}
	set := make(map[model.PurchaseOrderStatus]struct{}, len(counted))
	for _, status := range counted {
		set[status] = struct{}{}
	}
	return &Engine{tolerance: tolerance, counted: set}
}

// lineSpend is a counted purchase line with its share of the order-level VAT
// already apportioned.
type lineSpend struct {
	line     model.PurchaseLine
	vatShare float64
}

// Compare builds the planned-vs-actual report. Items keep the order planned
// materials first appear in; items that exist only in purchases are appended
// after.
func (e *Engine) Compare(planned []model.PlannedMaterial, lines []model.PurchaseLine) model.ComparisonReport {
	spends := e.apportion(e.filterCounted(lines))

	type materialActual struct {
		qtyPurchased float64
		qtyUsed      float64
		unitPrice    float64
		amount       float64
		vat          float64
		isNew        bool
		seen         bool
	}

	itemOrder := []string{}
	itemSeen := map[string]struct{}{}
	materialOrder := map[string][]string{}
	plannedByKey := map[string]map[string]*model.PlannedFigures{}
	actualByKey := map[string]map[string]*materialActual{}

	addItem := func(name string) {
		if _, ok := itemSeen[name]; !ok {
			itemSeen[name] = struct{}{}
			itemOrder = append(itemOrder, name)
			plannedByKey[name] = map[string]*model.PlannedFigures{}
			actualByKey[name] = map[string]*materialActual{}
		}
	}
	addMaterial := func(item, material string) {
		for _, existing := range materialOrder[item] {
			if existing == material {
				return
			}
		}
		materialOrder[item] = append(materialOrder[item], material)
	}

	for _, pm := range planned {
		addItem(pm.ItemName)
		addMaterial(pm.ItemName, pm.MaterialName)
		figures := plannedByKey[pm.ItemName][pm.MaterialName]
		if figures == nil {
			figures = &model.PlannedFigures{Quantity: pm.Quantity, Rate: pm.Rate}
			plannedByKey[pm.ItemName][pm.MaterialName] = figures
		} else {
			figures.Quantity += pm.Quantity
		}
		figures.Amount += costing.LineAmount(pm.Quantity, pm.Rate)
	}

	for _, spend := range spends {
		addItem(spend.line.ItemName)
		addMaterial(spend.line.ItemName, spend.line.MaterialName)
		actual := actualByKey[spend.line.ItemName][spend.line.MaterialName]
		if actual == nil {
			actual = &materialActual{}
			actualByKey[spend.line.ItemName][spend.line.MaterialName] = actual
		}
		actual.seen = true
		actual.qtyPurchased += spend.line.Quantity
		actual.qtyUsed += spend.line.QuantityUsed
		actual.unitPrice = spend.line.UnitPrice
		actual.amount += spend.line.Amount
		actual.vat += spend.vatShare
		actual.isNew = actual.isNew || spend.line.IsNewMaterial
	}

	report := model.ComparisonReport{}
	for _, itemName := range itemOrder {
		item := model.ItemComparison{ItemName: itemName}
		for _, materialName := range materialOrder[itemName] {
			plannedFigures := plannedByKey[itemName][materialName]
			actual := actualByKey[itemName][materialName]

			cm := model.ComparisonMaterial{MaterialName: materialName}
			if plannedFigures != nil {
				cm.Planned = *plannedFigures
			}

			switch {
			case plannedFigures != nil && (actual == nil || !actual.seen):
				cm.Status = model.ComparisonNotPurchased
				cm.Variance = model.VarianceFigures{
					Quantity: cm.Planned.Quantity,
					Amount:   cm.Planned.Amount,
				}
			case plannedFigures == nil:
				// Unplanned materials are always new, and their actual amount
				// is recorded excluding VAT; the VAT joins the item totals
				// explicitly below.
				cm.IsNewMaterial = true
				cm.Status = model.ComparisonUnplanned
				cm.Actual = model.ActualFigures{
					QuantityPurchased: actual.qtyPurchased,
					QuantityUsed:      actual.qtyUsed,
					RemainingQuantity: actual.qtyPurchased - actual.qtyUsed,
					UnitPrice:         actual.unitPrice,
					Amount:            actual.amount,
				}
				cm.Variance = model.VarianceFigures{
					Quantity: -actual.qtyPurchased,
					Amount:   -(actual.amount + actual.vat),
				}
			default:
				spent := actual.amount + actual.vat
				cm.IsNewMaterial = actual.isNew
				cm.Actual = model.ActualFigures{
					QuantityPurchased: actual.qtyPurchased,
					QuantityUsed:      actual.qtyUsed,
					RemainingQuantity: actual.qtyPurchased - actual.qtyUsed,
					UnitPrice:         actual.unitPrice,
					Amount:            spent,
				}
				cm.Variance = model.VarianceFigures{
					Quantity: cm.Planned.Quantity - actual.qtyPurchased,
					Amount:   cm.Planned.Amount - spent,
				}
				cm.Status = e.classify(cm.Planned.Amount, spent)
			}

			item.PlannedAmount += cm.Planned.Amount
			if actual != nil && actual.seen {
				item.ActualAmount += actual.amount + actual.vat
			}
			item.Materials = append(item.Materials, cm)
		}

		item.Variance = item.PlannedAmount - item.ActualAmount
		if item.ActualAmount == 0 && item.PlannedAmount > 0 {
			item.Status = model.ComparisonNotPurchased
		} else {
			item.Status = e.classify(item.PlannedAmount, item.ActualAmount)
		}

		report.PlannedTotal += item.PlannedAmount
		report.ActualTotal += item.ActualAmount
		report.Items = append(report.Items, item)
	}
	report.TotalVariance = report.PlannedTotal - report.ActualTotal
	return report
}

func (e *Engine) filterCounted(lines []model.PurchaseLine) []model.PurchaseLine {
	counted := make([]model.PurchaseLine, 0, len(lines))
	for _, line := range lines {
		if _, ok := e.counted[line.Status]; ok {
			counted = append(counted, line)
		}
	}
	return counted
}

// apportion groups lines by purchase order and spreads the order-level VAT
// across its lines in proportion to their amounts. VAT is recorded once per
// order; summing a replicated per-line VAT column would overcount it.
func (e *Engine) apportion(lines []model.PurchaseLine) []lineSpend {
	groupKeys := []string{}
	groups := map[string][]model.PurchaseLine{}
	for _, line := range lines {
		key := unknownPOKey
		if line.ChangeRequestID != uuid.Nil {
			key = line.ChangeRequestID.String()
		}
		if _, ok := groups[key]; !ok {
			groupKeys = append(groupKeys, key)
		}
		groups[key] = append(groups[key], line)
	}

	spends := make([]lineSpend, 0, len(lines))
	for _, key := range groupKeys {
		group := groups[key]
		total := 0.0
		vat := 0.0
		for _, line := range group {
			total += line.Amount
			if line.CRTotalVAT > vat {
				vat = line.CRTotalVAT
			}
			if line.VATAmount > vat {
				vat = line.VATAmount
			}
		}
		for _, line := range group {
			spend := lineSpend{line: line}
			switch {
			case total > 0:
				spend.vatShare = vat * line.Amount / total
			case len(group) > 0:
				spend.vatShare = vat / float64(len(group))
			}
			spends = append(spends, spend)
		}
	}
	return spends
}

func (e *Engine) classify(plannedAmount, actualAmount float64) model.ComparisonStatus {
	if math.Abs(actualAmount-plannedAmount) <= e.tolerance {
		return model.ComparisonOnBudget
	}
	if actualAmount > plannedAmount {
		return model.ComparisonOverBudget
	}
	return model.ComparisonUnderBudget
}
