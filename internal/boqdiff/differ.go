// Package boqdiff compares successive internal BOQ revisions and recomputes
// profitability figures for each side of the comparison.
package boqdiff

import (
	"math"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/costing"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

// NumericTolerance is the band within which two numeric fields count as
// unchanged.
const NumericTolerance = 0.01

type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
)

type ChangeScope string

const (
	ScopeItem     ChangeScope = "item"
	ScopeSubItem  ChangeScope = "sub_item"
	ScopeMaterial ChangeScope = "material"
	ScopeLabour   ChangeScope = "labour"
	ScopeSummary  ChangeScope = "summary"
)

// FieldChange records one numeric field that moved between revisions.
type FieldChange struct {
	Kind     ChangeKind  `json:"kind"`
	Scope    ChangeScope `json:"scope"`
	ItemName string      `json:"item_name,omitempty"`
	Name     string      `json:"name"`
	Field    string      `json:"field"`
	Old      float64     `json:"old"`
	New      float64     `json:"new"`
}

// DiffResult is the field-level change set between a snapshot and its
// immediate predecessor, with both sides' totals recomputed from scratch.
type DiffResult struct {
	BOQID     string                  `json:"boq_id"`
	Revision  int                     `json:"revision"`
	Action    model.SnapshotAction    `json:"action"`
	ActorName string                  `json:"actor_name"`
	Changes   []FieldChange           `json:"changes"`
	Current   costing.SnapshotTotals  `json:"current_totals"`
	Previous  *costing.SnapshotTotals `json:"previous_totals,omitempty"`
	NoItems   bool                    `json:"no_items"`
}

func changed(old, new float64) bool {
	return math.Abs(new-old) > NumericTolerance
}

// Diff compares the current snapshot with its predecessor. previous may be
// nil for the first revision, in which case every line reports as added and
// only current totals are computed.
func Diff(current model.BOQSnapshot, previous *model.BOQSnapshot) DiffResult {
	result := DiffResult{
		BOQID:     current.BOQID.String(),
		Revision:  current.InternalRevisionNumber,
		Action:    current.Action,
		ActorName: current.ActorName,
		Current:   costing.ComputeSnapshotTotals(current),
		NoItems:   len(current.Items) == 0,
	}

	var prevItems []model.BOQItem
	if previous != nil {
		prev := costing.ComputeSnapshotTotals(*previous)
		result.Previous = &prev
		prevItems = previous.Items
	}

	result.Changes = diffItems(current.Items, prevItems)
	result.Changes = append(result.Changes, diffSummary(current, previous, result)...)
	return result
}

func diffItems(current, previous []model.BOQItem) []FieldChange {
	prevByName := map[string]model.BOQItem{}
	for _, item := range previous {
		prevByName[item.Name] = item
	}
	currentNames := map[string]struct{}{}

	var changes []FieldChange
	for _, item := range current {
		currentNames[item.Name] = struct{}{}
		prev, existed := prevByName[item.Name]
		if !existed {
			changes = append(changes, FieldChange{
				Kind:     ChangeAdded,
				Scope:    ScopeItem,
				ItemName: item.Name,
				Name:     item.Name,
				Field:    "client_amount",
				New:      costing.ClientAmount(item),
			})
			continue
		}
		changes = append(changes, diffItemFields(item, prev)...)
	}
	for _, prev := range previous {
		if _, ok := currentNames[prev.Name]; !ok {
			changes = append(changes, FieldChange{
				Kind:     ChangeRemoved,
				Scope:    ScopeItem,
				ItemName: prev.Name,
				Name:     prev.Name,
				Field:    "client_amount",
				Old:      costing.ClientAmount(prev),
			})
		}
	}
	return changes
}

func diffItemFields(current, previous model.BOQItem) []FieldChange {
	var changes []FieldChange
	numeric := func(field string, old, new float64) {
		if changed(old, new) {
			changes = append(changes, FieldChange{
				Kind:     ChangeModified,
				Scope:    ScopeItem,
				ItemName: current.Name,
				Name:     current.Name,
				Field:    field,
				Old:      old,
				New:      new,
			})
		}
	}
	numeric("quantity", previous.Quantity, current.Quantity)
	numeric("rate", previous.Rate, current.Rate)
	numeric("client_amount", costing.ClientAmount(previous), costing.ClientAmount(current))

	currentBreakdown := costing.ItemBreakdown(current)
	previousBreakdown := costing.ItemBreakdown(previous)
	numeric("internal_cost", previousBreakdown.InternalCost, currentBreakdown.InternalCost)
	numeric("margin", previousBreakdown.Margin, currentBreakdown.Margin)

	changes = append(changes, diffLines(current.Name, ScopeSubItem, subItemLines(current.SubItems), subItemLines(previous.SubItems))...)
	changes = append(changes, diffLines(current.Name, ScopeMaterial, materialLines(current.Materials), materialLines(previous.Materials))...)
	changes = append(changes, diffLines(current.Name, ScopeLabour, labourLines(current.Labour), labourLines(previous.Labour))...)
	return changes
}

// namedLine is the common quantity/rate shape shared by sub-items, materials
// and labour rows.
type namedLine struct {
	name     string
	quantity float64
	rate     float64
}

func subItemLines(rows []model.BOQSubItem) []namedLine {
	lines := make([]namedLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, namedLine{name: row.Name, quantity: row.Quantity, rate: row.Rate})
	}
	return lines
}

func materialLines(rows []model.BOQMaterial) []namedLine {
	lines := make([]namedLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, namedLine{name: row.Name, quantity: row.Quantity, rate: row.Rate})
	}
	return lines
}

func labourLines(rows []model.BOQLabour) []namedLine {
	lines := make([]namedLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, namedLine{name: row.Name, quantity: row.Quantity, rate: row.Rate})
	}
	return lines
}

func diffLines(itemName string, scope ChangeScope, current, previous []namedLine) []FieldChange {
	prevByName := map[string]namedLine{}
	for _, line := range previous {
		prevByName[line.name] = line
	}
	currentNames := map[string]struct{}{}

	var changes []FieldChange
	for _, line := range current {
		currentNames[line.name] = struct{}{}
		prev, existed := prevByName[line.name]
		if !existed {
			changes = append(changes, FieldChange{
				Kind:     ChangeAdded,
				Scope:    scope,
				ItemName: itemName,
				Name:     line.name,
				Field:    "amount",
				New:      costing.LineAmount(line.quantity, line.rate),
			})
			continue
		}
		if changed(prev.quantity, line.quantity) {
			changes = append(changes, FieldChange{
				Kind: ChangeModified, Scope: scope, ItemName: itemName, Name: line.name,
				Field: "quantity", Old: prev.quantity, New: line.quantity,
			})
		}
		if changed(prev.rate, line.rate) {
			changes = append(changes, FieldChange{
				Kind: ChangeModified, Scope: scope, ItemName: itemName, Name: line.name,
				Field: "rate", Old: prev.rate, New: line.rate,
			})
		}
	}
	for _, prev := range previous {
		if _, ok := currentNames[prev.name]; !ok {
			changes = append(changes, FieldChange{
				Kind:     ChangeRemoved,
				Scope:    scope,
				ItemName: itemName,
				Name:     prev.name,
				Field:    "amount",
				Old:      costing.LineAmount(prev.quantity, prev.rate),
			})
		}
	}
	return changes
}

func diffSummary(current model.BOQSnapshot, previous *model.BOQSnapshot, result DiffResult) []FieldChange {
	if previous == nil || result.Previous == nil {
		return nil
	}
	var changes []FieldChange
	numeric := func(field string, old, new float64) {
		if changed(old, new) {
			changes = append(changes, FieldChange{
				Kind:  ChangeModified,
				Scope: ScopeSummary,
				Name:  field,
				Field: field,
				Old:   old,
				New:   new,
			})
		}
	}
	numeric("preliminaries_amount", previous.PreliminariesAmount, current.PreliminariesAmount)
	numeric("discount", result.Previous.DiscountAmount, result.Current.DiscountAmount)
	numeric("grand_total", result.Previous.GrandTotal, result.Current.GrandTotal)
	numeric("margin_after_discount", result.Previous.MarginAfterDiscount, result.Current.MarginAfterDiscount)
	return changes
}
