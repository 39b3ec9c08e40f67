package model

type ComparisonStatus string

const (
	ComparisonOverBudget   ComparisonStatus = "over_budget"
	ComparisonUnderBudget  ComparisonStatus = "under_budget"
	ComparisonOnBudget     ComparisonStatus = "on_budget"
	ComparisonNotPurchased ComparisonStatus = "not_purchased"
	ComparisonUnplanned    ComparisonStatus = "unplanned"
)

type PlannedFigures struct {
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

type ActualFigures struct {
	QuantityPurchased float64 `json:"quantity_purchased"`
	QuantityUsed      float64 `json:"quantity_used"`
	RemainingQuantity float64 `json:"remaining_quantity"`
	UnitPrice         float64 `json:"unit_price"`
	Amount            float64 `json:"amount"`
}

type VarianceFigures struct {
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// ComparisonMaterial is a read-time projection built fresh per reconciliation
// run; it is never persisted.
type ComparisonMaterial struct {
	MaterialName  string           `json:"material_name"`
	IsNewMaterial bool             `json:"is_new_material"`
	Planned       PlannedFigures   `json:"planned"`
	Actual        ActualFigures    `json:"actual"`
	Variance      VarianceFigures  `json:"variance"`
	Status        ComparisonStatus `json:"status"`
}

type ItemComparison struct {
	ItemName      string               `json:"item_name"`
	Materials     []ComparisonMaterial `json:"materials"`
	PlannedAmount float64              `json:"planned_amount"`
	ActualAmount  float64              `json:"actual_amount"`
	Variance      float64              `json:"variance"`
	Status        ComparisonStatus     `json:"status"`
}

type ComparisonReport struct {
	Items         []ItemComparison `json:"items"`
	PlannedTotal  float64          `json:"planned_total"`
	ActualTotal   float64          `json:"actual_total"`
	TotalVariance float64          `json:"total_variance"`
}
