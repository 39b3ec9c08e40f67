package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "draft"
	POStatusPendingTDApproval PurchaseOrderStatus = "pending_td_approval"
	POStatusVendorApproved    PurchaseOrderStatus = "vendor_approved"
	POStatusPurchaseCompleted PurchaseOrderStatus = "purchase_completed"
	POStatusRejected          PurchaseOrderStatus = "rejected"
)

// PurchaseOrder is the procurement record produced by one approved change
// request. VAT is carried once on the order, not per line.
type PurchaseOrder struct {
	ID              uuid.UUID           `json:"id"`
	ChangeRequestID uuid.UUID           `json:"change_request_id"`
	ProjectID       uuid.UUID           `json:"project_id"`
	VendorName      string              `json:"vendor_name"`
	Amount          float64             `json:"amount"`
	TotalVAT        float64             `json:"total_vat"`
	Status          PurchaseOrderStatus `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
}

// PurchaseLine is one material row of a purchase order as read for
// reconciliation. VATAmount and CRTotalVAT replicate the order-level VAT onto
// every line of the same order; aggregation must group by ChangeRequestID and
// take the VAT once.
type PurchaseLine struct {
	ChangeRequestID uuid.UUID           `json:"change_request_id"`
	ItemName        string              `json:"item_name"`
	MaterialName    string              `json:"material_name"`
	Quantity        float64             `json:"quantity"`
	QuantityUsed    float64             `json:"quantity_used"`
	UnitPrice       float64             `json:"unit_price"`
	Amount          float64             `json:"amount"`
	VATAmount       float64             `json:"vat_amount"`
	CRTotalVAT      float64             `json:"cr_total_vat"`
	IsNewMaterial   bool                `json:"is_new_material"`
	Status          PurchaseOrderStatus `json:"status"`
}

// PlannedMaterial is a budgeted BOQ material, grouped by its parent item name.
type PlannedMaterial struct {
	ProjectID    uuid.UUID `json:"project_id"`
	ItemName     string    `json:"item_name"`
	MaterialName string    `json:"material_name"`
	Quantity     float64   `json:"quantity"`
	Rate         float64   `json:"rate"`
}
