package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestType string

const (
	RequestTypeStandardChange RequestType = "STANDARD_CHANGE"
	RequestTypeExtraMaterials RequestType = "EXTRA_MATERIALS"
)

type ChangeRequestStatus string

const (
	StatusPending           ChangeRequestStatus = "pending"
	StatusUnderReview       ChangeRequestStatus = "under_review"
	StatusApprovedByPM      ChangeRequestStatus = "approved_by_pm"
	StatusSendToEstimator   ChangeRequestStatus = "send_to_est"
	StatusSendToBuyer       ChangeRequestStatus = "send_to_buyer"
	StatusAssignedToBuyer   ChangeRequestStatus = "assigned_to_buyer"
	StatusPurchaseCompleted ChangeRequestStatus = "purchase_completed"
	StatusRejected          ChangeRequestStatus = "rejected"
)

type ApproverRole string

const (
	RoleProjectManager    ApproverRole = "project_manager"
	RoleEstimator         ApproverRole = "estimator"
	RoleTechnicalDirector ApproverRole = "technical_director"
	RoleBuyer             ApproverRole = "buyer"
)

// MaterialLine is one requested material. MasterMaterialID is nil for a
// material that is not yet in the catalog; only the classifier probes it.
type MaterialLine struct {
	ID               uuid.UUID `json:"id"`
	ChangeRequestID  uuid.UUID `json:"change_request_id"`
	MaterialName     string    `json:"material_name"`
	MasterMaterialID *int64    `json:"master_material_id,omitempty"`
	Quantity         float64   `json:"quantity"`
	UnitCost         float64   `json:"unit_cost"`
}

// Catalogued reports whether the line references an existing catalog material.
func (l MaterialLine) Catalogued() bool {
	return l.MasterMaterialID != nil
}

// Amount is the line cost, quantity times unit cost.
func (l MaterialLine) Amount() float64 {
	return l.Quantity * l.UnitCost
}

// BudgetImpact is the variance snapshot recomputed on every transition into
// review. It is derived data; the stored copy is a hint, never authoritative.
type BudgetImpact struct {
	OriginalTotal          float64 `json:"original_total"`
	NewTotalIfApproved     float64 `json:"new_total_if_approved"`
	IncreasePercentage     float64 `json:"increase_percentage"`
	RequiresClientApproval bool    `json:"requires_client_approval"`
}

type ChangeRequest struct {
	ID                   uuid.UUID           `json:"id"`
	ProjectID            uuid.UUID           `json:"project_id"`
	RequestType          RequestType         `json:"request_type"`
	Status               ChangeRequestStatus `json:"status"`
	ApprovalRequiredFrom *ApproverRole       `json:"approval_required_from,omitempty"`
	RequestedByUserID    uuid.UUID           `json:"requested_by_user_id"`
	Lines                []MaterialLine      `json:"materials"`
	MaterialsTotalCost   float64             `json:"materials_total_cost"`
	BudgetImpact         *BudgetImpact       `json:"budget_impact,omitempty"`
	RejectionReason      *string             `json:"rejection_reason,omitempty"`
	RejectedByUserID     *uuid.UUID          `json:"rejected_by_user_id,omitempty"`
	PMApprovedByUserID   *uuid.UUID          `json:"pm_approved_by_user_id,omitempty"`
	AssignedBuyerID      *uuid.UUID          `json:"assigned_buyer_id,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// Editable reports whether material lines may still be changed.
func (cr *ChangeRequest) Editable() bool {
	return cr.Status == StatusPending || cr.Status == StatusUnderReview
}

// TotalCost recomputes the materials total from the lines. The cached
// MaterialsTotalCost column is refreshed from this on every write.
func (cr *ChangeRequest) TotalCost() float64 {
	total := 0.0
	for _, line := range cr.Lines {
		total += line.Amount()
	}
	return total
}
