package model

import (
	"time"

	"github.com/google/uuid"
)

type SnapshotAction string

const (
	SnapshotCreated              SnapshotAction = "CREATED"
	SnapshotPMEdited             SnapshotAction = "PM_EDITED"
	SnapshotSentToTD             SnapshotAction = "SENT_TO_TD"
	SnapshotTDApproved           SnapshotAction = "TD_APPROVED"
	SnapshotTDRejected           SnapshotAction = "TD_REJECTED"
	SnapshotEstimatorResubmit    SnapshotAction = "ESTIMATOR_RESUBMIT"
	SnapshotInternalRevisionEdit SnapshotAction = "INTERNAL_REVISION_EDIT"
)

type BOQMaterial struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
}

type BOQLabour struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
}

type BOQSubItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
}

// BOQItem is one priced line of a bill of quantities. The three percentage
// fields are shares of the client amount; nil means the 10/25/5 defaults.
// TotalCost is a cached hint, recomputation is authoritative.
type BOQItem struct {
	Name              string        `json:"name"`
	Quantity          float64       `json:"quantity"`
	Rate              float64       `json:"rate"`
	SubItems          []BOQSubItem  `json:"sub_items,omitempty"`
	Materials         []BOQMaterial `json:"materials,omitempty"`
	Labour            []BOQLabour   `json:"labour,omitempty"`
	MiscPct           *float64      `json:"misc_pct,omitempty"`
	OverheadProfitPct *float64      `json:"overhead_profit_pct,omitempty"`
	TransportPct      *float64      `json:"transport_pct,omitempty"`
	TotalCost         float64       `json:"total_cost"`
}

// BOQSnapshot is an immutable point-in-time copy of a BOQ. Snapshots form a
// strictly increasing append-only sequence per BOQ.
type BOQSnapshot struct {
	ID                     uuid.UUID      `json:"id"`
	BOQID                  uuid.UUID      `json:"boq_id"`
	InternalRevisionNumber int            `json:"internal_revision_number"`
	Action                 SnapshotAction `json:"action"`
	ActorUserID            uuid.UUID      `json:"actor_user_id"`
	ActorName              string         `json:"actor_name"`
	Items                  []BOQItem      `json:"items"`
	PreliminariesAmount    float64        `json:"preliminaries_amount"`
	DiscountPercentage     *float64       `json:"discount_percentage,omitempty"`
	DiscountAmount         *float64       `json:"discount_amount,omitempty"`
	Terms                  string         `json:"terms,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
}
