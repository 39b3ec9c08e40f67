package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

// ErrStatusConflict signals that the optimistic status check failed: the
// change request moved between read and write.
var ErrStatusConflict = errors.New("change request status conflict")

type ChangeRequestRepository struct {
	db *gorm.DB
}

func NewChangeRequestRepository(db *gorm.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db}
}

type changeRequestRow struct {
	ID                     uuid.UUID
	ProjectID              uuid.UUID
	RequestType            model.RequestType
	Status                 model.ChangeRequestStatus
	ApprovalRequiredFrom   *model.ApproverRole
	RequestedByUserID      uuid.UUID
	MaterialsTotalCost     float64
	BudgetOriginalTotal    *float64
	BudgetNewTotal         *float64
	BudgetIncreasePct      *float64
	RequiresClientApproval *bool
	RejectionReason        *string
	RejectedByUserID       *uuid.UUID
	PMApprovedByUserID     *uuid.UUID
	AssignedBuyerID        *uuid.UUID
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (row changeRequestRow) toModel() *model.ChangeRequest {
	cr := &model.ChangeRequest{
		ID:                   row.ID,
		ProjectID:            row.ProjectID,
		RequestType:          row.RequestType,
		Status:               row.Status,
		ApprovalRequiredFrom: row.ApprovalRequiredFrom,
		RequestedByUserID:    row.RequestedByUserID,
		MaterialsTotalCost:   row.MaterialsTotalCost,
		RejectionReason:      row.RejectionReason,
		RejectedByUserID:     row.RejectedByUserID,
		PMApprovedByUserID:   row.PMApprovedByUserID,
		AssignedBuyerID:      row.AssignedBuyerID,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
	if row.BudgetOriginalTotal != nil {
		impact := &model.BudgetImpact{
			OriginalTotal: *row.BudgetOriginalTotal,
		}
		if row.BudgetNewTotal != nil {
			impact.NewTotalIfApproved = *row.BudgetNewTotal
		}
		if row.BudgetIncreasePct != nil {
			impact.IncreasePercentage = *row.BudgetIncreasePct
		}
		if row.RequiresClientApproval != nil {
			impact.RequiresClientApproval = *row.RequiresClientApproval
		}
		cr.BudgetImpact = impact
	}
	return cr
}

const changeRequestColumns = `
	id,
	project_id,
	request_type,
	status,
	approval_required_from,
	requested_by_user_id,
	materials_total_cost,
	budget_original_total,
	budget_new_total,
	budget_increase_pct,
	requires_client_approval,
	rejection_reason,
	rejected_by_user_id,
	pm_approved_by_user_id,
	assigned_buyer_id,
	created_at,
	updated_at
`

func (r *ChangeRequestRepository) Get(ctx context.Context, id uuid.UUID) (*model.ChangeRequest, error) {
	var row changeRequestRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+changeRequestColumns+`
		FROM change_request
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	cr := row.toModel()
	lines, err := r.listLines(ctx, id)
	if err != nil {
		return nil, err
	}
	cr.Lines = lines
	return cr, nil
}

func (r *ChangeRequestRepository) listLines(ctx context.Context, changeRequestID uuid.UUID) ([]model.MaterialLine, error) {
	var lines []model.MaterialLine
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, change_request_id, material_name, master_material_id, quantity, unit_cost
		FROM material_line
		WHERE change_request_id = ?
		ORDER BY created_at ASC, id ASC
	`, changeRequestID).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *ChangeRequestRepository) Create(ctx context.Context, cr model.ChangeRequest) (*model.ChangeRequest, error) {
	var saved changeRequestRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO change_request (
				project_id,
				request_type,
				status,
				requested_by_user_id,
				materials_total_cost,
				assigned_buyer_id
			) VALUES (?, ?, ?, ?, ?, ?)
			RETURNING `+changeRequestColumns+`
		`,
			cr.ProjectID,
			cr.RequestType,
			model.StatusPending,
			cr.RequestedByUserID,
			cr.TotalCost(),
			cr.AssignedBuyerID,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, line := range cr.Lines {
			if err := tx.Exec(`
				INSERT INTO material_line (change_request_id, material_name, master_material_id, quantity, unit_cost)
				VALUES (?, ?, ?, ?, ?)
			`, saved.ID, line.MaterialName, line.MasterMaterialID, line.Quantity, line.UnitCost).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, saved.ID)
}

// Save persists the transition result, conditioned on the row still holding
// the expected prior status. Zero rows updated means the entity mutated
// concurrently and nothing is written.
func (r *ChangeRequestRepository) Save(ctx context.Context, cr *model.ChangeRequest, expectedPrior model.ChangeRequestStatus) error {
	var impactOriginal, impactNew, impactPct *float64
	var impactClient *bool
	if cr.BudgetImpact != nil {
		impactOriginal = &cr.BudgetImpact.OriginalTotal
		impactNew = &cr.BudgetImpact.NewTotalIfApproved
		impactPct = &cr.BudgetImpact.IncreasePercentage
		impactClient = &cr.BudgetImpact.RequiresClientApproval
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE change_request
		SET
			status = ?,
			approval_required_from = ?,
			materials_total_cost = ?,
			budget_original_total = ?,
			budget_new_total = ?,
			budget_increase_pct = ?,
			requires_client_approval = ?,
			rejection_reason = ?,
			rejected_by_user_id = ?,
			pm_approved_by_user_id = ?,
			assigned_buyer_id = ?,
			updated_at = NOW()
		WHERE id = ? AND status = ?
	`,
		cr.Status,
		cr.ApprovalRequiredFrom,
		cr.MaterialsTotalCost,
		impactOriginal,
		impactNew,
		impactPct,
		impactClient,
		cr.RejectionReason,
		cr.RejectedByUserID,
		cr.PMApprovedByUserID,
		cr.AssignedBuyerID,
		cr.ID,
		expectedPrior,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *ChangeRequestRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ChangeRequest, error) {
	var rows []changeRequestRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+changeRequestColumns+`
		FROM change_request
		WHERE project_id = ?
		ORDER BY created_at DESC
	`, projectID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	requests := make([]model.ChangeRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, *row.toModel())
	}
	return requests, nil
}

// BudgetTotal sums the approved BOQ budget for a project; the budget impact
// of a change request is computed against this figure.
func (r *ChangeRequestRepository) BudgetTotal(ctx context.Context, projectID uuid.UUID) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(bm.quantity * bm.rate), 0)
		FROM boq_material bm
		JOIN boq_item bi ON bi.id = bm.boq_item_id
		WHERE bi.project_id = ?
	`, projectID).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
