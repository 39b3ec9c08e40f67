package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/config"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/repository"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/workflow"
)

// ChangeRequestStore is the persistence port of the state machine. Save is an
// optimistic check-and-set: it only writes when the stored status still
// matches the expected prior one.
type ChangeRequestStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ChangeRequest, error)
	Create(ctx context.Context, cr model.ChangeRequest) (*model.ChangeRequest, error)
	Save(ctx context.Context, cr *model.ChangeRequest, expectedPrior model.ChangeRequestStatus) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ChangeRequest, error)
	BudgetTotal(ctx context.Context, projectID uuid.UUID) (float64, error)
}

// PDFGenerator renders the approval document for a change request.
type PDFGenerator interface {
	Generate(cr model.ChangeRequest) ([]byte, error)
}

type ChangeRequestService struct {
	store        ChangeRequestStore
	pdf          PDFGenerator
	thresholdPct float64
}

func NewChangeRequestService(store ChangeRequestStore, pdf PDFGenerator, cfg *config.Config) *ChangeRequestService {
	thresholdPct := workflow.DefaultClientApprovalThresholdPct
	if cfg != nil && cfg.Approval.ClientApprovalThresholdPct > 0 {
		thresholdPct = cfg.Approval.ClientApprovalThresholdPct
	}
	return &ChangeRequestService{store: store, pdf: pdf, thresholdPct: thresholdPct}
}

type CreateChangeRequestInput struct {
	ProjectID       uuid.UUID
	RequestType     model.RequestType
	Lines           []model.MaterialLine
	AssignedBuyerID *uuid.UUID
	Principal       model.Principal
}

func (s *ChangeRequestService) Create(ctx context.Context, input CreateChangeRequestInput) (*model.ChangeRequest, error) {
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	if input.RequestType != model.RequestTypeStandardChange && input.RequestType != model.RequestTypeExtraMaterials {
		return nil, fmt.Errorf("%w: invalid request type", ErrInvalidInput)
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.MaterialName) == "" {
			return nil, fmt.Errorf("%w: material name is required", ErrInvalidInput)
		}
		if line.Quantity < 0 || line.UnitCost < 0 {
			return nil, fmt.Errorf("%w: negative quantity or cost", ErrInvalidInput)
		}
	}

	cr := model.ChangeRequest{
		ProjectID:         input.ProjectID,
		RequestType:       input.RequestType,
		Status:            model.StatusPending,
		RequestedByUserID: input.Principal.UserID,
		Lines:             input.Lines,
		AssignedBuyerID:   input.AssignedBuyerID,
	}
	return s.store.Create(ctx, cr)
}

func (s *ChangeRequestService) Get(ctx context.Context, id uuid.UUID) (*model.ChangeRequest, error) {
	cr, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cr, nil
}

func (s *ChangeRequestService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ChangeRequest, error) {
	if projectID == uuid.Nil {
		return nil, ErrNotFound
	}
	return s.store.ListByProject(ctx, projectID)
}

// SubmitForReview moves a pending request into review. New materials pull in
// the estimator; an existing-only set is an external buy and needs a selected
// buyer before submission completes.
func (s *ChangeRequestService) SubmitForReview(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.ChangeRequest, error) {
	cr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: submit requires a pending request, got %s", ErrInvalidTransition, cr.Status)
	}

	class := workflow.Classify(cr.Lines)
	route := workflow.SubmitRoute(class)
	if route.RequiresAssignee && cr.AssignedBuyerID == nil {
		return nil, ErrMissingAssignee
	}
	if !workflow.CanTransition(cr.Status, route.NextStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cr.Status, route.NextStatus)
	}

	if err := s.refreshBudgetImpact(ctx, cr); err != nil {
		return nil, err
	}
	prior := cr.Status
	cr.Status = route.NextStatus
	cr.ApprovalRequiredFrom = route.RequiredApprover
	return s.save(ctx, cr, prior)
}

type ApproveInput struct {
	ApproverRole model.ApproverRole
	AssigneeID   *uuid.UUID
	Principal    model.Principal
}

// Approve advances an under-review request along the routing table. Only the
// role the request is waiting on may approve it.
func (s *ChangeRequestService) Approve(ctx context.Context, id uuid.UUID, input ApproveInput) (*model.ChangeRequest, error) {
	cr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr.Status != model.StatusUnderReview {
		return nil, fmt.Errorf("%w: approve requires a request under review, got %s", ErrInvalidTransition, cr.Status)
	}
	if cr.ApprovalRequiredFrom == nil || input.ApproverRole != *cr.ApprovalRequiredFrom {
		return nil, fmt.Errorf("%w: approval is pending with %s", ErrInvalidTransition, approverLabel(cr.ApprovalRequiredFrom))
	}

	class := workflow.Classify(cr.Lines)
	route := workflow.ApproveRoute(input.ApproverRole, class)
	if input.AssigneeID != nil {
		cr.AssignedBuyerID = input.AssigneeID
	}
	if route.RequiresAssignee && cr.AssignedBuyerID == nil {
		return nil, ErrMissingAssignee
	}
	if !workflow.CanTransition(cr.Status, route.NextStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cr.Status, route.NextStatus)
	}

	if err := s.refreshBudgetImpact(ctx, cr); err != nil {
		return nil, err
	}
	if input.ApproverRole == model.RoleProjectManager {
		approver := input.Principal.UserID
		cr.PMApprovedByUserID = &approver
	}

	prior := cr.Status
	cr.Status = route.NextStatus
	cr.ApprovalRequiredFrom = nil
	return s.save(ctx, cr, prior)
}

// Reject terminates a request under review. Rejecting an already rejected
// request is an invalid transition, not a no-op.
func (s *ChangeRequestService) Reject(ctx context.Context, id uuid.UUID, reason string, principal model.Principal) (*model.ChangeRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingRejectionReason
	}
	cr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr.Status != model.StatusUnderReview {
		return nil, fmt.Errorf("%w: reject requires a request under review, got %s", ErrInvalidTransition, cr.Status)
	}

	prior := cr.Status
	rejectedBy := principal.UserID
	cr.Status = model.StatusRejected
	cr.ApprovalRequiredFrom = nil
	cr.RejectionReason = &reason
	cr.RejectedByUserID = &rejectedBy
	return s.save(ctx, cr, prior)
}

func (s *ChangeRequestService) MarkPurchaseCompleted(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.ChangeRequest, error) {
	cr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr.Status != model.StatusAssignedToBuyer {
		return nil, fmt.Errorf("%w: completion requires an assigned request, got %s", ErrInvalidTransition, cr.Status)
	}

	prior := cr.Status
	cr.Status = model.StatusPurchaseCompleted
	return s.save(ctx, cr, prior)
}

type ApprovalDocumentResult struct {
	FileName string
	Content  []byte
}

// ApprovalDocument renders the PDF for an approved or completed request.
func (s *ChangeRequestService) ApprovalDocument(ctx context.Context, id uuid.UUID) (*ApprovalDocumentResult, error) {
	cr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch cr.Status {
	case model.StatusPending, model.StatusUnderReview, model.StatusRejected:
		return nil, fmt.Errorf("%w: request is not approved", ErrInvalidInput)
	}

	content, err := s.pdf.Generate(*cr)
	if err != nil {
		return nil, err
	}
	return &ApprovalDocumentResult{
		FileName: fmt.Sprintf("change-request-%s.pdf", cr.ID),
		Content:  content,
	}, nil
}

// refreshBudgetImpact recomputes the variance snapshot against the project's
// planned budget; the stored copy is only ever a hint.
func (s *ChangeRequestService) refreshBudgetImpact(ctx context.Context, cr *model.ChangeRequest) error {
	budgetTotal, err := s.store.BudgetTotal(ctx, cr.ProjectID)
	if err != nil {
		return err
	}
	cr.MaterialsTotalCost = cr.TotalCost()
	impact := workflow.ComputeBudgetImpact(budgetTotal, cr.MaterialsTotalCost, s.thresholdPct)
	cr.BudgetImpact = &impact
	return nil
}

func (s *ChangeRequestService) save(ctx context.Context, cr *model.ChangeRequest, prior model.ChangeRequestStatus) (*model.ChangeRequest, error) {
	if err := s.store.Save(ctx, cr, prior); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return cr, nil
}

func approverLabel(role *model.ApproverRole) string {
	if role == nil {
		return "nobody"
	}
	return string(*role)
}
