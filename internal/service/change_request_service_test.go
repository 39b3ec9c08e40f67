package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/repository"
)

type fakeChangeRequestStore struct {
	requests    map[uuid.UUID]*model.ChangeRequest
	budgetTotal float64
	saveErr     error
}

func newFakeStore() *fakeChangeRequestStore {
	return &fakeChangeRequestStore{
		requests:    map[uuid.UUID]*model.ChangeRequest{},
		budgetTotal: 100000,
	}
}

func (f *fakeChangeRequestStore) Get(ctx context.Context, id uuid.UUID) (*model.ChangeRequest, error) {
	cr, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *cr
	return &clone, nil
}

func (f *fakeChangeRequestStore) Create(ctx context.Context, cr model.ChangeRequest) (*model.ChangeRequest, error) {
	cr.ID = uuid.New()
	f.requests[cr.ID] = &cr
	clone := cr
	return &clone, nil
}

func (f *fakeChangeRequestStore) Save(ctx context.Context, cr *model.ChangeRequest, expectedPrior model.ChangeRequestStatus) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.requests[cr.ID]
	if !ok || stored.Status != expectedPrior {
		return repository.ErrStatusConflict
	}
	clone := *cr
	f.requests[cr.ID] = &clone
	return nil
}

func (f *fakeChangeRequestStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.ChangeRequest, error) {
	var result []model.ChangeRequest
	for _, cr := range f.requests {
		if cr.ProjectID == projectID {
			result = append(result, *cr)
		}
	}
	return result, nil
}

func (f *fakeChangeRequestStore) BudgetTotal(ctx context.Context, projectID uuid.UUID) (float64, error) {
	return f.budgetTotal, nil
}

type stubPDF struct{}

func (stubPDF) Generate(cr model.ChangeRequest) ([]byte, error) {
	return []byte("%PDF"), nil
}

func newTestService(store *fakeChangeRequestStore) *ChangeRequestService {
	return NewChangeRequestService(store, stubPDF{}, nil)
}

func testPrincipal(role model.ApproverRole) model.Principal {
	return model.Principal{UserID: uuid.New(), Role: role}
}

func catRef(v int64) *int64 {
	return &v
}

func createRequest(t *testing.T, svc *ChangeRequestService, lines []model.MaterialLine, buyerID *uuid.UUID) *model.ChangeRequest {
	t.Helper()
	cr, err := svc.Create(context.Background(), CreateChangeRequestInput{
		ProjectID:       uuid.New(),
		RequestType:     model.RequestTypeExtraMaterials,
		Lines:           lines,
		AssignedBuyerID: buyerID,
		Principal:       testPrincipal(model.RoleProjectManager),
	})
	require.NoError(t, err)
	return cr
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create(context.Background(), CreateChangeRequestInput{
		RequestType: model.RequestTypeExtraMaterials,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateChangeRequestInput{
		ProjectID:   uuid.New(),
		RequestType: "bogus",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateChangeRequestInput{
		ProjectID:   uuid.New(),
		RequestType: model.RequestTypeStandardChange,
		Lines:       []model.MaterialLine{{MaterialName: "  "}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateChangeRequestInput{
		ProjectID:   uuid.New(),
		RequestType: model.RequestTypeStandardChange,
		Lines:       []model.MaterialLine{{MaterialName: "Cement", Quantity: -1}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitForReview_NewMaterialsRouteToEstimator(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 5, UnitCost: 400},
		{MaterialName: "Cement", MasterMaterialID: catRef(9), Quantity: 10, UnitCost: 20},
	}, nil)

	updated, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)

	require.Equal(t, model.StatusUnderReview, updated.Status)
	require.NotNil(t, updated.ApprovalRequiredFrom)
	require.Equal(t, model.RoleEstimator, *updated.ApprovalRequiredFrom)
	require.NotNil(t, updated.BudgetImpact)
	require.InDelta(t, 2200.0, updated.MaterialsTotalCost, 0.001)
}

func TestSubmitForReview_ExistingOnlyWithoutBuyerFails(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Cement", MasterMaterialID: catRef(9), Quantity: 10, UnitCost: 20},
	}, nil)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.ErrorIs(t, err, ErrMissingAssignee)
}

func TestSubmitForReview_ExistingOnlyWithBuyerRoutesToBuyer(t *testing.T) {
	svc := newTestService(newFakeStore())
	buyer := uuid.New()
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Cement", MasterMaterialID: catRef(9), Quantity: 10, UnitCost: 20},
	}, &buyer)

	updated, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)
	require.Equal(t, model.StatusUnderReview, updated.Status)
	require.NotNil(t, updated.ApprovalRequiredFrom)
	require.Equal(t, model.RoleBuyer, *updated.ApprovalRequiredFrom)
}

func TestSubmitForReview_TwiceFails(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)

	_, err = svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprove_WrongRoleFails(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), cr.ID, ApproveInput{
		ApproverRole: model.RoleBuyer,
		Principal:    testPrincipal(model.RoleBuyer),
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprove_EstimatorAdvancesNewMaterials(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)

	updated, err := svc.Approve(context.Background(), cr.ID, ApproveInput{
		ApproverRole: model.RoleEstimator,
		Principal:    testPrincipal(model.RoleEstimator),
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusSendToEstimator, updated.Status)
	require.Nil(t, updated.ApprovalRequiredFrom)
}

func TestApprove_BuyerAssignsAndFinalizes(t *testing.T) {
	svc := newTestService(newFakeStore())
	buyer := uuid.New()
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Cement", MasterMaterialID: catRef(9), Quantity: 10, UnitCost: 20},
	}, &buyer)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)

	updated, err := svc.Approve(context.Background(), cr.ID, ApproveInput{
		ApproverRole: model.RoleBuyer,
		Principal:    testPrincipal(model.RoleBuyer),
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusAssignedToBuyer, updated.Status)
	require.Equal(t, buyer, *updated.AssignedBuyerID)
}

func TestReject_RequiresReason(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	_, err := svc.Reject(context.Background(), cr.ID, "   ", testPrincipal(model.RoleProjectManager))
	require.ErrorIs(t, err, ErrMissingRejectionReason)
}

func TestReject_SecondRejectFails(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)

	rejector := testPrincipal(model.RoleEstimator)
	rejected, err := svc.Reject(context.Background(), cr.ID, "over budget", rejector)
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, rejected.Status)
	require.Equal(t, "over budget", *rejected.RejectionReason)
	require.Equal(t, rejector.UserID, *rejected.RejectedByUserID)

	_, err = svc.Reject(context.Background(), cr.ID, "again", rejector)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkPurchaseCompleted(t *testing.T) {
	svc := newTestService(newFakeStore())
	buyer := uuid.New()
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Cement", MasterMaterialID: catRef(9), Quantity: 10, UnitCost: 20},
	}, &buyer)

	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), cr.ID, ApproveInput{
		ApproverRole: model.RoleBuyer,
		Principal:    testPrincipal(model.RoleBuyer),
	})
	require.NoError(t, err)

	completed, err := svc.MarkPurchaseCompleted(context.Background(), cr.ID, testPrincipal(model.RoleBuyer))
	require.NoError(t, err)
	require.Equal(t, model.StatusPurchaseCompleted, completed.Status)

	_, err = svc.MarkPurchaseCompleted(context.Background(), cr.ID, testPrincipal(model.RoleBuyer))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSave_ConcurrentStatusChangeMapsToConflict(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	store.saveErr = repository.ErrStatusConflict
	_, err := svc.SubmitForReview(context.Background(), cr.ID, testPrincipal(model.RoleProjectManager))
	require.ErrorIs(t, err, ErrConflict)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApprovalDocument_RejectsUnapprovedStatuses(t *testing.T) {
	svc := newTestService(newFakeStore())
	cr := createRequest(t, svc, []model.MaterialLine{
		{MaterialName: "Special glass", Quantity: 1, UnitCost: 100},
	}, nil)

	_, err := svc.ApprovalDocument(context.Background(), cr.ID)
	require.ErrorIs(t, err, ErrInvalidInput)
}
