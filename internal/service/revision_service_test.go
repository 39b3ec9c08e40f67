package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/coalesce"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

type fakeSnapshotStore struct {
	snapshots map[uuid.UUID][]model.BOQSnapshot
	listCalls int
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snapshots: map[uuid.UUID][]model.BOQSnapshot{}}
}

func (f *fakeSnapshotStore) List(ctx context.Context, boqID uuid.UUID) ([]model.BOQSnapshot, error) {
	f.listCalls++
	return f.snapshots[boqID], nil
}

func (f *fakeSnapshotStore) GetByRevision(ctx context.Context, boqID uuid.UUID, revision int) (*model.BOQSnapshot, error) {
	for _, snap := range f.snapshots[boqID] {
		if snap.InternalRevisionNumber == revision {
			clone := snap
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSnapshotStore) Append(ctx context.Context, snap model.BOQSnapshot) (*model.BOQSnapshot, error) {
	snap.ID = uuid.New()
	snap.InternalRevisionNumber = len(f.snapshots[snap.BOQID])
	f.snapshots[snap.BOQID] = append(f.snapshots[snap.BOQID], snap)
	clone := snap
	return &clone, nil
}

func newRevisionTestService(store *fakeSnapshotStore) *RevisionService {
	return NewRevisionService(store, coalesce.New(time.Second))
}

func TestRecordSnapshot_AssignsSequentialRevisions(t *testing.T) {
	store := newFakeSnapshotStore()
	svc := newRevisionTestService(store)
	boqID := uuid.New()
	principal := testPrincipal(model.RoleProjectManager)

	first, err := svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		BOQID:     boqID,
		Action:    model.SnapshotCreated,
		Principal: principal,
		ActorName: "Asel",
	})
	require.NoError(t, err)
	require.Equal(t, 0, first.InternalRevisionNumber)

	second, err := svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		BOQID:     boqID,
		Action:    model.SnapshotPMEdited,
		Principal: principal,
		ActorName: "Asel",
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.InternalRevisionNumber)
}

func TestRecordSnapshot_Validation(t *testing.T) {
	svc := newRevisionTestService(newFakeSnapshotStore())

	_, err := svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		Action: model.SnapshotCreated,
	})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		BOQID: uuid.New(),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDiff_FirstRevisionHasNoPrevious(t *testing.T) {
	store := newFakeSnapshotStore()
	svc := newRevisionTestService(store)
	boqID := uuid.New()

	_, err := svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		BOQID:     boqID,
		Action:    model.SnapshotCreated,
		Items:     []model.BOQItem{{Name: "Foundation", Quantity: 10, Rate: 100}},
		Principal: testPrincipal(model.RoleProjectManager),
	})
	require.NoError(t, err)

	result, err := svc.Diff(context.Background(), boqID, 0)
	require.NoError(t, err)
	require.Nil(t, result.Previous)
	require.Len(t, result.Changes, 1)
}

func TestDiff_AgainstPredecessor(t *testing.T) {
	store := newFakeSnapshotStore()
	svc := newRevisionTestService(store)
	boqID := uuid.New()
	principal := testPrincipal(model.RoleProjectManager)

	_, err := svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		BOQID:     boqID,
		Action:    model.SnapshotCreated,
		Items:     []model.BOQItem{{Name: "Foundation", Quantity: 10, Rate: 100}},
		Principal: principal,
	})
	require.NoError(t, err)

	_, err = svc.RecordSnapshot(context.Background(), RecordSnapshotInput{
		BOQID:     boqID,
		Action:    model.SnapshotPMEdited,
		Items:     []model.BOQItem{{Name: "Foundation", Quantity: 12, Rate: 100}},
		Principal: principal,
	})
	require.NoError(t, err)

	result, err := svc.Diff(context.Background(), boqID, 1)
	require.NoError(t, err)
	require.NotNil(t, result.Previous)
	require.Equal(t, 1, result.Revision)
	require.NotEmpty(t, result.Changes)
}

func TestDiff_MissingRevision(t *testing.T) {
	svc := newRevisionTestService(newFakeSnapshotStore())

	_, err := svc.Diff(context.Background(), uuid.New(), 3)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Diff(context.Background(), uuid.New(), -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListRevisions_NilBOQID(t *testing.T) {
	svc := newRevisionTestService(newFakeSnapshotStore())

	_, err := svc.ListRevisions(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrNotFound)
}
