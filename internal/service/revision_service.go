package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/boqdiff"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/coalesce"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

// SnapshotStore is the append-only revision history port.
type SnapshotStore interface {
	List(ctx context.Context, boqID uuid.UUID) ([]model.BOQSnapshot, error)
	GetByRevision(ctx context.Context, boqID uuid.UUID, revision int) (*model.BOQSnapshot, error)
	Append(ctx context.Context, snap model.BOQSnapshot) (*model.BOQSnapshot, error)
}

type RevisionService struct {
	store   SnapshotStore
	flights *coalesce.Coalescer
}

func NewRevisionService(store SnapshotStore, flights *coalesce.Coalescer) *RevisionService {
	return &RevisionService{store: store, flights: flights}
}

func (s *RevisionService) ListRevisions(ctx context.Context, boqID uuid.UUID) ([]model.BOQSnapshot, error) {
	if boqID == uuid.Nil {
		return nil, ErrNotFound
	}
	result, err := s.flights.Do(ctx, "revisions:"+boqID.String(), func(ctx context.Context) (interface{}, error) {
		return s.store.List(ctx, boqID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.BOQSnapshot), nil
}

// Diff compares a revision with its immediate predecessor. Revision zero
// diffs against nothing: every line reports as added.
func (s *RevisionService) Diff(ctx context.Context, boqID uuid.UUID, revision int) (*boqdiff.DiffResult, error) {
	if boqID == uuid.Nil {
		return nil, ErrNotFound
	}
	if revision < 0 {
		return nil, fmt.Errorf("%w: negative revision", ErrInvalidInput)
	}

	current, err := s.store.GetByRevision(ctx, boqID, revision)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var previous *model.BOQSnapshot
	if revision > 0 {
		previous, err = s.store.GetByRevision(ctx, boqID, revision-1)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	result := boqdiff.Diff(*current, previous)
	return &result, nil
}

type RecordSnapshotInput struct {
	BOQID              uuid.UUID
	Action             model.SnapshotAction
	Items              []model.BOQItem
	Preliminaries      float64
	DiscountPercentage *float64
	DiscountAmount     *float64
	Terms              string
	Principal          model.Principal
	ActorName          string
}

// RecordSnapshot appends the next revision of a BOQ's history.
func (s *RevisionService) RecordSnapshot(ctx context.Context, input RecordSnapshotInput) (*model.BOQSnapshot, error) {
	if input.BOQID == uuid.Nil {
		return nil, ErrNotFound
	}
	if input.Action == "" {
		return nil, fmt.Errorf("%w: action is required", ErrInvalidInput)
	}

	return s.store.Append(ctx, model.BOQSnapshot{
		BOQID:               input.BOQID,
		Action:              input.Action,
		ActorUserID:         input.Principal.UserID,
		ActorName:           input.ActorName,
		Items:               input.Items,
		PreliminariesAmount: input.Preliminaries,
		DiscountPercentage:  input.DiscountPercentage,
		DiscountAmount:      input.DiscountAmount,
		Terms:               input.Terms,
	})
}
