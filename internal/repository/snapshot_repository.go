package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// snapshotBody is the JSONB payload of one snapshot: the full BOQ copy.
type snapshotBody struct {
	Items               []model.BOQItem `json:"items"`
	PreliminariesAmount float64         `json:"preliminaries_amount"`
	DiscountPercentage  *float64        `json:"discount_percentage,omitempty"`
	DiscountAmount      *float64        `json:"discount_amount,omitempty"`
	Terms               string          `json:"terms,omitempty"`
}

type snapshotRow struct {
	ID                     uuid.UUID
	BOQID                  uuid.UUID
	InternalRevisionNumber int
	Action                 model.SnapshotAction
	ActorUserID            uuid.UUID
	ActorName              string
	Payload                []byte
	CreatedAt              time.Time
}

func (row snapshotRow) toModel() (*model.BOQSnapshot, error) {
	var body snapshotBody
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &body); err != nil {
			return nil, err
		}
	}
	return &model.BOQSnapshot{
		ID:                     row.ID,
		BOQID:                  row.BOQID,
		InternalRevisionNumber: row.InternalRevisionNumber,
		Action:                 row.Action,
		ActorUserID:            row.ActorUserID,
		ActorName:              row.ActorName,
		Items:                  body.Items,
		PreliminariesAmount:    body.PreliminariesAmount,
		DiscountPercentage:     body.DiscountPercentage,
		DiscountAmount:         body.DiscountAmount,
		Terms:                  body.Terms,
		CreatedAt:              row.CreatedAt,
	}, nil
}

const snapshotColumns = `
	id,
	boq_id,
	internal_revision_number,
	action,
	actor_user_id,
	actor_name,
	payload,
	created_at
`

// List returns a BOQ's snapshots ordered by revision number ascending.
func (r *SnapshotRepository) List(ctx context.Context, boqID uuid.UUID) ([]model.BOQSnapshot, error) {
	var rows []snapshotRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+snapshotColumns+`
		FROM boq_snapshot
		WHERE boq_id = ?
		ORDER BY internal_revision_number ASC
	`, boqID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.BOQSnapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := row.toModel()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, nil
}

func (r *SnapshotRepository) GetByRevision(ctx context.Context, boqID uuid.UUID, revision int) (*model.BOQSnapshot, error) {
	var row snapshotRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+snapshotColumns+`
		FROM boq_snapshot
		WHERE boq_id = ? AND internal_revision_number = ?
		LIMIT 1
	`, boqID, revision).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toModel()
}

// Append inserts the next snapshot in the sequence. Revision numbers are
// allocated from the stored maximum inside the transaction, keeping the
// sequence strictly increasing per BOQ.
func (r *SnapshotRepository) Append(ctx context.Context, snap model.BOQSnapshot) (*model.BOQSnapshot, error) {
	payload, err := json.Marshal(snapshotBody{
		Items:               snap.Items,
		PreliminariesAmount: snap.PreliminariesAmount,
		DiscountPercentage:  snap.DiscountPercentage,
		DiscountAmount:      snap.DiscountAmount,
		Terms:               snap.Terms,
	})
	if err != nil {
		return nil, err
	}

	var saved snapshotRow
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Raw(`
			INSERT INTO boq_snapshot (
				boq_id,
				internal_revision_number,
				action,
				actor_user_id,
				actor_name,
				payload
			)
			SELECT ?, COALESCE(MAX(internal_revision_number), -1) + 1, ?, ?, ?, ?
			FROM boq_snapshot
			WHERE boq_id = ?
			RETURNING `+snapshotColumns+`
		`,
			snap.BOQID,
			snap.Action,
			snap.ActorUserID,
			snap.ActorName,
			payload,
			snap.BOQID,
		).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return saved.toModel()
}
