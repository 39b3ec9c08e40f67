package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

type ProcurementRepository struct {
	db *gorm.DB
}

func NewProcurementRepository(db *gorm.DB) *ProcurementRepository {
	return &ProcurementRepository{db: db}
}

func (r *ProcurementRepository) ListPlannedMaterials(ctx context.Context, projectID uuid.UUID) ([]model.PlannedMaterial, error) {
	var rows []model.PlannedMaterial
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			bi.project_id,
			bi.name AS item_name,
			bm.name AS material_name,
			bm.quantity,
			bm.rate
		FROM boq_material bm
		JOIN boq_item bi ON bi.id = bm.boq_item_id
		WHERE bi.project_id = ?
		ORDER BY bi.position ASC, bm.position ASC
	`, projectID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPurchaseLines returns every purchase-order line of a project, the
// order-level VAT replicated onto each row. A line whose order reference is
// gone comes back with a nil change-request id and is bucketed downstream
// rather than dropped.
func (r *ProcurementRepository) ListPurchaseLines(ctx context.Context, projectID uuid.UUID) ([]model.PurchaseLine, error) {
	var rows []model.PurchaseLine
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(po.change_request_id, '00000000-0000-0000-0000-000000000000'::uuid) AS change_request_id,
			pl.item_name,
			pl.material_name,
			pl.quantity,
			COALESCE(pl.quantity_used, 0) AS quantity_used,
			pl.unit_price,
			pl.amount,
			COALESCE(pl.vat_amount, 0) AS vat_amount,
			COALESCE(po.total_vat, 0) AS cr_total_vat,
			pl.is_new_material,
			po.status
		FROM purchase_line pl
		LEFT JOIN purchase_order po ON po.id = pl.purchase_order_id
		WHERE po.project_id = ?
		ORDER BY po.created_at ASC, pl.position ASC
	`, projectID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProcurementRepository) GetPurchaseOrderByChangeRequest(ctx context.Context, changeRequestID uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, change_request_id, project_id, vendor_name, amount, total_vat, status, created_at
		FROM purchase_order
		WHERE change_request_id = ?
		LIMIT 1
	`, changeRequestID).Scan(&po).Error
	if err != nil {
		return nil, err
	}
	if po.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &po, nil
}
