package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'change_request_status') THEN
			CREATE TYPE change_request_status AS ENUM (
				'pending',
				'under_review',
				'approved_by_pm',
				'send_to_est',
				'send_to_buyer',
				'assigned_to_buyer',
				'purchase_completed',
				'rejected'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'approver_role') THEN
			CREATE TYPE approver_role AS ENUM ('project_manager', 'estimator', 'technical_director', 'buyer');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'purchase_order_status') THEN
			CREATE TYPE purchase_order_status AS ENUM (
				'draft',
				'pending_td_approval',
				'vendor_approved',
				'purchase_completed',
				'rejected'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS change_request (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL,
		request_type VARCHAR(32) NOT NULL,
		status change_request_status NOT NULL DEFAULT 'pending',
		approval_required_from approver_role,
		requested_by_user_id UUID NOT NULL,
		materials_total_cost NUMERIC(18,2) NOT NULL DEFAULT 0,
		budget_original_total NUMERIC(18,2),
		budget_new_total NUMERIC(18,2),
		budget_increase_pct NUMERIC(8,2),
		requires_client_approval BOOLEAN,
		rejection_reason TEXT,
		rejected_by_user_id UUID,
		pm_approved_by_user_id UUID,
		assigned_buyer_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_change_request_project_id ON change_request (project_id);`,
	`CREATE INDEX IF NOT EXISTS idx_change_request_status ON change_request (status);`,
	`CREATE TABLE IF NOT EXISTS material_line (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		change_request_id UUID NOT NULL REFERENCES change_request(id) ON DELETE CASCADE,
		material_name VARCHAR(256) NOT NULL,
		master_material_id BIGINT,
		quantity NUMERIC(18,3) NOT NULL,
		unit_cost NUMERIC(18,4) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_material_line_change_request_id ON material_line (change_request_id);`,
	`CREATE TABLE IF NOT EXISTS purchase_order (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		change_request_id UUID REFERENCES change_request(id),
		project_id UUID NOT NULL,
		vendor_name VARCHAR(256),
		amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_vat NUMERIC(18,2) NOT NULL DEFAULT 0,
		status purchase_order_status NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_purchase_order_change_request ON purchase_order (change_request_id) WHERE change_request_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_order_project_id ON purchase_order (project_id);`,
	`CREATE TABLE IF NOT EXISTS purchase_line (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		purchase_order_id UUID NOT NULL REFERENCES purchase_order(id) ON DELETE CASCADE,
		item_name VARCHAR(256) NOT NULL,
		material_name VARCHAR(256) NOT NULL,
		quantity NUMERIC(18,3) NOT NULL,
		quantity_used NUMERIC(18,3),
		unit_price NUMERIC(18,4) NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		vat_amount NUMERIC(18,2),
		is_new_material BOOLEAN NOT NULL DEFAULT FALSE,
		position INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_line_order_id ON purchase_line (purchase_order_id);`,
	`CREATE TABLE IF NOT EXISTS boq_item (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL,
		name VARCHAR(256) NOT NULL,
		quantity NUMERIC(18,3) NOT NULL DEFAULT 0,
		rate NUMERIC(18,4) NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_boq_item_project_id ON boq_item (project_id);`,
	`CREATE TABLE IF NOT EXISTS boq_material (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		boq_item_id UUID NOT NULL REFERENCES boq_item(id) ON DELETE CASCADE,
		name VARCHAR(256) NOT NULL,
		quantity NUMERIC(18,3) NOT NULL DEFAULT 0,
		rate NUMERIC(18,4) NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_boq_material_item_id ON boq_material (boq_item_id);`,
	`CREATE TABLE IF NOT EXISTS boq_snapshot (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		boq_id UUID NOT NULL,
		internal_revision_number INT NOT NULL,
		action VARCHAR(32) NOT NULL,
		actor_user_id UUID NOT NULL,
		actor_name VARCHAR(256),
		payload JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_boq_snapshot_revision ON boq_snapshot (boq_id, internal_revision_number);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
