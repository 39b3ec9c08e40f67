package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/coalesce"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/reconcile"
)

// ProcurementStore is the read-only port feeding reconciliation.
type ProcurementStore interface {
	ListPlannedMaterials(ctx context.Context, projectID uuid.UUID) ([]model.PlannedMaterial, error)
	ListPurchaseLines(ctx context.Context, projectID uuid.UUID) ([]model.PurchaseLine, error)
}

// ExcelGenerator renders a comparison report as a workbook.
type ExcelGenerator interface {
	Generate(report model.ComparisonReport) ([]byte, error)
}

type ReconciliationService struct {
	store   ProcurementStore
	engine  *reconcile.Engine
	flights *coalesce.Coalescer
	excel   ExcelGenerator
}

func NewReconciliationService(store ProcurementStore, engine *reconcile.Engine, flights *coalesce.Coalescer, excel ExcelGenerator) *ReconciliationService {
	return &ReconciliationService{store: store, engine: engine, flights: flights, excel: excel}
}

// Compare builds the planned-vs-actual report for a project. Concurrent
// identical calls within the coalescing window share one execution; the
// operation is read-only and safe to retry.
func (s *ReconciliationService) Compare(ctx context.Context, projectID uuid.UUID) (*model.ComparisonReport, error) {
	if projectID == uuid.Nil {
		return nil, ErrNotFound
	}

	result, err := s.flights.Do(ctx, "reconcile:"+projectID.String(), func(ctx context.Context) (interface{}, error) {
		var planned []model.PlannedMaterial
		var lines []model.PurchaseLine

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			planned, err = s.store.ListPlannedMaterials(groupCtx, projectID)
			return err
		})
		group.Go(func() error {
			var err error
			lines, err = s.store.ListPurchaseLines(groupCtx, projectID)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}

		report := s.engine.Compare(planned, lines)
		return &report, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ComparisonReport), nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ReconciliationService) ExportXLSX(ctx context.Context, projectID uuid.UUID) (*ExportResult, error) {
	report, err := s.Compare(ctx, projectID)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("reconciliation-%s-%s.xlsx", projectID, time.Now().Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}
