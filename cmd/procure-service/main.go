package main

import (
	"fmt"
	"os"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/auth"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/coalesce"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/config"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/db"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/excel"
	httphandler "github.com/redlitmus-in/MeterSquare-sub008/internal/http"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/http/middleware"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/logger"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/pdf"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/reconcile"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/repository"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	changeRequestRepo := repository.NewChangeRequestRepository(database)
	procurementRepo := repository.NewProcurementRepository(database)
	snapshotRepo := repository.NewSnapshotRepository(database)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	flights := coalesce.New(cfg.Coalesce.TTL)
	engine := reconcile.NewEngine(cfg.Reconcile.AmountTolerance, countedStatuses(cfg))

	changeRequestService := service.NewChangeRequestService(changeRequestRepo, pdfGenerator, cfg)
	reconciliationService := service.NewReconciliationService(procurementRepo, engine, flights, excelGenerator)
	revisionService := service.NewRevisionService(snapshotRepo, flights)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(changeRequestService, reconciliationService, revisionService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting procurement service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func countedStatuses(cfg *config.Config) []model.PurchaseOrderStatus {
	if len(cfg.Reconcile.CountedStatuses) == 0 {
		return reconcile.DefaultCountedStatuses()
	}
	statuses := make([]model.PurchaseOrderStatus, 0, len(cfg.Reconcile.CountedStatuses))
	for _, raw := range cfg.Reconcile.CountedStatuses {
		statuses = append(statuses, model.PurchaseOrderStatus(raw))
	}
	return statuses
}
