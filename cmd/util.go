package cmd

import (
	"database/sql"
	"fmt"
	"log"

	"driftbacktest/api"
	"driftbacktest/internal/app"
	"driftbacktest/internal/repository"
	l1_service "driftbacktest/internal/service/l1"
	l2_service "driftbacktest/internal/service/l2"

	_ "modernc.org/sqlite"
)

func CloseDependencies(handler *api.ApiHandler) {
	err := handler.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

// InitializeDependencies wires the price store and the simulation services
// behind one handler. dbPath is the SQLite price cache file.
func InitializeDependencies(dbPath string) (*api.ApiHandler, error) {
	dbConn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open price db: %w", err)
	}

	priceRepository, err := repository.NewPriceRepository(dbConn)
	if err != nil {
		return nil, err
	}

	positionService := l1_service.NewPositionService(priceRepository)
	valuationService := l1_service.NewValuationService(priceRepository)
	driftService := l2_service.NewDriftService(priceRepository)

	simulationHandler := app.SimulationHandler{
		PositionService:  positionService,
		ValuationService: valuationService,
		DriftService:     driftService,
	}

	return &api.ApiHandler{
		Db:                dbConn,
		SimulationHandler: simulationHandler,
		PriceRepository:   priceRepository,
	}, nil
}
