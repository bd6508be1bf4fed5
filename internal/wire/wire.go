// Package wire provides dependency injection for the dotgraph application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/dotgraph/internal/adapters/semantic"
	"github.com/example/dotgraph/internal/adapters/sqlite"
	"github.com/example/dotgraph/internal/adapters/vcs"
	"github.com/example/dotgraph/internal/app"
	"github.com/example/dotgraph/internal/config"
	"github.com/example/dotgraph/internal/db"
	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/ports/secondary"
)

var (
	cfg               *config.Config
	ingestService     primary.IngestService
	annotationService primary.AnnotationService
	driftService      primary.DriftService
	queryService      primary.QueryService
	definitionService primary.DefinitionService
	machineService    primary.MachineService
	scanService       *app.ScanService
	once              sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// IngestService returns the singleton IngestService instance.
func IngestService() primary.IngestService {
	once.Do(initServices)
	return ingestService
}

// AnnotationService returns the singleton AnnotationService instance.
func AnnotationService() primary.AnnotationService {
	once.Do(initServices)
	return annotationService
}

// DriftService returns the singleton DriftService instance.
func DriftService() primary.DriftService {
	once.Do(initServices)
	return driftService
}

// QueryService returns the singleton QueryService instance.
func QueryService() primary.QueryService {
	once.Do(initServices)
	return queryService
}

// DefinitionService returns the singleton DefinitionService instance.
func DefinitionService() primary.DefinitionService {
	once.Do(initServices)
	return definitionService
}

// MachineService returns the singleton MachineService instance.
func MachineService() primary.MachineService {
	once.Do(initServices)
	return machineService
}

// ScanService returns the singleton ScanService instance.
func ScanService() *app.ScanService {
	once.Do(initServices)
	return scanService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir, err := config.Dir()
	if err != nil {
		log.Fatalf("failed to locate state directory: %v", err)
	}
	cfg = config.LoadOrDefault(dir)

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports).
	defRepo := sqlite.NewDefinitionRepository(database)
	machineRepo := sqlite.NewMachineRepository(database)
	snapRepo := sqlite.NewSnapshotRepository(database)
	annRepo := sqlite.NewAnnotationRepository(database)
	edgeRepo := sqlite.NewEdgeRepository(database)
	reportRepo := sqlite.NewDriftReportRepository(database)
	resolver := sqlite.NewEntityResolver(database)

	var index secondary.SemanticIndex = semantic.NewNoop()
	if cfg.SemanticIndex {
		index = semantic.NewKeywordIndex(database)
	}

	locks := app.NewDefinitionLocks()

	// Services (primary port implementations).
	ingestService = app.NewIngestService(defRepo, machineRepo, snapRepo, locks, app.IngestOptions{
		AutoRegisterDefinitions: cfg.AutoRegisterDefinitions,
		AutoRegisterMachines:    cfg.AutoRegisterMachines,
	})
	annotationService = app.NewAnnotationService(annRepo, edgeRepo, resolver, index)
	driftService = app.NewDriftService(defRepo, machineRepo, snapRepo, annRepo, edgeRepo, reportRepo, locks, app.DriftOptions{
		MajorityFallback: cfg.MajorityFallback,
		FreshnessHours:   cfg.FreshnessHours,
	})
	queryService = app.NewQueryService(annRepo, snapRepo, edgeRepo, resolver, index)
	definitionService = app.NewDefinitionService(defRepo, snapRepo, locks)
	machineService = app.NewMachineService(machineRepo)
	scanService = app.NewScanService(ingestService, annotationService, vcs.NewGitVCS())
}
