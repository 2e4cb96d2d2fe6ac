package di

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/specstatus/internal/adapter/gateway/filesystem"
	"github.com/YoshitsuguKoike/specstatus/internal/adapter/gateway/git"
	"github.com/YoshitsuguKoike/specstatus/internal/adapter/presenter"
	"github.com/YoshitsuguKoike/specstatus/internal/adapter/watcher"
	"github.com/YoshitsuguKoike/specstatus/internal/app"
	appconfig "github.com/YoshitsuguKoike/specstatus/internal/app/config"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	"github.com/YoshitsuguKoike/specstatus/internal/application/service"
	historyusecase "github.com/YoshitsuguKoike/specstatus/internal/application/usecase/history"
	snapshotusecase "github.com/YoshitsuguKoike/specstatus/internal/application/usecase/snapshot"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/repository"
	domainservice "github.com/YoshitsuguKoike/specstatus/internal/domain/service"
	sqliterepo "github.com/YoshitsuguKoike/specstatus/internal/infrastructure/persistence/sqlite"
	filerepo "github.com/YoshitsuguKoike/specstatus/internal/infrastructure/repository"
)

// HistoryDBFile is the sqlite database name inside the storage directory
const HistoryDBFile = app.HistoryDBName

// Container is the DI container that holds all dependencies
// This implements manual dependency injection for Clean Architecture
type Container struct {
	// Infrastructure Layer
	fs          afero.Fs
	db          *sql.DB
	historyRepo repository.HistoryRepository

	// Adapter Layer - Gateways
	files          output.FileAccessor
	branchProvider output.BranchProvider

	// Domain Layer - Services
	matcher   *domainservice.BranchMatcherService
	evaluator *domainservice.WorkflowEvaluationService

	// Application Layer - Services
	resolver      *service.ArtifactResolverService
	branchContext *service.BranchContextService

	// Application Layer - Use Cases
	snapshotUseCase    *snapshotusecase.BuildSnapshotUseCase
	recordStepUseCase  *historyusecase.RecordStepUseCase
	showHistoryUseCase *historyusecase.ShowHistoryUseCase

	// Adapter Layer - Presenters
	presenter output.Presenter

	config Config
}

// Config holds configuration for the container
type Config struct {
	App          appconfig.Config
	Fs           afero.Fs  // default: afero.NewOsFs()
	OutputWriter io.Writer // default: os.Stdout
	Logger       app.Logger
	Now          func() time.Time

	// BranchProvider replaces the git CLI provider when set
	BranchProvider output.BranchProvider
}

// NewContainer creates and initializes the DI container
func NewContainer(ctx context.Context, config Config) (*Container, error) {
	if config.App == nil {
		return nil, fmt.Errorf("container config: App is required")
	}

	c := &Container{
		config: config,
	}

	if c.config.Fs == nil {
		c.config.Fs = afero.NewOsFs()
	}
	if c.config.OutputWriter == nil {
		c.config.OutputWriter = os.Stdout
	}
	if c.config.Logger == nil {
		c.config.Logger = app.NopLogger()
	}
	if c.config.Now == nil {
		c.config.Now = time.Now
	}

	// Initialize dependencies in dependency order
	if err := c.initializeInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	c.initializeDomain()
	c.initializeApplication()

	if err := c.initializeAdapters(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize adapters: %w", err)
	}

	return c, nil
}

// initializeInfrastructure opens the gateways and the history backend
func (c *Container) initializeInfrastructure(ctx context.Context) error {
	cfg := c.config.App
	logger := c.config.Logger

	c.fs = c.config.Fs
	c.files = filesystem.NewAferoFileAccessor(c.fs)

	if c.config.BranchProvider != nil {
		c.branchProvider = c.config.BranchProvider
	} else {
		c.branchProvider = git.NewCLIBranchProvider(cfg.GitBin(), cfg.GitTimeout(), logger)
	}

	storage := cfg.StorageDir()
	switch {
	case storage == "" || cfg.HistoryBackend() == appconfig.HistoryBackendNone:
		logger.Debug("workflow history disabled")
		c.historyRepo = filerepo.NewNoopHistoryRepository()

	case cfg.HistoryBackend() == appconfig.HistoryBackendSQLite:
		db, err := sqliterepo.Open(ctx, cfg.SQLiteDriver(), app.ResolvePaths(cfg.Home(), storage).HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		c.db = db
		c.historyRepo = sqliterepo.NewHistoryRepository(db, c.config.Now)

	case cfg.HistoryBackend() == appconfig.HistoryBackendFile:
		c.historyRepo = filerepo.NewFileHistoryRepository(c.fs, storage, logger, c.config.Now)

	default:
		return fmt.Errorf("unknown history backend: %s", cfg.HistoryBackend())
	}

	return nil
}

// initializeDomain initializes domain layer components
func (c *Container) initializeDomain() {
	c.matcher = domainservice.NewBranchMatcherService()
	c.evaluator = domainservice.NewWorkflowEvaluationService()
}

// initializeApplication initializes application layer components
func (c *Container) initializeApplication() {
	logger := c.config.Logger

	c.resolver = service.NewArtifactResolverService(c.files, logger)
	c.branchContext = service.NewBranchContextService(c.files, c.branchProvider, c.matcher, logger)

	c.snapshotUseCase = snapshotusecase.NewBuildSnapshotUseCase(
		c.files,
		c.resolver,
		c.branchContext,
		c.evaluator,
		c.historyRepo,
		logger,
		c.config.Now,
	)
	c.recordStepUseCase = historyusecase.NewRecordStepUseCase(c.branchContext, c.historyRepo, logger, c.config.Now)
	c.showHistoryUseCase = historyusecase.NewShowHistoryUseCase(c.branchContext, c.historyRepo)
}

// initializeAdapters initializes adapter layer components
func (c *Container) initializeAdapters() error {
	p, err := presenter.New(c.config.App.OutputFormat(), c.config.OutputWriter)
	if err != nil {
		return err
	}
	c.presenter = p
	return nil
}

// GetSnapshotUseCase returns the snapshot use case
func (c *Container) GetSnapshotUseCase() *snapshotusecase.BuildSnapshotUseCase {
	return c.snapshotUseCase
}

// GetRecordStepUseCase returns the record step use case
func (c *Container) GetRecordStepUseCase() *historyusecase.RecordStepUseCase {
	return c.recordStepUseCase
}

// GetShowHistoryUseCase returns the show history use case
func (c *Container) GetShowHistoryUseCase() *historyusecase.ShowHistoryUseCase {
	return c.showHistoryUseCase
}

// GetPresenter returns the presenter
func (c *Container) GetPresenter() output.Presenter {
	return c.presenter
}

// GetBranchProvider returns the branch provider
func (c *Container) GetBranchProvider() output.BranchProvider {
	return c.branchProvider
}

// GetHistoryRepository returns the configured history backend
func (c *Container) GetHistoryRepository() repository.HistoryRepository {
	return c.historyRepo
}

// WorkspaceRoots returns the configured workspace roots
func (c *Container) WorkspaceRoots() []string {
	return c.config.App.WorkspaceRoots()
}

// NewWatcher builds a file watcher over roots with the configured timing
func (c *Container) NewWatcher(roots []string) *watcher.DebouncedWatcher {
	return watcher.New(watcher.Options{
		Roots:       roots,
		Debounce:    c.config.App.Debounce(),
		MinInterval: c.config.App.MinInterval(),
		Logger:      c.config.Logger,
	})
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}
