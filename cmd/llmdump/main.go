// Command llmdump crawls a documentation site, groups its pages with a
// language model and exports them as markdown sized for an LLM context.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/alexpineda/llmdump/internal/adapters/driven/ai"
	"github.com/alexpineda/llmdump/internal/adapters/driven/config/env"
	"github.com/alexpineda/llmdump/internal/adapters/driven/config/file"
	"github.com/alexpineda/llmdump/internal/adapters/driven/crawl"
	"github.com/alexpineda/llmdump/internal/adapters/driven/oracle"
	filestore "github.com/alexpineda/llmdump/internal/adapters/driven/storage/file"
	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/sqlite"
	"github.com/alexpineda/llmdump/internal/adapters/driving/cli"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/core/services"
	"github.com/alexpineda/llmdump/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	// Verbose logging has to be on before wiring to report adapter
	// problems; cobra parses the flag later.
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" || arg == "-v" {
			logger.SetVerbose(true)
		}
	}

	app, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer app.close()

	cli.SetVersion(version)
	cli.SetServices(app.services)
	return cli.Run(ctx)
}

// app holds the wired services and the resources they own.
type app struct {
	services cli.Services
	store    driven.SessionStore
	oracles  *ai.Oracles
}

func (a *app) close() {
	a.oracles.Close()
	if err := a.store.Close(); err != nil {
		logger.Warn("closing session store: %v", err)
	}
}

func wire(ctx context.Context) (*app, error) {
	configDir, err := file.DefaultDir()
	if err != nil {
		return nil, err
	}

	fileConfig, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config := env.NewOverlay(fileConfig, services.SettingKeys())

	settingsService := services.NewSettingsService(config, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = configDir
	}
	store, err := newSessionStore(settings.Storage.Backend, dataDir)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), oracle.DefaultPrompts())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("prompt store: %w", err)
	}

	// Missing providers are not fatal: settings and session commands work
	// without them, and curation reports the unavailable collaborator.
	llm, err := ai.CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		logger.L().Warn("LLM provider unavailable", zap.String("provider", settings.LLM.Provider.String()), zap.Error(err))
		llm = nil
	}
	oracles := ai.NewOracles(llm, prompts)

	crawler, err := crawl.New(settings.Crawl)
	if err != nil {
		logger.L().Warn("crawl provider unavailable", zap.String("provider", string(settings.Crawl.Provider)), zap.Error(err))
		crawler = nil
	}

	return &app{
		services: cli.Services{
			Curation: services.NewCurationService(
				crawler,
				oracles.Classifier,
				oracles.Identifier,
				store,
				settings.Export.MaxTokensPerFile,
			),
			Export:   services.NewExportService(afero.NewOsFs(), oracles.Cleaner),
			Session:  services.NewSessionService(store),
			Settings: settingsService,
			Prompts:  prompts,
		},
		store:   store,
		oracles: oracles,
	}, nil
}

func newSessionStore(backend domain.StorageBackend, dataDir string) (driven.SessionStore, error) {
	switch backend {
	case domain.StorageBackendSQLite:
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return db.SessionStore(), nil
	case domain.StorageBackendFile, "":
		store, err := filestore.NewSessionStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("storage backend %q: %w", backend, domain.ErrUnsupportedType)
	}
}
