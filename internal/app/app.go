package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/favicon"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metadata"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/task"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	core     *Core
	server   *httpserver.Server
	tasks    *task.Registry
	importer *scheduler.HomepageImporter
}

// New wires the server and its background jobs. Storage is opened here so a
// bad backend fails before anything listens.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	core, err := OpenCore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := scheduler.NewWarmup(core.Directory, log).Run(ctx); err != nil {
		core.Close()
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}

	favicons := favicon.NewResolver(
		favicon.Config{Service: cfg.FaviconService, Size: cfg.FaviconSize},
		cfg.FaviconTimeout,
		log,
		favicon.WithParallelism(cfg.FaviconParallel),
		favicon.WithHTTPClient(utils.NewFetchClient(cfg.FaviconTimeout, cfg.FetchPrivate)),
	)

	var source metadata.Source
	if cfg.MetadataURL != "" {
		log.Info("using remote metadata service", logger.String("url", cfg.MetadataURL))
		source = metadata.NewClient(cfg.MetadataURL, cfg.MetadataTimeout)
	} else {
		log.Info("using built-in metadata scraper")
		source = metadata.NewScraper(cfg.MetadataTimeout).
			WithClient(utils.NewFetchClient(cfg.MetadataTimeout, cfg.FetchPrivate))
	}

	tasks := task.NewRegistry()

	var (
		importer      *scheduler.HomepageImporter
		importTrigger chan struct{}
	)
	if cfg.ImportEnabled() {
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewHomepageImporter(
			importFiles(cfg),
			core.Directory,
			log,
			cfg.ImportInterval,
			cfg.WatchFiles,
			importTrigger,
		)
	} else {
		log.Info("no homepage file configured, import disabled")
	}

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		Directory:     core.Directory,
		Storage:       core.Backend,
		Favicons:      favicons,
		Metadata:      source,
		Autofill:      metadata.NewAutofiller(source, log),
		Tasks:         tasks,
		ImportTrigger: importTrigger,
		ScrapeBurst:   cfg.ScrapeBurst,
		ScrapePerMin:  cfg.ScrapePerMin,
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		core:     core,
		server:   httpserver.New(cfg, log, d),
		tasks:    tasks,
		importer: importer,
	}, nil
}

func importFiles(cfg *config.Config) []scheduler.ImportFile {
	var files []scheduler.ImportFile
	if cfg.BookmarkFile != "" {
		files = append(files, scheduler.ImportFile{Kind: scheduler.KindBookmarks, Path: cfg.BookmarkFile})
	}
	if cfg.ServicesFile != "" {
		files = append(files, scheduler.ImportFile{Kind: scheduler.KindServices, Path: cfg.ServicesFile})
	}
	return files
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shelf %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Shelf %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			a.core.Close()
			return fmt.Errorf("failed to start homepage importer: %w", err)
		}
		a.logger.Info("homepage importer started",
			logger.Duration("interval", a.cfg.ImportInterval),
			logger.Bool("watch", a.cfg.WatchFiles))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.importer != nil {
		a.importer.Stop()
	}
	// in-flight autofills answer 409 instead of holding the shutdown
	a.tasks.CancelAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.core.Close()
	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Shelf stopped cleanly")
	return nil
}
