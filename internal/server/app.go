// Package server assembles the gateway: it builds the object store client
// once, wires the folder and file services on top of it, and runs the REST
// endpoint until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/archdrive/internal/logging"
	"github.com/dmitrijs2005/archdrive/internal/server/config"
	"github.com/dmitrijs2005/archdrive/internal/server/files"
	"github.com/dmitrijs2005/archdrive/internal/server/folders"
	"github.com/dmitrijs2005/archdrive/internal/server/metrics"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
	"github.com/dmitrijs2005/archdrive/internal/server/rest"
	"github.com/dmitrijs2005/archdrive/internal/server/retry"
	"github.com/dmitrijs2005/archdrive/internal/server/urls"
)

// storeTimeout bounds a single put attempt and the wait for response headers
// of other store calls. Uploads of hundreds of megabytes over slow links need
// minutes.
const storeTimeout = 10 * time.Minute

type App struct {
	config        *config.Config
	logger        logging.Logger
	metrics       *metrics.Metrics
	fileService   *files.Service
	folderService *folders.Service
}

// newStore is swapped in tests.
var newStore = func(ctx context.Context, c *config.Config, l logging.Logger) (objectstore.Store, error) {
	switch c.StorageBackend {
	case config.BackendMemory:
		l.Warn(ctx, "using in-memory object store, data is lost on exit")
		return objectstore.NewMemoryStore(), nil
	default:
		return objectstore.NewS3Store(ctx, objectstore.S3Config{
			Endpoint:  c.Endpoint(),
			Region:    c.R2Region,
			Bucket:    c.R2Bucket,
			AccessKey: c.R2AccessKey,
			SecretKey: c.R2SecretKey,
			Timeout:   storeTimeout,
		}, l)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := newStore(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	executor := retry.NewExecutor(store, retry.Policy{
		MaxAttempts: c.UploadMaxAttempts,
		BaseDelay:   c.UploadBaseDelay,
		MaxDelay:    c.UploadMaxDelay,
	}, retry.WithLogger(logger), retry.WithObserver(m.ObserveAttempt))

	resolver := urls.NewResolver(c.R2PublicURL, c.R2AccountID, c.R2Bucket)

	return &App{
		config:        c,
		logger:        logger,
		metrics:       m,
		fileService:   files.NewService(store, executor, resolver, c.MaxUploadBytes, logger),
		folderService: folders.NewService(store, c.FolderCountConcurrency, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServer() *rest.HTTPServer {
	return rest.NewHTTPServer(app.config.HTTPAddr, app.logger, app.fileService, app.folderService, rest.Options{
		AllowedOrigins:  app.config.AllowedOrigins,
		ShutdownTimeout: app.config.ShutdownTimeout,
		Metrics:         app.metrics.Handler(),
		Recorder:        app.metrics,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer().Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"backend", app.config.StorageBackend,
		"bucket", app.config.R2Bucket,
		"upload_max_attempts", app.config.UploadMaxAttempts,
		"upload_base_delay", app.config.UploadBaseDelay,
	)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
}
