// Package rest exposes the file and folder operations over HTTP.
package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/archdrive/internal/logging"
	"github.com/dmitrijs2005/archdrive/internal/server/models"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	// multipartMemory is how much of a multipart body is kept in memory
	// before the rest spills to temporary files.
	multipartMemory = 32 << 20
)

type FileService interface {
	UploadFile(ctx context.Context, content io.Reader, originalName, contentType, folder string) (models.StoredFile, error)
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, objectstore.ObjectInfo, error)
	ListFiles(ctx context.Context, folder string) ([]models.StoredFile, error)
	DeleteFile(ctx context.Context, key string) error
}

type FolderService interface {
	ListFolders(ctx context.Context, parent string) ([]models.Folder, error)
	CreateFolder(ctx context.Context, name, parent string) (models.Folder, error)
	DeleteFolder(ctx context.Context, name string) error
}

type Options struct {
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Recorder receives per-request and per-operation outcomes.
	Recorder Recorder
}

type HTTPServer struct {
	address         string
	files           FileService
	folders         FolderService
	logger          logging.Logger
	recorder        Recorder
	shutdownTimeout time.Duration
	router          chi.Router
}

func NewHTTPServer(address string, l logging.Logger, files FileService, folders FolderService, opts Options) *HTTPServer {
	s := &HTTPServer{
		address:         address,
		files:           files,
		folders:         folders,
		logger:          l.With("module", "http_server"),
		recorder:        opts.Recorder,
		shutdownTimeout: opts.ShutdownTimeout,
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	s.router = s.routes(opts)
	return s
}

func (s *HTTPServer) routes(opts Options) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/files", func(r chi.Router) {
		r.Get("/", s.listFiles)
		r.Delete("/", s.deleteFile)
		r.Post("/upload", s.uploadFile)
		r.Get("/download", s.downloadFile)
		r.Get("/preview", s.previewFile)

		r.Get("/folders", s.listFolders)
		r.Post("/folders", s.createFolder)
		r.Delete("/folders/*", s.deleteFolder)
	})

	return r
}

// Handler returns the configured router.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
