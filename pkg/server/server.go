package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/zdunecki/qrwizard/pkg/session"
)

type Options struct {
	Port        int
	OpenBrowser bool
	Logger      *slog.Logger
}

// Server exposes one wizard session over a JSON API for a browser frontend.
type Server struct {
	sess *session.Session
	log  *slog.Logger
}

func New(sess *session.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sess: sess, log: logger}
}

// Router returns the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withLogging)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/types", s.handleListTypes).Methods(http.MethodGet)

	wz := api.PathPrefix("/wizard").Subrouter()
	wz.HandleFunc("", s.handleGetState).Methods(http.MethodGet)
	wz.HandleFunc("", s.handleClearPersisted).Methods(http.MethodDelete)
	wz.HandleFunc("/type", s.handleSetType).Methods(http.MethodPut)
	wz.HandleFunc("/data", s.handleSetData).Methods(http.MethodPut)
	wz.HandleFunc("/size", s.handleSetSize).Methods(http.MethodPut)
	wz.HandleFunc("/error-correction", s.handleSetErrorCorrection).Methods(http.MethodPut)
	wz.HandleFunc("/design", s.handleSetDesign).Methods(http.MethodPut)
	wz.HandleFunc("/design", s.handleUpdateDesign).Methods(http.MethodPatch)
	wz.HandleFunc("/sticker", s.handleSetSticker).Methods(http.MethodPut)
	wz.HandleFunc("/metadata", s.handleSetMetadata).Methods(http.MethodPut)
	wz.HandleFunc("/next", s.handleNext).Methods(http.MethodPost)
	wz.HandleFunc("/back", s.handleBack).Methods(http.MethodPost)
	wz.HandleFunc("/steps/{step}", s.handleGoTo).Methods(http.MethodPost)
	wz.HandleFunc("/popstate", s.handlePopState).Methods(http.MethodPost)
	wz.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	wz.HandleFunc("/clean", s.handleMarkClean).Methods(http.MethodPost)

	api.HandleFunc("/preview", s.handlePreview).Methods(http.MethodGet)
	api.HandleFunc("/preview.svg", s.handlePreviewSVG).Methods(http.MethodGet)
	api.HandleFunc("/preview/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/download", s.handleDownload).Methods(http.MethodGet)

	api.HandleFunc("/transform/to-backend", s.handleToBackend).Methods(http.MethodPost)
	api.HandleFunc("/transform/from-backend", s.handleFromBackend).Methods(http.MethodPost)
	return r
}

// Start serves the API until ctx is canceled.
func Start(ctx context.Context, sess *session.Session, opts Options) error {
	s := New(sess, opts.Logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	url := fmt.Sprintf("http://localhost:%d", opts.Port)
	s.log.Info("serving wizard API", "url", url)
	if opts.OpenBrowser {
		s.openBrowser(url)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}
	if err != nil {
		s.log.Warn("failed to open browser", "error", err)
	}
}
