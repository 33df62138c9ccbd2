// Package api serves stored results over a read-only HTTP interface.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/logger"
	"github.com/abhisek/lexiscreen/internal/store"
)

// Container holds the dependencies of the router.
type Container struct {
	Results store.ResultRepo
	Tests   *battery.Registry
	Log     *logger.Logger
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	if c.Log == nil {
		c.Log = logger.Nop()
	}
	r := mux.NewRouter()
	r.Use(requestLogger(c.Log))

	results := &ResultHandler{repo: c.Results, log: c.Log}
	tests := &TestHandler{registry: c.Tests}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/tests", tests.List).Methods(http.MethodGet)
	v1.HandleFunc("/tests/{id}", tests.Get).Methods(http.MethodGet)
	v1.HandleFunc("/results", results.List).Methods(http.MethodGet)
	v1.HandleFunc("/results/latest", results.Latest).Methods(http.MethodGet)

	return r
}

// Serve runs the HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
