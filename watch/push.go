package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pingwatch/pingwatch"
)

// pushShutdownTimeout bounds the graceful shutdown of the push listener.
const pushShutdownTimeout = 5 * time.Second

// PushSource runs a local HTTP listener that accepts configuration
// documents pushed to it.
//
// Routes:
//   - POST /config: the request body is a complete configuration document;
//     a valid document is delivered as the next snapshot (202), a malformed
//     one is rejected (400) and the current task set keeps running.
//   - GET /healthz: liveness probe, always 200.
//
// Unlike the polling sources there is no initial snapshot: nothing runs
// until the first document is pushed. A listener failure is delivered as a
// terminal event.
type PushSource struct {
	// Addr is the TCP address to listen on, e.g. ":8081".
	Addr string

	// Logger reports rejected documents and server errors.
	// Defaults to slog.Default().
	Logger *slog.Logger

	boundAddr net.Addr
}

// NewPush creates a [PushSource] listening on addr.
func NewPush(addr string) *PushSource {
	return &PushSource{Addr: addr}
}

// BoundAddr returns the address the listener is actually bound to.
// Only valid after Watch has returned; useful with ":0" in tests.
func (s *PushSource) BoundAddr() net.Addr {
	return s.boundAddr
}

// Watch implements pingwatch.Source.
//
// The listener is created synchronously so a port conflict fails Watch
// immediately.
func (s *PushSource) Watch(ctx context.Context) (<-chan pingwatch.Event, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// create the listener first to verify the address synchronously
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind to %s: %w", s.Addr, err)
	}
	s.boundAddr = ln.Addr()

	events := make(chan pingwatch.Event, 1)

	router := mux.NewRouter()
	router.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		snap, err := parseSnapshot(data)
		if err != nil {
			logger.Warn("pushed config rejected",
				"remote", r.RemoteAddr,
				"error", err.Error(),
			)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		select {
		case events <- pingwatch.Event{Snapshot: snap}:
			w.WriteHeader(http.StatusAccepted)
		case <-ctx.Done():
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
		case <-r.Context().Done():
		}
	}).Methods(http.MethodPost)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	httpServer := &http.Server{
		Handler: router,
		// derive all request contexts from the watch context so in-flight
		// pushes are cancelled on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	go func() {
		defer close(events)

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), pushShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("push listener shutdown error", "error", err)
			}
		case err, ok := <-serveErr:
			if ok && err != nil {
				events <- pingwatch.Event{Err: fmt.Errorf("push listener failed: %w", err)}
			}
		}
	}()

	return events, nil
}
