package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pingwatch/pingwatch"
)

// WSSource receives configuration documents pushed over a websocket.
//
// Each text message on the connection is one complete configuration
// document; the remote side is expected to send the current document on
// connect and a new one whenever it changes, which makes this the closest
// transport to a remote key-value watch. Malformed documents are logged
// and skipped.
//
// The connection is not re-dialled: losing it is an unrecoverable source
// failure delivered as a terminal event. Callers that want reconnection
// own that policy and can wrap the source.
type WSSource struct {
	// URL is the websocket endpoint (ws:// or wss://).
	URL string

	// Header is sent with the dial request, e.g. for authorization.
	Header http.Header

	// Dialer is the websocket dialer. Defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// Logger reports skipped malformed documents.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// NewWS creates a [WSSource] for the given websocket URL.
func NewWS(url string) *WSSource {
	return &WSSource{URL: url}
}

// Watch implements pingwatch.Source.
//
// The dial happens synchronously: an unreachable endpoint fails Watch
// rather than producing an immediately dead stream.
func (s *WSSource) Watch(ctx context.Context) (<-chan pingwatch.Event, error) {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, _, err := dialer.DialContext(ctx, s.URL, s.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial config websocket: %w", err)
	}

	events := make(chan pingwatch.Event, 1)

	// closing the connection on context cancellation unblocks ReadMessage
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(events)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case events <- pingwatch.Event{Err: fmt.Errorf("config websocket closed: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			snap, err := parseSnapshot(data)
			if err != nil {
				logger.Warn("pushed config invalid, keeping current snapshot",
					"url", s.URL,
					"error", err.Error(),
				)
				continue
			}

			select {
			case events <- pingwatch.Event{Snapshot: snap}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
