package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/worker-profile-wizard/internal/logging"
	"github.com/jonathan/worker-profile-wizard/internal/types"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// handleStreamSession pushes the session view whenever it changes, so a
// client can follow the loading state of Next and Save without polling. The
// first event carries the current view.
func (s *Server) handleStreamSession(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.sessionParams(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	view, err := s.wizard.Get(ctx, owner, id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent("session", view); err != nil {
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	last := view
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		view, err := s.wizard.Get(ctx, owner, id)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Debug("session stream ended",
					zap.String(logging.FieldSessionID, id.String()),
					zap.Error(err),
				)
				sse.WriteError(err.Error())
			}
			return
		}
		if !changed(last, view) {
			continue
		}
		if err := sse.WriteEvent("session", view); err != nil {
			return
		}
		last = view
	}
}

func changed(a, b types.SessionView) bool {
	return a.IsLoading != b.IsLoading || !a.UpdatedAt.Equal(b.UpdatedAt)
}
