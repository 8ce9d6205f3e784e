package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"promptd/internal/domain"
	"promptd/internal/infra/telemetry"
)

// helloPayload is the snapshot sent to a subscriber when it connects.
type helloPayload struct {
	Prompts   []string `json:"prompts"`
	Resources int      `json:"resources"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	logger := telemetry.LoggerWithRequest(ctx, s.logger).With(zap.String("client_id", uuid.NewString()))

	// Subscribe before the snapshot so no reload between the two is lost.
	var events <-chan domain.Event
	if s.events != nil {
		events = s.events.Subscribe(ctx)
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", s.retry); err != nil {
		return
	}
	status := s.cp.Status(ctx)
	if status.PromptNames == nil {
		status.PromptNames = []string{}
	}
	hello := domain.Event{
		Type: domain.EventHello,
		Data: helloPayload{Prompts: status.PromptNames, Resources: status.Resources},
	}
	if err := writeEvent(w, hello); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		logger.Debug("event stream flush unsupported", zap.Error(err))
	}
	logger.Debug("event subscriber connected")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("event subscriber disconnected")
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, evt); err != nil {
				logger.Debug("event write failed", zap.Error(err))
				return
			}
			_ = rc.Flush()
		}
	}
}

func writeEvent(w io.Writer, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
	return err
}
