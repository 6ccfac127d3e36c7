package server

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/notifications"
)

// publishEvent sends an event to every feed subscriber. With Redis the event
// goes through pub/sub so every instance's hub sees it, including this one.
// Without Redis it goes straight to the local hub.
func (s *Server) publishEvent(ctx context.Context, eventType string, payload map[string]any) {
	message, err := notifications.Event{Type: eventType, Payload: payload}.Encode()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode event", slog.String("error", err.Error()))
		return
	}

	if !s.notifier.Enabled() {
		s.hub.Broadcast(message)
		return
	}
	if err := s.notifier.Publish(ctx, message); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("type", eventType), slog.String("error", err.Error()))
		s.hub.Broadcast(message)
	}
}
