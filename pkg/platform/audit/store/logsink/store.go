// Package logsink writes audit events to a structured logger. It is the
// default sink when no broker is configured.
package logsink

import (
	"context"
	"log/slog"

	audit "superadmin/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger.With("component", "audit")}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"category", event.Category,
		"action", event.Action,
		"actor_id", event.ActorID,
		"subject", event.Subject,
		"decision", event.Decision,
		"reason", event.Reason,
		"ip", event.IP,
		"request_id", event.RequestID,
	)
	return nil
}
