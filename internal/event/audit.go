package event

import (
	"context"
	"log/slog"

	"school-portal/internal/logger"
)

// RunAuditLog writes every published event to log until ctx is done. Session
// ids are written as fingerprints.
func RunAuditLog(ctx context.Context, bus Bus, log *slog.Logger) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}

			attrs := []any{"event_id", e.ID, "type", string(e.Type)}
			if e.SessionID != "" {
				attrs = append(attrs, logger.SessionKey, logger.Fingerprint(e.SessionID))
			}
			for key, value := range e.Payload {
				attrs = append(attrs, key, value)
			}

			switch e.Type {
			case TypeLoginRejected, TypeTokenRejected:
				log.Warn("audit", attrs...)
			default:
				log.Info("audit", attrs...)
			}
		}
	}
}
