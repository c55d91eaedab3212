package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"school-portal/internal/event"
	"school-portal/internal/logger"
	"school-portal/internal/model"
	"school-portal/internal/token"
	"school-portal/internal/tokenstore"
)

// Resolver answers the gate question "is this portal session logged in, and
// as whom?".
//
// With restore enabled, a session missing from the registry is rebuilt from a
// stored token that decodes, has not expired and names a known role. The
// token is only trusted for routing; the API still authorizes every call.
type Resolver struct {
	registry *Registry
	tokens   tokenstore.Store
	bus      event.Bus
	restore  bool
	now      func() time.Time
}

func NewResolver(registry *Registry, tokens tokenstore.Store, bus event.Bus, restore bool) *Resolver {
	return &Resolver{
		registry: registry,
		tokens:   tokens,
		bus:      bus,
		restore:  restore,
		now:      time.Now,
	}
}

func (r *Resolver) Registry() *Registry {
	return r.registry
}

func (r *Resolver) Resolve(ctx context.Context, id string) (model.Session, bool) {
	if id == "" {
		return model.Session{}, false
	}

	if s, ok := r.registry.Get(id); ok {
		return s, true
	}

	if !r.restore {
		return model.Session{ID: id}, false
	}

	raw, err := r.tokens.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrTokenNotFound) {
			slog.Warn("session restore: token lookup failed", logger.SessionKey, logger.Fingerprint(id), "error", err)
		}
		return model.Session{ID: id}, false
	}

	decoded, ok := token.Decode(raw)
	if !ok || decoded.Expired(r.now()) {
		return model.Session{ID: id}, false
	}

	role, ok := model.ParseRole(decoded.Role)
	if !ok {
		return model.Session{ID: id}, false
	}

	s := r.registry.Start(id, role, true)
	if r.bus != nil {
		r.bus.Publish(event.New(event.TypeSessionRestored, id, map[string]any{"role": string(role)}))
	}
	return s, true
}
