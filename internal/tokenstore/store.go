// Package tokenstore persists the bearer token of each portal session.
//
// A portal session (one browser, identified by its session cookie) owns exactly
// one value under the fixed key "token". Nothing here enforces expiry; stale
// tokens are cleared by callers when the API rejects them.
package tokenstore

import (
	"context"
	"strings"
	"sync"

	"school-portal/internal/model"
)

const Key = "token"

type Store interface {
	Set(ctx context.Context, scope string, token string) error
	Get(ctx context.Context, scope string) (string, error)
	Clear(ctx context.Context, scope string) error
}

// Memory is the default store. Values live as long as the process.
type Memory struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemory() *Memory {
	return &Memory{tokens: map[string]string{}}
}

func (m *Memory) Set(_ context.Context, scope string, token string) error {
	if strings.TrimSpace(scope) == "" {
		return model.ErrNoSession
	}

	m.mu.Lock()
	m.tokens[scopedKey(scope)] = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, scope string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[scopedKey(scope)]
	if !ok || token == "" {
		return "", model.ErrTokenNotFound
	}
	return token, nil
}

func (m *Memory) Clear(_ context.Context, scope string) error {
	m.mu.Lock()
	delete(m.tokens, scopedKey(scope))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

func scopedKey(scope string) string {
	return "portal:" + scope + ":" + Key
}
