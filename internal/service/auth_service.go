package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"school-portal/internal/event"
	"school-portal/internal/logger"
	"school-portal/internal/model"
	"school-portal/internal/portalapi"
	"school-portal/internal/session"
	"school-portal/internal/tokenstore"
	"school-portal/pkg/apierror"
)

type loginAPI interface {
	Login(ctx context.Context, payload model.LoginRequest) (model.AuthResponse, error)
}

// AuthService submits credentials to the school API and turns an accepted
// login into a portal session.
type AuthService struct {
	api      loginAPI
	tokens   tokenstore.Store
	sessions *session.Registry
	bus      event.Bus

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewAuthService(api loginAPI, tokens tokenstore.Store, sessions *session.Registry, bus event.Bus) *AuthService {
	return &AuthService{
		api:      api,
		tokens:   tokens,
		sessions: sessions,
		bus:      bus,
		inFlight: map[string]struct{}{},
	}
}

var credentialMessages = fieldMessages{
	"Email":    "email is required",
	"Password": "password is required",
	"Role":     "select an access type",
}

// Login posts the credentials and, when the API accepts them for the requested
// role, stores the returned token and starts the session.
//
// Every authorization failure (401 or a role other than the one requested)
// leaves the portal session with no token and logged out.
func (s *AuthService) Login(ctx context.Context, sessionID string, creds model.Credentials) (model.Session, error) {
	if sessionID == "" {
		return model.Session{}, model.ErrNoSession
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if role, ok := model.ParseRole(string(creds.Role)); ok {
		creds.Role = role
	}
	if err := checkStruct(creds, credentialMessages); err != nil {
		return model.Session{}, err
	}

	release, ok := s.acquire(sessionID, creds.Role)
	if !ok {
		return model.Session{}, apierror.Wrap(model.ErrLoginInProgress, "LOGIN_IN_PROGRESS", "a login is already in progress", "", http.StatusConflict)
	}
	defer release()

	resp, err := s.api.Login(ctx, model.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		if portalapi.IsUnauthorized(err) {
			s.reject(ctx, sessionID, creds.Role, "invalid_credentials")
			return model.Session{}, apierror.Wrap(err, "UNAUTHORIZED", "incorrect email or password", apierror.MessageOf(err), http.StatusUnauthorized)
		}
		return model.Session{}, err
	}

	if !creds.Role.Matches(resp.Role) {
		s.reject(ctx, sessionID, creds.Role, "role_mismatch")
		return model.Session{}, apierror.Unauthorized(model.ErrRoleMismatch,
			fmt.Sprintf("you do not have permission to sign in as a %s", creds.Role))
	}

	if token := ExtractToken(resp); token != "" {
		if err := s.tokens.Set(ctx, sessionID, token); err != nil {
			return model.Session{}, fmt.Errorf("persist token: %w", err)
		}
	} else {
		// The session still starts; pages that need the token report it missing.
		slog.Warn("login response carried no token", logger.SessionKey, logger.Fingerprint(sessionID), "role", creds.Role)
	}

	started := s.sessions.Start(sessionID, creds.Role, false)
	s.publish(event.TypeSessionStarted, sessionID, map[string]any{"role": string(creds.Role)})
	return started, nil
}

// Logout clears the token and the session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.tokens.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}

	if s.sessions.End(sessionID) {
		s.publish(event.TypeSessionEnded, sessionID, map[string]any{"reason": "logout"})
	}
	return nil
}

// ExpireToken is called when the API rejects a stored token: the token is
// dropped and the session ends.
func (s *AuthService) ExpireToken(ctx context.Context, sessionID string) {
	if err := s.tokens.Clear(ctx, sessionID); err != nil {
		slog.Error("failed to clear rejected token", logger.SessionKey, logger.Fingerprint(sessionID), "error", err)
	}
	s.sessions.End(sessionID)
	s.publish(event.TypeTokenRejected, sessionID, nil)
}

// ExtractToken returns the first non-empty of token, accessToken and
// data.token.
func ExtractToken(resp model.AuthResponse) string {
	if resp.Token != "" {
		return resp.Token
	}
	if resp.AccessToken != "" {
		return resp.AccessToken
	}
	if resp.Data != nil {
		return resp.Data.Token
	}
	return ""
}

func (s *AuthService) reject(ctx context.Context, sessionID string, role model.Role, reason string) {
	if err := s.tokens.Clear(ctx, sessionID); err != nil && !errors.Is(err, model.ErrTokenNotFound) {
		slog.Error("failed to clear token after rejected login", logger.SessionKey, logger.Fingerprint(sessionID), "error", err)
	}
	s.sessions.End(sessionID)
	s.publish(event.TypeLoginRejected, sessionID, map[string]any{"role": string(role), "reason": reason})
}

func (s *AuthService) acquire(sessionID string, role model.Role) (func(), bool) {
	key := sessionID + ":" + string(role)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[key]; busy {
		return nil, false
	}
	s.inFlight[key] = struct{}{}

	return func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}, true
}

func (s *AuthService) publish(t event.Type, sessionID string, payload map[string]any) {
	if s.bus != nil {
		s.bus.Publish(event.New(t, sessionID, payload))
	}
}
