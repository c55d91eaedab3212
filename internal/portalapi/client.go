// Package portalapi talks to the school REST API that owns accounts, courses
// and grades. The portal never stores any of that data itself.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"school-portal/internal/model"
	"school-portal/pkg/apierror"
)

const maxBodyBytes = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login posts the credentials to /api/Auth/login. Non-2xx answers come back as
// *apierror.APIError; a 401 is classified under model.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, payload model.LoginRequest) (model.AuthResponse, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/Auth/login", payload, "")
	if err != nil {
		return model.AuthResponse{}, err
	}

	if !isSuccess(status) {
		return model.AuthResponse{}, statusError(status, loginErrorMessage(status, body))
	}

	var parsed model.AuthResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return model.AuthResponse{}, apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", "empty login response", "", http.StatusBadGateway)
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.AuthResponse{}, apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", "invalid login response", err.Error(), http.StatusBadGateway)
	}

	return parsed, nil
}

// CreateAccount registers a student or teacher via /api/{role}/create.
func (c *Client) CreateAccount(ctx context.Context, role model.Role, payload model.RegisterRequest) error {
	return c.post(ctx, "/api/"+string(role)+"/create", payload)
}

func (c *Client) CreateSubject(ctx context.Context, payload model.CreateSubjectRequest) error {
	return c.post(ctx, "/api/subject/create", payload)
}

func (c *Client) CreateGrade(ctx context.Context, payload model.CreateGradeRequest) error {
	return c.post(ctx, "/api/grade/create", payload)
}

func (c *Client) InputInfo(ctx context.Context) (model.InputInfo, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/teacher/get-input-info", nil, "")
	if err != nil {
		return model.InputInfo{}, err
	}
	if !isSuccess(status) {
		return model.InputInfo{}, statusError(status, fmt.Sprintf("failed to load form data: %d", status))
	}

	var info model.InputInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return model.InputInfo{}, apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", "invalid form data response", err.Error(), http.StatusBadGateway)
	}
	return info, nil
}

// StudentInfo fetches the grade summary of the token's owner.
func (c *Client) StudentInfo(ctx context.Context, token string) (model.StudentInfo, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/student/get-info-by-id", nil, token)
	if err != nil {
		return model.StudentInfo{}, err
	}
	if status == http.StatusUnauthorized {
		return model.StudentInfo{}, apierror.Unauthorized(model.ErrUnauthorized, "token expired or invalid, please log in again")
	}
	if !isSuccess(status) {
		return model.StudentInfo{}, statusError(status, strings.TrimSpace(fmt.Sprintf("failed to fetch data: %d %s", status, http.StatusText(status))))
	}

	var info model.StudentInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return model.StudentInfo{}, apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", "invalid student info response", err.Error(), http.StatusBadGateway)
	}
	return info, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	status, body, err := c.do(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusError(status, formErrorMessage(status, body))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string, payload any, bearer string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apierror.Wrap(model.ErrUpstream, "UPSTREAM_UNAVAILABLE", "could not reach the school API", err.Error(), http.StatusBadGateway)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", "could not read the school API response", err.Error(), http.StatusBadGateway)
	}

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func statusError(status int, message string) error {
	if status == http.StatusUnauthorized {
		return apierror.Unauthorized(model.ErrUnauthorized, message)
	}
	return apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", message, "", status)
}

// loginErrorMessage picks message, error or title from a JSON body, then the
// status text, then a templated message.
func loginErrorMessage(status int, body []byte) string {
	if fields, ok := decodeObject(body); ok {
		for _, key := range []string{"message", "error", "title"} {
			if msg := stringField(fields, key); msg != "" {
				return msg
			}
		}
	}

	if text := http.StatusText(status); text != "" {
		return text
	}

	return fmt.Sprintf("request failed with status %d", status)
}

// formErrorMessage picks message or error from a JSON body, then the raw JSON,
// then the raw text body, then a templated message.
func formErrorMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))

	var anyJSON any
	if trimmed != "" && json.Unmarshal(body, &anyJSON) == nil {
		if fields, ok := anyJSON.(map[string]any); ok {
			for _, key := range []string{"message", "error"} {
				if msg := stringField(fields, key); msg != "" {
					return msg
				}
			}
		}
		if anyJSON != nil {
			return trimmed
		}
	}

	if trimmed != "" {
		return trimmed
	}

	return fmt.Sprintf("request failed with status %d", status)
}

func decodeObject(body []byte) (map[string]any, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, false
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, fields != nil
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// IsUnauthorized reports whether err is an authorization failure, either a
// 401 from the API or a client-side role mismatch.
func IsUnauthorized(err error) bool {
	return errors.Is(err, model.ErrUnauthorized) || errors.Is(err, model.ErrRoleMismatch)
}
