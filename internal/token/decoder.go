// Package token recovers identity claims from the bearer token issued by the
// school API.
//
// Decoding here is a format decode only: the signature is never verified, the
// signing key is not known to the portal. The claims are trusted solely because
// the token came straight from the login response of the same flow, so they may
// drive what is displayed but never an authorization decision. Privileged
// checks stay with the API.
package token

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"school-portal/internal/model"
)

const defaultDisplayName = "Student"

// Claims mirrors the payload the school API puts in its tokens.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	UID       string `json:"uid,omitempty"`
	Role      string `json:"role,omitempty"`
	StudentID string `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

// UnmarshalJSON accepts ids written as numbers and a role written as a list,
// both of which the API has issued.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var raw struct {
		Email     string           `json:"email"`
		Name      string           `json:"name"`
		UID       flexString       `json:"uid"`
		Role      flexString       `json:"role"`
		StudentID flexString       `json:"studentId"`
		Subject   flexString       `json:"sub"`
		Issuer    string           `json:"iss"`
		ExpiresAt *jwt.NumericDate `json:"exp"`
		NotBefore *jwt.NumericDate `json:"nbf"`
		IssuedAt  *jwt.NumericDate `json:"iat"`
		ID        flexString       `json:"jti"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Claims{
		Email:     raw.Email,
		Name:      raw.Name,
		UID:       string(raw.UID),
		Role:      string(raw.Role),
		StudentID: string(raw.StudentID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(raw.Subject),
			Issuer:    raw.Issuer,
			ExpiresAt: raw.ExpiresAt,
			NotBefore: raw.NotBefore,
			IssuedAt:  raw.IssuedAt,
			ID:        string(raw.ID),
		},
	}
	return nil
}

// flexString reads a JSON string, number or bool as text. For an array the
// first element is used; null and objects read as empty.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var v any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&v); err != nil {
		return err
	}

	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			*f = ""
			return nil
		}
		v = list[0]
	}

	switch value := v.(type) {
	case string:
		*f = flexString(value)
	case json.Number:
		*f = flexString(value.String())
	case bool:
		*f = flexString(strconv.FormatBool(value))
	default:
		*f = ""
	}
	return nil
}

type DecodedToken struct {
	Claims
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode parses the payload segment of a compact three-part token. The header
// and signature segments are not inspected. Any malformed input yields
// (nil, false).
func Decode(raw string) (*DecodedToken, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, false
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}

	return &DecodedToken{Claims: claims}, true
}

// ID resolves the effective student/user id: studentId, then uid, then sub.
func (d *DecodedToken) ID() string {
	if d == nil {
		return ""
	}

	for _, candidate := range []string{d.StudentID, d.UID, d.Subject} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

// DisplayName falls back to the email local part, then to a placeholder.
func (d *DecodedToken) DisplayName() string {
	if d == nil {
		return defaultDisplayName
	}

	if name := strings.TrimSpace(d.Name); name != "" {
		return name
	}

	if local, _, _ := strings.Cut(strings.TrimSpace(d.Email), "@"); local != "" {
		return local
	}

	return defaultDisplayName
}

// Expiry returns nil when the token carries no exp claim.
func (d *DecodedToken) Expiry() *time.Time {
	if d == nil || d.Claims.ExpiresAt == nil {
		return nil
	}

	t := d.Claims.ExpiresAt.Time
	return &t
}

func (d *DecodedToken) Expired(now time.Time) bool {
	exp := d.Expiry()
	return exp != nil && !now.Before(*exp)
}

func (d *DecodedToken) Identity() model.Identity {
	identity := model.Identity{
		ID:        d.ID(),
		Name:      d.DisplayName(),
		ExpiresAt: d.Expiry(),
	}
	if d != nil {
		identity.Email = strings.TrimSpace(d.Email)
		identity.Role = d.Role
	}
	return identity
}
