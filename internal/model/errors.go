package model

import "errors"

var (
	// Authentication related errors
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRoleMismatch    = errors.New("role does not match the selected access type")
	ErrLoginInProgress = errors.New("login already in progress")

	// Session / token related errors
	ErrNoSession     = errors.New("no active session")
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrNoIdentity    = errors.New("identity not found in token")

	// Upstream API errors
	ErrUpstream = errors.New("upstream request failed")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
