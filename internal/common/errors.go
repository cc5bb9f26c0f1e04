// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Magic-code errors.
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidCode  = errors.New("invalid code")
	ErrRateLimited  = errors.New("too many requests")

	// Request validation.
	ErrInvalidArgument = errors.New("invalid argument")
)
