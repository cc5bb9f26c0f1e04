// Package client talks to the companion backend over gRPC.
//
// GRPCClient injects the access token into every call, refreshes it once
// when the server reports it expired, and maps gRPC status codes to the
// sentinel errors of this package (ErrUnavailable, ErrUnauthorized,
// ErrRejected, ErrRateLimited) so callers can match them with errors.Is.
//
// InitDatabase opens the local SQLite store and applies the embedded goose
// migrations.
package client
