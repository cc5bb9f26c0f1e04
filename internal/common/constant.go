// Package common contains shared constants and sentinel errors used across
// the companion client and the backend.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// CodeLength is the number of digits in a magic code.
const CodeLength = 6
