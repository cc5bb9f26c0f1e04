// Package cli provides the interactive Clipboard History companion.
//
// It wires configuration, the local session store, the gRPC client and a
// REPL that follows the page: a sign-in form with emailed codes, a blank
// wait while the subscription is checked (users without one are sent to
// checkout), a retry prompt when the check fails, and the dashboard.
//
// A background watcher pings the server, logs online/offline switches and
// retries a session restore that was postponed while the server was
// unreachable.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
