// Package errs centralizes the typed error kinds from spec.md §7 that are
// shared across multiple packages (transport backends, the directory
// service, and the Cage facade), so that callers can xerrors.Is against one
// canonical sentinel regardless of which package actually raised it.
package errs

import "golang.org/x/xerrors"

var (
	// TransportError marks connection loss, an unreachable signaling
	// server, or a wire-framing error.
	TransportError = xerrors.New("transport error")

	// ContextError marks an operation on an invalid or mismatched
	// Context, including sub-context creation with VAddrs outside the
	// parent context.
	ContextError = xerrors.New("context error")

	// SizeMismatch marks a receive buffer shorter than the delivered
	// message.
	SizeMismatch = xerrors.New("receive buffer size mismatch")

	// ProtocolError marks a collective (e.g. announce) that observed
	// corrupt or contradictory data, such as two peers claiming the same
	// vertex.
	ProtocolError = xerrors.New("protocol error")

	// ConfigurationError marks a missing required configuration option.
	ConfigurationError = xerrors.New("configuration error")
)
