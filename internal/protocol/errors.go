// Package protocol encodes and decodes the three request shapes (authority
// resolve, cache resolve, content fetch) and the status-prefixed response
// shape shared by every server in the system. It sits directly on top of
// internal/wire: callers pass the framed payload returned by wire.Receive
// into Parse* and build the bytes handed to wire.Send from Marshal/Build*.
package protocol

import "errors"

// ErrProtocolError is a sentinel wrapped by every parse failure in this
// package. Wrap it with fmt.Errorf("context: %w", ErrProtocolError) to add
// detail without losing the ability to errors.Is against it.
var ErrProtocolError = errors.New("wire protocol error")
