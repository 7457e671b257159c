// Package resolver implements the two independent resolution strategies
// raced by the coordinator (internal/coordinator): the recursive hop-by-hop
// authority resolver and the single-shot cache resolver. Both
// speak the wire codec (internal/wire) and the message codec
// (internal/protocol) directly against TCP peers.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/wire"
)

// ErrUnreachable wraps a round-trip failure to an authority or cache peer
// (dial failure, send failure, or an empty response). The resolvers turn
// it into a StatusHostUnreachable result rather than returning it.
var ErrUnreachable = errors.New("resolver: peer unreachable")

// Result is the outcome of a resolution attempt: the endpoint string
// rendered "HOST:PORT" (empty when Status carries no payload) and the
// status the peer (or this resolver, on a local failure) reported.
type Result struct {
	Endpoint string
	Status   protocol.Status
}

// Dialer opens a TCP connection to addr, honoring ctx cancellation. Tests
// substitute a Dialer backed by net.Pipe to avoid binding real sockets.
type Dialer func(ctx context.Context, addr string) (net.Conn, error)

// DialTCP is the production Dialer.
func DialTCP(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// splitLastLabel splits a dot-separated host into (prefix, lastLabel),
// where lastLabel is the trailing label and prefix is everything before
// the final dot. A host with no dot yields prefix="" and isLast=true.
func splitLastLabel(host string) (prefix, lastLabel string, isLast bool) {
	idx := -1
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == '.' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", host, true
	}
	return host[:idx], host[idx+1:], false
}

// roundTrip sends req on a fresh connection to addr and returns the raw
// framed response bytes.
func roundTrip(ctx context.Context, dial Dialer, addr string, req []byte) ([]byte, error) {
	conn, err := dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnreachable, addr, err)
	}
	defer conn.Close()

	if err := wire.Send(conn, req); err != nil {
		return nil, fmt.Errorf("%w: send to %s: %v", ErrUnreachable, addr, err)
	}
	resp := wire.Receive(conn)
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", ErrUnreachable, addr)
	}
	return resp, nil
}
