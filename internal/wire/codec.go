// Package wire implements the length-prefixed chunked framing discipline
// used by every TCP link in the system: authority, cache, and content
// sessions all send and receive their request/response bodies through
// Send and Receive.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/jroosing/wireweb/internal/pool"
)

// MaxChunk is the largest payload slice a single length prefix can announce.
// A chunk of exactly this size requires an explicit zero-length terminator
// to follow (see Send).
const MaxChunk = 65535

var lenBufPool = pool.New(func() *[2]byte {
	return &[2]byte{}
})

// Send writes payload to w as one or more length-prefixed chunks.
//
// Each chunk is at most MaxChunk bytes: a two-byte little-endian length
// prefix followed by the chunk bytes. After the final chunk, a null
// (zero-length) terminator is written if and only if len(payload) is an
// exact multiple of MaxChunk — a short trailing chunk already signals the
// end of the stream, but a payload that fills the last slot exactly would
// otherwise be indistinguishable from "more data follows".
func Send(w io.Writer, payload []byte) error {
	lenBuf := lenBufPool.Get()
	defer lenBufPool.Put(lenBuf)

	total := len(payload)
	for len(payload) > 0 {
		n := len(payload)
		if n > MaxChunk {
			n = MaxChunk
		}
		chunk := payload[:n]
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(n))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		payload = payload[n:]
	}
	if total%MaxChunk == 0 {
		binary.LittleEndian.PutUint16(lenBuf[:], 0)
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
	}
	return nil
}

// Receive reads length-prefixed chunks from r until a zero-length prefix
// or a short read is observed, and returns the accumulated payload.
//
// A short read (fewer than MaxChunk bytes announced, or an I/O error while
// reading the chunk length or body) ends the loop gracefully: whatever has
// been accumulated so far, including the bytes of a partially read chunk,
// is returned without error. An empty stream yields an empty, non-nil
// slice. It is the caller's
// responsibility to detect a malformed message from its resulting length
// (see the length checks and Parse* functions in internal/protocol).
func Receive(r io.Reader) []byte {
	lenBuf := lenBufPool.Get()
	defer lenBufPool.Put(lenBuf)

	data := []byte{}
	for {
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return data
		}
		n := binary.LittleEndian.Uint16(lenBuf[:])
		if n == 0 {
			return data
		}
		start := len(data)
		data = append(data, make([]byte, n)...)
		if m, err := io.ReadFull(r, data[start:]); err != nil {
			return data[:start+m]
		}
		if n < MaxChunk {
			return data
		}
	}
}
