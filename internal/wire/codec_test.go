package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"small", 10},
		{"exact chunk", MaxChunk},
		{"one over", MaxChunk + 1},
		{"two exact chunks", MaxChunk * 2},
		{"two chunks plus one", MaxChunk*2 + 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0xAB}, tc.size)
			var buf bytes.Buffer
			require.NoError(t, Send(&buf, payload))
			got := Receive(&buf)
			assert.Equal(t, payload, got)
		})
	}
}

func TestSendExactMultipleWritesNullTerminator(t *testing.T) {
	payload := bytes.Repeat([]byte{1}, MaxChunk)
	var buf bytes.Buffer
	require.NoError(t, Send(&buf, payload))
	// chunk header (2) + chunk (MaxChunk) + terminator (2)
	assert.Equal(t, 2+MaxChunk+2, buf.Len())
	assert.Equal(t, []byte{0, 0}, buf.Bytes()[buf.Len()-2:])
}

func TestSendNonMultipleOmitsTerminator(t *testing.T) {
	payload := bytes.Repeat([]byte{1}, MaxChunk+1)
	var buf bytes.Buffer
	require.NoError(t, Send(&buf, payload))
	// first chunk (2+MaxChunk) + second chunk header+1 byte, no terminator
	assert.Equal(t, 2+MaxChunk+2+1, buf.Len())
}

func TestReceiveGracefulTruncation(t *testing.T) {
	var buf bytes.Buffer
	// Announce 10 bytes but only supply 4.
	buf.Write([]byte{10, 0})
	buf.Write([]byte{1, 2, 3, 4})
	got := Receive(&buf)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestReceiveEmptyStreamReturnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	got := Receive(&buf)
	assert.Empty(t, got)
}
