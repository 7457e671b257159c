package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionMarshalParseRoundTrip(t *testing.T) {
	v := Version{Major: 3, Minor: 14, Patch: 159}
	msg := v.Marshal()
	require.Len(t, msg, VersionSize)

	off := 0
	got, err := ParseVersion(msg, &off)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	assert.Equal(t, VersionSize, off)
}

func TestParseVersionShortBuffer(t *testing.T) {
	off := 0
	_, err := ParseVersion([]byte{1, 2, 3}, &off)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestCompareStableMajor(t *testing.T) {
	cases := []struct {
		name   string
		client Version
		server Version
		want   Ordering
	}{
		{"equal", Version{1, 2, 3}, Version{1, 2, 3}, Equal},
		{"client minor lower still compatible", Version{1, 1, 0}, Version{1, 2, 0}, Equal},
		{"client minor higher", Version{1, 3, 0}, Version{1, 2, 0}, Greater},
		{"client major lower", Version{1, 9, 9}, Version{2, 0, 0}, Less},
		{"client major higher", Version{2, 0, 0}, Version{1, 9, 9}, Greater},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compare(tc.client, tc.server))
		})
	}
}

func TestComparePreOneZeroMajor(t *testing.T) {
	cases := []struct {
		name   string
		client Version
		server Version
		want   Ordering
	}{
		{"equal", Version{0, 4, 2}, Version{0, 4, 2}, Equal},
		{"client patch lower still compatible", Version{0, 4, 1}, Version{0, 4, 2}, Equal},
		{"client minor higher", Version{0, 5, 0}, Version{0, 4, 9}, Greater},
		{"client minor lower", Version{0, 3, 9}, Version{0, 4, 0}, Less},
		{"one side zero major", Version{0, 1, 0}, Version{1, 0, 0}, Greater},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compare(tc.client, tc.server))
		})
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	a := Version{1, 5, 0}
	b := Version{1, 2, 0}
	assert.Equal(t, Greater, Compare(a, b))
	assert.Equal(t, Less, Compare(b, a))
}
