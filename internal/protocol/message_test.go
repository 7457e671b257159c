package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVersion = Version{Major: 1, Minor: 2, Patch: 0}

func TestAuthorityResolveRequestRoundTrip(t *testing.T) {
	req := AuthorityResolveRequest{Version: testVersion, IsLast: true, Label: "com"}
	msg := req.Marshal()
	require.GreaterOrEqual(t, len(msg), MinAuthorityResolveLen)

	got, err := ParseAuthorityResolveRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestAuthorityResolveRequestNotLast(t *testing.T) {
	req := AuthorityResolveRequest{Version: testVersion, IsLast: false, Label: "example"}
	got, err := ParseAuthorityResolveRequest(req.Marshal())
	require.NoError(t, err)
	assert.False(t, got.IsLast)
	assert.Equal(t, "example", got.Label)
}

func TestParseAuthorityResolveRequestMissingFlag(t *testing.T) {
	msg := testVersion.Marshal()
	_, err := ParseAuthorityResolveRequest(msg)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestCacheResolveRequestRoundTrip(t *testing.T) {
	req := CacheResolveRequest{Version: testVersion, Host: "www.example.com"}
	msg := req.Marshal()
	require.GreaterOrEqual(t, len(msg), MinCacheResolveLen)

	got, err := ParseCacheResolveRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestContentFetchRequestRoundTrip(t *testing.T) {
	req := ContentFetchRequest{
		Version: testVersion,
		Stacks:  []string{"html!", "mdown"},
		Path:    "index.md",
	}
	msg := req.Marshal()
	require.GreaterOrEqual(t, len(msg), MinContentFetchLen)

	got, err := ParseContentFetchRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestParseContentFetchRequestTruncatedTag(t *testing.T) {
	msg := append(testVersion.Marshal(), []byte("abc")...)
	_, err := ParseContentFetchRequest(msg)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestParseContentFetchRequestMissingSeparator(t *testing.T) {
	msg := append(testVersion.Marshal(), []byte("html!")...)
	_, err := ParseContentFetchRequest(msg)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestParseContentFetchRequestEmptyTrailer(t *testing.T) {
	_, err := ParseContentFetchRequest(testVersion.Marshal())
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestResolveResponsePureError(t *testing.T) {
	msg := BuildStatusOnly(StatusNotFound)
	assert.Len(t, msg, 4)

	got, err := ParseResolveResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, got.Status)
	assert.Empty(t, got.Endpoint)
}

func TestResolveResponseEndpoint(t *testing.T) {
	msg := BuildEndpointResponse(StatusSuccess, "127.0.0.1:6202")
	got, err := ParseResolveResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "127.0.0.1:6202", got.Endpoint)
}

func TestResolveResponseRejectsPayloadOnErrorStatus(t *testing.T) {
	msg := append(BuildStatusOnly(StatusNotFound), []byte("extra")...)
	_, err := ParseResolveResponse(msg)
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestResolveResponseTooShort(t *testing.T) {
	_, err := ParseResolveResponse([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrProtocolError)
}

func TestContentFetchResponseSuccess(t *testing.T) {
	msg := BuildContentResponse("html!", []byte("<p>hi</p>"))
	got, err := ParseContentFetchResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "html!", got.Stack)
	assert.Equal(t, []byte("<p>hi</p>"), got.Body)
}

func TestContentFetchResponsePureError(t *testing.T) {
	msg := BuildStatusOnly(StatusUnprocessable)
	got, err := ParseContentFetchResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, StatusUnprocessable, got.Status)
	assert.Empty(t, got.Stack)
}

func TestContentFetchResponseTruncatedStackTag(t *testing.T) {
	msg := append(BuildStatusOnly(StatusSuccess), []byte("ht")...)
	_, err := ParseContentFetchResponse(msg)
	assert.ErrorIs(t, err, ErrProtocolError)
}
