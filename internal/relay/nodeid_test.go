package relay

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeID_RoundTrip(t *testing.T) {
	cases := []struct {
		kind string
		id   int64
	}{
		{"User", 1},
		{"Recruitment", 42},
		{"Tag", 9007199254740993},
		{"User", 0},
	}
	for _, c := range cases {
		token := EncodeID(c.kind, c.id)
		id, err := DecodeID(token)
		require.NoError(t, err)
		require.Equal(t, c.id, id)
	}
}

func TestDecodeID_Malformed(t *testing.T) {
	// not base64url
	_, err := DecodeID("%%%%")
	require.ErrorIs(t, err, ErrMalformedID)

	// truncated token
	token := EncodeID("User", 12345)
	_, err = DecodeID(token[:len(token)-2])
	require.ErrorIs(t, err, ErrMalformedID)

	// valid base64url but no separator
	_, err = DecodeID(base64.URLEncoding.EncodeToString([]byte("User42")))
	require.ErrorIs(t, err, ErrMalformedID)
}

func TestDecodeID_NotANumber(t *testing.T) {
	_, err := DecodeID(base64.URLEncoding.EncodeToString([]byte("User:abc")))
	require.ErrorIs(t, err, ErrNotANumber)
}

func TestDecodeTypedID(t *testing.T) {
	token := EncodeID("Recruitment", 7)

	id, err := DecodeTypedID("Recruitment", token)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	_, err = DecodeTypedID("User", token)
	require.ErrorIs(t, err, ErrWrongKind)

	// base DecodeID accepts the same token regardless of kind
	id, err = DecodeID(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
}
