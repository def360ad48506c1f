// Package relay implements the opaque node identifiers and cursor-based
// pagination surface exposed to API clients.
package relay

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Decode failures. Callers treat every one of them as an invalid cursor.
var (
	// ErrMalformedID indicates the token is not base64url or lacks the
	// "Kind:id" shape after decoding.
	ErrMalformedID = errors.New("malformed id")

	// ErrNotANumber indicates the id part after the separator is not an integer.
	ErrNotANumber = errors.New("id is not a number")

	// ErrWrongKind indicates the token was produced for a different entity kind.
	ErrWrongKind = errors.New("wrong id kind")
)

// EncodeID encodes an (entity kind, numeric id) pair into the opaque
// token handed to clients: base64url of "Kind:id".
func EncodeID(kind string, id int64) string {
	return base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%d", kind, id)))
}

// DecodeID reverses EncodeID without checking the kind prefix. Call sites
// that must not accept foreign-kind tokens use DecodeTypedID instead.
func DecodeID(token string) (int64, error) {
	_, id, err := decodeParts(token)
	return id, err
}

// DecodeTypedID reverses EncodeID and rejects tokens produced for any
// kind other than the expected one.
func DecodeTypedID(kind, token string) (int64, error) {
	got, id, err := decodeParts(token)
	if err != nil {
		return 0, err
	}
	if got != kind {
		return 0, ErrWrongKind
	}
	return id, nil
}

func decodeParts(token string) (kind string, id int64, err error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", 0, ErrMalformedID
	}
	kind, idPart, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", 0, ErrMalformedID
	}
	id, err = strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return "", 0, ErrNotANumber
	}
	return kind, id, nil
}
