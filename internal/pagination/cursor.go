// Package pagination encodes message-history cursors.
//
// A cursor names the last message id a client has seen. Tokens are opaque
// to clients; only Decode interprets them.
package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"

	chat_errors "chat-service/pkg/errors"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100

	version = "m1:"
)

var errInvalidCursor = chat_errors.Validation("invalid cursor")

// Encode returns the opaque token for a message id.
func Encode(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(version + strconv.FormatInt(id, 10)))
}

// Decode returns the message id named by token.
func Decode(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, errInvalidCursor
	}
	body, ok := strings.CutPrefix(string(raw), version)
	if !ok {
		return 0, errInvalidCursor
	}
	id, err := strconv.ParseInt(body, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidCursor
	}
	return id, nil
}

// NormalizeLimit applies the default when limit is nil and rejects values
// outside [1, MaxLimit].
func NormalizeLimit(limit *int) (int, error) {
	if limit == nil {
		return DefaultLimit, nil
	}
	if *limit < 1 || *limit > MaxLimit {
		return 0, chat_errors.Newf(chat_errors.KindValidation, "limit must be between 1 and %d", MaxLimit)
	}
	return *limit, nil
}
