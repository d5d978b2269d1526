package chat_errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("content must not be empty"), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not a participant"), http.StatusForbidden},
		{"not found", NotFound("conversation not found"), http.StatusNotFound},
		{"conflict", ErrAlreadyExists, http.StatusConflict},
		{"wrapped", fmt.Errorf("add participant: %w", Conflict("already a participant")), http.StatusConflict},
		{"untagged", sql.ErrConnDone, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIsMatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("get conversation: %w", NotFound("conversation not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is to match the not-found sentinel")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatal("not-found error must not match forbidden")
	}
	if errors.Is(err, NotFound("message not found")) {
		t.Fatal("distinct messages of one kind must not match each other")
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	err := fmt.Errorf("query: %w", errors.New("pq: relation \"messages\" does not exist"))
	if got := PublicMessage(err); got != "internal server error" {
		t.Fatalf("PublicMessage() = %q", got)
	}
	if KindOf(err) != KindInternal {
		t.Fatalf("KindOf() = %s, want %s", KindOf(err), KindInternal)
	}

	wrapped := Wrap(KindConflict, "already a participant", errors.New("UNIQUE constraint failed"))
	if got := PublicMessage(wrapped); got != "already a participant" {
		t.Fatalf("PublicMessage() = %q", got)
	}
	if !errors.Is(wrapped, ErrConflict) {
		t.Fatal("wrapped conflict should match ErrConflict")
	}
}
