package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", cause, KindStorage},
		{"typed", New(KindRateLimited, "slow down"), KindRateLimited},
		{"wrapped", fmt.Errorf("send: %w", New(KindUserNotFound, "user does not exist")), KindUserNotFound},
		{"storage", Storage(cause), KindStorage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("expected kind %q got %q", tc.want, got)
			}
		})
	}
}

func TestErrorUnwrapAndMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindStorage, "storage unavailable", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "storage unavailable: disk full" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if MessageOf(err) != "storage unavailable" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
	if MessageOf(cause) != "internal error" {
		t.Fatalf("expected generic message for untyped errors, got %q", MessageOf(cause))
	}
}
