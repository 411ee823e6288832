package userctx

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetUserID(ctx); ok {
		t.Fatal("expected no user id on empty context")
	}
	if got := GetRequestID(ctx); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}

	ctx = WithRequestID(WithUserID(ctx, "dashboard"), "req-1")
	if userID, ok := GetUserID(ctx); !ok || userID != "dashboard" {
		t.Fatalf("expected user id dashboard, got %q (ok=%v)", userID, ok)
	}
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected request id req-1, got %q", got)
	}
}
