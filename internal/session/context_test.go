package session

import (
	"context"
	"testing"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), "1234")
	actor, ok := ActorFromContext(ctx)
	if !ok || actor != "1234" {
		t.Fatalf("expected actor 1234, got %q (ok=%v)", actor, ok)
	}
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatal("expected no actor on bare context")
	}
	if WithActor(ctx, "") != ctx {
		t.Fatal("expected empty actor to leave context untouched")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFromContext(ctx)
	if !ok || id != "req-1" {
		t.Fatalf("expected req-1, got %q (ok=%v)", id, ok)
	}
	if _, ok := RequestIDFromContext(nil); ok { //nolint:staticcheck // nil context is tolerated
		t.Fatal("expected nil context to report no request id")
	}
}
