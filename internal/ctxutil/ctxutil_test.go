package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestActorAndOp(t *testing.T) {
	ctx := context.Background()
	if _, ok := Actor(ctx); ok {
		t.Fatal("empty context must have no actor")
	}
	ctx = WithOp(WithActor(ctx, "F001"), "upload")
	if id, ok := Actor(ctx); !ok || id != "F001" {
		t.Fatalf("actor = %q, %v", id, ok)
	}
	if op, ok := Op(ctx); !ok || op != "upload" {
		t.Fatalf("op = %q, %v", op, ok)
	}
}

func TestWithDBTimeout_KeepsShorterParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, cancel2 := WithDBTimeout(parent)
	defer cancel2()

	pd, _ := parent.Deadline()
	cd, ok := ctx.Deadline()
	if !ok || !cd.Equal(pd) {
		t.Fatalf("deadline %v, want parent %v", cd, pd)
	}
}

func TestWithDBTimeout_Default(t *testing.T) {
	ctx, cancel := WithDBTimeout(context.Background())
	defer cancel()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline")
	}
	if left := time.Until(dl); left <= 0 || left > DefaultDBTimeout {
		t.Fatalf("unexpected remaining time %s", left)
	}
}
