package ctxutil

import (
	"context"
	"time"
)

type key int

const (
	keyActor key = iota
	keyOpName
)

// WithActor stores the faculty id on whose behalf the call runs.
func WithActor(ctx context.Context, facultyID string) context.Context {
	return context.WithValue(ctx, keyActor, facultyID)
}

func Actor(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keyActor).(string)
	return id, ok && id != ""
}

// WithOp names the operation for logs and error reports.
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyOpName).(string)
	return s, ok
}

// DefaultDBTimeout is overridden from config at startup.
var DefaultDBTimeout = 5 * time.Second

func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout bounds a database call by DefaultDBTimeout, keeping an
// earlier parent deadline.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok && time.Until(dl) < DefaultDBTimeout {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
