package context

import (
	"context"

	"github.com/google/uuid"
)

type callIDKey string

// CallIDKey is the context key holding the tool invocation identifier.
var CallIDKey = callIDKey("callID")

// WithCallID returns a context carrying id. An empty id is replaced by a new
// random identifier.
func WithCallID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, CallIDKey, id)
}

// CallID returns the tool invocation identifier stored in ctx.
func CallID(ctx context.Context) (string, bool) {
	ret := ctx.Value(CallIDKey)
	if ret == nil {
		return "", false
	}
	id, ok := ret.(string)
	return id, ok
}
