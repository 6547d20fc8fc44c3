// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services and handlers read them:
//
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//	requestID := requestcontext.RequestID(ctx)
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	requestIDKey struct{}
	usernameKey  struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID = requestIDKey{}
	ContextKeyUsername  = usernameKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Username retrieves the authenticated username from the context.
// Returns "" for unauthenticated requests.
func Username(ctx context.Context) string {
	if username, ok := ctx.Value(ContextKeyUsername).(string); ok {
		return username
	}
	return ""
}

// WithUsername injects the authenticated username into the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ContextKeyUsername, username)
}
