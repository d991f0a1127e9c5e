package logger

import "context"

type requestIDKey struct{}

// WithRequestID stores the request ID for later retrieval by log lines and
// handlers further down the chain.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the stored request ID, or "" when the context never
// passed through the request-ID middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
