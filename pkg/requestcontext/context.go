// Package requestcontext carries request-scoped values from the portal's
// middleware to handlers and domain code without tying them to net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	keyClientIP ctxKey = iota
	keyUserAgent
	keyRequestID
	keyRequestTime
)

func value[T any](ctx context.Context, key ctxKey) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// ClientIP is the caller address resolved by the metadata middleware.
func ClientIP(ctx context.Context) string {
	ip, _ := value[string](ctx, keyClientIP)
	return ip
}

// UserAgent is the raw User-Agent header of the request.
func UserAgent(ctx context.Context) string {
	ua, _ := value[string](ctx, keyUserAgent)
	return ua
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, clientIP)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

// RequestID returns "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := value[string](ctx, keyRequestID)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now is the instant the request was received. Background work such as the
// draft janitor gets the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, keyRequestTime); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyRequestTime, t)
}
