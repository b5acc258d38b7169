// Package requestcontext carries request-scoped values (request id, client
// address, user agent, request time) through context so services never
// import net/http. HTTP middleware and the event dispatcher populate it.
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	keyClientIP key = iota
	keyUserAgent
	keyRequestID
	keyTime
)

func str(ctx context.Context, k key) string {
	v, _ := ctx.Value(k).(string)
	return v
}

// ClientIP is the caller's address, or "" when unknown.
func ClientIP(ctx context.Context) string { return str(ctx, keyClientIP) }

// UserAgent is the caller's User-Agent, or "" when unknown.
func UserAgent(ctx context.Context) string { return str(ctx, keyUserAgent) }

// WithClientMetadata records where a request came from.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	return context.WithValue(context.WithValue(ctx, keyClientIP, clientIP), keyUserAgent, userAgent)
}

// RequestID correlates log lines for one request or event.
func RequestID(ctx context.Context) string { return str(ctx, keyRequestID) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now returns the pinned request time, or the wall clock when none is set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(keyTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the time reported by Now.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyTime, t)
}
