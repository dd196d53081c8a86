package eclipse

import "context"

// RequestInfo captures the browser request a telemetry event originated from.
type RequestInfo struct {
	Path      string `json:"path,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type requestContextKey struct{}

// ContextWithRequest stores request metadata on the provided context.
func ContextWithRequest(ctx context.Context, info RequestInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestContextKey{}, info)
}

// RequestFromContext extracts the request metadata, if present.
func RequestFromContext(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}
	if info, ok := ctx.Value(requestContextKey{}).(RequestInfo); ok {
		return info
	}
	return RequestInfo{}
}
