package api

import (
	"net"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/staybook/staybook-server/internal/ratelimit"
)

// rateLimitMiddleware limits an operation per client IP. Rejected requests
// get 429 RATE_LIMITED with a Retry-After header. The IP comes from the
// connection; middleware.RealIP rewrites it first when proxy headers are
// trusted.
func (s *Server) rateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.RemoteAddr())

		if !limiter.Allow(key) {
			if s.logger != nil {
				s.logger.Warn("Rate limit exceeded", "ip", key, "path", ctx.URL().Path)
			}
			if wait := limiter.RetryAfter(key); wait > 0 {
				ctx.SetHeader("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			}
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from remoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
