package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit limits requests per client IP with an in-memory store.
// rate uses the limiter format, e.g. "10-M" for ten per minute.
func RateLimit(rate string) (func(e *core.RequestEvent) error, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	instance := limiter.New(memory.NewStore(), parsed)

	return func(e *core.RequestEvent) error {
		ctx, err := instance.Get(e.Request.Context(), e.RealIP())
		if err != nil {
			slog.Error("ratelimit: store failure", "error", err)
			return e.Next()
		}

		h := e.Response.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			slog.Warn("ratelimit: limit reached", "ip", e.RealIP(), "path", e.Request.URL.Path)
			return jsonError(e, http.StatusTooManyRequests, "Too many requests, try again later")
		}
		return e.Next()
	}, nil
}
