package ratelimit

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	xhttp "celestial/pkg/http"
)

// KeyFunc extracts the client key from a request.
type KeyFunc func(c echo.Context) string

// ClientIP keys requests by echo's resolved client address.
func ClientIP(c echo.Context) string {
	return c.RealIP()
}

// Middleware rejects requests over the key's budget with 429 and a
// Retry-After header in whole seconds.
func Middleware(l *Limiter, key KeyFunc) echo.MiddlewareFunc {
	if key == nil {
		key = ClientIP
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			k := key(c)
			if l.Allow(k) {
				return next(c)
			}
			wait := l.RetryAfter(k)
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded").
				WithParam("retry_after_ms", wait.Milliseconds()))
		}
	}
}
