// Package middleware carries the console's HTTP plumbing: request ids,
// structured request logging, panic recovery, body size limits, login
// rate limiting, and security response headers.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header the request id travels in.
const RequestIDHeader = "X-Request-ID"

// ContextKeyRequestID is the echo context key for the request id.
const ContextKeyRequestID = "request_id"

// RequestID tags every request with an id, honoring one the caller
// already sent, and echoes it back on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
