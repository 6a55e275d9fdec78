// Package middleware provides the echo middleware stack: request
// context propagation, request logging, and the error handler.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"
)

const (
	// HeaderTenantID is the header key for tenant ID.
	HeaderTenantID = "X-Tenant-ID"
	// HeaderUserID is the header key for user ID.
	HeaderUserID = "X-User-ID"
)

// Context lifts request identity headers into the request context.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := req.Context()
			ctx = fernctx.SetRequestID(ctx, requestID)
			ctx = fernctx.SetMethod(ctx, req.Method)
			ctx = fernctx.SetRoute(ctx, req.URL.Path)
			ctx = fernctx.SetTenantID(ctx, req.Header.Get(HeaderTenantID))
			ctx = fernctx.SetUserID(ctx, req.Header.Get(HeaderUserID))

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
