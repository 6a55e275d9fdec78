// Package context carries request-scoped identifiers through typed keys.
package context

import "context"

type contextKey string

var (
	RequestIDKey = contextKey("X-Request-Id")
	TenantIDKey  = contextKey("X-Tenant-Id")
	UserIDKey    = contextKey("X-User-Id")
	RouteKey     = contextKey("X-Route")
	MethodKey    = contextKey("X-Method")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(RequestIDKey).(string)
	return value
}

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

func GetTenantID(ctx context.Context) string {
	value, _ := ctx.Value(TenantIDKey).(string)
	return value
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	value, _ := ctx.Value(UserIDKey).(string)
	return value
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string {
	value, _ := ctx.Value(RouteKey).(string)
	return value
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string {
	value, _ := ctx.Value(MethodKey).(string)
	return value
}
