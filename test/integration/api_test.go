package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fernctx "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/routes/health"
)

// newTestServer builds an echo instance with the service middleware
// stack and a throwaway handler, the way the bootstrap wires it.
func newTestServer(handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Context())
	e.Use(middleware.Logger(testLogger()))
	e.HTTPErrorHandler = middleware.Error(testLogger())
	e.GET("/ping", handler)
	return e
}

func serve(e *echo.Echo, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestContextMiddleware(t *testing.T) {
	t.Run("identity headers reach the request context", func(t *testing.T) {
		var tenantID, userID, requestID string
		e := newTestServer(func(c echo.Context) error {
			ctx := c.Request().Context()
			tenantID = fernctx.GetTenantID(ctx)
			userID = fernctx.GetUserID(ctx)
			requestID = fernctx.GetRequestID(ctx)
			return c.NoContent(http.StatusOK)
		})

		rec := serve(e, map[string]string{
			echo.HeaderXRequestID: "req-42",
			"X-Tenant-ID":         "tenant-1",
			"X-User-ID":           "reviewer-7",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tenant-1", tenantID)
		assert.Equal(t, "reviewer-7", userID)
		assert.Equal(t, "req-42", requestID)
	})

	t.Run("request id is generated when absent", func(t *testing.T) {
		var requestID string
		e := newTestServer(func(c echo.Context) error {
			requestID = fernctx.GetRequestID(c.Request().Context())
			return c.NoContent(http.StatusOK)
		})

		serve(e, nil)
		assert.NotEmpty(t, requestID)
	})
}

func TestErrorMiddleware(t *testing.T) {
	t.Run("http errors keep their status and message", func(t *testing.T) {
		e := newTestServer(func(c echo.Context) error {
			return httperror.NewHTTPError(http.StatusNotFound, "entity not found")
		})

		rec := serve(e, map[string]string{echo.HeaderXRequestID: "req-9"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "entity not found", body.Message)
		assert.Equal(t, "req-9", body.RequestID)
	})

	t.Run("echo errors map through", func(t *testing.T) {
		e := newTestServer(func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		})

		rec := serve(e, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		var body middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "forbidden", body.Message)
	})

	t.Run("unrecognized errors become a 500", func(t *testing.T) {
		e := newTestServer(func(c echo.Context) error {
			return assert.AnError
		})

		rec := serve(e, nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Internal Server Error", body.Message)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("unconfigured database reports unhealthy", func(t *testing.T) {
		e := echo.New()
		checker := health.NewChecker(nil, nil, nil, "test")
		checker.RegisterRoutes(e)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var status health.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "unhealthy", status.Status)
		require.Contains(t, status.Checks, "database")
		assert.Equal(t, "database not configured", status.Checks["database"].Message)
	})

	t.Run("liveness is unconditional", func(t *testing.T) {
		e := echo.New()
		health.NewChecker(nil, nil, nil, "test").RegisterRoutes(e)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness follows the flag", func(t *testing.T) {
		e := echo.New()
		checker := health.NewChecker(nil, nil, nil, "test")
		checker.RegisterRoutes(e)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		checker.SetReady(true)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPIRequestShapes(t *testing.T) {
	t.Run("classify request round trips", func(t *testing.T) {
		req := models.ClassifyRequest{
			SourceSystem: "assessor",
			LocationID:   "plat-12-lot-4",
			OwnerName:    "SMITH, JOHN",
			RawAddress:   "123 CORN NECK RD",
		}

		data, err := json.Marshal(req)
		require.NoError(t, err)

		var parsed models.ClassifyRequest
		require.NoError(t, json.Unmarshal(data, &parsed))
		assert.Equal(t, req, parsed)
	})

	t.Run("match candidate statuses", func(t *testing.T) {
		for _, status := range []string{"pending", "approved", "rejected", "deferred"} {
			candidate := models.MatchCandidate{Status: status}
			data, err := json.Marshal(candidate)
			require.NoError(t, err)
			assert.Contains(t, string(data), status)
		}
	})
}
