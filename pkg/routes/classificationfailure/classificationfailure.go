package classificationfailure

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"

	"github.com/Ramsey-B/fern/internal/repositories/classificationfailure"
)

// Register registers classification failure review routes
func Register(g *echo.Group) {
	g.GET("", ListFailures)
}

// ListFailures lists records no cascade rule matched, most recent first
func ListFailures(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	ctx, repo, err := ectoinject.GetContext[*classificationfailure.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	failures, err := repo.List(ctx, tenantID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, failures)
}
