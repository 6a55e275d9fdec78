package matchcandidate

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"

	"github.com/Ramsey-B/fern/internal/repositories/matchcandidate"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Register registers match candidate review routes
func Register(g *echo.Group) {
	g.GET("", ListMatchCandidates)
	g.GET("/:id", GetMatchCandidate)
	g.POST("/:id/approve", ApproveMatchCandidate)
	g.POST("/:id/reject", RejectMatchCandidate)
	g.POST("/:id/defer", DeferMatchCandidate)
}

// ListMatchCandidates lists candidates for review, filtered by entity
// or by pending status and kind
func ListMatchCandidates(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	status := c.QueryParam("status")
	entityID := c.QueryParam("entity_id")
	kind := models.EntityKind(c.QueryParam("kind"))

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	ctx, repo, err := ectoinject.GetContext[*matchcandidate.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	var candidates []models.MatchCandidate
	if entityID != "" {
		candidates, err = repo.ListByEntity(ctx, tenantID, entityID, status)
	} else {
		candidates, err = repo.ListPending(ctx, tenantID, kind, limit)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, candidates)
}

// GetMatchCandidate gets a match candidate by ID
func GetMatchCandidate(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*matchcandidate.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	candidate, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, candidate)
}

// ApproveMatchCandidate marks a candidate as a confirmed match and links
// the pair in the graph projection
func ApproveMatchCandidate(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")
	resolvedBy := reviewer(ctx)

	ctx, repo, err := ectoinject.GetContext[*matchcandidate.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	candidate, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := repo.UpdateStatus(ctx, tenantID, id, models.MatchCandidateStatusApproved, resolvedBy); err != nil {
		return err
	}

	// The graph is a projection; a failed link is recoverable on rebuild.
	if _, projection, perr := ectoinject.GetContext[*graph.Projection](ctx); perr == nil && projection != nil {
		_ = projection.LinkMatch(ctx, tenantID, candidate.SourceEntityID, candidate.CandidateEntityID, candidate.MatchScore)
	}

	return c.NoContent(http.StatusNoContent)
}

// RejectMatchCandidate marks a candidate as not a match
func RejectMatchCandidate(c echo.Context) error {
	return resolve(c, models.MatchCandidateStatusRejected)
}

// DeferMatchCandidate pushes a candidate back for later review
func DeferMatchCandidate(c echo.Context) error {
	return resolve(c, models.MatchCandidateStatusDeferred)
}

func resolve(c echo.Context, status string) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")
	resolvedBy := reviewer(ctx)

	ctx, repo, err := ectoinject.GetContext[*matchcandidate.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.UpdateStatus(ctx, tenantID, id, status, resolvedBy); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// reviewer is the user resolving the candidate, when one is known.
func reviewer(ctx context.Context) *string {
	if userID := fernctx.GetUserID(ctx); userID != "" {
		return &userID
	}
	return nil
}
