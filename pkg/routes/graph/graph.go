package graph

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"

	graphpkg "github.com/Ramsey-B/fern/pkg/graph"
)

// Handler handles graph projection query endpoints
type Handler struct {
	projection *graphpkg.Projection
}

// NewHandler creates a new graph handler
func NewHandler(projection *graphpkg.Projection) *Handler {
	return &Handler{projection: projection}
}

// Register registers the graph routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/cluster/:entityId", h.GetMatchCluster)
}

func (h *Handler) requireProjection(c echo.Context) (*graphpkg.Projection, error) {
	// Prefer an explicitly provided projection (useful for tests), but
	// fall back to DI-from-context, the standard pattern elsewhere.
	if h != nil && h.projection != nil {
		return h.projection, nil
	}

	ctx := c.Request().Context()
	_, projection, err := ectoinject.GetContext[*graphpkg.Projection](ctx)
	if err != nil || projection == nil {
		// 503 because the graph projection is optional.
		return nil, httperror.NewHTTPError(http.StatusServiceUnavailable, "graph projection unavailable")
	}
	return projection, nil
}

// GetMatchCluster walks approved match and household member edges from
// an entity and returns the connected records
func (h *Handler) GetMatchCluster(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	entityID := c.Param("entityId")

	maxHops, _ := strconv.Atoi(c.QueryParam("max_hops"))

	projection, err := h.requireProjection(c)
	if err != nil {
		return err
	}

	cluster, err := projection.MatchCluster(ctx, tenantID, entityID, maxHops)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"entity_id": entityID,
		"cluster":   cluster,
	})
}
