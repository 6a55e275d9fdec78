package matchconfig

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"

	"github.com/Ramsey-B/fern/internal/repositories/matchconfig"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Register registers match configuration routes
func Register(g *echo.Group) {
	g.GET("", GetMatchConfig)
	g.PUT("", UpdateMatchConfig)
	g.POST("/calibrate", Calibrate)
}

// ConfigResponse is the selector configuration plus the curated word
// lists that feed the business filter and the classifier.
type ConfigResponse struct {
	Config         models.MatchConfig `json:"config"`
	ExclusionNames []string           `json:"exclusion_names,omitempty"`
	QualifierTerms []string           `json:"qualifier_terms,omitempty"`
}

// GetMatchConfig gets the tenant's selector configuration. Tenants
// without stored configuration get the defaults.
func GetMatchConfig(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	ctx, repo, err := ectoinject.GetContext[*matchconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	config, exclusions, qualifiers, err := repo.Get(ctx, tenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ConfigResponse{
		Config:         config,
		ExclusionNames: exclusions,
		QualifierTerms: qualifiers,
	})
}

// UpdateMatchConfig replaces the tenant's selector configuration
func UpdateMatchConfig(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	var req ConfigResponse
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Config.PercentileThreshold <= 0 || req.Config.PercentileThreshold > 100 {
		return httperror.NewHTTPError(http.StatusBadRequest, "percentile_threshold must be in (0, 100]")
	}
	if req.Config.MinimumGroupSize < 1 {
		return httperror.NewHTTPError(http.StatusBadRequest, "minimum_group_size must be at least 1")
	}
	if req.Config.GlobalMinimumScore < 0 || req.Config.GlobalMinimumScore > 1 {
		return httperror.NewHTTPError(http.StatusBadRequest, "global_minimum_score must be in [0, 1]")
	}

	ctx, repo, err := ectoinject.GetContext[*matchconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.Upsert(ctx, tenantID, req.Config, req.ExclusionNames, req.QualifierTerms); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, req)
}

// Calibrate proposes thresholds from score data. With a request body the
// supplied scores are used as-is; without one, scores come from the
// tenant's reviewed match candidates of the given kind.
func Calibrate(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	var req models.CalibrationRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if len(req.Scores) > 0 {
		if len(req.Scores) < 2 {
			return httperror.NewHTTPError(http.StatusBadRequest, "at least two scores are required")
		}
		proposal, err := matching.Calibrate(req)
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, proposal)
	}

	kind := models.EntityKind(c.QueryParam("kind"))
	if kind == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "kind query parameter or scores body is required")
	}

	ctx, svc, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	proposal, err := svc.CalibrateThresholds(ctx, tenantID, kind)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, proposal)
}
