package entity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"

	entityrepo "github.com/Ramsey-B/fern/internal/repositories/entity"
	"github.com/Ramsey-B/fern/pkg/address"
	"github.com/Ramsey-B/fern/pkg/classify"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/streets"
)

var validate = validator.New()

// Register registers entity routes
func Register(g *echo.Group) {
	g.POST("/classify", ClassifyRecord)
	g.GET("", ListEntities)
	g.GET("/:id", GetEntity)
	g.POST("/:id/matches", RunMatches)
	g.DELETE("/:id", DeleteEntity)
}

// ClassifyResponse is the ad-hoc classification result. Nothing is
// persisted; this endpoint exists for inspection and tuning.
type ClassifyResponse struct {
	Entity *models.Entity `json:"entity"`
	Rule   string         `json:"rule"`
}

// ClassifyRecord classifies a raw owner record without persisting it
func ClassifyRecord(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	var req models.ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, engine, err := ectoinject.GetContext[*classify.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := engine.Classify(classify.Input{
		TenantID:     tenantID,
		SourceSystem: req.SourceSystem,
		LocationID:   req.LocationID,
		RawName:      req.OwnerName,
	})
	if err != nil {
		var classErr *classify.ClassificationError
		if errors.As(err, &classErr) {
			return httperror.NewHTTPError(http.StatusUnprocessableEntity, classErr.Reason)
		}
		return err
	}

	if req.RawAddress != "" {
		if addr := address.Parse(req.RawAddress, req.SourceSystem); addr != nil {
			if rctx, resolver, rerr := ectoinject.GetContext[*address.Resolver](ctx); rerr == nil {
				if _, store, serr := ectoinject.GetContext[*streets.Store](rctx); serr == nil {
					resolver.Resolve(addr, store.Snapshot())
				}
			}
			result.Entity.Address = addr
		}
	}

	return c.JSON(http.StatusOK, ClassifyResponse{
		Entity: result.Entity,
		Rule:   result.Rule,
	})
}

// ListEntities lists classified entities with optional kind filter
func ListEntities(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	kind := models.EntityKind(c.QueryParam("kind"))

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	items, total, err := repo.List(ctx, tenantID, kind, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.EntityListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	})
}

// GetEntity gets a classified entity by ID
func GetEntity(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	record, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// RunMatches runs the match selector for a stored entity on demand.
// Results are persisted as pending candidates, same as the pipeline path.
func RunMatches(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	record, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	base, err := entityrepo.FromRecord(record)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "stored entity is undecodable")
	}

	ctx, matcher, err := ectoinject.GetContext[*matching.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := matcher.MatchEntity(ctx, base)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// DeleteEntity soft deletes an entity
func DeleteEntity(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*entityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
