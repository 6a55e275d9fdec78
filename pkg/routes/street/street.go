package street

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	fernctx "github.com/Ramsey-B/fern/pkg/context"

	streetrepo "github.com/Ramsey-B/fern/internal/repositories/street"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
	"github.com/Ramsey-B/fern/pkg/streets"
)

var validate = validator.New()

// Register registers street alias management routes
func Register(g *echo.Group) {
	g.GET("", ListStreets)
	g.POST("", CreateStreet)
	g.GET("/:id", GetStreet)
	g.POST("/:id/aliases", AddAlias)
}

// ListResponse is the street index listing plus its version, so callers
// can tell whether two reads saw the same snapshot.
type ListResponse struct {
	Version int64                 `json:"version"`
	Streets []*models.StreetEntry `json:"streets"`
}

// ListStreets lists the known streets with their alias sets
func ListStreets(c echo.Context) error {
	ctx := c.Request().Context()

	_, store, err := ectoinject.GetContext[*streets.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	ix := store.Snapshot()
	return c.JSON(http.StatusOK, ListResponse{
		Version: ix.Version(),
		Streets: ix.Entries(),
	})
}

// GetStreet gets a street and its aliases by ID
func GetStreet(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")

	_, store, err := ectoinject.GetContext[*streets.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entry, ok := store.Snapshot().Get(id)
	if !ok {
		return httperror.NewHTTPError(http.StatusNotFound, "street not found")
	}

	return c.JSON(http.StatusOK, entry)
}

// CreateStreet creates a canonical street from a curator-entered term
func CreateStreet(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	var req models.CreateStreetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, store, err := ectoinject.GetContext[*streets.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	ctx, repo, err := ectoinject.GetContext[*streetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	entry, err := store.CreateStreet(req.Term)
	if err != nil {
		return aliasError(err)
	}

	// The snapshot rolls back when persistence fails, so the index and
	// the database never diverge.
	if err := repo.Create(ctx, tenantID, entry); err != nil {
		store.RemoveStreet(entry.ID)
		return err
	}

	return c.JSON(http.StatusCreated, entry)
}

// AddAlias appends a homonym, synonym, or candidate term to a street
func AddAlias(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := fernctx.GetTenantID(ctx)

	id := c.Param("id")

	var req models.AddAliasRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, store, err := ectoinject.GetContext[*streets.Store](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	ctx, repo, err := ectoinject.GetContext[*streetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if _, ok := store.Snapshot().Get(id); !ok {
		return httperror.NewHTTPError(http.StatusNotFound, "street not found")
	}

	entry, err := store.AddAlias(id, req.Term, req.Category)
	if err != nil {
		return aliasError(err)
	}

	// Persist the normalized form so reloads rebuild the same index.
	// The snapshot rolls back when persistence fails, so the index and
	// the database never diverge.
	if err := repo.AddAlias(ctx, tenantID, id, normalizers.NormalizeTerm(req.Term), req.Category, models.AliasSourceManualEdit); err != nil {
		store.RemoveAlias(id, req.Term)
		return err
	}

	return c.JSON(http.StatusCreated, entry)
}

// aliasError maps store rejections onto HTTP statuses. A duplicate term
// is a conflict and names the entry that already owns the term.
func aliasError(err error) error {
	var dup *streets.DuplicateTermError
	if errors.As(err, &dup) {
		return httperror.NewHTTPError(http.StatusConflict, dup.Error())
	}
	return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
}
