package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dukkea/pokeapi-go/internal/pokemon"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// GetPokemonList handles GET /api/v1/pokemon
func (c *Controller) GetPokemonList(ctx echo.Context) error {
	limit, err := queryInt(ctx, "limit", defaultPageLimit)
	if err != nil || limit <= 0 || limit > maxPageLimit {
		return c.HandleError(ctx, err,
			fmt.Sprintf("limit must be an integer between 1 and %d", maxPageLimit),
			http.StatusBadRequest)
	}

	offset, err := queryInt(ctx, "offset", 0)
	if err != nil || offset < 0 {
		return c.HandleError(ctx, err, "offset must be a non-negative integer", http.StatusBadRequest)
	}

	requestURL := ctx.Scheme() + "://" + ctx.Request().Host + ctx.Request().RequestURI

	page, err := c.Service.List(ctx.Request().Context(), limit, offset, requestURL)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to list pokemon")
	}

	c.apiLogger.Debug("Listed pokemon",
		"limit", limit,
		"offset", offset,
		"results", len(page.Results))
	return ctx.JSON(http.StatusOK, page)
}

// GetPokemonDetail handles GET /api/v1/pokemon/:identifier
func (c *Controller) GetPokemonDetail(ctx echo.Context) error {
	identifier := ctx.Param("identifier")

	detail, err := c.Service.Detail(ctx.Request().Context(), identifier)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to get pokemon detail")
	}
	if detail == nil {
		return c.HandleError(ctx, nil,
			fmt.Sprintf("pokemon not found: %s", identifier),
			http.StatusNotFound)
	}

	return ctx.JSON(http.StatusOK, detail)
}

// UpdatePokemon handles PUT /api/v1/pokemon/:identifier
func (c *Controller) UpdatePokemon(ctx echo.Context) error {
	identifier := ctx.Param("identifier")

	var patch pokemon.UpdateInput
	if err := ctx.Bind(&patch); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	detail, err := c.Service.Update(ctx.Request().Context(), identifier, &patch)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to update pokemon")
	}

	return ctx.JSON(http.StatusOK, detail)
}

func queryInt(ctx echo.Context, name string, fallback int) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return value, nil
}
