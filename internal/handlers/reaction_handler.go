package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/pipcrest/tradejournal/backend/internal/social"
)

// ReactionHandler handles HTTP requests related to likes and dislikes
type ReactionHandler struct {
	facade          *social.Facade
	setupRepository repositories.TradeSetupRepository // To verify setups exist
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(facade *social.Facade, setupRepo repositories.TradeSetupRepository) *ReactionHandler {
	return &ReactionHandler{facade: facade, setupRepository: setupRepo}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/setups/:setup_id/reactions", h.ReactToSetup)
	g.POST("/comments/:id/reactions", h.ReactToComment)
}

// ReactToSetup toggles the authenticated user's reaction on a trade setup
func (h *ReactionHandler) ReactToSetup(c echo.Context) error {
	setupID := c.Param("setup_id")

	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Verify setup exists
	if _, err := h.setupRepository.GetSetupByID(c.Request().Context(), setupID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Trade setup not found")
	}

	result, err := h.facade.React(c.Request().Context(), models.TargetSetup, setupID, req.Type)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ReactToComment toggles the authenticated user's reaction on a comment
func (h *ReactionHandler) ReactToComment(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.facade.React(c.Request().Context(), models.TargetComment, strconv.FormatUint(commentID, 10), req.Type)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}
