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

// SetupHandler handles HTTP requests related to shared trade setups
type SetupHandler struct {
	setupRepository repositories.TradeSetupRepository
	facade          *social.Facade
}

// NewSetupHandler creates a new SetupHandler
func NewSetupHandler(setupRepo repositories.TradeSetupRepository, facade *social.Facade) *SetupHandler {
	return &SetupHandler{setupRepository: setupRepo, facade: facade}
}

// RegisterSetupRoutes registers trade-setup-related routes
func (h *SetupHandler) RegisterSetupRoutes(g *echo.Group) {
	g.POST("/setups", h.CreateSetup)
	g.GET("/setups", h.GetFeed)
	g.GET("/setups/:setup_id", h.GetSetup)
	g.GET("/users/:user_id/setups", h.GetSetupsByAuthor)
	g.DELETE("/setups/:setup_id", h.DeleteSetup)
}

// CreateSetup shares a new trade setup to the forum
func (h *SetupHandler) CreateSetup(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	var req models.CreateTradeSetupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	setup := &models.TradeSetup{
		AuthorID:      self,
		Pair:          req.Pair,
		Direction:     req.Direction,
		EntryPrice:    req.EntryPrice,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		Notes:         req.Notes,
		ChartImageURL: req.ChartImageURL,
	}
	if err := h.setupRepository.CreateSetup(c.Request().Context(), setup); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to share trade setup")
	}
	return c.JSON(http.StatusCreated, setup)
}

// GetFeed retrieves the shared setup feed with pagination
func (h *SetupHandler) GetFeed(c echo.Context) error {
	skip, limit := paginationParams(c)

	setups, err := h.setupRepository.GetAllSetups(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve setups")
	}
	return c.JSON(http.StatusOK, setups)
}

// GetSetup retrieves a single trade setup with live counters
func (h *SetupHandler) GetSetup(c echo.Context) error {
	setupID := c.Param("setup_id")

	setup, err := h.setupRepository.GetSetupByID(c.Request().Context(), setupID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Trade setup not found")
	}

	// Prefer the tracked counters over the stored document fields, which
	// are adjusted asynchronously and may lag.
	if counters, err := h.facade.GetCounters(c.Request().Context(), social.SetupEntity(setupID)); err == nil {
		setup.LikesCount = counters.Likes
		setup.DislikesCount = counters.Dislikes
		setup.CommentsCount = counters.Comments
	}
	return c.JSON(http.StatusOK, setup)
}

// GetSetupsByAuthor retrieves setups shared by a specific trader
func (h *SetupHandler) GetSetupsByAuthor(c echo.Context) error {
	authorID := c.Param("user_id")
	skip, limit := paginationParams(c)

	setups, err := h.setupRepository.GetSetupsByAuthor(c.Request().Context(), authorID, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve setups")
	}
	return c.JSON(http.StatusOK, setups)
}

// DeleteSetup deletes a trade setup owned by the authenticated user
func (h *SetupHandler) DeleteSetup(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}
	setupID := c.Param("setup_id")

	setup, err := h.setupRepository.GetSetupByID(c.Request().Context(), setupID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Trade setup not found")
	}
	if setup.AuthorID != self {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own setups")
	}

	if err := h.setupRepository.DeleteSetup(c.Request().Context(), setupID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete trade setup")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Trade setup deleted successfully"})
}

// paginationParams parses skip/limit query parameters with sane defaults
func paginationParams(c echo.Context) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return skip, limit
}
