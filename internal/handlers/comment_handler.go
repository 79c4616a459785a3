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

// CommentHandler handles HTTP requests related to comments on trade setups
type CommentHandler struct {
	facade          *social.Facade
	setupRepository repositories.TradeSetupRepository // To verify setups exist
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(facade *social.Facade, setupRepo repositories.TradeSetupRepository) *CommentHandler {
	return &CommentHandler{facade: facade, setupRepository: setupRepo}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/setups/:setup_id/comments", h.CreateComment)
	g.POST("/setups/:setup_id/replies", h.CreateReply)
	g.GET("/setups/:setup_id/comments", h.GetCommentTree)
	g.PATCH("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.GET("/setups/:setup_id/counters", h.GetSetupCounters)
	g.GET("/comments/:id/counters", h.GetCommentCounters)
}

// CreateComment creates a new top-level comment on a trade setup
func (h *CommentHandler) CreateComment(c echo.Context) error {
	setupID := c.Param("setup_id")

	var req models.CreateCommentRequest
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

	comment, err := h.facade.PostComment(c.Request().Context(), setupID, req.Content)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// CreateReply creates a reply to an existing comment on a trade setup
func (h *CommentHandler) CreateReply(c echo.Context) error {
	setupID := c.Param("setup_id")

	var req models.CreateReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reply, err := h.facade.PostReply(c.Request().Context(), setupID, req.ParentCommentID, req.Content)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, reply)
}

// GetCommentTree retrieves a setup's comments as a nested reply tree
func (h *CommentHandler) GetCommentTree(c echo.Context) error {
	setupID := c.Param("setup_id")

	// Verify setup exists
	if _, err := h.setupRepository.GetSetupByID(c.Request().Context(), setupID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Trade setup not found")
	}

	tree, err := h.facade.BuildCommentTree(c.Request().Context(), setupID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tree)
}

// UpdateComment edits a comment owned by the authenticated user
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.facade.EditComment(c.Request().Context(), uint(commentID), req.Content)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment owned by the authenticated user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.facade.DeleteComment(c.Request().Context(), uint(commentID)); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSetupCounters retrieves the engagement counters for a trade setup
func (h *CommentHandler) GetSetupCounters(c echo.Context) error {
	counters, err := h.facade.GetCounters(c.Request().Context(), social.SetupEntity(c.Param("setup_id")))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, counters)
}

// GetCommentCounters retrieves the engagement counters for a comment
func (h *CommentHandler) GetCommentCounters(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	counters, err := h.facade.GetCounters(c.Request().Context(), social.CommentEntity(uint(commentID)))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, counters)
}
