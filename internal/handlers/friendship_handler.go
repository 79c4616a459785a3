package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/social"
)

// FriendshipHandler handles HTTP requests related to friendships and blocks
type FriendshipHandler struct {
	facade *social.Facade
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(facade *social.Facade) *FriendshipHandler {
	return &FriendshipHandler{facade: facade}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests", h.SendFriendRequest)
	g.GET("/friends/requests/incoming", h.GetIncomingRequests)
	g.POST("/friends/requests/:sender_id/accept", h.AcceptFriendRequest)
	g.POST("/friends/requests/:sender_id/decline", h.DeclineFriendRequest)
	g.DELETE("/friends/requests/:recipient_id", h.CancelFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:user_id", h.Unfriend)
	g.POST("/blocks", h.BlockUser)
	g.DELETE("/blocks/:user_id", h.UnblockUser)
	g.GET("/relationships/:user_id", h.GetRelationship)
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	var req models.CreateFriendRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	friendRequest, err := h.facade.SendRequest(c.Request().Context(), req.RecipientID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, friendRequest)
}

// GetIncomingRequests retrieves pending friend requests addressed to the
// authenticated user
func (h *FriendshipHandler) GetIncomingRequests(c echo.Context) error {
	requests, err := h.facade.ListIncomingRequests(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// AcceptFriendRequest accepts a pending request from the sender in the path
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	if err := h.facade.AcceptRequest(c.Request().Context(), c.Param("sender_id")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeclineFriendRequest declines a pending request from the sender in the path
func (h *FriendshipHandler) DeclineFriendRequest(c echo.Context) error {
	if err := h.facade.DeclineRequest(c.Request().Context(), c.Param("sender_id")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelFriendRequest withdraws the authenticated user's pending request
// to the recipient in the path
func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	if err := h.facade.CancelRequest(c.Request().Context(), c.Param("recipient_id")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFriends retrieves the authenticated user's friends list
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	friends, err := h.facade.ListFriends(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, friends)
}

// Unfriend removes an accepted friendship
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	if err := h.facade.Unfriend(c.Request().Context(), c.Param("user_id")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BlockUser blocks another user
func (h *FriendshipHandler) BlockUser(c echo.Context) error {
	var req models.UserTargetBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.facade.Block(c.Request().Context(), req.UserID); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnblockUser lifts a block the authenticated user previously placed
func (h *FriendshipHandler) UnblockUser(c echo.Context) error {
	if err := h.facade.Unblock(c.Request().Context(), c.Param("user_id")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetRelationship reports the relationship between the authenticated user
// and the user in the path
func (h *FriendshipHandler) GetRelationship(c echo.Context) error {
	relationship, err := h.facade.GetRelationship(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": c.Param("user_id"), "relationship": relationship})
}
