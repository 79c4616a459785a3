package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/social"
)

// domainHTTPError maps a social core error to an HTTP error with an
// actionable message. Raw storage errors never reach the client.
func domainHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, social.ErrNotAuthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "You must be signed in to do that")
	case errors.Is(err, social.ErrSelfReference):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot perform this action on your own account")
	case errors.Is(err, social.ErrDuplicateRequest):
		return echo.NewHTTPError(http.StatusConflict, "You already have a pending request to this user")
	case errors.Is(err, social.ErrReciprocalRequest):
		return echo.NewHTTPError(http.StatusConflict, "This user has already sent you a request; accept it instead")
	case errors.Is(err, social.ErrAlreadyFriends):
		return echo.NewHTTPError(http.StatusConflict, "You are already friends with this user")
	case errors.Is(err, social.ErrRequestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "This request is no longer available")
	case errors.Is(err, social.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	case errors.Is(err, social.ErrRelationshipConflict):
		return echo.NewHTTPError(http.StatusConflict, "This relationship was just changed elsewhere; refresh and try again")
	case errors.Is(err, social.ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to perform this action")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
