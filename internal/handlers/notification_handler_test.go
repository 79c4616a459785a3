package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotificationRepo struct {
	notifications []*models.Notification
}

func (s *stubNotificationRepo) CreateNotification(n *models.Notification) error {
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *stubNotificationRepo) GetByRecipientID(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubNotificationRepo) GetUnreadCount(recipientID string) (int64, error) {
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationRepo) MarkAsRead(recipientID string, notificationID uint) (int64, error) {
	var rows int64
	for _, n := range s.notifications {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.IsRead = true
			rows++
		}
	}
	return rows, nil
}

func (s *stubNotificationRepo) MarkAllAsRead(recipientID string) error {
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func markAsReadContext(e *echo.Echo, uid, id string) echo.Context {
	req := httptest.NewRequest(http.MethodPatch, "/notifications/"+id+"/read", nil)
	req = req.WithContext(social.WithUserID(req.Context(), uid))
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestMarkAsReadScopedToRecipient(t *testing.T) {
	repo := &stubNotificationRepo{notifications: []*models.Notification{
		{ID: 1, RecipientID: "bob", Type: models.NotificationComment},
	}}
	h := NewNotificationHandler(repo)
	e := echo.New()

	// Another user cannot mark bob's notification read.
	err := h.MarkAsRead(markAsReadContext(e, "alice", "1"))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.False(t, repo.notifications[0].IsRead)

	require.NoError(t, h.MarkAsRead(markAsReadContext(e, "bob", "1")))
	assert.True(t, repo.notifications[0].IsRead)
}
