package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
)

func addNotification(t *testing.T, db *gorm.DB, recipientID uint, content string, read bool) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		RecipientID: recipientID,
		Content:     content,
		Link:        "/messages",
		Read:        read,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestGetNotificationsEnvelope(t *testing.T) {
	db := openTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))
	user := createUser(t, db, "vol-rita", models.RoleVolunteer)

	addNotification(t, db, user.ID, "New message from bob", false)
	addNotification(t, db, user.ID, "Your application has been accepted", false)
	addNotification(t, db, user.ID, "old news", true)
	addNotification(t, db, user.ID+1, "not yours", false)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/notifications", user.ID)
	require.NoError(t, h.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int64                 `json:"unreadCount"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Notifications, 3)
	assert.Equal(t, int64(2), body.UnreadCount)
	for _, n := range body.Notifications {
		assert.Equal(t, user.ID, n.RecipientID)
	}
}

func TestMarkAsReadNotOwnerIs404(t *testing.T) {
	db := openTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))
	owner := createUser(t, db, "vol-rita", models.RoleVolunteer)
	intruder := createUser(t, db, "vol-sam", models.RoleVolunteer)

	notification := addNotification(t, db, owner.ID, "hello", false)

	c, _ := newAuthedContext(t, http.MethodPut, "/api/v1/notifications/1/read", intruder.ID)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(notification.ID))

	err := h.MarkAsRead(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(err))

	var stored models.Notification
	require.NoError(t, db.First(&stored, notification.ID).Error)
	assert.False(t, stored.Read)
}

func TestMarkAsReadOwner(t *testing.T) {
	db := openTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))
	owner := createUser(t, db, "vol-rita", models.RoleVolunteer)

	notification := addNotification(t, db, owner.ID, "hello", false)

	c, rec := newAuthedContext(t, http.MethodPut, "/api/v1/notifications/1/read", owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(notification.ID))

	require.NoError(t, h.MarkAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Notification
	require.NoError(t, db.First(&stored, notification.ID).Error)
	assert.True(t, stored.Read)
}

func TestMarkAsReadInvalidID(t *testing.T) {
	db := openTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))
	owner := createUser(t, db, "vol-rita", models.RoleVolunteer)

	c, _ := newAuthedContext(t, http.MethodPut, "/api/v1/notifications/abc/read", owner.ID)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.MarkAsRead(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestMarkAllAsRead(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	h := NewNotificationHandler(repo)
	owner := createUser(t, db, "vol-rita", models.RoleVolunteer)

	addNotification(t, db, owner.ID, "a", false)
	addNotification(t, db, owner.ID, "b", false)

	c, rec := newAuthedContext(t, http.MethodPut, "/api/v1/notifications/read-all", owner.ID)
	require.NoError(t, h.MarkAllAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.GetUnreadCount(owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
