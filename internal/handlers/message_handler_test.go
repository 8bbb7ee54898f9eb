package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
)

func sendTestMessage(t *testing.T, db *gorm.DB, senderID, receiverID uint, content string, createdAt time.Time) {
	t.Helper()
	repo := repositories.NewPostgresMessageRepository(db)
	require.NoError(t, repo.CreateMessage(&models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  createdAt,
	}))
}

func conversationsFor(t *testing.T, h *MessageHandler, userID uint) []models.UserSummary {
	t.Helper()
	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/messages/conversations", userID)
	require.NoError(t, h.GetConversations(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Conversations []models.UserSummary `json:"conversations"`
	}
	decodeBody(t, rec, &body)
	return body.Conversations
}

func TestGetConversationsDerivesCounterparts(t *testing.T) {
	db := openTestDB(t)
	h := NewMessageHandler(repositories.NewPostgresMessageRepository(db), repositories.NewPostgresUserRepository(db))

	alice := createUser(t, db, "alice", models.RoleVolunteer)
	bob := createUser(t, db, "bob", models.RoleNGO)
	carol := createUser(t, db, "carol", models.RoleVolunteer)
	dave := createUser(t, db, "dave", models.RoleVolunteer)

	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	sendTestMessage(t, db, alice.ID, bob.ID, "hi bob", base)
	sendTestMessage(t, db, bob.ID, alice.ID, "hi alice", base.Add(time.Minute))
	sendTestMessage(t, db, alice.ID, carol.ID, "hi carol", base.Add(2*time.Minute))

	// Alice talked to bob and carol; carol is more recent so she leads.
	conversations := conversationsFor(t, h, alice.ID)
	require.Len(t, conversations, 2)
	assert.Equal(t, carol.ID, conversations[0].ID)
	assert.Equal(t, bob.ID, conversations[1].ID)
	assert.Equal(t, "carol", conversations[0].Name)

	// Bob only ever talked to alice; the reply does not duplicate her.
	conversations = conversationsFor(t, h, bob.ID)
	require.Len(t, conversations, 1)
	assert.Equal(t, alice.ID, conversations[0].ID)

	// Dave has no history at all.
	assert.Empty(t, conversationsFor(t, h, dave.ID))
}

func TestGetConversationsEmptyIsArrayNotNull(t *testing.T) {
	db := openTestDB(t)
	h := NewMessageHandler(repositories.NewPostgresMessageRepository(db), repositories.NewPostgresUserRepository(db))
	user := createUser(t, db, "loner", models.RoleVolunteer)

	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/messages/conversations", user.ID)
	require.NoError(t, h.GetConversations(c))
	assert.JSONEq(t, `{"conversations":[]}`, rec.Body.String())
}

func TestGetMessagesPopulatesSenders(t *testing.T) {
	db := openTestDB(t)
	h := NewMessageHandler(repositories.NewPostgresMessageRepository(db), repositories.NewPostgresUserRepository(db))

	alice := createUser(t, db, "alice", models.RoleVolunteer)
	bob := createUser(t, db, "bob", models.RoleNGO)
	carol := createUser(t, db, "carol", models.RoleVolunteer)

	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	sendTestMessage(t, db, alice.ID, bob.ID, "first", base)
	sendTestMessage(t, db, bob.ID, alice.ID, "second", base.Add(time.Minute))
	sendTestMessage(t, db, alice.ID, carol.ID, "unrelated", base.Add(2*time.Minute))

	c, rec := newAuthedContext(t, http.MethodGet, "/api/v1/messages/2", alice.ID)
	c.SetParamNames("otherUserId")
	c.SetParamValues("2")
	require.NoError(t, h.GetMessages(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Messages []models.PopulatedMessage `json:"messages"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "first", body.Messages[0].Content)
	assert.Equal(t, "alice", body.Messages[0].Sender.Name)
	assert.Equal(t, "second", body.Messages[1].Content)
	assert.Equal(t, "bob", body.Messages[1].Sender.Name)
}

func TestGetMessagesRejectsBadUserID(t *testing.T) {
	db := openTestDB(t)
	h := NewMessageHandler(repositories.NewPostgresMessageRepository(db), repositories.NewPostgresUserRepository(db))
	user := createUser(t, db, "alice", models.RoleVolunteer)

	c, _ := newAuthedContext(t, http.MethodGet, "/api/v1/messages/abc", user.ID)
	c.SetParamNames("otherUserId")
	c.SetParamValues("abc")

	err := h.GetMessages(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestGetConversationsRequiresAuth(t *testing.T) {
	db := openTestDB(t)
	h := NewMessageHandler(repositories.NewPostgresMessageRepository(db), repositories.NewPostgresUserRepository(db))

	c, _ := newAuthedContext(t, http.MethodGet, "/api/v1/messages/conversations", 0)
	err := h.GetConversations(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(err))
}
