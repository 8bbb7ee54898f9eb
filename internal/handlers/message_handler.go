package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/volunhub/backend/internal/middleware"
	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
)

// MessageHandler serves chat history and the derived conversation list.
// Sending goes through the realtime gateway, not REST.
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
	}
}

// RegisterMessageRoutes registers messaging routes. The static
// /conversations route must be registered before the :otherUserId param
// route.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages/conversations", h.GetConversations)
	g.GET("/messages/:otherUserId", h.GetMessages)
}

// GetConversations derives the distinct set of counterparts the user has
// exchanged messages with, most recently active first. Conversations are
// not stored; they are recomputed from the message log on every call.
func (h *MessageHandler) GetConversations(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	messages, err := h.messageRepository.GetForUser(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Messages arrive newest-first, so first sighting of a counterpart id
	// fixes its position by most recent activity.
	seen := make(map[uint]struct{})
	var counterpartIDs []uint
	for _, msg := range messages {
		counterpart := msg.SenderID
		if counterpart == currentUserID {
			counterpart = msg.ReceiverID
		}
		if _, ok := seen[counterpart]; ok {
			continue
		}
		seen[counterpart] = struct{}{}
		counterpartIDs = append(counterpartIDs, counterpart)
	}

	users, err := h.userRepository.GetUsersByIDs(counterpartIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	byID := make(map[uint]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].ToSummary()
	}

	conversations := make([]models.UserSummary, 0, len(counterpartIDs))
	for _, id := range counterpartIDs {
		if summary, ok := byID[id]; ok {
			conversations = append(conversations, summary)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations})
}

// GetMessages returns the last 100 messages between the requester and
// another user, oldest first, with senders resolved to summaries.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	otherUserID, err := strconv.ParseUint(c.Param("otherUserId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	messages, err := h.messageRepository.GetBetweenUsers(currentUserID, uint(otherUserID), repositories.DefaultHistoryLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Both endpoints of the conversation cover every possible sender.
	summaries := make(map[uint]models.UserSummary, 2)
	for _, id := range []uint{currentUserID, uint(otherUserID)} {
		if user, err := h.userRepository.GetUserByID(id); err == nil {
			summaries[id] = user.ToSummary()
		}
	}

	populated := make([]models.PopulatedMessage, 0, len(messages))
	for i := range messages {
		populated = append(populated, messages[i].Populate(summaries[messages[i].SenderID]))
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": populated})
}
