package realtime

import (
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
	"github.com/volunhub/backend/pkg/metrics"
)

// NotificationLink is the deep link attached to new-message notifications.
const NotificationLink = "/messages"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the Echo layer
	},
}

// Gateway authenticates incoming chat connections, tracks them in the
// Registry and orchestrates persistence plus fan-out for sendMessage
// intents.
type Gateway struct {
	registry      *Registry
	users         repositories.UserRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	jwtSecret     string
}

func NewGateway(
	registry *Registry,
	users repositories.UserRepository,
	messages repositories.MessageRepository,
	notifications repositories.NotificationRepository,
	jwtSecret string,
) *Gateway {
	return &Gateway{
		registry:      registry,
		users:         users,
		messages:      messages,
		notifications: notifications,
		jwtSecret:     jwtSecret,
	}
}

// NotifyUser pushes a stored notification to every live connection the
// recipient currently holds. Used by REST handlers that create
// notifications outside the chat flow; a fully offline recipient simply
// gets no live push.
func (g *Gateway) NotifyUser(userID uint, notification *models.Notification) {
	frame, err := notificationEvent(notification)
	if err != nil {
		log.Printf("Chat: failed to encode notification event: %v", err)
		return
	}
	for _, client := range g.registry.Lookup(userID) {
		client.enqueue(frame)
	}
}

// RegisterRoutes registers the websocket endpoint
func (g *Gateway) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/chat", g.HandleConnection)
}

// HandleConnection is the websocket handshake: authenticate first, only
// then upgrade. An invalid or missing token never reaches the open state.
func (g *Gateway) HandleConnection(c echo.Context) error {
	user, err := g.authenticate(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Chat upgrade failed for user %d: %v", user.ID, err)
		return nil
	}

	client := newClient(user, conn)
	g.registry.Register(user.ID, client)
	metrics.LiveConnections.Inc()
	log.Printf("Chat connected: %s (user %d)", user.Name, user.ID)

	go client.writePump()
	client.readPump(g)
	return nil
}

// authenticate validates the handshake token and resolves it to a live
// user record. The token travels as a query parameter because browsers
// cannot set headers on a websocket handshake.
func (g *Gateway) authenticate(c echo.Context) (*models.User, error) {
	token := c.QueryParam("token")
	if token == "" {
		if header := c.Request().Header.Get("Authorization"); header != "" {
			parts := strings.Split(header, " ")
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}
	}
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
	}

	claims := &models.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
		}
		return []byte(g.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid")
	}

	user, err := g.users.GetUserByID(claims.UserID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	return user, nil
}

// disconnect tears a connection down: drop it from the registry, then close
// it. In-flight sends keep running; their confirmation echo to this client
// becomes a silent no-op.
func (g *Gateway) disconnect(client *Client) {
	g.registry.Unregister(client.user.ID, client)
	client.close()
	metrics.LiveConnections.Dec()
	log.Printf("Chat disconnected: %s (user %d)", client.user.Name, client.user.ID)
}

// handleSendMessage processes one sendMessage intent: persist the message
// and its notification, fan both out to every live connection the receiver
// holds, and confirm to the originating connection only. Persistence
// failures abort before any fan-out and surface solely on the origin.
func (g *Gateway) handleSendMessage(origin *Client, payload SendMessagePayload) {
	sender := origin.user

	message := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: payload.ReceiverID,
		Content:    payload.Content,
	}
	if err := g.messages.CreateMessage(message); err != nil {
		if err == repositories.ErrEmptyMessageContent {
			g.pushError(origin, "Message content must not be empty.")
			return
		}
		log.Printf("Chat: failed to store message from %d to %d: %v", sender.ID, payload.ReceiverID, err)
		g.pushError(origin, "Failed to send message.")
		return
	}
	metrics.MessagesSent.Inc()

	senderID := sender.ID
	notification := &models.Notification{
		RecipientID: payload.ReceiverID,
		SenderID:    &senderID,
		Content:     "New message from " + sender.Name,
		Link:        NotificationLink,
	}
	if err := g.notifications.CreateNotification(notification); err != nil {
		// The message is already stored and stays stored; it will show up
		// on the next history fetch even though this push never happens.
		log.Printf("Chat: failed to store notification for %d: %v", payload.ReceiverID, err)
		g.pushError(origin, "Failed to send message.")
		return
	}
	metrics.NotificationsCreated.Inc()

	populated := message.Populate(sender.ToSummary())

	messageFrame, err := messageEvent(populated)
	if err != nil {
		log.Printf("Chat: failed to encode message event: %v", err)
		g.pushError(origin, "Failed to send message.")
		return
	}
	notificationFrame, err := notificationEvent(notification)
	if err != nil {
		log.Printf("Chat: failed to encode notification event: %v", err)
		g.pushError(origin, "Failed to send message.")
		return
	}

	for _, recipient := range g.registry.Lookup(payload.ReceiverID) {
		recipient.enqueue(messageFrame)
		recipient.enqueue(notificationFrame)
	}

	// Confirmation goes to the originating connection only, not to the
	// sender's other tabs.
	origin.enqueue(messageFrame)
}

func (g *Gateway) pushError(origin *Client, message string) {
	metrics.ChatErrors.Inc()
	frame, err := errorEvent(message)
	if err != nil {
		return
	}
	origin.enqueue(frame)
}
