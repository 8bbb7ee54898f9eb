package realtime

import (
	"encoding/json"

	"github.com/volunhub/backend/internal/models"
)

// Event names exchanged over the chat websocket.
const (
	EventSendMessage     = "sendMessage"
	EventReceiveMessage  = "receiveMessage"
	EventNewNotification = "newNotification"
	EventChatError       = "chatError"
)

// Envelope wraps every frame on the wire: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the only inbound intent accepted on an open
// connection.
type SendMessagePayload struct {
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content"`
}

// ChatErrorPayload is pushed to the originating connection when a send
// fails. It never closes the connection.
type ChatErrorPayload struct {
	Message string `json:"message"`
}

func newEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

func messageEvent(message models.PopulatedMessage) ([]byte, error) {
	return newEnvelope(EventReceiveMessage, message)
}

func notificationEvent(notification *models.Notification) ([]byte, error) {
	return newEnvelope(EventNewNotification, notification)
}

func errorEvent(message string) ([]byte, error) {
	return newEnvelope(EventChatError, ChatErrorPayload{Message: message})
}
