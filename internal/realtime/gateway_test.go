package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}, &models.Notification{}))
	return db
}

func newTestGateway(t *testing.T) (*Gateway, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	registry := NewRegistry()
	gateway := NewGateway(
		registry,
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresMessageRepository(db),
		repositories.NewPostgresNotificationRepository(db),
		"test-secret",
	)
	return gateway, db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// drainFrames empties a client's send buffer into decoded envelopes.
func drainFrames(t *testing.T, client *Client) []Envelope {
	t.Helper()
	var envelopes []Envelope
	for {
		select {
		case frame := <-client.send:
			var envelope Envelope
			require.NoError(t, json.Unmarshal(frame, &envelope))
			envelopes = append(envelopes, envelope)
		default:
			return envelopes
		}
	}
}

func eventCounts(envelopes []Envelope) map[string]int {
	counts := make(map[string]int)
	for _, e := range envelopes {
		counts[e.Event]++
	}
	return counts
}

func TestSendMessageFanOut(t *testing.T) {
	gateway, db := newTestGateway(t)

	sender := createUser(t, db, "ngo-hope", models.RoleNGO)
	receiver := createUser(t, db, "vol-rita", models.RoleVolunteer)
	bystander := createUser(t, db, "vol-sam", models.RoleVolunteer)

	origin := newClient(sender, nil)
	senderOtherTab := newClient(sender, nil)
	receiverTab1 := newClient(receiver, nil)
	receiverTab2 := newClient(receiver, nil)
	bystanderTab := newClient(bystander, nil)

	gateway.registry.Register(sender.ID, origin)
	gateway.registry.Register(sender.ID, senderOtherTab)
	gateway.registry.Register(receiver.ID, receiverTab1)
	gateway.registry.Register(receiver.ID, receiverTab2)
	gateway.registry.Register(bystander.ID, bystanderTab)

	gateway.handleSendMessage(origin, SendMessagePayload{ReceiverID: receiver.ID, Content: "hello!"})

	// Every receiver connection gets the message plus the notification
	for _, tab := range []*Client{receiverTab1, receiverTab2} {
		counts := eventCounts(drainFrames(t, tab))
		assert.Equal(t, 1, counts[EventReceiveMessage])
		assert.Equal(t, 1, counts[EventNewNotification])
	}

	// The originating connection gets exactly one confirmation echo
	originEvents := drainFrames(t, origin)
	require.Len(t, originEvents, 1)
	assert.Equal(t, EventReceiveMessage, originEvents[0].Event)

	// The sender's other tab and unrelated users get nothing
	assert.Empty(t, drainFrames(t, senderOtherTab))
	assert.Empty(t, drainFrames(t, bystanderTab))

	// Confirmation carries the populated sender summary
	var populated models.PopulatedMessage
	require.NoError(t, json.Unmarshal(originEvents[0].Data, &populated))
	assert.Equal(t, sender.ID, populated.Sender.ID)
	assert.Equal(t, sender.Name, populated.Sender.Name)
	assert.Equal(t, receiver.ID, populated.ReceiverID)
	assert.Equal(t, "hello!", populated.Content)
	assert.NotZero(t, populated.ID)
}

func TestSendMessageOfflineRecipientStillPersists(t *testing.T) {
	gateway, db := newTestGateway(t)

	sender := createUser(t, db, "ngo-hope", models.RoleNGO)
	receiver := createUser(t, db, "vol-rita", models.RoleVolunteer)

	origin := newClient(sender, nil)
	gateway.registry.Register(sender.ID, origin)

	gateway.handleSendMessage(origin, SendMessagePayload{ReceiverID: receiver.ID, Content: "are you there?"})

	var messageCount, notificationCount int64
	db.Model(&models.Message{}).Count(&messageCount)
	db.Model(&models.Notification{}).Count(&notificationCount)
	assert.Equal(t, int64(1), messageCount)
	assert.Equal(t, int64(1), notificationCount)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)
	assert.Equal(t, receiver.ID, notification.RecipientID)
	require.NotNil(t, notification.SenderID)
	assert.Equal(t, sender.ID, *notification.SenderID)
	assert.Equal(t, "New message from ngo-hope", notification.Content)
	assert.Equal(t, NotificationLink, notification.Link)
	assert.False(t, notification.Read)

	// Sender still gets the confirmation echo
	events := drainFrames(t, origin)
	require.Len(t, events, 1)
	assert.Equal(t, EventReceiveMessage, events[0].Event)
}

func TestSendMessageEmptyContentRejected(t *testing.T) {
	gateway, db := newTestGateway(t)

	sender := createUser(t, db, "ngo-hope", models.RoleNGO)
	receiver := createUser(t, db, "vol-rita", models.RoleVolunteer)

	origin := newClient(sender, nil)
	receiverTab := newClient(receiver, nil)
	gateway.registry.Register(sender.ID, origin)
	gateway.registry.Register(receiver.ID, receiverTab)

	gateway.handleSendMessage(origin, SendMessagePayload{ReceiverID: receiver.ID, Content: "   \n\t "})

	events := drainFrames(t, origin)
	require.Len(t, events, 1)
	assert.Equal(t, EventChatError, events[0].Event)
	assert.Empty(t, drainFrames(t, receiverTab))

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Zero(t, count)
}

type failingNotificationRepo struct {
	repositories.NotificationRepository
}

func (f *failingNotificationRepo) CreateNotification(*models.Notification) error {
	return errors.New("store unavailable")
}

func TestSendMessageNotificationFailureSkipsFanOut(t *testing.T) {
	gateway, db := newTestGateway(t)
	gateway.notifications = &failingNotificationRepo{}

	sender := createUser(t, db, "ngo-hope", models.RoleNGO)
	receiver := createUser(t, db, "vol-rita", models.RoleVolunteer)

	origin := newClient(sender, nil)
	receiverTab := newClient(receiver, nil)
	gateway.registry.Register(sender.ID, origin)
	gateway.registry.Register(receiver.ID, receiverTab)

	gateway.handleSendMessage(origin, SendMessagePayload{ReceiverID: receiver.ID, Content: "hello"})

	// Error to the origin only, no partial fan-out
	events := drainFrames(t, origin)
	require.Len(t, events, 1)
	assert.Equal(t, EventChatError, events[0].Event)
	assert.Empty(t, drainFrames(t, receiverTab))

	// The message write is not rolled back
	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSendMessageEchoToClosedOriginDoesNotPanic(t *testing.T) {
	gateway, db := newTestGateway(t)

	sender := createUser(t, db, "ngo-hope", models.RoleNGO)
	receiver := createUser(t, db, "vol-rita", models.RoleVolunteer)

	origin := newClient(sender, nil)
	receiverTab := newClient(receiver, nil)
	gateway.registry.Register(sender.ID, origin)
	gateway.registry.Register(receiver.ID, receiverTab)

	// The origin disconnects while its send is still in flight
	gateway.disconnect(origin)

	assert.NotPanics(t, func() {
		gateway.handleSendMessage(origin, SendMessagePayload{ReceiverID: receiver.ID, Content: "last words"})
	})

	// Fan-out to the receiver still happened
	counts := eventCounts(drainFrames(t, receiverTab))
	assert.Equal(t, 1, counts[EventReceiveMessage])
	assert.Equal(t, 1, counts[EventNewNotification])

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSelfMessageIsAllowed(t *testing.T) {
	gateway, db := newTestGateway(t)

	user := createUser(t, db, "vol-rita", models.RoleVolunteer)
	origin := newClient(user, nil)
	otherTab := newClient(user, nil)
	gateway.registry.Register(user.ID, origin)
	gateway.registry.Register(user.ID, otherTab)

	gateway.handleSendMessage(origin, SendMessagePayload{ReceiverID: user.ID, Content: "note to self"})

	// The origin is both a recipient connection and the echo target
	counts := eventCounts(drainFrames(t, origin))
	assert.Equal(t, 2, counts[EventReceiveMessage])
	assert.Equal(t, 1, counts[EventNewNotification])

	counts = eventCounts(drainFrames(t, otherTab))
	assert.Equal(t, 1, counts[EventReceiveMessage])
	assert.Equal(t, 1, counts[EventNewNotification])
}
