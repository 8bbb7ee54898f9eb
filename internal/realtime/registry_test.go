package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volunhub/backend/internal/models"
)

func TestRegistryMultipleConnectionsPerUser(t *testing.T) {
	registry := NewRegistry()
	user := &models.User{ID: 1, Name: "Asha"}

	tab1 := newClient(user, nil)
	tab2 := newClient(user, nil)

	registry.Register(user.ID, tab1)
	registry.Register(user.ID, tab2)

	clients := registry.Lookup(user.ID)
	assert.Len(t, clients, 2)
	assert.Contains(t, clients, tab1)
	assert.Contains(t, clients, tab2)

	registry.Unregister(user.ID, tab1)
	clients = registry.Lookup(user.ID)
	assert.Len(t, clients, 1)
	assert.Contains(t, clients, tab2)

	registry.Unregister(user.ID, tab2)
	assert.Empty(t, registry.Lookup(user.ID))

	// The user entry itself is gone, not just emptied
	registry.mu.RLock()
	_, exists := registry.clients[user.ID]
	registry.mu.RUnlock()
	assert.False(t, exists)
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	registry := NewRegistry()
	user := &models.User{ID: 7}
	client := newClient(user, nil)

	registry.Register(user.ID, client)
	registry.Register(user.ID, client)

	assert.Len(t, registry.Lookup(user.ID), 1)
}

func TestRegistryUnregisterUnknownIsNoOp(t *testing.T) {
	registry := NewRegistry()
	user := &models.User{ID: 3}

	registry.Unregister(user.ID, newClient(user, nil))

	registered := newClient(user, nil)
	registry.Register(user.ID, registered)
	registry.Unregister(user.ID, newClient(user, nil))

	assert.Len(t, registry.Lookup(user.ID), 1)
}

func TestRegistryLookupUnknownUser(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.Lookup(42))
}
