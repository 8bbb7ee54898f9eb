package realtime

import "sync"

// Registry maps a user id to the set of live chat connections that user
// currently holds. Multiple tabs or devices mean multiple entries under the
// same id. Entirely in-memory and process-local; the gateway owns its
// lifecycle and injects it wherever fan-out is needed.
type Registry struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection to the user's set, creating the set if absent.
// Registering the same connection twice is a no-op.
func (r *Registry) Register(userID uint, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.clients[userID]
	if set == nil {
		set = make(map[*Client]struct{})
		r.clients[userID] = set
	}
	set[client] = struct{}{}
}

// Unregister removes a connection from the user's set. Removing the last
// connection drops the user entry entirely so no empty sets linger.
// Unregistering a connection that was never registered is a silent no-op.
func (r *Registry) Unregister(userID uint, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.clients[userID]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(r.clients, userID)
	}
}

// Lookup returns a snapshot of the user's live connections. The slice is
// safe to iterate while concurrent disconnects mutate the registry; it may
// be empty.
func (r *Registry) Lookup(userID uint) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.clients[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(set))
	for client := range set {
		out = append(out, client)
	}
	return out
}
