package chatroom

import (
	"log"
	"sync"
)

// Registry maps connection codes to the set of live clients bound to them.
// One user can hold several clients at once (multiple devices or tabs).
// A single mutex guards join, leave and broadcast; all three are in-memory
// and fast, the SendQueue enqueue never blocks.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[*Client]bool)}
}

func (r *Registry) Join(userCode string, client *Client) {
	if userCode == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[userCode]
	if !ok {
		room = make(map[*Client]bool)
		r.rooms[userCode] = room
	}
	room[client] = true
}

// Leave removes the client from its room and drops the room once empty.
// Unknown clients are a no-op.
func (r *Registry) Leave(userCode string, client *Client) {
	if userCode == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[userCode]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(r.rooms, userCode)
	}
}

// Broadcast enqueues the event to every live client in the room. Delivery is
// best effort: a missing room is a no-op and a full send queue drops the
// event for that client.
func (r *Registry) Broadcast(userCode string, evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[userCode]
	if !ok {
		return
	}
	for client := range room {
		select {
		case client.SendQueue <- evt:
		default:
			log.Printf("Broadcast: send queue full for client %s", client.TransportID)
		}
	}
}

// RoomSize reports how many clients are currently bound to the code.
func (r *Registry) RoomSize(userCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[userCode])
}
