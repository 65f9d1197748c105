package ws

import "sync"

// Registry is the process-local bidirectional index between sessions and the
// rooms they subscribe to. Rooms have no stored existence: a room is exactly
// the set of sessions currently subscribed to its key.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
	}
}

// Subscribe adds the session to the room. Subscribing an already-subscribed
// pair is a no-op.
func (r *Registry) Subscribe(session *Session, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomKey]
	if !ok {
		room = make(map[*Session]struct{})
		r.rooms[roomKey] = room
	}
	room[session] = struct{}{}

	keys, ok := r.sessions[session]
	if !ok {
		keys = make(map[string]struct{})
		r.sessions[session] = keys
	}
	keys[roomKey] = struct{}{}
}

// Unsubscribe removes the session from the room; idempotent.
func (r *Registry) Unsubscribe(session *Session, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(session, roomKey)
}

// SessionClosed removes the session from every room it was subscribed to.
// No dangling references survive a disconnect.
func (r *Registry) SessionClosed(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomKey := range r.sessions[session] {
		r.remove(session, roomKey)
	}
	delete(r.sessions, session)
}

// remove expects the write lock to be held.
func (r *Registry) remove(session *Session, roomKey string) {
	if room, ok := r.rooms[roomKey]; ok {
		delete(room, session)
		if len(room) == 0 {
			delete(r.rooms, roomKey)
		}
	}
	if keys, ok := r.sessions[session]; ok {
		delete(keys, roomKey)
		if len(keys) == 0 {
			delete(r.sessions, session)
		}
	}
}

// Sessions snapshots the current subscribers of a room.
func (r *Registry) Sessions(roomKey string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomKey]
	out := make([]*Session, 0, len(room))
	for session := range room {
		out = append(out, session)
	}
	return out
}

// Rooms snapshots the room keys a session is subscribed to.
func (r *Registry) Rooms(session *Session) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.sessions[session]
	out := make([]string, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	return out
}

// RoomCount reports how many rooms currently have at least one subscriber.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// SessionCount reports how many sessions hold at least one subscription.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
