package ws

import "github.com/google/uuid"

// Session is one connected client from the registry's point of view: an
// identity plus a bounded outbound queue. The websocket plumbing lives in
// Client; tests drive Session directly.
type Session struct {
	ID     string
	UserID string

	send chan *Event
}

func NewSession(userID string, buffer int) *Session {
	return &Session{
		ID:     uuid.New().String(),
		UserID: userID,
		send:   make(chan *Event, buffer),
	}
}

// TrySend queues the event without blocking. A full queue means the session
// is too slow to keep up; the event is dropped and false returned.
func (s *Session) TrySend(event *Event) bool {
	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

// Outbound exposes the queue to the writer pump and to tests.
func (s *Session) Outbound() <-chan *Event {
	return s.send
}
