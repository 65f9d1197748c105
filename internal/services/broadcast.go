package services

import "github.com/Gopher0727/Concord/internal/ws"

// Broadcaster is how services hand finished domain events to the real-time
// layer. It is injected, never a package global; ws.Router is the production
// implementation. Publish is fire-and-forget: by the time an event is
// published, the store mutation has already succeeded, so delivery problems
// are never surfaced to the request.
type Broadcaster interface {
	Publish(event *ws.Event, roomKeys ...string)
}
