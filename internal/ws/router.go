package ws

import (
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/workers"
)

// Router fans domain events out to every session subscribed to the target
// rooms. Delivery is best-effort and fire-and-forget: a slow or disconnected
// session never blocks or fails a publish, and failures are never surfaced to
// the request that triggered the event.
type Router struct {
	registry *Registry
	pool     *workers.Pool
	logger   *zap.Logger
}

// NewRouter builds a router. The pool is optional; without one, fanout runs
// inline on the caller's goroutine.
func NewRouter(registry *Registry, pool *workers.Pool, logger *zap.Logger) *Router {
	return &Router{
		registry: registry,
		pool:     pool,
		logger:   logger,
	}
}

// Publish delivers the event to each session subscribed to any of the target
// rooms. A session subscribed to several target rooms receives the event once.
func (r *Router) Publish(event *Event, roomKeys ...string) {
	if r.pool == nil {
		r.fanout(event, roomKeys)
		return
	}
	r.pool.Submit(func() {
		r.fanout(event, roomKeys)
	})
}

func (r *Router) fanout(event *Event, roomKeys []string) {
	seen := make(map[*Session]struct{})
	dropped := 0
	delivered := 0

	for _, key := range roomKeys {
		for _, session := range r.registry.Sessions(key) {
			if _, dup := seen[session]; dup {
				continue
			}
			seen[session] = struct{}{}
			if session.TrySend(event) {
				delivered++
			} else {
				dropped++
			}
		}
	}

	if dropped > 0 {
		r.logger.Debug("dropped event for slow sessions",
			zap.String("event", event.Name),
			zap.Int("delivered", delivered),
			zap.Int("dropped", dropped),
		)
	}
}
