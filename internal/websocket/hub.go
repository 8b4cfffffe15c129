package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/presence"
)

// Sink receives encoded frames for one connection. Deliver must not block.
type Sink interface {
	Deliver(frame []byte) error
	Close()
}

// Hub fans events out to the connections present in a room. Recipients are taken
// from a registry snapshot before dispatch, so membership changes during a
// broadcast only affect later broadcasts.
type Hub struct {
	registry *presence.Registry

	// connection id -> sink
	sinks map[string]Sink
	mu    sync.RWMutex

	// held across snapshot and enqueue so presence frames reach every
	// queue in the order the snapshots were taken
	presenceMu sync.Mutex

	log *zap.Logger
}

func NewHub(registry *presence.Registry, log *zap.Logger) *Hub {
	return &Hub{
		registry: registry,
		sinks:    make(map[string]Sink),
		log:      log.Named("hub"),
	}
}

func (h *Hub) Registry() *presence.Registry {
	return h.registry
}

func (h *Hub) attach(connectionID string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[connectionID] = sink
}

func (h *Hub) detach(connectionID string) Sink {
	h.mu.Lock()
	defer h.mu.Unlock()

	sink := h.sinks[connectionID]
	delete(h.sinks, connectionID)
	return sink
}

// Broadcast delivers payload to every connection currently in room. Delivery is
// fire-and-forget: failing recipients are logged and skipped.
func (h *Hub) Broadcast(room, event string, payload any) {
	h.deliver(room, event, payload, h.registry.Snapshot(room))
}

// EmitPresence broadcasts the room's current participant list to its members.
func (h *Hub) EmitPresence(room string) {
	h.presenceMu.Lock()
	defer h.presenceMu.Unlock()

	participants := h.registry.Snapshot(room)
	h.deliver(room, EventPresence, participants, participants)
}

func (h *Hub) deliver(room, event string, payload any, recipients []presence.Participant) {
	if len(recipients) == 0 {
		return
	}

	frame, err := encodeFrame(room, event, payload)
	if err != nil {
		h.log.Warn("failed to encode frame",
			zap.String("room", room),
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	sinks := make([]Sink, 0, len(recipients))
	h.mu.RLock()
	for _, p := range recipients {
		if sink, ok := h.sinks[p.ConnectionID]; ok {
			sinks = append(sinks, sink)
		}
	}
	h.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Deliver(frame); err != nil {
			h.log.Debug("dropped frame",
				zap.String("room", room),
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}
}

// ConnectionCount reports the number of attached connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

// Stop closes every attached connection and clears presence.
func (h *Hub) Stop() {
	h.mu.Lock()
	sinks := h.sinks
	h.sinks = make(map[string]Sink)
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Close()
	}
	h.registry.Clear()

	h.log.Info("hub stopped", zap.Int("connections", len(sinks)))
}
