package websocket

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/presence"
)

// Connection is one live socket. It moves Connected -> (joined rooms)* -> Disconnected
// and must not be reused after Disconnect.
type Connection struct {
	ID     string
	UserID uint

	sink   Sink
	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// Manager drives the presence registry and the hub from connection events.
// It never touches durable storage.
type Manager struct {
	hub      *Hub
	registry *presence.Registry
	log      *zap.Logger
}

func NewManager(hub *Hub, log *zap.Logger) *Manager {
	return &Manager{
		hub:      hub,
		registry: hub.Registry(),
		log:      log.Named("connections"),
	}
}

// Connect allocates an identifier for a new socket and makes it reachable by the hub.
func (m *Manager) Connect(userID uint, sink Sink) *Connection {
	c := &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		sink:   sink,
	}
	m.hub.attach(c.ID, sink)

	m.log.Debug("connection opened", zap.String("connection_id", c.ID), zap.Uint("user_id", userID))
	return c
}

// Join registers the connection in room and broadcasts the new presence list.
func (m *Manager) Join(c *Connection, room string, info *UserInfo) error {
	if err := m.checkRoom(c, room); err != nil {
		m.log.Debug("join dropped",
			zap.String("connection_id", c.ID),
			zap.String("room", room),
			zap.Error(err),
		)
		return err
	}

	participant := presence.Participant{UserID: c.UserID}
	if info != nil {
		participant.Name = info.Name
		participant.Avatar = info.Avatar
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		m.log.Debug("join after disconnect", zap.String("connection_id", c.ID), zap.String("room", room))
		return ErrConnectionClosed
	}
	m.registry.Join(room, c.ID, participant)
	c.mu.Unlock()

	m.hub.EmitPresence(room)
	return nil
}

// Leave removes the connection from room. Remaining members get the updated
// presence list; an emptied room gets nothing.
func (m *Manager) Leave(c *Connection, room string) error {
	if isBlankRoom(room) {
		m.log.Debug("leave dropped", zap.String("connection_id", c.ID), zap.Error(ErrEmptyRoom))
		return ErrEmptyRoom
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}
	remaining, removed := m.registry.Leave(room, c.ID)
	c.mu.Unlock()

	if removed && remaining > 0 {
		m.hub.EmitPresence(room)
	}
	return nil
}

// Disconnect is the terminal transition. It is safe to call more than once,
// from the read loop and from an explicit close, only the first call acts.
func (m *Manager) Disconnect(c *Connection) {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		departures := m.registry.RemoveConnection(c.ID)
		c.mu.Unlock()

		if sink := m.hub.detach(c.ID); sink != nil {
			sink.Close()
		}

		for _, d := range departures {
			if d.Remaining > 0 {
				m.hub.EmitPresence(d.Room)
			}
		}

		m.log.Debug("connection closed",
			zap.String("connection_id", c.ID),
			zap.Int("rooms", len(departures)),
		)
	})
}

// Rooms lists the rooms the connection is currently joined to.
func (m *Manager) Rooms(c *Connection) []string {
	return m.registry.RoomsOf(c.ID)
}

// HandleMessage decodes a client frame and applies it. Malformed frames are
// dropped without affecting the connection.
func (m *Manager) HandleMessage(c *Connection, raw []byte) {
	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		m.log.Debug("malformed message",
			zap.String("connection_id", c.ID),
			zap.Error(ErrInvalidMessage),
		)
		return
	}

	switch msg.Type {
	case TypeJoin:
		_ = m.Join(c, msg.Room, msg.User)
	case TypeLeave:
		_ = m.Leave(c, msg.Room)
	default:
		m.log.Debug("unknown message type",
			zap.String("connection_id", c.ID),
			zap.String("type", string(msg.Type)),
		)
	}
}

func (m *Manager) checkRoom(c *Connection, room string) error {
	if isBlankRoom(room) {
		return ErrEmptyRoom
	}
	if strings.HasPrefix(room, presence.KindUser+":") && room != presence.UserRoom(c.UserID) {
		return ErrPrivateRoom
	}
	return nil
}

func isBlankRoom(room string) bool {
	return strings.TrimSpace(room) == ""
}
