package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thereayou/planner-collab/internal/database/dbtest"
	"github.com/thereayou/planner-collab/internal/models"
	"github.com/thereayou/planner-collab/internal/presence"
	"github.com/thereayou/planner-collab/internal/websocket"
)

type broadcast struct {
	room    string
	event   string
	payload any
}

type fakeHub struct {
	mu    sync.Mutex
	calls []broadcast
}

func (h *fakeHub) Broadcast(room, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, broadcast{room: room, event: event, payload: payload})
}

func TestEmitter_EmitPlanUpdated(t *testing.T) {
	req := require.New(t)
	hub := &fakeHub{}
	emitter := NewEmitter(dbtest.New(t), hub, zaptest.NewLogger(t))

	emitter.EmitPlanUpdated(7, map[string]string{"type": "updated"})

	req.Len(hub.calls, 1)
	req.Equal("plan:7", hub.calls[0].room)
	req.Equal(websocket.EventPlanUpdated, hub.calls[0].event)
	req.Equal(map[string]string{"type": "updated"}, hub.calls[0].payload)
}

func TestEmitter_Without_Hub_Does_Not_Fail(t *testing.T) {
	req := require.New(t)
	db := dbtest.New(t)
	emitter := NewEmitter(db, nil, zaptest.NewLogger(t))

	req.NotPanics(func() { emitter.EmitPlanUpdated(7, nil) })

	note, err := emitter.NotifyUser(context.Background(), 9, "hello", "", nil)
	req.NoError(err)
	req.Equal(models.NotificationInfo, note.Type)
}

func TestEmitter_NotifyUser_Persists_Then_Pushes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := dbtest.New(t)
	hub := &fakeHub{}
	emitter := NewEmitter(db, hub, zaptest.NewLogger(t))
	note, err := emitter.NotifyUser(ctx, 9, "You were invited", models.NotificationInvite, lo.ToPtr[uint](4))
	req.NoError(err)
	req.NotZero(note.ID)

	// stored
	notes, err := db.ListNotifications(ctx, 9, 10, 0)
	req.NoError(err)
	req.Len(notes, 1)
	req.Equal("You were invited", notes[0].Message)
	req.Equal(lo.ToPtr[uint](4), notes[0].InviteID)

	// pushed to the private room
	req.Len(hub.calls, 1)
	req.Equal(presence.UserRoom(9), hub.calls[0].room)
	req.Equal(websocket.EventNotify, hub.calls[0].event)

	body, err := json.Marshal(hub.calls[0].payload)
	req.NoError(err)
	var payload map[string]any
	req.NoError(json.Unmarshal(body, &payload))
	req.EqualValues(note.ID, payload["id"])
	req.Equal("invite", payload["type"])
	req.EqualValues(4, payload["invite_id"])
	req.Contains(payload, "created_at")
}

func TestEmitter_Push_Reaches_Live_Connection(t *testing.T) {
	req := require.New(t)
	log := zaptest.NewLogger(t)
	hub := websocket.NewHub(presence.NewRegistry(), log)
	manager := websocket.NewManager(hub, log)
	emitter := NewEmitter(dbtest.New(t), hub, log)

	sink := &frameSink{}
	conn := manager.Connect(9, sink)
	req.NoError(manager.Join(conn, presence.UserRoom(9), nil))

	_, err := emitter.NotifyUser(context.Background(), 9, "ping", models.NotificationInfo, nil)
	req.NoError(err)

	// the other user's notification does not leak in
	_, err = emitter.NotifyUser(context.Background(), 10, "not yours", models.NotificationInfo, nil)
	req.NoError(err)

	frames := sink.events(websocket.EventNotify)
	req.Len(frames, 1)
	req.Equal("user:9", frames[0].Room)
}

type frameSink struct {
	mu     sync.Mutex
	frames []websocket.Frame
}

func (s *frameSink) Deliver(frame []byte) error {
	var f websocket.Frame
	if err := json.Unmarshal(frame, &f); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	return nil
}

func (s *frameSink) Close() {}

func (s *frameSink) events(event string) []websocket.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []websocket.Frame
	for _, f := range s.frames {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}
