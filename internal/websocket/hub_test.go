package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thereayou/planner-collab/internal/presence"
)

func TestHub_Broadcast_Reaches_Only_Room_Members(t *testing.T) {
	req := require.New(t)
	hub, manager := newTestManager(t)
	a, b, c := &recordingSink{}, &recordingSink{}, &recordingSink{}

	// Given A and B joined plan:7 and C is connected elsewhere
	connA := manager.Connect(3, a)
	connB := manager.Connect(9, b)
	manager.Connect(12, c)
	req.NoError(manager.Join(connA, "plan:7", &UserInfo{Name: "Ann"}))
	req.NoError(manager.Join(connB, "plan:7", &UserInfo{Name: "Bob"}))

	// When a plan update is broadcast
	hub.Broadcast(presence.PlanRoom(7), EventPlanUpdated, map[string]string{"type": "updated"})

	// Then A and B receive it with the payload, C receives nothing
	for _, sink := range []*recordingSink{a, b} {
		frames := sink.Events(EventPlanUpdated)
		req.Len(frames, 1)
		req.Equal("plan:7", frames[0].Room)
		req.JSONEq(`{"type":"updated"}`, string(frames[0].Data))
	}
	req.Empty(c.Events(EventPlanUpdated))
	req.Empty(c.Events(EventPresence))
}

func TestHub_Broadcast_Empty_Room_Is_Noop(t *testing.T) {
	hub, _ := newTestManager(t)

	require.NotPanics(t, func() {
		hub.Broadcast("plan:404", EventPlanUpdated, map[string]any{"type": "updated"})
	})
}

func TestHub_Broadcast_Unencodable_Payload_Is_Dropped(t *testing.T) {
	hub, manager := newTestManager(t)
	sink := &recordingSink{}
	conn := manager.Connect(1, sink)
	require.NoError(t, manager.Join(conn, "plan:1", nil))

	hub.Broadcast("plan:1", EventPlanUpdated, make(chan int))

	require.Empty(t, sink.Events(EventPlanUpdated))
}

func TestHub_Failing_Recipient_Does_Not_Stop_Others(t *testing.T) {
	req := require.New(t)
	hub, manager := newTestManager(t)
	broken := &recordingSink{fail: ErrClientQueueFull}
	healthy := &recordingSink{}

	req.NoError(manager.Join(manager.Connect(1, broken), "plan:1", nil))
	req.NoError(manager.Join(manager.Connect(2, healthy), "plan:1", nil))

	hub.Broadcast("plan:1", EventPlanUpdated, map[string]int{"rev": 1})

	req.Len(healthy.Events(EventPlanUpdated), 1)
}

func TestHub_Preserves_Order_Within_Room(t *testing.T) {
	req := require.New(t)
	hub, manager := newTestManager(t)
	sink := &recordingSink{}
	req.NoError(manager.Join(manager.Connect(1, sink), "plan:1", nil))

	for i := 0; i < 100; i++ {
		hub.Broadcast("plan:1", EventPlanUpdated, map[string]int{"rev": i})
	}

	frames := sink.Events(EventPlanUpdated)
	req.Len(frames, 100)
	for i, f := range frames {
		var body map[string]int
		req.NoError(json.Unmarshal(f.Data, &body))
		req.Equal(i, body["rev"], fmt.Sprintf("frame %d", i))
	}
}

func TestHub_Presence_Converges_Under_Concurrent_Joins_And_Leaves(t *testing.T) {
	req := require.New(t)
	hub, manager := newTestManager(t)
	observer := &recordingSink{}
	req.NoError(manager.Join(manager.Connect(1, observer), "plan:2", &UserInfo{Name: "obs"}))

	// When members join concurrently and every other one leaves again
	sinks := make([]*recordingSink, 20)
	var wg sync.WaitGroup
	for i := range sinks {
		sinks[i] = &recordingSink{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := manager.Connect(uint(i+10), sinks[i])
			_ = manager.Join(conn, "plan:2", &UserInfo{Name: fmt.Sprintf("u%02d", i)})
			if i%2 == 1 {
				_ = manager.Leave(conn, "plan:2")
			}
		}(i)
	}
	wg.Wait()

	// Then the last list every remaining member received is the final one
	var want []string
	for _, p := range hub.Registry().Snapshot("plan:2") {
		want = append(want, p.Name)
	}
	req.Len(want, 11)

	remaining := []*recordingSink{observer}
	for i, sink := range sinks {
		if i%2 == 0 {
			remaining = append(remaining, sink)
		}
	}
	for _, sink := range remaining {
		frames := sink.Events(EventPresence)
		req.NotEmpty(frames)
		req.Equal(want, presenceNames(t, frames[len(frames)-1]))
	}
}

func TestHub_Stop_Closes_Connections_And_Clears_Presence(t *testing.T) {
	req := require.New(t)
	hub, manager := newTestManager(t)
	a, b := &recordingSink{}, &recordingSink{}
	req.NoError(manager.Join(manager.Connect(1, a), "plan:1", nil))
	manager.Connect(2, b)

	hub.Stop()

	req.True(a.IsClosed())
	req.True(b.IsClosed())
	req.Zero(hub.ConnectionCount())
	req.Zero(hub.Registry().RoomCount())
}
