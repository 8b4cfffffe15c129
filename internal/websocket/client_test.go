package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/presence"
)

func TestClient_Deliver_After_Close(t *testing.T) {
	client := NewClient(nil, 1, zap.NewNop())

	require.NoError(t, client.Deliver([]byte("one")))
	require.ErrorIs(t, client.Deliver([]byte("two")), ErrClientQueueFull)

	client.Close()
	client.Close()
	require.ErrorIs(t, client.Deliver([]byte("three")), ErrClientClosed)
}

func TestClient_Socket_Round_Trip(t *testing.T) {
	req := require.New(t)
	log := zap.NewNop()
	hub := NewHub(presence.NewRegistry(), log)
	manager := NewManager(hub, log)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, 16, log)
		session := manager.Connect(7, client)
		go client.WritePump()
		go client.ReadPump(
			func(data []byte) { manager.HandleMessage(session, data) },
			func() { manager.Disconnect(session) },
		)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	req.NoError(err)
	defer ws.Close()

	// join and receive our own presence
	req.NoError(ws.WriteJSON(Inbound{Type: TypeJoin, Room: "plan:7", User: &UserInfo{Name: "Ann"}}))
	req.NoError(ws.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var frame Frame
	req.NoError(ws.ReadJSON(&frame))
	req.Equal(EventPresence, frame.Event)
	req.Equal([]string{"Ann"}, presenceNames(t, frame))

	// a broadcast to the room reaches the socket
	hub.Broadcast("plan:7", EventPlanUpdated, map[string]string{"type": "updated"})
	req.NoError(ws.ReadJSON(&frame))
	req.Equal(EventPlanUpdated, frame.Event)
	req.JSONEq(`{"type":"updated"}`, string(frame.Data))

	// closing the socket runs the disconnect path
	req.NoError(ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	req.Eventually(func() bool {
		return hub.ConnectionCount() == 0 && hub.Registry().RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
