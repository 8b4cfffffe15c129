package websocket

import (
	"encoding/json"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/thereayou/planner-collab/internal/presence"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
	fail   error
}

func (s *recordingSink) Deliver(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}
	if s.closed {
		return ErrClientClosed
	}

	var f Frame
	if err := json.Unmarshal(frame, &f); err != nil {
		return err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSink) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *recordingSink) Events(event string) []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Frame
	for _, f := range s.frames {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

func (s *recordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

func newTestManager(t *testing.T) (*Hub, *Manager) {
	t.Helper()
	log := zaptest.NewLogger(t)
	hub := NewHub(presence.NewRegistry(), log)
	return hub, NewManager(hub, log)
}

func presenceNames(t *testing.T, f Frame) []string {
	t.Helper()
	var participants []struct {
		ConnectionID string `json:"connection_id"`
		Name         string `json:"name"`
	}
	if err := json.Unmarshal(f.Data, &participants); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	return names
}
