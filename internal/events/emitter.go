// Package events pushes domain events from CRUD handlers into the realtime hub
// and the notification store.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/models"
	"github.com/thereayou/planner-collab/internal/presence"
	"github.com/thereayou/planner-collab/internal/websocket"
)

// Broadcaster is the part of the hub the emitter needs.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
}

// NotificationPayload is the body of a "notify" frame.
type NotificationPayload struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	InviteID  *uint     `json:"invite_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Emitter struct {
	db  *database.Database
	hub Broadcaster
	log *zap.Logger
}

// NewEmitter builds an emitter. hub may be nil, in which case live pushes are skipped.
func NewEmitter(db *database.Database, hub Broadcaster, log *zap.Logger) *Emitter {
	return &Emitter{db: db, hub: hub, log: log.Named("events")}
}

// EmitPlanUpdated tells everyone viewing the plan that it changed. It never fails:
// the caller's write has already committed.
func (e *Emitter) EmitPlanUpdated(planID uint, payload any) {
	e.broadcast(presence.PlanRoom(planID), websocket.EventPlanUpdated, payload)
}

// NotifyUser stores a notification and then pushes it to the user's private room.
// The push is best effort; the stored row is the source of truth.
func (e *Emitter) NotifyUser(ctx context.Context, userID uint, message, kind string, inviteID *uint) (*models.Notification, error) {
	if kind == "" {
		kind = models.NotificationInfo
	}

	note := &models.Notification{
		UserID:   userID,
		Message:  message,
		Type:     kind,
		InviteID: inviteID,
	}
	if err := e.db.CreateNotification(ctx, note); err != nil {
		return nil, err
	}

	e.PushNotification(note)
	return note, nil
}

// PushNotification sends an already stored notification to its owner's live connections.
func (e *Emitter) PushNotification(note *models.Notification) {
	e.broadcast(presence.UserRoom(note.UserID), websocket.EventNotify, NotificationPayload{
		ID:        note.ID,
		Message:   note.Message,
		Type:      note.Type,
		InviteID:  note.InviteID,
		Read:      note.Read,
		CreatedAt: note.CreatedAt,
	})
}

func (e *Emitter) broadcast(room, event string, payload any) {
	if e.hub == nil {
		e.log.Debug("no hub, skipping push", zap.String("room", room), zap.String("event", event))
		return
	}
	e.hub.Broadcast(room, event, payload)
}
