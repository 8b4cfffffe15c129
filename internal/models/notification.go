package models

import "time"

const (
	NotificationInfo   = "info"
	NotificationInvite = "invite"
	NotificationPlan   = "plan"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:50;not null;default:'info'" json:"type"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	InviteID  *uint     `json:"invite_id"`
	CreatedAt time.Time `json:"created_at"`
}
