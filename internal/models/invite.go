package models

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// GroupInvite moves pending -> accepted or pending -> declined, once.
type GroupInvite struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	InviterID uint         `gorm:"not null" json:"inviter_id"`
	InviteeID uint         `gorm:"not null;index" json:"invitee_id"`
	GroupID   uint         `gorm:"not null" json:"group_id"`
	Status    InviteStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}
