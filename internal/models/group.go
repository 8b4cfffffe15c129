package models

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:120;not null"`
	Description string
	CreatedBy   uint `gorm:"not null"`
	CreatedAt   time.Time

	Memberships []GroupMembership `gorm:"foreignKey:GroupID"`
}

// GroupMembership is unique per (user, group).
type GroupMembership struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_membership_user_group"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_membership_user_group"`
	Role     Role      `gorm:"size:20;not null;default:'member'"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// GroupPlan is a plan shared by a group. Content is an opaque JSON document owned by the client.
type GroupPlan struct {
	ID          uint   `gorm:"primaryKey"`
	GroupID     uint   `gorm:"not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string
	Content     map[string]any `gorm:"serializer:json"`
	CreatedBy   uint           `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupPlanParticipant records that a member joined a plan. Unique per (plan, user).
type GroupPlanParticipant struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PlanID   uint      `gorm:"not null;uniqueIndex:idx_participant_plan_user" json:"plan_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_participant_plan_user" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
