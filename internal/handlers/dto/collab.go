package dto

type SendInviteRequest struct {
	GroupID    uint   `json:"group_id" binding:"required"`
	Identifier string `json:"identifier" binding:"required"`
}

type RespondInviteRequest struct {
	Action string `json:"action" binding:"required"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description"`
}

// UpdatePlanRequest only applies the fields that are present.
type UpdatePlanRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Content     map[string]any `json:"content"`
}

type CreatePlanRequest struct {
	GroupID     uint           `json:"group_id" binding:"required"`
	Title       string         `json:"title" binding:"required,max=200"`
	Description string         `json:"description"`
	Content     map[string]any `json:"content"`
}

type RemoveMemberRequest struct {
	GroupID  uint `json:"group_id" binding:"required"`
	MemberID uint `json:"member_id" binding:"required"`
}
