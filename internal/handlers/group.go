package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thereayou/planner-collab/internal/apperr"
	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/handlers/dto"
	"github.com/thereayou/planner-collab/internal/middleware"
	"github.com/thereayou/planner-collab/internal/models"
)

type GroupHandler struct {
	db *database.Database
}

func NewGroupHandler(db *database.Database) *GroupHandler {
	return &GroupHandler{db: db}
}

// CreateGroup creates a group owned by the caller.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   middleware.CurrentUserID(c),
	}
	if err := h.db.CreateGroup(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, formatGroupResponse(group))
}

// ListGroups returns the groups the caller belongs to.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.db.ListUserGroups(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": lo.Map(groups, func(g models.Group, _ int) gin.H {
		return formatGroupResponse(&g)
	})})
}

// Members lists a group's members with their display info. Members only.
func (h *GroupHandler) Members(c *gin.Context) {
	groupID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.db.GetGroup(ctx, groupID); err != nil {
		respondError(c, err)
		return
	}
	ok, err := h.db.IsMember(ctx, middleware.CurrentUserID(c), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this group"})
		return
	}

	members, err := h.db.ListMembers(ctx, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := h.db.GetUsers(ctx, lo.Map(members, func(m models.GroupMembership, _ int) uint { return m.UserID }))
	if err != nil {
		respondError(c, err)
		return
	}
	byID := lo.KeyBy(users, func(u models.User) uint { return u.ID })

	c.JSON(http.StatusOK, gin.H{"members": lo.Map(members, func(m models.GroupMembership, _ int) gin.H {
		return gin.H{
			"user_id":   m.UserID,
			"role":      m.Role,
			"joined_at": m.JoinedAt,
			"fullname":  byID[m.UserID].FullName,
			"email":     byID[m.UserID].Email,
		}
	})})
}

// LeaveGroup removes the caller's membership. The owner cannot leave.
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	groupID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	membership, err := h.db.GetMembership(ctx, userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if membership.Role == models.RoleOwner {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner cannot leave their own group"})
		return
	}

	if err := h.db.RemoveMembership(ctx, userID, groupID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left group"})
}

// RemoveMember lets an owner or admin remove another member. Nobody can remove
// themselves this way, and the owner cannot be removed.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	var req dto.RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	if _, err := h.db.GetGroup(ctx, req.GroupID); err != nil {
		respondError(c, err)
		return
	}

	requester, err := h.db.GetMembership(ctx, userID, req.GroupID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		respondError(c, err)
		return
	}
	if requester == nil || (requester.Role != models.RoleOwner && requester.Role != models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}
	if req.MemberID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove yourself"})
		return
	}

	target, err := h.db.GetMembership(ctx, req.MemberID, req.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if target.Role == models.RoleOwner {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove the group owner"})
		return
	}

	if err := h.db.RemoveMembership(ctx, req.MemberID, req.GroupID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func formatGroupResponse(group *models.Group) gin.H {
	return gin.H{
		"id":          group.ID,
		"name":        group.Name,
		"description": group.Description,
		"created_by":  group.CreatedBy,
		"created_at":  group.CreatedAt,
	}
}
