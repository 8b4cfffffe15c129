package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/apperr"
	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/handlers/dto"
	"github.com/thereayou/planner-collab/internal/middleware"
	"github.com/thereayou/planner-collab/internal/models"
)

// PlanEvents receives plan changes after they commit.
type PlanEvents interface {
	EmitPlanUpdated(planID uint, payload any)
	NotifyUser(ctx context.Context, userID uint, message, kind string, inviteID *uint) (*models.Notification, error)
}

const defaultPlanPage = 50

type PlanHandler struct {
	db     *database.Database
	events PlanEvents
	log    *zap.Logger
}

func NewPlanHandler(db *database.Database, events PlanEvents, log *zap.Logger) *PlanHandler {
	return &PlanHandler{db: db, events: events, log: log.Named("plans")}
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
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
	if err := h.requireMember(ctx, userID, req.GroupID); err != nil {
		respondError(c, err)
		return
	}

	plan := &models.GroupPlan{
		GroupID:     req.GroupID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		CreatedBy:   userID,
	}
	if err := h.db.CreateGroupPlan(ctx, plan); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, formatPlanResponse(plan))
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.loadPlan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, formatPlanResponse(plan))
}

// UpdatePlan applies the changes and tells viewers of plan:<id> about them.
// Only the plan's creator or the group owner may edit.
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	plan, err := h.loadPlan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	if err := h.requireManager(ctx, userID, plan); err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		plan.Title = *req.Title
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Content != nil {
		plan.Content = req.Content
	}

	if err := h.db.UpdateGroupPlan(ctx, plan); err != nil {
		respondError(c, err)
		return
	}

	response := formatPlanResponse(plan)
	h.events.EmitPlanUpdated(plan.ID, gin.H{"type": "updated", "plan": response})
	h.log.Debug("plan updated", zap.Uint("plan_id", plan.ID), zap.Uint("user_id", userID))

	c.JSON(http.StatusOK, response)
}

// ListPlans returns the plans of ?group_id, newest first.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Query("group_id"), 10, 64)
	if err != nil || groupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id must be a positive integer"})
		return
	}
	limit, offset, ok := pageParams(c, defaultPlanPage)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.requireMember(ctx, middleware.CurrentUserID(c), uint(groupID)); err != nil {
		respondError(c, err)
		return
	}

	plans, err := h.db.ListGroupPlans(ctx, uint(groupID), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": lo.Map(plans, func(p models.GroupPlan, _ int) gin.H {
		return formatPlanResponse(&p)
	})})
}

// DeletePlan is allowed to the plan's creator or the group owner.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	plan, err := h.loadPlan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.requireManager(ctx, middleware.CurrentUserID(c), plan); err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.DeleteGroupPlan(ctx, plan.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "plan deleted"})
}

// JoinPlan marks the caller as a participant and tells the plan's creator.
// Joining twice is accepted and does not notify again.
func (h *PlanHandler) JoinPlan(c *gin.Context) {
	plan, err := h.loadPlan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	joined, err := h.db.AddPlanParticipant(ctx, plan.ID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if joined {
		h.notifyCreator(ctx, plan, userID, "joined")
	}

	c.JSON(http.StatusOK, gin.H{"message": "joined plan"})
}

func (h *PlanHandler) LeavePlan(c *gin.Context) {
	plan, err := h.loadPlan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	if err := h.db.RemovePlanParticipant(ctx, plan.ID, userID); err != nil {
		respondError(c, err)
		return
	}
	h.notifyCreator(ctx, plan, userID, "left")

	c.JSON(http.StatusOK, gin.H{"message": "left plan"})
}

func (h *PlanHandler) Participants(c *gin.Context) {
	plan, err := h.loadPlan(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	parts, err := h.db.ListPlanParticipants(ctx, plan.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := h.db.GetUsers(ctx, lo.Map(parts, func(p models.GroupPlanParticipant, _ int) uint { return p.UserID }))
	if err != nil {
		respondError(c, err)
		return
	}
	byID := lo.KeyBy(users, func(u models.User) uint { return u.ID })

	c.JSON(http.StatusOK, gin.H{"participants": lo.Map(parts, func(p models.GroupPlanParticipant, _ int) gin.H {
		return gin.H{
			"id":        p.ID,
			"user_id":   p.UserID,
			"fullname":  byID[p.UserID].FullName,
			"joined_at": p.JoinedAt,
		}
	})})
}

// notifyCreator is best effort: the participation change has already committed.
func (h *PlanHandler) notifyCreator(ctx context.Context, plan *models.GroupPlan, userID uint, verb string) {
	if plan.CreatedBy == userID {
		return
	}

	name := fmt.Sprintf("User #%d", userID)
	if user, err := h.db.GetUser(ctx, userID); err == nil {
		name = user.FullName
	}

	msg := fmt.Sprintf("%s %s your plan '%s'", name, verb, plan.Title)
	if _, err := h.events.NotifyUser(ctx, plan.CreatedBy, msg, models.NotificationPlan, nil); err != nil {
		h.log.Warn("failed to notify plan creator", zap.Uint("plan_id", plan.ID), zap.Error(err))
	}
}

// requireManager allows the plan's creator or the owner of its group.
func (h *PlanHandler) requireManager(ctx context.Context, userID uint, plan *models.GroupPlan) error {
	if plan.CreatedBy == userID {
		return nil
	}
	membership, err := h.db.GetMembership(ctx, userID, plan.GroupID)
	if err != nil {
		return err
	}
	if membership.Role != models.RoleOwner {
		return fmt.Errorf("%w: only the plan creator or group owner can change this plan", apperr.ErrForbidden)
	}
	return nil
}

// loadPlan fetches the plan from the :id param and checks the caller belongs to its group.
func (h *PlanHandler) loadPlan(c *gin.Context) (*models.GroupPlan, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	plan, err := h.db.GetGroupPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := h.requireMember(ctx, middleware.CurrentUserID(c), plan.GroupID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (h *PlanHandler) requireMember(ctx context.Context, userID, groupID uint) error {
	ok, err := h.db.IsMember(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a member of group %d", apperr.ErrForbidden, groupID)
	}
	return nil
}

func formatPlanResponse(plan *models.GroupPlan) gin.H {
	return gin.H{
		"id":          plan.ID,
		"group_id":    plan.GroupID,
		"title":       plan.Title,
		"description": plan.Description,
		"content":     plan.Content,
		"created_by":  plan.CreatedBy,
		"created_at":  plan.CreatedAt,
		"updated_at":  plan.UpdatedAt,
	}
}
