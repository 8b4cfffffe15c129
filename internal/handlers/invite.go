package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/planner-collab/internal/handlers/dto"
	"github.com/thereayou/planner-collab/internal/invites"
	"github.com/thereayou/planner-collab/internal/middleware"
)

type InviteHandler struct {
	invites *invites.Service
}

func NewInviteHandler(svc *invites.Service) *InviteHandler {
	return &InviteHandler{invites: svc}
}

func (h *InviteHandler) Send(c *gin.Context) {
	var req dto.SendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.invites.Send(c.Request.Context(), middleware.CurrentUserID(c), req.GroupID, req.Identifier)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

func (h *InviteHandler) Pending(c *gin.Context) {
	pending, err := h.invites.Pending(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invites": pending})
}

func (h *InviteHandler) Respond(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.RespondInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.invites.Respond(c.Request.Context(), id, middleware.CurrentUserID(c), invites.Action(req.Action))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invite)
}
