package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/middleware"
)

type NotificationHandler struct {
	db           *database.Database
	defaultLimit int
}

func NewNotificationHandler(db *database.Database, defaultLimit int) *NotificationHandler {
	if defaultLimit <= 0 || defaultLimit > maxPage {
		defaultLimit = maxPage
	}
	return &NotificationHandler{db: db, defaultLimit: defaultLimit}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	limit, offset, ok := pageParams(c, h.defaultLimit)
	if !ok {
		return
	}

	notes, err := h.db.ListNotifications(c.Request.Context(), middleware.CurrentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notes,
		"has_more":      len(notes) == limit,
	})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.db.CountUnreadNotifications(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.MarkNotificationRead(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.DeleteNotification(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}
