package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/handlers/dto"
	"github.com/thereayou/planner-collab/internal/middleware"
)

type UserHandler struct {
	db *database.Database
}

func NewUserHandler(db *database.Database) *UserHandler {
	return &UserHandler{db: db}
}

// GetMe returns the current user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.db.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserInfo{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	})
}
