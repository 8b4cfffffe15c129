package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/planner-collab/internal/handlers"
	"github.com/thereayou/planner-collab/internal/middleware"
	"github.com/thereayou/planner-collab/pkg/auth"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	User          *handlers.UserHandler
	WebSocket     *handlers.WebSocketHandler
	Notifications *handlers.NotificationHandler
	Invites       *handlers.InviteHandler
	Groups        *handlers.GroupHandler
	Plans         *handlers.PlanHandler
}

func APIEndpoints(r *gin.Engine, h Handlers, jwtMgr *auth.JWTManager, rdb *redis.Client) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(jwtMgr, rdb), h.Auth.Logout)
	}

	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), h.WebSocket.HandleWebSocket)

	api := r.Group("/api", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/me", h.User.GetMe)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.Notifications.List)
			notifications.GET("/unread-count", h.Notifications.UnreadCount)
			notifications.POST("/:id/read", h.Notifications.MarkRead)
			notifications.DELETE("/:id", h.Notifications.Delete)
		}

		inviteRoutes := api.Group("/invites")
		{
			inviteRoutes.POST("/send", h.Invites.Send)
			inviteRoutes.GET("/pending", h.Invites.Pending)
			inviteRoutes.POST("/:id/respond", h.Invites.Respond)
			inviteRoutes.POST("/remove-member", h.Groups.RemoveMember)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", h.Groups.CreateGroup)
			groups.GET("", h.Groups.ListGroups)
			groups.GET("/:id/members", h.Groups.Members)
			groups.POST("/:id/leave", h.Groups.LeaveGroup)
		}

		plans := api.Group("/group-plans")
		{
			plans.POST("", h.Plans.CreatePlan)
			plans.GET("", h.Plans.ListPlans)
			plans.GET("/:id", h.Plans.GetPlan)
			plans.PUT("/:id", h.Plans.UpdatePlan)
			plans.DELETE("/:id", h.Plans.DeletePlan)
			plans.POST("/:id/join", h.Plans.JoinPlan)
			plans.POST("/:id/leave", h.Plans.LeavePlan)
			plans.GET("/:id/participants", h.Plans.Participants)
		}
	}
}
