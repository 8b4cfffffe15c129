package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/config"
	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/events"
	"github.com/thereayou/planner-collab/internal/handlers"
	"github.com/thereayou/planner-collab/internal/invites"
	"github.com/thereayou/planner-collab/internal/presence"
	"github.com/thereayou/planner-collab/internal/services"
	"github.com/thereayou/planner-collab/internal/websocket"
	"github.com/thereayou/planner-collab/pkg/auth"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub

	port string
	log  *zap.Logger
}

func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("postgres connect failed: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	hub := websocket.NewHub(presence.NewRegistry(), log)
	manager := websocket.NewManager(hub, log)
	emitter := events.NewEmitter(dbConn, hub, log)
	inviteSvc := invites.NewService(dbConn, emitter, log)
	authSvc := services.NewAuthService(dbConn, jwtMgr, rdb)

	h := Handlers{
		Auth:          handlers.NewAuthHandler(authSvc),
		User:          handlers.NewUserHandler(dbConn),
		WebSocket:     handlers.NewWebSocketHandler(manager, cfg.Origins(), cfg.SendBuffer, log),
		Notifications: handlers.NewNotificationHandler(dbConn, cfg.NotificationPageLimit),
		Invites:       handlers.NewInviteHandler(inviteSvc),
		Groups:        handlers.NewGroupHandler(dbConn),
		Plans:         handlers.NewPlanHandler(dbConn, emitter, log),
	}

	router := gin.Default()
	APIEndpoints(router, h, jwtMgr, rdb)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		port:       cfg.Port,
		log:        log,
	}, nil
}

// Run serves until ctx is cancelled, then closes sockets and stores.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Router,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("port", s.port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server run error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// hijacked websockets are not tracked by Shutdown
	s.Hub.Stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("http shutdown", zap.Error(err))
	}

	if err := s.Redis.Close(); err != nil {
		s.log.Warn("redis close", zap.Error(err))
	}
	if err := s.DB.Close(); err != nil {
		s.log.Warn("database close", zap.Error(err))
	}

	s.log.Info("server stopped")
	return nil
}
