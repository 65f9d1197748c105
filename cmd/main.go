package main

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/config"
	"github.com/Gopher0727/Concord/internal/handlers"
	"github.com/Gopher0727/Concord/internal/presence"
	"github.com/Gopher0727/Concord/internal/ratelimit"
	"github.com/Gopher0727/Concord/internal/repositories"
	"github.com/Gopher0727/Concord/internal/routers"
	"github.com/Gopher0727/Concord/internal/services"
	"github.com/Gopher0727/Concord/internal/storage"
	"github.com/Gopher0727/Concord/internal/workers"
	"github.com/Gopher0727/Concord/internal/ws"
	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
	"github.com/Gopher0727/Concord/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Close()

	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	db, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		log.Fatalf("failed to initialize postgres: %v", err)
	}

	rdb, err := storage.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}

	// Repositories.
	userRepo := repositories.NewUserRepository(db)
	guildRepo := repositories.NewGuildRepository(db)
	channelRepo := repositories.NewChannelRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	inviteRepo := repositories.NewInviteRepository(db)

	// Fanout: registry tracks room subscriptions, the router delivers events
	// on the shared worker pool.
	pool := workers.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, zlog.Logger)
	pool.Start()
	defer pool.Stop()

	registry := ws.NewRegistry()
	router := ws.NewRouter(registry, pool, zlog.Logger)

	tracker := presence.NewTracker(rdb, time.Duration(cfg.Presence.TTLSeconds)*time.Second)
	limiter := ratelimit.NewRedisLimiter(rdb, zlog.Logger, true)
	tokens := jwtmw.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Services.
	authService := services.NewAuthService(userRepo, tokens)
	guildService := services.NewGuildService(guildRepo, userRepo, router)
	channelService := services.NewChannelService(channelRepo, guildRepo, router)
	messageService := services.NewMessageService(messageRepo, channelRepo, guildRepo, conversationRepo, router)
	conversationService := services.NewConversationService(conversationRepo, userRepo, router)
	inviteService := services.NewInviteService(inviteRepo, guildRepo, userRepo, router)

	h := &routers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, zlog.Logger),
		User:         handlers.NewUserHandler(authService, tracker, zlog.Logger),
		Guild:        handlers.NewGuildHandler(guildService, zlog.Logger),
		Channel:      handlers.NewChannelHandler(channelService, zlog.Logger),
		Message:      handlers.NewMessageHandler(messageService, zlog.Logger),
		Conversation: handlers.NewConversationHandler(conversationService, zlog.Logger),
		Invite:       handlers.NewInviteHandler(inviteService, zlog.Logger),
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	routers.SetupRoutes(r, cfg, h, tokens, limiter, func(c *gin.Context) {
		ws.ServeWS(registry, tracker, zlog.Logger, c)
	})

	zlog.Info("server starting")
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
