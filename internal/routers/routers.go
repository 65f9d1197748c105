package routers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/config"
	"github.com/Gopher0727/Concord/internal/handlers"
	"github.com/Gopher0727/Concord/internal/middlewares"
	"github.com/Gopher0727/Concord/internal/ratelimit"
	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
)

// Handlers bundles the HTTP handlers for route registration.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Guild        *handlers.GuildHandler
	Channel      *handlers.ChannelHandler
	Message      *handlers.MessageHandler
	Conversation *handlers.ConversationHandler
	Invite       *handlers.InviteHandler
}

// SetupRoutes wires every route of the API.
func SetupRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h *Handlers,
	tokens *jwtmw.TokenManager,
	limiter ratelimit.Limiter,
	serveWS func(c *gin.Context),
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	auth := middlewares.AuthMiddleware(tokens)

	// Message sends share a per-user fixed window; reads are unlimited.
	sendLimit := middlewares.RateLimitMiddleware(
		limiter,
		cfg.RateLimit.MessagesPerWindow,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Event stream. Authentication happens during the HTTP handshake.
	r.GET("/ws", auth, serveWS)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	userGroup := api.Group("/users", auth)
	{
		userGroup.GET("/me", h.User.Me)
		userGroup.PUT("/me", h.User.UpdateMe)
		userGroup.PUT("/me/status", h.User.SetStatus)
		userGroup.GET("/:user_id", h.User.GetUser)
	}

	guildGroup := api.Group("/guilds", auth)
	{
		guildGroup.POST("", h.Guild.CreateGuild)
		guildGroup.GET("/mine", h.Guild.ListMyGuilds)
		guildGroup.GET("/:guild_id", h.Guild.GetGuild)
		guildGroup.PATCH("/:guild_id", h.Guild.UpdateGuild)
		guildGroup.DELETE("/:guild_id", h.Guild.DeleteGuild)

		guildGroup.DELETE("/:guild_id/members/me", h.Guild.LeaveGuild)
		guildGroup.DELETE("/:guild_id/members/:user_id", h.Guild.KickMember)

		guildGroup.POST("/:guild_id/roles", h.Guild.CreateRole)
		guildGroup.PATCH("/:guild_id/roles/:role_id", h.Guild.UpdateRole)
		guildGroup.DELETE("/:guild_id/roles/:role_id", h.Guild.DeleteRole)
		guildGroup.PUT("/:guild_id/roles/:role_id/members/:user_id", h.Guild.AssignRole)
		guildGroup.DELETE("/:guild_id/roles/:role_id/members/:user_id", h.Guild.UnassignRole)

		guildGroup.POST("/:guild_id/channels", h.Channel.CreateChannel)
		guildGroup.GET("/:guild_id/channels", h.Channel.ListChannels)

		guildGroup.POST("/:guild_id/invites", h.Invite.CreateInvite)
		guildGroup.GET("/:guild_id/invites", h.Invite.ListGuildInvites)
	}

	channelGroup := api.Group("/channels", auth)
	{
		channelGroup.GET("/:channel_id", h.Channel.GetChannel)
		channelGroup.PATCH("/:channel_id", h.Channel.UpdateChannel)
		channelGroup.DELETE("/:channel_id", h.Channel.DeleteChannel)

		channelGroup.POST("/:channel_id/messages", sendLimit, h.Message.SendChannelMessage)
		channelGroup.GET("/:channel_id/messages", h.Message.ListChannelMessages)
	}

	messageGroup := api.Group("/messages", auth)
	{
		messageGroup.PATCH("/:message_id", h.Message.EditMessage)
		messageGroup.DELETE("/:message_id", h.Message.DeleteMessage)
	}

	conversationGroup := api.Group("/conversations", auth)
	{
		conversationGroup.POST("", h.Conversation.OpenConversation)
		conversationGroup.GET("", h.Conversation.ListConversations)
		conversationGroup.GET("/:conversation_id", h.Conversation.GetConversation)

		conversationGroup.POST("/:conversation_id/messages", sendLimit, h.Message.SendDirectMessage)
		conversationGroup.GET("/:conversation_id/messages", h.Message.ListConversationMessages)
	}

	inviteGroup := api.Group("/invites", auth)
	{
		inviteGroup.POST("/:code/join", h.Invite.Redeem)
		inviteGroup.DELETE("/:invite_id", h.Invite.DeleteInvite)
	}
}
