package ws

import "github.com/Gopher0727/Concord/internal/models"

// Event payloads that are not plain entity representations.

type RoleCreatePayload struct {
	GuildID string      `json:"guild_id"`
	Role    models.Role `json:"role"`
}

type MemberJoinPayload struct {
	GuildID string       `json:"guild_id"`
	User    *models.User `json:"user"`
}

type MemberRemovePayload struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

// KickedPayload is the direct notice delivered to a removed user's own room.
type KickedPayload struct {
	GuildID string `json:"guild_id"`
	Name    string `json:"name"`
}

type MessageDeletePayload struct {
	ID             string  `json:"id"`
	ChannelID      *string `json:"channel_id,omitempty"`
	ConversationID *string `json:"conversation_id,omitempty"`
}
