package models

import "time"

const (
	ChannelKindText  = "text"
	ChannelKindVoice = "voice"
)

// DefaultChannelName is given to the channel auto-created with a new guild.
const DefaultChannelName = "general"

type Channel struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	GuildID  string `gorm:"index;not null;type:varchar(64)" json:"guild_id"`
	Name     string `gorm:"not null;type:varchar(100)" json:"name"`
	Topic    string `gorm:"type:varchar(1024)" json:"topic"`
	Category string `gorm:"type:varchar(100)" json:"category"`
	Kind     string `gorm:"not null;type:varchar(16);default:text" json:"kind"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Channel) TableName() string {
	return "channels"
}

func ValidChannelKind(kind string) bool {
	return kind == ChannelKindText || kind == ChannelKindVoice
}
