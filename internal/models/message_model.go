package models

import "time"

// MaxMessageLength bounds message content; the minimum is one character.
const MaxMessageLength = 2000

// Message belongs to exactly one container: a channel or a conversation,
// never both and never neither.
type Message struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Content  string `gorm:"not null;type:varchar(2000)" json:"content"`
	AuthorID string `gorm:"index;not null;type:varchar(64)" json:"author_id"`

	ChannelID      *string `gorm:"index;type:varchar(64)" json:"channel_id,omitempty"`
	ConversationID *string `gorm:"index;type:varchar(64)" json:"conversation_id,omitempty"`

	Attachments StringList `gorm:"type:jsonb" json:"attachments"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}
