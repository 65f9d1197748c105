package models

import (
	"sort"
	"strings"
	"time"
)

// Conversation is a direct-message container between exactly two users.
// ParticipantKey is the canonical unordered-pair key; its unique index
// guarantees at most one conversation per pair.
type Conversation struct {
	ID             string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ParticipantKey string     `gorm:"uniqueIndex;not null;type:varchar(160)" json:"-"`
	Participants   StringList `gorm:"type:jsonb" json:"participants"`
	CreatorID      string     `gorm:"not null;type:varchar(64)" json:"creator_id"`
	LastMessageID  *string    `gorm:"type:varchar(64)" json:"last_message_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ParticipantKeyFor builds the canonical key for an unordered user pair.
func ParticipantKeyFor(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// HasParticipant compares by identity value.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participants.Contains(userID)
}
