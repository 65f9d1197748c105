package models

import "time"

// DefaultInviteTTL is applied when an invite is created without an expiry.
const DefaultInviteTTL = 7 * 24 * time.Hour

type Invite struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Code      string `gorm:"uniqueIndex;not null;type:varchar(16)" json:"code"`
	GuildID   string `gorm:"index;not null;type:varchar(64)" json:"guild_id"`
	CreatorID string `gorm:"not null;type:varchar(64)" json:"creator_id"`

	Uses int `gorm:"not null;default:0" json:"uses"`
	// MaxUses of zero means unlimited.
	MaxUses int `gorm:"not null;default:0" json:"max_uses"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Invite) TableName() string {
	return "invites"
}

func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *Invite) Exhausted() bool {
	return i.MaxUses != 0 && i.Uses >= i.MaxUses
}
