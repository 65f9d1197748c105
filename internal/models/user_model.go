package models

import "time"

type User struct {
	ID           string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Username     string `gorm:"uniqueIndex;not null;type:varchar(64)" json:"username"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	DisplayName string `gorm:"type:varchar(64)" json:"display_name"`
	AvatarURL   string `gorm:"type:varchar(512)" json:"avatar_url"`
	Bio         string `gorm:"type:varchar(512)" json:"bio"`

	// Status is resolved from the presence tracker, never persisted.
	Status string `gorm:"-" json:"status,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
