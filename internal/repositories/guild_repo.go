package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
)

// IGuildRepository is the persistence surface for the guild aggregate.
// A guild row carries its member list and role sequence as jsonb, so Update
// is a single-row atomic replacement of the whole aggregate.
type IGuildRepository interface {
	// Create persists the guild and its auto-created default channel in one
	// transaction.
	Create(ctx context.Context, guild *models.Guild, defaultChannel *models.Channel) error
	FindByID(ctx context.Context, id string) (*models.Guild, error)
	Update(ctx context.Context, guild *models.Guild) error
	// Delete removes the guild and everything it owns: channels, their
	// messages, and invites.
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]*models.Guild, error)
}

type GuildRepository struct {
	db *gorm.DB
}

func NewGuildRepository(db *gorm.DB) IGuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) Create(ctx context.Context, guild *models.Guild, defaultChannel *models.Channel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(guild).Error; err != nil {
			return err
		}
		return tx.Create(defaultChannel).Error
	})
}

func (r *GuildRepository) FindByID(ctx context.Context, id string) (*models.Guild, error) {
	var guild models.Guild
	err := r.db.WithContext(ctx).First(&guild, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &guild, nil
}

func (r *GuildRepository) Update(ctx context.Context, guild *models.Guild) error {
	return r.db.WithContext(ctx).Save(guild).Error
}

func (r *GuildRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channelIDs := tx.Model(&models.Channel{}).Select("id").Where("guild_id = ?", id)
		if err := tx.Where("channel_id IN (?)", channelIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("guild_id = ?", id).Delete(&models.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("guild_id = ?", id).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Guild{}, "id = ?", id).Error
	})
}

func (r *GuildRepository) ListForUser(ctx context.Context, userID string) ([]*models.Guild, error) {
	var guilds []*models.Guild
	// jsonb containment on the member array; the owner is implicitly a member.
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR members @> ?", userID, fmt.Sprintf("[%q]", userID)).
		Order("created_at asc").
		Find(&guilds).Error
	return guilds, err
}
