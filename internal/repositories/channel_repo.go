package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
)

type IChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	FindByID(ctx context.Context, id string) (*models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	// Delete removes the channel and its messages.
	Delete(ctx context.Context, id string) error
	ListByGuild(ctx context.Context, guildID string) ([]*models.Channel, error)
	CountByGuild(ctx context.Context, guildID string) (int64, error)
}

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) IChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *ChannelRepository) FindByID(ctx context.Context, id string) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).First(&channel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *ChannelRepository) Update(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Save(channel).Error
}

func (r *ChannelRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Channel{}, "id = ?", id).Error
	})
}

func (r *ChannelRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("created_at asc").
		Find(&channels).Error
	return channels, err
}

func (r *ChannelRepository) CountByGuild(ctx context.Context, guildID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("guild_id = ?", guildID).
		Count(&count).Error
	return count, err
}
