package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
	"github.com/Gopher0727/Concord/internal/permissions"
	"github.com/Gopher0727/Concord/internal/repositories"
	"github.com/Gopher0727/Concord/internal/ws"
)

type CreateChannelRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Topic    string `json:"topic" binding:"max=1024"`
	Category string `json:"category" binding:"max=100"`
	Kind     string `json:"kind"`
}

type UpdateChannelRequest struct {
	Name     *string `json:"name"`
	Topic    *string `json:"topic"`
	Category *string `json:"category"`
}

type IChannelService interface {
	CreateChannel(ctx context.Context, actorID, guildID string, req *CreateChannelRequest) (*models.Channel, error)
	GetChannel(ctx context.Context, userID, channelID string) (*models.Channel, error)
	ListChannels(ctx context.Context, userID, guildID string) ([]*models.Channel, error)
	UpdateChannel(ctx context.Context, actorID, channelID string, req *UpdateChannelRequest) (*models.Channel, error)
	DeleteChannel(ctx context.Context, actorID, channelID string) error
}

type ChannelService struct {
	channelRepo repositories.IChannelRepository
	guildRepo   repositories.IGuildRepository
	broadcast   Broadcaster
}

func NewChannelService(channelRepo repositories.IChannelRepository, guildRepo repositories.IGuildRepository, broadcast Broadcaster) IChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		guildRepo:   guildRepo,
		broadcast:   broadcast,
	}
}

func (s *ChannelService) CreateChannel(ctx context.Context, actorID, guildID string, req *CreateChannelRequest) (*models.Channel, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.HasCapability(actorID, permissions.ManageChannels) {
		return nil, ErrForbidden
	}

	kind := req.Kind
	if kind == "" {
		kind = models.ChannelKindText
	}
	if !models.ValidChannelKind(kind) {
		return nil, fmt.Errorf("%w: unknown channel kind %q", ErrValidation, kind)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: channel name must not be blank", ErrValidation)
	}

	channel := &models.Channel{
		ID:       uuid.New().String(),
		GuildID:  guild.ID,
		Name:     name,
		Topic:    req.Topic,
		Category: req.Category,
		Kind:     kind,
	}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventNewChannel, channel), ws.GuildRoom(guild.ID))
	return channel, nil
}

func (s *ChannelService) GetChannel(ctx context.Context, userID, channelID string) (*models.Channel, error) {
	channel, err := s.loadChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	guild, err := s.loadGuild(ctx, channel.GuildID)
	if err != nil {
		return nil, err
	}
	if !guild.IsMember(userID) {
		return nil, ErrNotMember
	}
	return channel, nil
}

func (s *ChannelService) ListChannels(ctx context.Context, userID, guildID string) ([]*models.Channel, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.IsMember(userID) {
		return nil, ErrNotMember
	}
	channels, err := s.channelRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

func (s *ChannelService) UpdateChannel(ctx context.Context, actorID, channelID string, req *UpdateChannelRequest) (*models.Channel, error) {
	channel, err := s.loadChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	guild, err := s.loadGuild(ctx, channel.GuildID)
	if err != nil {
		return nil, err
	}
	if !guild.HasCapability(actorID, permissions.ManageChannels) {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: channel name must not be blank", ErrValidation)
		}
		channel.Name = name
	}
	if req.Topic != nil {
		channel.Topic = *req.Topic
	}
	if req.Category != nil {
		channel.Category = *req.Category
	}

	if err := s.channelRepo.Update(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventChannelUpdate, channel),
		ws.ChannelRoom(channel.ID), ws.GuildRoom(guild.ID),
	)
	return channel, nil
}

// DeleteChannel refuses to remove a guild's last channel so a guild can
// never end up with nowhere to talk.
func (s *ChannelService) DeleteChannel(ctx context.Context, actorID, channelID string) error {
	channel, err := s.loadChannel(ctx, channelID)
	if err != nil {
		return err
	}
	guild, err := s.loadGuild(ctx, channel.GuildID)
	if err != nil {
		return err
	}
	if !guild.HasCapability(actorID, permissions.ManageChannels) {
		return ErrForbidden
	}

	count, err := s.channelRepo.CountByGuild(ctx, guild.ID)
	if err != nil {
		return fmt.Errorf("failed to count channels: %w", err)
	}
	if count <= 1 {
		return ErrLastChannel
	}

	if err := s.channelRepo.Delete(ctx, channelID); err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventChannelDelete, channel),
		ws.ChannelRoom(channel.ID), ws.GuildRoom(guild.ID),
	)
	return nil
}

func (s *ChannelService) loadChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to find channel: %w", err)
	}
	return channel, nil
}

func (s *ChannelService) loadGuild(ctx context.Context, guildID string) (*models.Guild, error) {
	guild, err := s.guildRepo.FindByID(ctx, guildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to find guild: %w", err)
	}
	return guild, nil
}
