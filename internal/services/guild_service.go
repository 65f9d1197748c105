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

type CreateGuildRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type UpdateGuildRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        *string   `json:"name"`
	Color       *string   `json:"color"`
	Permissions *[]string `json:"permissions"`
}

type IGuildService interface {
	CreateGuild(ctx context.Context, ownerID string, req *CreateGuildRequest) (*models.Guild, error)
	GetGuild(ctx context.Context, userID, guildID string) (*models.Guild, error)
	ListUserGuilds(ctx context.Context, userID string) ([]*models.Guild, error)
	UpdateGuild(ctx context.Context, actorID, guildID string, req *UpdateGuildRequest) (*models.Guild, error)
	DeleteGuild(ctx context.Context, actorID, guildID string) error
	KickMember(ctx context.Context, actorID, guildID, targetID string) error
	LeaveGuild(ctx context.Context, userID, guildID string) error
	CreateRole(ctx context.Context, actorID, guildID string, req *CreateRoleRequest) (*models.Role, error)
	UpdateRole(ctx context.Context, actorID, guildID, roleID string, req *UpdateRoleRequest) (*models.Guild, error)
	DeleteRole(ctx context.Context, actorID, guildID, roleID string) error
	AssignRole(ctx context.Context, actorID, guildID, roleID, targetID string) error
	UnassignRole(ctx context.Context, actorID, guildID, roleID, targetID string) error
}

// GuildService owns every mutation of the guild aggregate. Each operation is
// the same read-check-write-notify sequence: load, resolve the actor's
// capabilities against the fresh snapshot, mutate the store, then hand the
// event to the broadcaster.
type GuildService struct {
	guildRepo repositories.IGuildRepository
	userRepo  repositories.IUserRepository
	broadcast Broadcaster
}

func NewGuildService(guildRepo repositories.IGuildRepository, userRepo repositories.IUserRepository, broadcast Broadcaster) IGuildService {
	return &GuildService{
		guildRepo: guildRepo,
		userRepo:  userRepo,
		broadcast: broadcast,
	}
}

// CreateGuild seeds the new guild with the @everyone and Admin roles and a
// default text channel. The creator becomes owner and member of both roles.
func (s *GuildService) CreateGuild(ctx context.Context, ownerID string, req *CreateGuildRequest) (*models.Guild, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: guild name must not be blank", ErrValidation)
	}

	guild := &models.Guild{
		ID:      uuid.New().String(),
		Name:    name,
		OwnerID: owner.ID,
		Members: models.StringList{owner.ID},
		Roles: models.RoleList{
			{
				ID:          uuid.New().String(),
				Name:        models.EveryoneRoleName,
				Position:    0,
				Permissions: permissions.NewSet(permissions.SendMessages, permissions.CreateInvite),
				Members:     models.StringList{owner.ID},
				Managed:     true,
			},
			{
				ID:          uuid.New().String(),
				Name:        "Admin",
				Position:    1,
				Permissions: permissions.NewSet(permissions.Administrator),
				Members:     models.StringList{owner.ID},
				Managed:     true,
			},
		},
	}
	general := &models.Channel{
		ID:      uuid.New().String(),
		GuildID: guild.ID,
		Name:    models.DefaultChannelName,
		Kind:    models.ChannelKindText,
	}

	if err := s.guildRepo.Create(ctx, guild, general); err != nil {
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}
	return guild, nil
}

func (s *GuildService) GetGuild(ctx context.Context, userID, guildID string) (*models.Guild, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.IsMember(userID) {
		return nil, ErrNotMember
	}
	return guild, nil
}

func (s *GuildService) ListUserGuilds(ctx context.Context, userID string) ([]*models.Guild, error) {
	guilds, err := s.guildRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return guilds, nil
}

func (s *GuildService) UpdateGuild(ctx context.Context, actorID, guildID string, req *UpdateGuildRequest) (*models.Guild, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.HasCapability(actorID, permissions.ManageGuild) {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: guild name must not be blank", ErrValidation)
	}
	guild.Name = name

	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return nil, fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventGuildUpdate, guild), ws.GuildRoom(guild.ID))
	return guild, nil
}

// DeleteGuild is reserved for the owner; manage-guild is not enough.
func (s *GuildService) DeleteGuild(ctx context.Context, actorID, guildID string) error {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return err
	}
	if actorID != guild.OwnerID {
		return ErrForbidden
	}

	if err := s.guildRepo.Delete(ctx, guildID); err != nil {
		return fmt.Errorf("failed to delete guild: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventGuildDelete, guild), ws.GuildRoom(guild.ID))
	return nil
}

// KickMember removes the target from the member list and from every role
// member set in a single guild update. The owner cannot be removed via this
// path.
func (s *GuildService) KickMember(ctx context.Context, actorID, guildID, targetID string) error {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return err
	}
	if !guild.HasCapability(actorID, permissions.KickMembers) {
		return ErrForbidden
	}
	if targetID == guild.OwnerID {
		return ErrCannotKickOwner
	}
	if !guild.IsMember(targetID) {
		return ErrNotMember
	}

	guild.RemoveMember(targetID)
	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventMemberRemove, ws.MemberRemovePayload{GuildID: guild.ID, UserID: targetID}),
		ws.GuildRoom(guild.ID),
	)
	s.broadcast.Publish(
		ws.NewEvent(ws.EventKickedFromGuild, ws.KickedPayload{GuildID: guild.ID, Name: guild.Name}),
		ws.UserRoom(targetID),
	)
	return nil
}

func (s *GuildService) LeaveGuild(ctx context.Context, userID, guildID string) error {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return err
	}
	if userID == guild.OwnerID {
		return ErrOwnerCannotLeave
	}
	if !guild.IsMember(userID) {
		return ErrNotMember
	}

	guild.RemoveMember(userID)
	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventMemberRemove, ws.MemberRemovePayload{GuildID: guild.ID, UserID: userID}),
		ws.GuildRoom(guild.ID),
	)
	return nil
}

func (s *GuildService) CreateRole(ctx context.Context, actorID, guildID string, req *CreateRoleRequest) (*models.Role, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.HasCapability(actorID, permissions.ManageRoles) {
		return nil, ErrForbidden
	}

	perms, err := parsePermissionNames(req.Permissions)
	if err != nil {
		return nil, err
	}

	role := models.Role{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Color:       req.Color,
		Position:    guild.NextRolePosition(),
		Permissions: perms,
		Members:     models.StringList{},
	}
	if role.Name == "" || role.Name == models.EveryoneRoleName {
		return nil, fmt.Errorf("%w: invalid role name", ErrValidation)
	}

	guild.Roles = append(guild.Roles, role)
	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return nil, fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventNewRole, ws.RoleCreatePayload{GuildID: guild.ID, Role: role}),
		ws.GuildRoom(guild.ID),
	)
	return &role, nil
}

// UpdateRole patches a role in place; concurrent edits are last-write-wins.
func (s *GuildService) UpdateRole(ctx context.Context, actorID, guildID, roleID string, req *UpdateRoleRequest) (*models.Guild, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.HasCapability(actorID, permissions.ManageRoles) {
		return nil, ErrForbidden
	}

	role := guild.RoleByID(roleID)
	if role == nil {
		return nil, fmt.Errorf("%w: role %s", ErrValidation, roleID)
	}

	if req.Name != nil && !role.Managed {
		name := strings.TrimSpace(*req.Name)
		if name == "" || name == models.EveryoneRoleName {
			return nil, fmt.Errorf("%w: invalid role name", ErrValidation)
		}
		role.Name = name
	}
	if req.Color != nil {
		role.Color = *req.Color
	}
	if req.Permissions != nil {
		perms, err := parsePermissionNames(*req.Permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}

	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return nil, fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventGuildUpdate, guild), ws.GuildRoom(guild.ID))
	return guild, nil
}

func (s *GuildService) DeleteRole(ctx context.Context, actorID, guildID, roleID string) error {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return err
	}
	if !guild.HasCapability(actorID, permissions.ManageRoles) {
		return ErrForbidden
	}

	role := guild.RoleByID(roleID)
	if role == nil {
		return fmt.Errorf("%w: role %s", ErrValidation, roleID)
	}
	if role.Managed {
		return ErrManagedRole
	}

	kept := make(models.RoleList, 0, len(guild.Roles)-1)
	for i := range guild.Roles {
		if guild.Roles[i].ID != roleID {
			kept = append(kept, guild.Roles[i])
		}
	}
	guild.Roles = kept

	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventGuildUpdate, guild), ws.GuildRoom(guild.ID))
	return nil
}

func (s *GuildService) AssignRole(ctx context.Context, actorID, guildID, roleID, targetID string) error {
	return s.changeRoleMembership(ctx, actorID, guildID, roleID, targetID, true)
}

func (s *GuildService) UnassignRole(ctx context.Context, actorID, guildID, roleID, targetID string) error {
	return s.changeRoleMembership(ctx, actorID, guildID, roleID, targetID, false)
}

func (s *GuildService) changeRoleMembership(ctx context.Context, actorID, guildID, roleID, targetID string, add bool) error {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return err
	}
	if !guild.HasCapability(actorID, permissions.ManageRoles) {
		return ErrForbidden
	}
	if !guild.IsMember(targetID) {
		return ErrNotMember
	}

	role := guild.RoleByID(roleID)
	if role == nil {
		return fmt.Errorf("%w: role %s", ErrValidation, roleID)
	}

	if add {
		if !role.Members.Contains(targetID) {
			role.Members = append(role.Members, targetID)
		}
	} else {
		role.Members = role.Members.Without(targetID)
	}

	if err := s.guildRepo.Update(ctx, guild); err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventGuildUpdate, guild), ws.GuildRoom(guild.ID))
	return nil
}

func (s *GuildService) loadGuild(ctx context.Context, guildID string) (*models.Guild, error) {
	guild, err := s.guildRepo.FindByID(ctx, guildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to find guild: %w", err)
	}
	return guild, nil
}

func parsePermissionNames(names []string) (permissions.Set, error) {
	perms := make([]permissions.Permission, 0, len(names))
	for _, name := range names {
		p, err := permissions.Parse(name)
		if err != nil {
			return permissions.Set{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		perms = append(perms, p)
	}
	return permissions.NewSet(perms...), nil
}
