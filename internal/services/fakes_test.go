package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
	"github.com/Gopher0727/Concord/internal/repositories"
	"github.com/Gopher0727/Concord/internal/ws"
)

// In-memory repository fakes. Lookups return gorm.ErrRecordNotFound like the
// real store, and reads hand out copies so a caller mutating a loaded
// aggregate cannot change stored state without going through Update.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func cloneGuild(g *models.Guild) *models.Guild {
	clone := *g
	clone.Members = append(models.StringList(nil), g.Members...)
	clone.Roles = make(models.RoleList, len(g.Roles))
	for i := range g.Roles {
		clone.Roles[i] = g.Roles[i]
		clone.Roles[i].Members = append(models.StringList(nil), g.Roles[i].Members...)
	}
	return &clone
}

type fakeGuildRepo struct {
	mu       sync.Mutex
	guilds   map[string]*models.Guild
	channels *fakeChannelRepo
}

func newFakeGuildRepo(channels *fakeChannelRepo) *fakeGuildRepo {
	return &fakeGuildRepo{guilds: make(map[string]*models.Guild), channels: channels}
}

func (r *fakeGuildRepo) Create(ctx context.Context, guild *models.Guild, defaultChannel *models.Channel) error {
	r.mu.Lock()
	r.guilds[guild.ID] = cloneGuild(guild)
	r.mu.Unlock()
	if r.channels != nil {
		return r.channels.Create(ctx, defaultChannel)
	}
	return nil
}

func (r *fakeGuildRepo) FindByID(_ context.Context, id string) (*models.Guild, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	guild, ok := r.guilds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneGuild(guild), nil
}

func (r *fakeGuildRepo) Update(_ context.Context, guild *models.Guild) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.guilds[guild.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.guilds[guild.ID] = cloneGuild(guild)
	return nil
}

func (r *fakeGuildRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.guilds, id)
	return nil
}

func (r *fakeGuildRepo) ListForUser(_ context.Context, userID string) ([]*models.Guild, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Guild
	for _, guild := range r.guilds {
		if guild.IsMember(userID) {
			out = append(out, cloneGuild(guild))
		}
	}
	return out, nil
}

type fakeChannelRepo struct {
	mu       sync.Mutex
	channels map[string]*models.Channel
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: make(map[string]*models.Channel)}
}

func (r *fakeChannelRepo) Create(_ context.Context, channel *models.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *channel
	r.channels[channel.ID] = &clone
	return nil
}

func (r *fakeChannelRepo) FindByID(_ context.Context, id string) (*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	channel, ok := r.channels[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *channel
	return &clone, nil
}

func (r *fakeChannelRepo) Update(_ context.Context, channel *models.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[channel.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *channel
	r.channels[channel.ID] = &clone
	return nil
}

func (r *fakeChannelRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, id)
	return nil
}

func (r *fakeChannelRepo) ListByGuild(_ context.Context, guildID string) ([]*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Channel
	for _, channel := range r.channels {
		if channel.GuildID == guildID {
			clone := *channel
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeChannelRepo) CountByGuild(_ context.Context, guildID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, channel := range r.channels {
		if channel.GuildID == guildID {
			count++
		}
	}
	return count, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*models.Message
	order    []string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*models.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	clone := *message
	r.messages[message.ID] = &clone
	r.order = append(r.order, message.ID)
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *message
	return &clone, nil
}

func (r *fakeMessageRepo) Update(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[message.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *message
	r.messages[message.ID] = &clone
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) ListByChannel(_ context.Context, channelID string, limit int, before time.Time) ([]*models.Message, error) {
	return r.list(func(m *models.Message) bool {
		return m.ChannelID != nil && *m.ChannelID == channelID
	}, limit, before), nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string, limit int, before time.Time) ([]*models.Message, error) {
	return r.list(func(m *models.Message) bool {
		return m.ConversationID != nil && *m.ConversationID == conversationID
	}, limit, before), nil
}

// list walks insertion order backwards, which is newest-first in these tests.
func (r *fakeMessageRepo) list(match func(*models.Message) bool, limit int, before time.Time) []*models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		message, ok := r.messages[r.order[i]]
		if !ok || !match(message) {
			continue
		}
		if !before.IsZero() && !message.CreatedAt.Before(before) {
			continue
		}
		clone := *message
		out = append(out, &clone)
	}
	return out
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*models.Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, conversation *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *conversation
	clone.Participants = append(models.StringList(nil), conversation.Participants...)
	r.conversations[conversation.ID] = &clone
	return nil
}

func (r *fakeConversationRepo) FindByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *conversation
	return &clone, nil
}

func (r *fakeConversationRepo) FindByParticipantKey(_ context.Context, key string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conversation := range r.conversations {
		if conversation.ParticipantKey == key {
			clone := *conversation
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) ListForUser(_ context.Context, userID string) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			clone := *conversation
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) SetLastMessage(_ context.Context, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conversation.LastMessageID = &messageID
	return nil
}

// fakeInviteRepo redeems under a single lock shared with nothing else, which
// mirrors the serializing row locks of the real transaction.
type fakeInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*models.Invite
	guilds  *fakeGuildRepo
}

func newFakeInviteRepo(guilds *fakeGuildRepo) *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[string]*models.Invite), guilds: guilds}
}

func (r *fakeInviteRepo) Create(_ context.Context, invite *models.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *invite
	r.invites[invite.ID] = &clone
	return nil
}

func (r *fakeInviteRepo) FindByID(_ context.Context, id string) (*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.invites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *invite
	return &clone, nil
}

func (r *fakeInviteRepo) FindByCode(_ context.Context, code string) (*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite := r.byCodeLocked(code)
	if invite == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *invite
	return &clone, nil
}

func (r *fakeInviteRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invites, id)
	return nil
}

func (r *fakeInviteRepo) ListByGuild(_ context.Context, guildID string) ([]*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Invite
	for _, invite := range r.invites {
		if invite.GuildID == guildID {
			clone := *invite
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) Redeem(ctx context.Context, code, userID string) (*models.Guild, *models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invite := r.byCodeLocked(code)
	if invite == nil {
		return nil, nil, gorm.ErrRecordNotFound
	}
	if invite.Expired(time.Now()) {
		return nil, nil, repositories.ErrInviteExpired
	}
	if invite.Exhausted() {
		return nil, nil, repositories.ErrInviteExhausted
	}

	guild, err := r.guilds.FindByID(ctx, invite.GuildID)
	if err != nil {
		return nil, nil, err
	}
	if guild.IsMember(userID) {
		return nil, nil, repositories.ErrAlreadyMember
	}

	guild.AddMember(userID)
	if err := r.guilds.Update(ctx, guild); err != nil {
		return nil, nil, err
	}
	invite.Uses++

	inviteClone := *invite
	return guild, &inviteClone, nil
}

func (r *fakeInviteRepo) byCodeLocked(code string) *models.Invite {
	for _, invite := range r.invites {
		if invite.Code == code {
			return invite
		}
	}
	return nil
}

type publishedEvent struct {
	event *ws.Event
	rooms []string
}

// fakeBroadcaster records every published event for assertions.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{}
}

func (b *fakeBroadcaster) Publish(event *ws.Event, roomKeys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{event: event, rooms: append([]string(nil), roomKeys...)})
}

func (b *fakeBroadcaster) published() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedEvent(nil), b.events...)
}

// lastEvent returns the most recent published event, or nil.
func (b *fakeBroadcaster) lastEvent() *publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	return &b.events[len(b.events)-1]
}

// eventNames lists the published event names in order.
func (b *fakeBroadcaster) eventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.events))
	for _, e := range b.events {
		names = append(names, e.event.Name)
	}
	return names
}
