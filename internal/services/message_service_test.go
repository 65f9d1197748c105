package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/Concord/internal/models"
	"github.com/Gopher0727/Concord/internal/ws"
)

func (e *testEnv) openConversation(t *testing.T, creatorID, recipientID string) *models.Conversation {
	t.Helper()
	conversation, err := e.conversationSvc.OpenConversation(context.Background(), creatorID, &OpenConversationRequest{RecipientID: recipientID})
	require.NoError(t, err)
	return conversation
}

func TestSendChannelMessage(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	guild := env.createGuild(t, "alice", "homeroom")
	channel := env.defaultChannel(t, guild.ID)

	message, err := env.messageSvc.SendChannelMessage(context.Background(), "alice", channel.ID, &SendMessageRequest{Content: "  hello  "})
	require.NoError(t, err)
	require.Equal(t, "hello", message.Content, "content is trimmed")
	require.Equal(t, channel.ID, *message.ChannelID)

	last := env.broadcast.lastEvent()
	require.Equal(t, ws.EventNewMessage, last.event.Name)
	require.Equal(t, []string{ws.ChannelRoom(channel.ID)}, last.rooms)
}

// A non-member post is rejected outright: no message persisted, no event.
func TestSendChannelMessageNonMember(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "mallory")
	guild := env.createGuild(t, "alice", "homeroom")
	channel := env.defaultChannel(t, guild.ID)

	before := len(env.broadcast.published())
	_, err := env.messageSvc.SendChannelMessage(context.Background(), "mallory", channel.ID, &SendMessageRequest{Content: "hi"})
	require.ErrorIs(t, err, ErrNotMember)

	messages, listErr := env.messages.ListByChannel(context.Background(), channel.ID, 10, time.Time{})
	require.NoError(t, listErr)
	require.Empty(t, messages)
	require.Len(t, env.broadcast.published(), before)
}

func TestSendChannelMessageRequiresSendCapability(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	guild := env.createGuild(t, "alice", "homeroom")
	env.join(t, guild.ID, "bob")
	channel := env.defaultChannel(t, guild.ID)

	// Strip send-messages from @everyone; bob keeps membership but loses the
	// capability.
	stored := env.loadGuild(t, guild.ID)
	everyone := roleByName(stored, models.EveryoneRoleName)
	perms := []string{"create-invite"}
	_, err := env.guildSvc.UpdateRole(context.Background(), "alice", guild.ID, everyone.ID, &UpdateRoleRequest{Permissions: &perms})
	require.NoError(t, err)

	_, err = env.messageSvc.SendChannelMessage(context.Background(), "bob", channel.ID, &SendMessageRequest{Content: "hi"})
	require.ErrorIs(t, err, ErrForbidden)

	// The owner is unaffected.
	_, err = env.messageSvc.SendChannelMessage(context.Background(), "alice", channel.ID, &SendMessageRequest{Content: "hi"})
	require.NoError(t, err)
}

func TestSendMessageContentBounds(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	guild := env.createGuild(t, "alice", "homeroom")
	channel := env.defaultChannel(t, guild.ID)

	_, err := env.messageSvc.SendChannelMessage(context.Background(), "alice", channel.ID, &SendMessageRequest{Content: "   "})
	require.ErrorIs(t, err, ErrValidation)

	long := strings.Repeat("a", models.MaxMessageLength+1)
	_, err = env.messageSvc.SendChannelMessage(context.Background(), "alice", channel.ID, &SendMessageRequest{Content: long})
	require.ErrorIs(t, err, ErrValidation)
}

// Direct messages fan out to the conversation room and each participant's
// user room, so a recipient who never joined the conversation room still
// hears about it.
func TestSendDirectMessageFanout(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	conversation := env.openConversation(t, "alice", "bob")

	message, err := env.messageSvc.SendDirectMessage(context.Background(), "alice", conversation.ID, &SendMessageRequest{Content: "psst"})
	require.NoError(t, err)

	last := env.broadcast.lastEvent()
	require.Equal(t, ws.EventNewMessage, last.event.Name)
	require.ElementsMatch(t, []string{
		ws.ConversationRoom(conversation.ID),
		ws.UserRoom("alice"),
		ws.UserRoom("bob"),
	}, last.rooms)

	stored, err := env.conversations.FindByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessageID)
	require.Equal(t, message.ID, *stored.LastMessageID)
}

func TestSendDirectMessageOutsiderRejected(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	env.addUser(t, "mallory")
	conversation := env.openConversation(t, "alice", "bob")

	_, err := env.messageSvc.SendDirectMessage(context.Background(), "mallory", conversation.ID, &SendMessageRequest{Content: "hi"})
	require.ErrorIs(t, err, ErrForbidden)
}

// Edit and delete are authorship-gated, independent of role permissions.
func TestEditMessageAuthorOnly(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	guild := env.createGuild(t, "alice", "homeroom")
	env.join(t, guild.ID, "bob")
	channel := env.defaultChannel(t, guild.ID)

	message, err := env.messageSvc.SendChannelMessage(context.Background(), "bob", channel.ID, &SendMessageRequest{Content: "draft"})
	require.NoError(t, err)

	// Even the guild owner cannot edit someone else's message.
	_, err = env.messageSvc.EditMessage(context.Background(), "alice", message.ID, &EditMessageRequest{Content: "vandalized"})
	require.ErrorIs(t, err, ErrForbidden)

	edited, err := env.messageSvc.EditMessage(context.Background(), "bob", message.ID, &EditMessageRequest{Content: "final"})
	require.NoError(t, err)
	require.Equal(t, "final", edited.Content)

	last := env.broadcast.lastEvent()
	require.Equal(t, ws.EventMessageUpdate, last.event.Name)
	require.Equal(t, []string{ws.ChannelRoom(channel.ID)}, last.rooms)
}

func TestDeleteMessageAuthorOnly(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	guild := env.createGuild(t, "alice", "homeroom")
	env.join(t, guild.ID, "bob")
	channel := env.defaultChannel(t, guild.ID)

	message, err := env.messageSvc.SendChannelMessage(context.Background(), "bob", channel.ID, &SendMessageRequest{Content: "oops"})
	require.NoError(t, err)

	require.ErrorIs(t, env.messageSvc.DeleteMessage(context.Background(), "alice", message.ID), ErrForbidden)
	require.NoError(t, env.messageSvc.DeleteMessage(context.Background(), "bob", message.ID))

	_, err = env.messages.FindByID(context.Background(), message.ID)
	require.Error(t, err)

	last := env.broadcast.lastEvent()
	require.Equal(t, ws.EventMessageDelete, last.event.Name)
	payload, ok := last.event.Data.(ws.MessageDeletePayload)
	require.True(t, ok)
	require.Equal(t, message.ID, payload.ID)
	require.Equal(t, channel.ID, *payload.ChannelID)
}

func TestListChannelMessagesNewestFirst(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	guild := env.createGuild(t, "alice", "homeroom")
	channel := env.defaultChannel(t, guild.ID)

	for _, content := range []string{"first", "second", "third"} {
		_, err := env.messageSvc.SendChannelMessage(context.Background(), "alice", channel.ID, &SendMessageRequest{Content: content})
		require.NoError(t, err)
	}

	messages, err := env.messageSvc.ListChannelMessages(context.Background(), "alice", channel.ID, &ListMessagesRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "third", messages[0].Content)
	require.Equal(t, "second", messages[1].Content)
}

func TestListChannelMessagesNonMember(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "mallory")
	guild := env.createGuild(t, "alice", "homeroom")
	channel := env.defaultChannel(t, guild.ID)

	_, err := env.messageSvc.ListChannelMessages(context.Background(), "mallory", channel.ID, &ListMessagesRequest{})
	require.ErrorIs(t, err, ErrNotMember)
}

func TestListConversationMessagesParticipantOnly(t *testing.T) {
	env := newTestEnv()
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	env.addUser(t, "mallory")
	conversation := env.openConversation(t, "alice", "bob")

	_, err := env.messageSvc.SendDirectMessage(context.Background(), "alice", conversation.ID, &SendMessageRequest{Content: "psst"})
	require.NoError(t, err)

	_, err = env.messageSvc.ListConversationMessages(context.Background(), "mallory", conversation.ID, &ListMessagesRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	messages, err := env.messageSvc.ListConversationMessages(context.Background(), "bob", conversation.ID, &ListMessagesRequest{})
	require.NoError(t, err)
	require.Len(t, messages, 1)
}
