package ws

import "strings"

// Event names pushed to subscribed rooms. Payloads are the REST entity
// representations (or the small id structs below).
const (
	EventNewMessage      = "newMessage"
	EventMessageUpdate   = "messageUpdate"
	EventMessageDelete   = "messageDelete"
	EventNewChannel      = "newChannel"
	EventChannelUpdate   = "channelUpdate"
	EventChannelDelete   = "channelDelete"
	EventGuildUpdate     = "guildUpdate"
	EventGuildDelete     = "guildDelete"
	EventNewRole         = "newRole"
	EventMemberJoin      = "memberJoin"
	EventMemberRemove    = "memberRemove"
	EventKickedFromGuild = "kickedFromGuild"
	EventNewConversation = "newConversation"
)

// Event is the wire frame delivered to sessions.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

func NewEvent(name string, data any) *Event {
	return &Event{Name: name, Data: data}
}

// Room keys. A room is purely an in-memory broadcast grouping; it exists only
// while sessions are subscribed to it.
func UserRoom(userID string) string         { return "user:" + userID }
func GuildRoom(guildID string) string       { return "guild:" + guildID }
func ChannelRoom(channelID string) string   { return "channel:" + channelID }
func ConversationRoom(convID string) string { return "conversation:" + convID }

// ClientJoinable reports whether a session may request to join or leave the
// room at will. Own-user rooms are joined implicitly at connect and are never
// client-managed. No authorization check happens here: room membership by
// itself grants nothing beyond receiving already-broadcast updates.
func ClientJoinable(roomKey string) bool {
	kind, id, ok := strings.Cut(roomKey, ":")
	if !ok || id == "" {
		return false
	}
	switch kind {
	case "guild", "channel", "conversation":
		return true
	default:
		return false
	}
}
