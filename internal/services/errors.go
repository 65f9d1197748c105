package services

import "errors"

// Expected business outcomes. These are returned, never panicked, and are
// surfaced directly to the requester; anything else escaping a service is an
// internal failure that handlers log and mask.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrGuildNotFound        = errors.New("guild not found")
	ErrChannelNotFound      = errors.New("channel not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInviteNotFound       = errors.New("invite not found")

	ErrForbidden = errors.New("missing capability for this action")
	ErrNotMember = errors.New("user is not a member of this guild")

	ErrAlreadyMember         = errors.New("user is already a member of this guild")
	ErrDuplicateConversation = errors.New("conversation between these users already exists")
	ErrLastChannel           = errors.New("cannot delete the last channel of a guild")
	ErrCannotKickOwner       = errors.New("the guild owner cannot be kicked")
	ErrOwnerCannotLeave      = errors.New("the guild owner cannot leave the guild")
	ErrManagedRole           = errors.New("managed roles cannot be deleted")
	ErrUsernameTaken         = errors.New("username is already taken")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrInviteExpired         = errors.New("invite has expired")
	ErrInviteExhausted       = errors.New("invite has no remaining uses")
	ErrValidation            = errors.New("invalid input")
)
