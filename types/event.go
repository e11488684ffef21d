package types

import "time"

// AccountEventType names a change in an account's lifecycle.
type AccountEventType string

const (
	EventUserRegistered AccountEventType = "user.registered"
	EventUserLoggedIn   AccountEventType = "user.logged_in"
	EventUserLoggedOut  AccountEventType = "user.logged_out"
	EventUserBlocked    AccountEventType = "user.blocked"
	EventUserUnblocked  AccountEventType = "user.unblocked"
	EventUserDeleted    AccountEventType = "user.deleted"
)

// AccountEvent is published to the message queue whenever an account
// changes state. ActorID is the user who caused the change; for
// self-service events it equals UserID.
type AccountEvent struct {
	Type       AccountEventType `json:"type"`
	UserID     int              `json:"user_id"`
	Email      string           `json:"email"`
	ActorID    int              `json:"actor_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}
