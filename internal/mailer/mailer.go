package mailer

import "context"

const (
	StatusSent  = "sent"
	StatusError = "error"
)

// Invite is one recipient descriptor for invitation delivery.
type Invite struct {
	TeamMemberEmail string `json:"team_member_email"`
	TeamMemberName  string `json:"team_member_name"`
	InviteToken     string `json:"invite_token"`
}

// Result is the per-recipient outcome of one delivery attempt.
type Result struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Mailer performs a single delivery attempt for one invite. No retries.
type Mailer interface {
	SendInvite(ctx context.Context, invite Invite) error
}
