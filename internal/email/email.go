// Package email renders and delivers the account emails. Messages are
// written to an outbox table inside the caller's transaction and delivered
// afterwards, so an unreachable mail provider never rolls back an account
// change.
package email

import "context"

// Kinds of email the application sends.
const (
	KindConfirmAccount = "confirm_account"
	KindResetPassword  = "reset_password"
)

// Message is a rendered email.
type Message struct {
	Kind     string
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
