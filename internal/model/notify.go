package model

import "context"

// Dispatcher sends templated transactional email. Implementations build
// the action links themselves; callers only supply the raw token.
type Dispatcher interface {
	SendVerificationEmail(ctx context.Context, to, username, token string) error
	SendPasswordResetEmail(ctx context.Context, to, username, token string) error
}
