package middleware

import (
	"context"

	"github.com/DemisRincon/skill-up/internal/domain"
)

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession attaches the resolved session to the request context. The
// guard resolves it once per request; downstream handlers only read it.
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*domain.Session)
	return session, ok && session != nil
}
