package social

import "context"

type contextKey struct{}

var userIDKey contextKey

// WithUserID returns a context carrying the authenticated user's id. The
// auth middleware is the only writer.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// CurrentUserID extracts the authenticated user's id from the context,
// failing with ErrNotAuthenticated when no session exists.
func CurrentUserID(ctx context.Context) (string, error) {
	uid, ok := ctx.Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}
