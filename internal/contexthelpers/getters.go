package contexthelpers

import (
	"context"

	"github.com/google/uuid"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}
	return isAuthenticated
}

// AuthenticatedUserID returns the signed-in user's ID or uuid.Nil when the
// request is anonymous.
func AuthenticatedUserID(ctx context.Context) uuid.UUID {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
