package contexthelpers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

func AuthenticateContext(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
	return r.WithContext(ctx)
}

func SetTraceID(r *http.Request, traceID string) *http.Request {
	ctx := context.WithValue(r.Context(), TraceIDContextKey, traceID)
	return r.WithContext(ctx)
}
