package httputil

import (
	"context"
	"net/http"
)

type actorKey struct{}

// WithActorID attaches the authenticated user to the request
func WithActorID(r *http.Request, actorID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorKey{}, actorID))
}

// ActorID returns the authenticated user, or "" on unauthenticated routes
func ActorID(r *http.Request) string {
	id, _ := r.Context().Value(actorKey{}).(string)
	return id
}
