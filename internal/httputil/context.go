package httputil

import (
	"context"
	"net/http"
)

// Unexported struct key, so nothing outside this package can collide.
type userIDKey struct{}

// WithUserID returns a request whose context carries the authenticated
// user's id.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID))
}

// GetUserID returns the authenticated user id, or "" when the request
// never passed through the auth middleware.
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}
