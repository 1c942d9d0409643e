// Package cont carries request-scoped values through context.
package cont

import (
	"context"

	"ChatCRM/entity"
)

type ctxKey int

const userKey ctxKey = iota

// PutUser stores the authenticated user in the request context.
func PutUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user, or nil when the request was not
// authenticated.
func GetUser(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userKey).(*entity.User)
	return user
}
