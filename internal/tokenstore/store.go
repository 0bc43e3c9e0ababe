// Package tokenstore persists the session token, the only durable piece of
// client state. Every backend keys the token by TokenKey so a stored session
// survives restarts under a stable, well-known name.
package tokenstore

import "context"

const TokenKey = "pulasa_ecommerce_token"

// Store loads, saves and clears the session token. A missing token is not an
// error: Load returns ("", nil).
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
