package key

import "context"

type Core interface {
	// GenerateApiKey mints a key for the owner and returns the plaintext
	// exactly once.
	GenerateApiKey(ctx context.Context, name, ownerID string) (string, error)
}
