package repo

import "context"

// PrefsRepo is the persistent key-value preference store.
// Values are read fresh on every call; nothing is cached.
type PrefsRepo interface {
	GetString(ctx context.Context, key, defaultValue string) (string, error)
	SetString(ctx context.Context, key, value string) error

	GetBool(ctx context.Context, key string, defaultValue bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error

	// GetStringSet returns defaultValue only when the key is absent.
	// A stored empty set is returned as an empty, non-nil slice.
	GetStringSet(ctx context.Context, key string, defaultValue []string) ([]string, error)
	SetStringSet(ctx context.Context, key string, values []string) error

	Has(ctx context.Context, key string) (bool, error)
	All(ctx context.Context) (map[string]string, error)

	Close() error
}
