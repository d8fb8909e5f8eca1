package assess

import "context"

// Store is the keyed definition store. The rest of the engine treats
// definitions as opaque blobs: existence-by-id, read, write.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (Assessment, error)
	Put(ctx context.Context, a Assessment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Assessment, error)

	// AllocateNextID returns the lowest unused non-negative integer across
	// the whole id space, so forked definitions fill gaps left by deletes.
	AllocateNextID(ctx context.Context) (int64, error)

	// TitleExists reports a case-insensitive title collision.
	TitleExists(ctx context.Context, title string) (bool, error)
}
