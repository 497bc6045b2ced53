package contract

import (
	"context"

	"doc-verify-bot/internal/entity"
)

// SessionRepository persists the verification workflow state. All lookups
// are keyed by the session id. Implementations must serialize per-session
// writes: Update is a read-modify-write and two concurrent partial updates
// must not corrupt the field mapping.
//
// Get and Update report a miss as entity.ErrNotFound; connectivity and
// serialization failures are entity.ErrPersistence, never a not-found.
type SessionRepository interface {
	// Create allocates an id, binds the chat and seeds the four fields
	// with their sentinel value.
	Create(ctx context.Context, chatID int64) (*entity.Session, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
	// Update merges the partial payload and refreshes UpdatedAt.
	Update(ctx context.Context, id string, upd entity.SessionUpdate) (*entity.Session, error)
	// Delete reports whether a session was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
	// FindOneAwaitingEdit returns the chat's most recently updated session
	// in awaiting_edit status, or (nil, nil) when there is none.
	FindOneAwaitingEdit(ctx context.Context, chatID int64) (*entity.Session, error)
}
