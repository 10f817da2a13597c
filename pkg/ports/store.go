package ports

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
)

// StateStore persists finished session records so callers can replay a
// result by session ID. Persistence is an external collaborator: the
// pipeline itself never reads the store mid-run.
type StateStore interface {
	// Save persists the record under its session ID.
	Save(ctx context.Context, record *domain.SessionRecord) error

	// Load retrieves a record. Returns domain.ErrSessionNotFound if the
	// session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, sessionID string) error

	// List returns the stored session IDs.
	List(ctx context.Context) ([]string, error)
}
