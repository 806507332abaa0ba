package ports

import (
	"context"

	"github.com/aretw0/toolhouse/pkg/domain"
)

// HistoryStore persists summaries of completed dice sessions.
// Implementations are bounded: once full, the oldest records are discarded.
type HistoryStore interface {
	// Append records a session. Records are returned newest first by Recent.
	Append(ctx context.Context, record domain.RollRecord) error

	// Recent returns up to limit records, newest first.
	// A limit of zero or less returns an empty slice.
	Recent(ctx context.Context, limit int) ([]domain.RollRecord, error)

	// Close releases the underlying resources.
	Close() error
}
