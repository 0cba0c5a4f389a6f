package storage

import (
	"context"

	"github.com/gatherly/server/internal/domain/events"
)

// Repository groups data access by domain.
type Repository interface {
	Events() events.Repository

	// WithTx runs fn against a repository bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
