package storage

import (
	"context"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

//go:generate mockgen -source=storage.go -package=storage -destination=storage_mock.go

// Store defines interface to the persistent domain table.
type Store interface {
	// Load returns the whole persisted table. Missing data is not an error,
	// an empty table is returned instead.
	// Any error returned is internal.
	Load(ctx context.Context) (entities.Domains, error)
	// Save replaces the persisted table with domains as a single unit.
	// Any error returned is internal.
	Save(ctx context.Context, domains entities.Domains) error
}
