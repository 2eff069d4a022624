package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

const connectAttempts = 5

// Storage is a postgres-based implementation of storage.Store.
type Storage struct {
	mainDB  *pgxpool.Pool
	logger  *zap.Logger
	timeout time.Duration
}

// New connects to postgres and makes sure the domains table exists.
// Context is used during dial only, connString may contain pgx
// specific parameters.
func New(ctx context.Context, logger *zap.Logger, conf *config.Postgres) (*Storage, error) {
	mainDB, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		return pgxpool.Connect(ctx, conf.MainDBConnectionString)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(connectAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("postgres is not reachable yet", zap.Error(err), zap.Duration("retry_in", next))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mainDB pgx pool: %w", err)
	}

	s := &Storage{
		mainDB:  mainDB,
		logger:  logger,
		timeout: conf.Timeout,
	}
	if err := s.migrate(ctx); err != nil {
		mainDB.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.mainDB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS monitored_domains (
			name       TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create monitored_domains table: %w", err)
	}

	return nil
}

// Load returns all monitored domains.
// Any error returned is internal.
func (s *Storage) Load(ctx context.Context) (entities.Domains, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.mainDB.Query(ctx, `
		SELECT
			name,
			record
		FROM
			monitored_domains
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	domains := make(entities.Domains)
	for rows.Next() {
		var (
			name string
			raw  []byte
		)
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}

		var rec entities.DomainRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %q record: %w", name, err)
		}
		domains[name] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domain list: %w", err)
	}

	return domains, nil
}

// Save replaces the whole table in one transaction.
// Any error returned is internal.
func (s *Storage) Save(ctx context.Context, domains entities.Domains) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.mainDB.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM monitored_domains`); err != nil {
			return fmt.Errorf("failed to clear domains: %w", err)
		}

		batch := &pgx.Batch{}
		for name, rec := range domains { //nolint:gocritic
			raw, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode %q record: %w", name, err)
			}
			batch.Queue(`
				INSERT INTO monitored_domains (name, record, updated_at)
				VALUES ($1, $2, now())
			`, name, raw)
		}

		br := tx.SendBatch(ctx, batch)
		for range domains {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck,gosec
				return fmt.Errorf("failed to insert domain: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to finish batch: %w", err)
		}

		return nil
	})
}

// Close releases underlying db resources.
func (s *Storage) Close() error {
	s.mainDB.Close()
	return nil
}
