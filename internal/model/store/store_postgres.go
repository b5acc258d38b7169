package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"graphtrust/internal/model"
	"graphtrust/pkg/platform/sentinel"
)

// PostgresSchema creates the model version table.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS model_versions (
	id           UUID PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL,
	sample_count INTEGER NOT NULL,
	seed         BIGINT NOT NULL,
	tree_count   INTEGER NOT NULL,
	checksum     TEXT NOT NULL,
	active       BOOLEAN NOT NULL DEFAULT FALSE,
	artifact     BYTEA NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS model_versions_one_active ON model_versions (active) WHERE active;
`

// PostgresRegistry persists model versions in PostgreSQL. A partial unique
// index guarantees at most one active row.
type PostgresRegistry struct {
	db   *sql.DB
	opts options
}

// NewPostgres constructs a PostgreSQL-backed registry.
func NewPostgres(db *sql.DB, opts ...Option) *PostgresRegistry {
	return &PostgresRegistry{db: db, opts: applyOptions(opts)}
}

// EnsureSchema creates the table if missing.
func (s *PostgresRegistry) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("ensure model schema: %w", err)
	}
	return nil
}

func (s *PostgresRegistry) Save(ctx context.Context, v model.Version, artifact []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save model: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE model_versions SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("deactivate models: %w", err)
	}
	query := `
		INSERT INTO model_versions (id, created_at, sample_count, seed, tree_count, checksum, active, artifact)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		v.ID,
		v.CreatedAt,
		v.SampleCount,
		int64(v.Seed),
		v.Trees,
		v.Checksum,
		artifact,
	); err != nil {
		return fmt.Errorf("insert model version: %w", err)
	}

	versions, err := listVersions(ctx, tx)
	if err != nil {
		return err
	}
	if dropped := prune(versions, s.opts.retention); len(dropped) > 0 {
		ids := make([]string, 0, len(dropped))
		for _, d := range dropped {
			ids = append(ids, d.ID.String())
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM model_versions WHERE id = ANY($1::uuid[])`, pq.Array(ids)); err != nil {
			return fmt.Errorf("prune model versions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save model: %w", err)
	}
	return nil
}

func (s *PostgresRegistry) Active(ctx context.Context) (*model.Version, error) {
	query := `
		SELECT id, created_at, sample_count, seed, tree_count, checksum, active
		FROM model_versions
		WHERE active
	`
	v, err := scanVersion(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active model: %w", err)
	}
	return &v, nil
}

func (s *PostgresRegistry) Load(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT artifact FROM model_versions WHERE id = $1`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load model artifact: %w", err)
	}
	return blob, nil
}

func (s *PostgresRegistry) List(ctx context.Context) ([]model.Version, error) {
	versions, err := listVersions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(versions)
	return versions, nil
}

func (s *PostgresRegistry) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate model: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM model_versions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check model version: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `UPDATE model_versions SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("deactivate models: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE model_versions SET active = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("activate model: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate model: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listVersions(ctx context.Context, q queryer) ([]model.Version, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, created_at, sample_count, seed, tree_count, checksum, active
		FROM model_versions
	`)
	if err != nil {
		return nil, fmt.Errorf("list model versions: %w", err)
	}
	defer rows.Close()

	versions := []model.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model versions: %w", err)
	}
	return versions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner) (model.Version, error) {
	var v model.Version
	var seed int64
	err := row.Scan(&v.ID, &v.CreatedAt, &v.SampleCount, &seed, &v.Trees, &v.Checksum, &v.Active)
	v.Seed = uint64(seed)
	return v, err
}
