package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/powerlab/transistordb/internal/domain"
)

// PostgresStore keeps each record tree as one jsonb row keyed by name.
type PostgresStore struct {
	db *sqlx.DB
}

const transistorsSchema = `
CREATE TABLE IF NOT EXISTS transistors (
	name TEXT PRIMARY KEY,
	data JSONB NOT NULL
)`

// NewPostgresStore ensures the table exists.
func NewPostgresStore(ctx context.Context, db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, transistorsSchema); err != nil {
		return nil, fmt.Errorf("create transistors table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, t *domain.Transistor, overwrite bool) error {
	if !ValidName(t.Name) {
		return fmt.Errorf("%q is not a valid transistor name: %w", t.Name, domain.ErrInvalidRecord)
	}
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if overwrite {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO transistors(name, data) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data`,
			t.Name, data)
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transistors(name, data) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		t.Name, data)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", t.Name, ErrExists)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) (*domain.Transistor, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM transistors WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transistor %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transistors WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transistor %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, `SELECT name FROM transistors ORDER BY name`)
	return names, err
}

func (s *PostgresStore) All(ctx context.Context) ([]*domain.Transistor, error) {
	var rows [][]byte
	if err := s.db.SelectContext(ctx, &rows, `SELECT data FROM transistors ORDER BY name`); err != nil {
		return nil, err
	}
	out := make([]*domain.Transistor, 0, len(rows))
	for _, data := range rows {
		t, err := Decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
