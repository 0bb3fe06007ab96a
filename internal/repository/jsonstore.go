package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/domain"
)

// JSONStore keeps one pretty-printed <name>.json file per transistor in a
// folder. The folder must be used by this database alone.
type JSONStore struct {
	folder string
}

// NewJSONStore opens (creating if needed) the database folder.
func NewJSONStore(folder string) (*JSONStore, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create database folder: %w", err)
	}
	return &JSONStore{folder: folder}, nil
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.folder, name+".json")
}

// Save writes the record file. Without overwrite an existing name fails
// with ErrExists.
func (s *JSONStore) Save(_ context.Context, t *domain.Transistor, overwrite bool) error {
	if !ValidName(t.Name) {
		return fmt.Errorf("%q is not a valid transistor name: %w", t.Name, domain.ErrInvalidRecord)
	}
	path := s.path(t.Name)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", t.Name, ErrExists)
		}
	}
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Debug().Str("name", t.Name).Str("path", path).Msg("transistor saved")
	return nil
}

// Load reads and re-validates one record.
func (s *JSONStore) Load(_ context.Context, name string) (*domain.Transistor, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("transistor %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Delete removes the record file.
func (s *JSONStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("transistor %s: %w", name, domain.ErrNotFound)
	}
	return err
}

// Names lists the stored transistor names, sorted.
func (s *JSONStore) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.folder)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		if ValidName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// All loads every stored record.
func (s *JSONStore) All(ctx context.Context) ([]*domain.Transistor, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Transistor, 0, len(names))
	for _, name := range names {
		t, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
