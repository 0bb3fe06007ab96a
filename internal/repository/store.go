// Package repository persists transistor record trees. Three backends share
// one interface: a folder of JSON files for local use, Postgres for shared
// deployments and MongoDB for compatibility with existing collections.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/powerlab/transistordb/internal/domain"
)

// ErrExists is returned by Save when the name is taken and overwrite is off.
var ErrExists = errors.New("transistor already exists")

// Store is the persistence contract. Implementations receive and return
// fully materialized record trees; loaded trees are re-validated so a
// corrupted row surfaces as domain.ErrInvalidRecord instead of propagating
// silently.
type Store interface {
	Save(ctx context.Context, t *domain.Transistor, overwrite bool) error
	Load(ctx context.Context, name string) (*domain.Transistor, error)
	Delete(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
	All(ctx context.Context) ([]*domain.Transistor, error)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidName reports whether a transistor name is usable as a store key and
// a file name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Encode serializes a record tree in the canonical on-disk form.
func Encode(t *domain.Transistor) ([]byte, error) {
	return json.MarshalIndent(t, "", "    ")
}

// Decode parses and re-validates a serialized record tree.
func Decode(data []byte) (*domain.Transistor, error) {
	var t domain.Transistor
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transistor: %w: %w", domain.ErrInvalidRecord, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
