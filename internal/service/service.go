// Package service ties the storage, exchange and cloud layers together
// behind the operations the CLI and the HTTP API expose.
package service

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/domain"
	"github.com/powerlab/transistordb/internal/exchange"
	"github.com/powerlab/transistordb/internal/repository"
)

// Manager is the application service over one Store. All mutating calls
// log what they did; reads stay quiet.
type Manager struct {
	store    repository.Store
	exchange *exchange.Client

	// Whitelists for record construction. Loaded once at startup from the
	// local files and refreshed by UpdateFromExchange.
	housingTypes  []string
	manufacturers []string
}

// NewManager wires a manager over a store and an exchange client. The
// exchange client may be nil for offline use; exchange operations then
// return an error.
func NewManager(store repository.Store, xc *exchange.Client) *Manager {
	return &Manager{store: store, exchange: xc}
}

// LoadWhitelists reads the housing-type and manufacturer files. Missing
// files leave the lists empty, which disables whitelist enforcement in
// Create; that matches a fresh checkout before the first update.
func (m *Manager) LoadWhitelists(housingFile, manufacturerFile string) {
	m.housingTypes = readListFile(housingFile)
	m.manufacturers = readListFile(manufacturerFile)
	log.Debug().
		Int("housing_types", len(m.housingTypes)).
		Int("manufacturers", len(m.manufacturers)).
		Msg("whitelists loaded")
}

func readListFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return exchange.ParseList(string(data))
}

// Create validates a new record against the whitelists and stores it.
func (m *Manager) Create(ctx context.Context, t domain.Transistor, overwrite bool) (*domain.Transistor, error) {
	housing := m.housingTypes
	manufacturers := m.manufacturers
	if len(housing) == 0 {
		housing = []string{t.HousingType}
	}
	if len(manufacturers) == 0 {
		manufacturers = []string{t.Manufacturer}
	}
	built, err := domain.New(t, housing, manufacturers)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, built, overwrite); err != nil {
		return nil, err
	}
	log.Info().Str("name", built.Name).Msg("transistor stored")
	return built, nil
}

// Save persists an already-validated record.
func (m *Manager) Save(ctx context.Context, t *domain.Transistor, overwrite bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := m.store.Save(ctx, t, overwrite); err != nil {
		return err
	}
	log.Info().Str("name", t.Name).Bool("overwrite", overwrite).Msg("transistor stored")
	return nil
}

// Load fetches one record by name.
func (m *Manager) Load(ctx context.Context, name string) (*domain.Transistor, error) {
	return m.store.Load(ctx, name)
}

// Delete removes one record by name.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := m.store.Delete(ctx, name); err != nil {
		return err
	}
	log.Info().Str("name", name).Msg("transistor deleted")
	return nil
}

// Names lists all stored record names.
func (m *Manager) Names(ctx context.Context) ([]string, error) {
	return m.store.Names(ctx)
}

// Filter selects stored records. Empty criteria match everything; the name
// filter is a case-insensitive substring, type and manufacturer are exact
// (case-insensitive) matches.
type Filter struct {
	Name         string
	Type         domain.DeviceType
	Manufacturer string
}

// List returns the records matching the filter, in store order.
func (m *Manager) List(ctx context.Context, f Filter) ([]*domain.Transistor, error) {
	all, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Transistor
	for _, t := range all {
		if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Manufacturer != "" && !strings.EqualFold(t.Manufacturer, f.Manufacturer) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Parallel builds and stores the n-parallel variant of a record.
func (m *Manager) Parallel(ctx context.Context, name string, n int, overwrite bool) (*domain.Transistor, error) {
	t, err := m.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	p, err := t.Parallel(n)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, p, overwrite); err != nil {
		return nil, err
	}
	log.Info().Str("name", p.Name).Int("count", n).Msg("parallel variant stored")
	return p, nil
}

// AttachMeasurement appends raw double-pulse measurement data to a stored
// record and saves it back.
func (m *Manager) AttachMeasurement(ctx context.Context, name string, raw domain.RawMeasurementData) error {
	t, err := m.store.Load(ctx, name)
	if err != nil {
		return err
	}
	t.RawMeasurementData = append(t.RawMeasurementData, raw)
	if err := m.store.Save(ctx, t, true); err != nil {
		return err
	}
	log.Info().Str("name", name).Str("dataset_type", raw.DatasetType).Msg("measurement attached")
	return nil
}

// UpdateFromExchange downloads every record the exchange index lists and
// stores it, plus refreshed whitelist files. Individual record failures are
// logged and skipped; the update continues. Returns the number of records
// stored.
func (m *Manager) UpdateFromExchange(ctx context.Context, overwrite bool, housingFile, manufacturerFile string) (int, error) {
	if m.exchange == nil {
		return 0, errors.New("exchange client not configured")
	}

	if err := m.refreshWhitelistFile(ctx, m.exchange.HousingTypesURL, housingFile, &m.housingTypes); err != nil {
		log.Warn().Err(err).Msg("housing type list refresh failed")
	}
	if err := m.refreshWhitelistFile(ctx, m.exchange.ManufacturersURL, manufacturerFile, &m.manufacturers); err != nil {
		log.Warn().Err(err).Msg("manufacturer list refresh failed")
	}

	urls, err := m.exchange.FetchIndex(ctx)
	if err != nil {
		return 0, err
	}
	stored := 0
	for _, url := range urls {
		t, err := m.exchange.FetchTransistor(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("exchange record skipped")
			continue
		}
		if err := m.store.Save(ctx, t, overwrite); err != nil {
			if errors.Is(err, repository.ErrExists) {
				log.Debug().Str("name", t.Name).Msg("already stored, not overwriting")
				continue
			}
			log.Warn().Err(err).Str("name", t.Name).Msg("exchange record not stored")
			continue
		}
		stored++
	}
	log.Info().Int("stored", stored).Int("listed", len(urls)).Msg("exchange update done")
	return stored, nil
}

func (m *Manager) refreshWhitelistFile(ctx context.Context, url, path string, target *[]string) error {
	list, err := m.exchange.FetchList(ctx, url)
	if err != nil {
		return err
	}
	*target = list
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(strings.Join(list, "\n")+"\n"), 0o644)
}

// CompareResult describes how the local store relates to the exchange index.
type CompareResult struct {
	MissingLocally []string `json:"missing_locally"`
	LocalOnly      []string `json:"local_only"`
}

// Compare lists records present on the exchange but not stored locally, and
// vice versa. Exchange names are derived from the file part of each URL.
func (m *Manager) Compare(ctx context.Context) (*CompareResult, error) {
	if m.exchange == nil {
		return nil, errors.New("exchange client not configured")
	}
	urls, err := m.exchange.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	remote := make(map[string]bool, len(urls))
	for _, url := range urls {
		name := url
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		name = strings.TrimSuffix(name, ".json")
		if name != "" {
			remote[name] = true
		}
	}
	local, err := m.store.Names(ctx)
	if err != nil {
		return nil, err
	}
	res := &CompareResult{}
	localSet := make(map[string]bool, len(local))
	for _, n := range local {
		localSet[n] = true
		if !remote[n] {
			res.LocalOnly = append(res.LocalOnly, n)
		}
	}
	for n := range remote {
		if !localSet[n] {
			res.MissingLocally = append(res.MissingLocally, n)
		}
	}
	sort.Strings(res.MissingLocally)
	sort.Strings(res.LocalOnly)
	return res, nil
}
