package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerlab/transistordb/internal/curve"
	"github.com/powerlab/transistordb/internal/domain"
)

func storedTransistor(name string) *domain.Transistor {
	return &domain.Transistor{
		ID:           "store-test-id",
		Name:         name,
		Type:         domain.TypeIGBT,
		Manufacturer: "Infineon",
		HousingType:  "TO247",
		VAbsMax:      1200,
		IAbsMax:      600,
		ICont:        300,
		Switch: domain.Switch{
			TJMax: 175,
			Channel: []domain.ChannelData{{
				TJ: 25, VG: 15,
				Graph: curve.Curve{X: []float64{0, 1, 2}, Y: []float64{0, 100, 300}},
			}},
		},
		Diode: domain.Diode{TJMax: 175},
	}
}

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestJSONStoreRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	in := storedTransistor("CM100DY")
	require.NoError(t, s.Save(ctx, in, false))
	assert.FileExists(t, filepath.Join(dir, "CM100DY.json"))

	out, err := s.Load(ctx, "CM100DY")
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Switch.Channel[0].Graph, out.Switch.Channel[0].Graph)
}

func TestJSONStoreSaveWithoutOverwrite(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in := storedTransistor("CM100DY")
	require.NoError(t, s.Save(ctx, in, false))
	err := s.Save(ctx, in, false)
	assert.ErrorIs(t, err, ErrExists)

	require.NoError(t, s.Save(ctx, in, true))
}

func TestJSONStoreRejectsUnsafeNames(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		in := storedTransistor("X")
		in.Name = name
		err := s.Save(ctx, in, true)
		assert.ErrorIs(t, err, domain.ErrInvalidRecord, "name %q", name)
	}
}

func TestJSONStoreLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJSONStoreLoadCorruptFile(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
	_, err := s.Load(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestJSONStoreDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storedTransistor("CM100DY"), false))
	require.NoError(t, s.Delete(ctx, "CM100DY"))
	assert.ErrorIs(t, s.Delete(ctx, "CM100DY"), domain.ErrNotFound)
}

func TestJSONStoreNamesSortedAndFiltered(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storedTransistor("beta"), false))
	require.NoError(t, s.Save(ctx, storedTransistor("Alpha"), false))
	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta"}, names)
}

func TestJSONStoreAll(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storedTransistor("a1"), false))
	require.NoError(t, s.Save(ctx, storedTransistor("a2"), false))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a1", all[0].Name)
	assert.Equal(t, "a2", all[1].Name)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("FF300R12KE4"))
	assert.True(t, ValidName("CM100DY-24NF"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("-leading"))
	assert.False(t, ValidName("has space"))
	assert.False(t, ValidName("a/b"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := storedTransistor("enc")
	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Type, out.Type)
}

func TestDecodeRejectsInvalidRecord(t *testing.T) {
	in := storedTransistor("enc")
	in.VAbsMax = 0
	data, err := Encode(in)
	require.NoError(t, err)

	_, err = Decode(data)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}
