package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileByName(t *testing.T, files []File, name string) string {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return string(f.Data)
		}
	}
	t.Fatalf("no file %q in %d exported files", name, len(files))
	return ""
}

func TestGeckoIGBT(t *testing.T) {
	tr := igbtFixture(t)
	files, err := Gecko(tr, GeckoOptions{})
	require.NoError(t, err)
	require.Len(t, files, 2)

	sw := fileByName(t, files, "FF300R12KE4_Switch(rg_on_2)(rg_off_3.6).scl")
	assert.Contains(t, sw, "anzMesskurvenPvCOND 2\n")
	assert.Contains(t, sw, "<LeitverlusteMesskurve>\n")
	assert.Contains(t, sw, "tj 25\n")
	assert.Contains(t, sw, "tj 150\n")
	// One matched turn-on/turn-off pair at 150 degrees, 600 V, 10 samples.
	assert.Contains(t, sw, "anzMesskurvenPvSWITCH 1\n")
	assert.Contains(t, sw, "<SchaltverlusteMesskurve>\ndata[][] 3 10 ")
	assert.Contains(t, sw, "uBlock 600\n")
	assert.Contains(t, sw, "<\\SchaltverlusteMesskurve>\n")
	// IGBT channels are not mirrored into the third quadrant.
	assert.NotContains(t, sw, "-1.000")

	d := fileByName(t, files, "FF300R12KE4_Diode(rg_2).scl")
	assert.Contains(t, d, "anzMesskurvenPvCOND 2\n")
	// Both recovery curves export with zeroed turn-on energies.
	assert.Contains(t, d, "anzMesskurvenPvSWITCH 2\n")
	assert.Contains(t, d, "data[][] 3 3 0.00 300.00 600.00 0.00000000 0.00000000 0.00000000 0.00000000 0.01000000 0.02000000")
}

func TestGeckoMOSFETMirrorsChannel(t *testing.T) {
	tr := mosfetFixture(t)
	files, err := Gecko(tr, GeckoOptions{})
	require.NoError(t, err)
	require.Len(t, files, 2)

	sw := fileByName(t, files, "IPB65R045_Switch(rg_on_0)(rg_off_0).scl")
	assert.Contains(t, sw, "anzMesskurvenPvCOND 1\n")
	// Forward curve mirrored into the third quadrant, origin kept once.
	assert.Contains(t, sw, "data[][] 2 5 -1.000 -0.500 0.000 0.500 1.000 -50.000 -25.000 0.000 25.000 50.000")
	// No stored losses: the zero block keeps the simulator off its defaults.
	assert.Contains(t, sw, "anzMesskurvenPvSWITCH 1\n")
	assert.Contains(t, sw, "data[][] 3 2 0 10 0 0 0 0\ntj 25\nuBlock 400\n")

	d := fileByName(t, files, "IPB65R045_Diode(rg_0).scl")
	assert.Contains(t, d, "anzMesskurvenPvSWITCH 1\n")
	assert.Contains(t, d, "data[][] 3 2 0 10 0 0 0 0")
}

func TestGeckoRecheckSnapsGateVoltages(t *testing.T) {
	tr := igbtFixture(t)
	// Slightly off voltages snap to the stored 15/-15 tags instead of
	// producing empty exports.
	on, off := 14.0, -12.0
	files, err := Gecko(tr, GeckoOptions{VGOn: &on, VGOff: &off, Recheck: true})
	require.NoError(t, err)
	require.Len(t, files, 2)
	sw := fileByName(t, files, "FF300R12KE4_Switch(rg_on_2)(rg_off_3.6).scl")
	assert.Contains(t, sw, "anzMesskurvenPvCOND 2\n")
	assert.Contains(t, sw, "anzMesskurvenPvSWITCH 1\n")
}

func TestGeckoWithoutRecheckMissesOffVoltages(t *testing.T) {
	tr := igbtFixture(t)
	on := 14.0
	files, err := Gecko(tr, GeckoOptions{VGOn: &on})
	require.NoError(t, err)
	// No channel curve at v_g=14: the switch file is skipped entirely.
	for _, f := range files {
		assert.False(t, strings.Contains(f.Name, "_Switch"), "unexpected %s", f.Name)
	}
}

func TestPatchZeroCurrents(t *testing.T) {
	got := patchZeroCurrents([]float64{0, 0, 5})
	assert.Equal(t, []float64{0, 0.001, 5}, got)
}

func TestMirrorNegative(t *testing.T) {
	got := mirrorNegative([]float64{0, 1, 2})
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, got)
}
