package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerlab/transistordb/internal/curve"
)

func TestChannelVoltageAt(t *testing.T) {
	ch := ChannelData{
		TJ: 25, VG: 15,
		Graph: curve.Curve{X: []float64{0, 1.0, 2.2}, Y: []float64{0, 10, 20}},
	}
	assert.InDelta(t, 1.0, ch.VoltageAt(10), 1e-12)
	assert.InDelta(t, 1.6, ch.VoltageAt(15), 1e-12)
	// Clamped beyond the measured current range.
	assert.InDelta(t, 2.2, ch.VoltageAt(1000), 1e-12)
}

func TestSwitchEnergyValidate(t *testing.T) {
	ok := SwitchEnergyData{DatasetType: DatasetSingle, TJ: 125, EX: 0.01, IX: 100}
	assert.NoError(t, ok.Validate())

	bad := SwitchEnergyData{DatasetType: DatasetGraphIE, TJ: 125}
	assert.Error(t, bad.Validate())

	unknown := SwitchEnergyData{DatasetType: "table"}
	assert.Error(t, unknown.Validate())
}

func TestSentinelEnergy(t *testing.T) {
	s := sentinelEnergy()
	assert.True(t, s.IsSentinel())
	assert.NoError(t, s.Validate())

	real := SwitchEnergyData{
		DatasetType: DatasetGraphIE,
		GraphIE:     curve.Curve{X: []float64{0, 100}, Y: []float64{0, 0.01}},
	}
	assert.False(t, real.IsSentinel())
}

func TestCapacitanceChargeAndEnergy(t *testing.T) {
	vc := VoltageDependentCapacitance{
		TJ:    25,
		Graph: curve.Curve{X: []float64{0, 1, 2}, Y: []float64{1, 1, 1}},
	}
	q := vc.Charge()
	assert.InDelta(t, 1.0, q.Y[1], 1e-12)
	assert.InDelta(t, 2.0, q.Y[2], 1e-12)

	e := vc.Energy()
	assert.InDelta(t, 0.5, e.Y[1], 1e-12)
	assert.InDelta(t, 2.0, e.Y[2], 1e-12)
}

func TestFosterValidateDerivesTau(t *testing.T) {
	f := FosterThermalModel{
		RThVector: []float64{0.02, 0.04},
		CThVector: []float64{0.5, 0.25},
	}
	require.NoError(t, f.Validate())
	require.Len(t, f.TauVector, 2)
	assert.InDelta(t, 0.01, f.TauVector[0], 1e-12)
	assert.InDelta(t, 0.01, f.TauVector[1], 1e-12)
}

func TestFosterValidateChecksTau(t *testing.T) {
	f := FosterThermalModel{
		RThVector: []float64{0.02},
		CThVector: []float64{0.5},
		TauVector: []float64{0.02},
	}
	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	// Within relative tolerance passes.
	f.TauVector = []float64{0.01 + 1e-9}
	assert.NoError(t, f.Validate())
}

func TestFosterValidateStageCounts(t *testing.T) {
	f := FosterThermalModel{RThVector: []float64{0.02, 0.04}, CThVector: []float64{0.5}}
	assert.ErrorIs(t, f.Validate(), ErrInvalidRecord)

	empty := FosterThermalModel{}
	assert.NoError(t, empty.Validate())
	assert.Equal(t, 0, empty.Stages())
}
