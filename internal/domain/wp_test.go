package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateWPSwitchOnly(t *testing.T) {
	tr := testIGBT()
	require.NoError(t, tr.UpdateWP(150, 15, 15, PartSwitch, Strict))

	require.NotNil(t, tr.WP.SwitchChannel)
	assert.Equal(t, 150.0, tr.WP.SwitchChannel.TJ)
	require.NotNil(t, tr.WP.EOn)
	assert.Equal(t, 2.0, tr.WP.EOn.RG)
	require.NotNil(t, tr.WP.EOff)
	assert.Nil(t, tr.WP.ERr)
	assert.NotZero(t, tr.WP.SwitchRChannel)

	// The capacitance scratch curves come along for free.
	assert.False(t, tr.WP.GraphVCoss.IsZero())
	assert.False(t, tr.WP.GraphVEoss.IsZero())
	assert.False(t, tr.WP.GraphVQoss.IsZero())
}

func TestUpdateWPStrictFailsOnMissingRecovery(t *testing.T) {
	tr := testIGBT()
	err := tr.UpdateWP(150, 15, 15, PartBoth, Strict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWPLenientWritesSentinel(t *testing.T) {
	tr := testIGBT()
	require.NoError(t, tr.UpdateWP(150, 15, 15, PartBoth, Lenient))

	require.NotNil(t, tr.WP.ERr)
	assert.True(t, tr.WP.ERr.IsSentinel())
	require.NotNil(t, tr.WP.DiodeChannel)
	assert.NotZero(t, tr.WP.DiodeRChannel)
	// The real switch loss data is untouched by the sentinel substitution.
	require.NotNil(t, tr.WP.EOn)
	assert.False(t, tr.WP.EOn.IsSentinel())
}

func TestUpdateWPMissingChannelIsFatalInBothModes(t *testing.T) {
	tr := testIGBT()
	tr.Diode.Channel = nil
	assert.ErrorIs(t, tr.UpdateWP(150, 15, 15, PartBoth, Lenient), ErrNotFound)
	assert.ErrorIs(t, tr.UpdateWP(150, 15, 15, PartBoth, Strict), ErrNotFound)
}

func TestUpdateWPPrefersMeasuredEossCurve(t *testing.T) {
	tr := testIGBT()
	tr.GraphVECoss = tr.COss[0].Graph.Clone()
	require.NoError(t, tr.UpdateWP(150, 15, 15, PartSwitch, Lenient))
	assert.Equal(t, tr.GraphVECoss, tr.WP.GraphVEoss)
}

func TestUpdateWPResetsPreviousScratch(t *testing.T) {
	tr := testIGBT()
	require.NoError(t, tr.UpdateWP(150, 15, 15, PartBoth, Lenient))
	require.NotNil(t, tr.WP.ERr)

	require.NoError(t, tr.UpdateWP(150, 15, 15, PartSwitch, Strict))
	assert.Nil(t, tr.WP.ERr)
	assert.Nil(t, tr.WP.DiodeChannel)
}

func TestQuickstartWP(t *testing.T) {
	tr := testIGBT()
	err := tr.QuickstartWP(QuickstartDefaults{VG: 15, TJOffset: 25, Mode: Lenient})
	require.NoError(t, err)

	// Search runs at t_j_max - offset = 150, which the fixture samples exactly.
	assert.Equal(t, 150.0, tr.WP.SwitchChannel.TJ)
	assert.Equal(t, 150.0, tr.WP.DiodeChannel.TJ)
	assert.True(t, tr.WP.ERr.IsSentinel())
}
