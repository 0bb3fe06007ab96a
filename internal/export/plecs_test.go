package export

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unmarshalPlecs(t *testing.T, data string) plecsLibrary {
	t.Helper()
	var lib plecsLibrary
	require.NoError(t, xml.Unmarshal([]byte(data), &lib))
	return lib
}

func TestPlecsIGBT(t *testing.T) {
	tr := igbtFixture(t)
	files, err := Plecs(tr, false, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)

	sw := fileByName(t, files, "FF300R12KE4_Switch.xml")
	assert.True(t, strings.HasPrefix(sw, xml.Header))

	lib := unmarshalPlecs(t, sw)
	assert.Equal(t, "http://www.plexim.com/xml/semiconductors/", lib.XMLNS)
	assert.Equal(t, "1.1", lib.Version)
	assert.Equal(t, "IGBT", lib.Package.Class)
	assert.Equal(t, "Infineon", lib.Package.Vendor)
	assert.Equal(t, "FF300R12KE4", lib.Package.PartNumber)

	data := lib.Package.Data
	assert.Equal(t, "Table and formula", data.TurnOnLoss.ComputationMethod)
	assert.Equal(t, "Table only", data.ConductionLoss.ComputationMethod)

	// Shared 20-point current axis from the shortest channel curve.
	assert.Len(t, strings.Fields(data.ConductionLoss.CurrentAxis), 20)
	assert.Equal(t, "25 150", data.ConductionLoss.TemperatureAxis)
	require.Len(t, data.ConductionLoss.VoltageDrop.Temperatures, 2)
	assert.Len(t, strings.Fields(data.ConductionLoss.VoltageDrop.Temperatures[0]), 20)

	// Turn-on losses: the stored 600 V surface plus the zero anchor.
	assert.Equal(t, "0 600", data.TurnOnLoss.VoltageAxis)
	assert.Equal(t, "150", data.TurnOnLoss.TemperatureAxis)
	require.Len(t, data.TurnOnLoss.Energy.Voltages, 2)
	assert.Len(t, strings.Fields(data.TurnOnLoss.Energy.Voltages[0].Temperatures[0]), 20)

	// Two foster stages with tau = r*c.
	require.Len(t, data.ThermalModel.Branch.Elements, 2)
	assert.Equal(t, "Foster", data.ThermalModel.Branch.Type)
	assert.Equal(t, "0.02", data.ThermalModel.Branch.Elements[0].R)
	assert.Equal(t, "0.01", data.ThermalModel.Branch.Elements[0].Tau)
	assert.Equal(t, "R_1", data.ThermalModel.Branch.Elements[0].Name)
}

func TestPlecsIGBTDiode(t *testing.T) {
	tr := igbtFixture(t)
	files, err := Plecs(tr, false, nil)
	require.NoError(t, err)

	d := unmarshalPlecs(t, fileByName(t, files, "FF300R12KE4_Diode.xml"))
	assert.Equal(t, "Diode", d.Package.Class)
	data := d.Package.Data

	// Diode turn-on losses are a single zero placeholder.
	assert.Equal(t, "0.00", data.TurnOnLoss.CurrentAxis)
	assert.Equal(t, "0", data.TurnOnLoss.VoltageAxis)
	require.Len(t, data.TurnOnLoss.Energy.Voltages, 1)

	// Recovery losses appear at the negated supply voltage, with the zero
	// anchor above.
	assert.Equal(t, "-600 0", data.TurnOffLoss.VoltageAxis)
	assert.Equal(t, "25 150", data.TurnOffLoss.TemperatureAxis)

	// Single-stage total fallback thermal model.
	require.Len(t, data.ThermalModel.Branch.Elements, 1)
	assert.Equal(t, "0.1", data.ThermalModel.Branch.Elements[0].R)
}

func TestPlecsMOSFETMirrorsAndAnchors(t *testing.T) {
	tr := mosfetFixture(t)
	files, err := Plecs(tr, false, nil)
	require.NoError(t, err)

	sw := unmarshalPlecs(t, fileByName(t, files, "IPB65R045_Switch.xml"))
	data := sw.Package.Data

	// 20 forward points mirrored about the origin (origin kept once).
	assert.Len(t, strings.Fields(data.ConductionLoss.CurrentAxis), 39)

	// No stored losses: single zero surface at v_abs_max plus the anchors
	// at 0 and below zero for the reverse-conducting channel.
	assert.Equal(t, "-10 0 650", data.TurnOnLoss.VoltageAxis)
	assert.Equal(t, "25", data.TurnOnLoss.TemperatureAxis)

	// Empty foster model falls back to a tiny single stage.
	require.Len(t, data.ThermalModel.Branch.Elements, 1)
	assert.Equal(t, "1e-06", data.ThermalModel.Branch.Elements[0].R)
}

func TestPlecsGateVoltageOverride(t *testing.T) {
	tr := igbtFixture(t)
	// Gate voltages nothing is stored at: both parts still export, the
	// switch through recheck snapping, the diode because discrete diode
	// curves match any gate voltage.
	files, err := Plecs(tr, true, []float64{12, -8, 0, 15})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	// Without recheck the switch export is skipped.
	files, err = Plecs(tr, false, []float64{12, -8, 0, 15})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "FF300R12KE4_Diode.xml", files[0].Name)
}
