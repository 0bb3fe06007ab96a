package export

import (
	"os"
	"testing"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/curve"
	"github.com/powerlab/transistordb/internal/domain"
)

func TestMain(m *testing.M) {
	if err := config.Load(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// igbtFixture is a validated IGBT record with channel, loss and recovery
// data at 25 and 150 degrees, tagged to match its own recommended gate
// resistors.
func igbtFixture(t *testing.T) *domain.Transistor {
	t.Helper()
	tr := &domain.Transistor{
		ID:               "export-test-igbt",
		Name:             "FF300R12KE4",
		Type:             domain.TypeIGBT,
		Manufacturer:     "Infineon",
		HousingType:      "PrimePACK 2",
		VAbsMax:          1200,
		IAbsMax:          600,
		ICont:            300,
		RGOnRecommended:  2,
		RGOffRecommended: 3.6,
		COss: []domain.VoltageDependentCapacitance{{
			TJ:    25,
			Graph: curve.Curve{X: []float64{0, 300, 600}, Y: []float64{2e-9, 1e-9, 5e-10}},
		}},
		Switch: domain.Switch{
			TJMax: 175,
			ThermalFoster: domain.FosterThermalModel{
				RThVector: []float64{0.02, 0.04},
				CThVector: []float64{0.5, 0.25},
				RThTotal:  0.06,
			},
			Channel: []domain.ChannelData{
				{TJ: 25, VG: 15, Graph: curve.Curve{X: []float64{0, 1.0, 2.2}, Y: []float64{0, 150, 400}}},
				{TJ: 150, VG: 15, Graph: curve.Curve{X: []float64{0, 1.2, 2.6}, Y: []float64{0, 150, 400}}},
			},
			EOn: []domain.SwitchEnergyData{
				{DatasetType: domain.DatasetGraphIE, TJ: 150, VSupply: 600, VG: 15, RG: 2,
					GraphIE: curve.Curve{X: []float64{0, 300, 600}, Y: []float64{0, 0.03, 0.08}}},
			},
			EOff: []domain.SwitchEnergyData{
				{DatasetType: domain.DatasetGraphIE, TJ: 150, VSupply: 600, VG: -15, RG: 3.6,
					GraphIE: curve.Curve{X: []float64{0, 300, 600}, Y: []float64{0, 0.025, 0.07}}},
			},
		},
		Diode: domain.Diode{
			TJMax: 175,
			ThermalFoster: domain.FosterThermalModel{
				RThTotal: 0.1,
			},
			Channel: []domain.ChannelData{
				{TJ: 25, VG: 0, Graph: curve.Curve{X: []float64{0, 1.1, 1.8}, Y: []float64{0, 150, 400}}},
				{TJ: 150, VG: 0, Graph: curve.Curve{X: []float64{0, 1.0, 1.7}, Y: []float64{0, 150, 400}}},
			},
			ERr: []domain.SwitchEnergyData{
				{DatasetType: domain.DatasetGraphIE, TJ: 25, VSupply: 600, VG: 15, RG: 2,
					GraphIE: curve.Curve{X: []float64{0, 300, 600}, Y: []float64{0, 0.01, 0.02}}},
				{DatasetType: domain.DatasetGraphIE, TJ: 150, VSupply: 600, VG: 15, RG: 2,
					GraphIE: curve.Curve{X: []float64{0, 300, 600}, Y: []float64{0, 0.015, 0.03}}},
			},
		},
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return tr
}

func mosfetFixture(t *testing.T) *domain.Transistor {
	t.Helper()
	tr := &domain.Transistor{
		ID:           "export-test-mosfet",
		Name:         "IPB65R045",
		Type:         domain.TypeMOSFET,
		Manufacturer: "Infineon",
		HousingType:  "TO263",
		VAbsMax:      650,
		IAbsMax:      100,
		ICont:        50,
		Switch: domain.Switch{
			TJMax: 150,
			Channel: []domain.ChannelData{
				{TJ: 25, VG: 10, Graph: curve.Curve{X: []float64{0, 0.5, 1.0}, Y: []float64{0, 25, 50}}},
			},
		},
		Diode: domain.Diode{
			TJMax: 150,
			Channel: []domain.ChannelData{
				{TJ: 25, VG: 0, Graph: curve.Curve{X: []float64{0, 0.8, 1.2}, Y: []float64{0, 25, 50}}},
			},
		},
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	return tr
}
