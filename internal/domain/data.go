package domain

import (
	"math"
	"time"

	"github.com/powerlab/transistordb/internal/curve"
)

// DatasetType tells which representation a SwitchEnergyData record carries.
type DatasetType string

const (
	// DatasetSingle is a single reference point: EX at IX with gate resistor RG.
	DatasetSingle DatasetType = "single"
	// DatasetGraphIE is an energy-vs-current curve measured at a fixed gate resistor.
	DatasetGraphIE DatasetType = "graph_i_e"
	// DatasetGraphRE is an energy-vs-gate-resistance curve at a fixed current IX.
	DatasetGraphRE DatasetType = "graph_r_e"
)

// ChannelData is one sampled voltage/current channel curve, tagged by the
// junction temperature and gate voltage it was measured under. Graph row 0
// is voltage in V, row 1 current in A.
type ChannelData struct {
	TJ    float64     `json:"t_j"`
	VG    float64     `json:"v_g"`
	Graph curve.Curve `json:"graph_v_i"`
}

// Validate checks curve shape.
func (c ChannelData) Validate() error {
	if err := c.Graph.Validate(); err != nil {
		return invalidf("channel curve at t_j=%g v_g=%g: %v", c.TJ, c.VG, err)
	}
	return nil
}

// VoltageAt interpolates the channel voltage at the given current. The
// current axis is row 1 of the stored graph, so interpolation runs against
// the inverted curve. Clamps at the curve ends.
func (c ChannelData) VoltageAt(i float64) float64 {
	inv := curve.Curve{X: c.Graph.Y, Y: c.Graph.X}
	return inv.Interp(i)
}

// SwitchEnergyData is one switching-loss dataset (turn-on, turn-off or
// reverse recovery, depending on which list it lives in). Test conditions
// are scalars; a separate record exists per condition set.
type SwitchEnergyData struct {
	DatasetType DatasetType `json:"dataset_type"`
	TJ          float64     `json:"t_j"`
	VSupply     float64     `json:"v_supply"`
	VG          float64     `json:"v_g"`
	VGOff       *float64    `json:"v_g_off,omitempty"`

	// Scalar parameters; which ones are meaningful depends on DatasetType.
	EX float64 `json:"e_x,omitempty"`
	RG float64 `json:"r_g,omitempty"`
	IX float64 `json:"i_x,omitempty"`

	GraphIE curve.Curve `json:"graph_i_e,omitempty"`
	GraphRE curve.Curve `json:"graph_r_e,omitempty"`

	Comment              string     `json:"comment,omitempty"`
	MeasurementDate      *time.Time `json:"measurement_date,omitempty"`
	MeasurementTestbench string     `json:"measurement_testbench,omitempty"`
}

// Validate checks that the populated curve matches the dataset type.
func (e SwitchEnergyData) Validate() error {
	switch e.DatasetType {
	case DatasetSingle:
		// Scalars only, nothing to check beyond type.
	case DatasetGraphIE:
		if err := e.GraphIE.Validate(); err != nil {
			return invalidf("graph_i_e dataset at t_j=%g: %v", e.TJ, err)
		}
	case DatasetGraphRE:
		if err := e.GraphRE.Validate(); err != nil {
			return invalidf("graph_r_e dataset at t_j=%g: %v", e.TJ, err)
		}
	default:
		return invalidf("unknown dataset_type %q", e.DatasetType)
	}
	return nil
}

// IsSentinel reports whether this record is the zero placeholder written by
// lenient working-point construction when no real data exists.
func (e SwitchEnergyData) IsSentinel() bool {
	if e.DatasetType != DatasetGraphIE || e.GraphIE.Len() != 2 {
		return false
	}
	for _, v := range append(append([]float64(nil), e.GraphIE.X...), e.GraphIE.Y...) {
		if v != 0 {
			return false
		}
	}
	return true
}

// sentinelEnergy is the lenient-mode placeholder: a zero curve at reference
// conditions, so downstream loss sums stay well defined.
func sentinelEnergy() *SwitchEnergyData {
	return &SwitchEnergyData{
		DatasetType: DatasetGraphIE,
		TJ:          25,
		VG:          15,
		VSupply:     1,
		RG:          1,
		GraphIE:     curve.Curve{X: []float64{0, 0}, Y: []float64{0, 0}},
	}
}

// VoltageDependentCapacitance is a sampled C(v) curve at one junction
// temperature. Graph row 0 is voltage in V, row 1 capacitance in F.
type VoltageDependentCapacitance struct {
	TJ    float64     `json:"t_j"`
	Graph curve.Curve `json:"graph_v_c"`
}

// Validate checks curve shape.
func (v VoltageDependentCapacitance) Validate() error {
	if err := v.Graph.Validate(); err != nil {
		return invalidf("capacitance curve at t_j=%g: %v", v.TJ, err)
	}
	return nil
}

// Charge integrates C(v) cumulatively into Q(v) over the same voltage axis.
func (v VoltageDependentCapacitance) Charge() curve.Curve {
	return v.Graph.CumTrapz()
}

// Energy integrates v*C(v) cumulatively into E(v) over the same voltage axis.
func (v VoltageDependentCapacitance) Energy() curve.Curve {
	return v.Graph.WeightedCumTrapz()
}

// FosterThermalModel is a series RC ladder approximating transient thermal
// impedance. When all three vectors are present each stage must satisfy
// tau_i = r_i * c_i.
type FosterThermalModel struct {
	RThVector   []float64   `json:"r_th_vector,omitempty"`
	CThVector   []float64   `json:"c_th_vector,omitempty"`
	TauVector   []float64   `json:"tau_vector,omitempty"`
	RThTotal    float64     `json:"r_th_total,omitempty"`
	CThTotal    float64     `json:"c_th_total,omitempty"`
	TauTotal    float64     `json:"tau_total,omitempty"`
	GraphTRthJC curve.Curve `json:"graph_t_rthjc,omitempty"`
}

const fosterTauTolerance = 1e-6

// Validate enforces equal stage counts and the tau = r*c invariant. When the
// tau vector is absent but r and c are given, it is derived in place.
func (f *FosterThermalModel) Validate() error {
	nr, nc, nt := len(f.RThVector), len(f.CThVector), len(f.TauVector)
	if nr == 0 && nc == 0 && nt == 0 {
		return nil
	}
	if nr != nc {
		return invalidf("foster model has %d resistances but %d capacitances", nr, nc)
	}
	if nt == 0 && nr > 0 {
		f.TauVector = make([]float64, nr)
		for i := range f.RThVector {
			f.TauVector[i] = f.RThVector[i] * f.CThVector[i]
		}
		return nil
	}
	if nt != nr {
		return invalidf("foster model has %d stages but %d time constants", nr, nt)
	}
	for i := range f.TauVector {
		want := f.RThVector[i] * f.CThVector[i]
		if math.Abs(f.TauVector[i]-want) > fosterTauTolerance*math.Max(1, math.Abs(want)) {
			return invalidf("foster stage %d: tau %g does not match r*c %g", i, f.TauVector[i], want)
		}
	}
	return nil
}

// Stages returns the stage count.
func (f FosterThermalModel) Stages() int { return len(f.RThVector) }

// LinearizedModel is the derived affine channel approximation around an
// operating point. Never persisted; recomputed on demand.
type LinearizedModel struct {
	TJ        float64 `json:"t_j"`
	VG        float64 `json:"v_g"`
	IChannel  float64 `json:"i_channel"`
	RChannel  float64 `json:"r_channel"`
	V0Channel float64 `json:"v0_channel"`
}

// RawMeasurementData holds double-pulse-test waveforms attached by the
// measurement ingestor. Kept opaque to the numeric core.
type RawMeasurementData struct {
	DatasetType string      `json:"dataset_type"`
	TJ          float64     `json:"t_j"`
	VSupply     float64     `json:"v_supply"`
	VG          float64     `json:"v_g"`
	RG          float64     `json:"r_g"`
	LoadL       float64     `json:"load_inductance,omitempty"`
	GraphTV     curve.Curve `json:"graph_t_v,omitempty"`
	GraphTI     curve.Curve `json:"graph_t_i,omitempty"`
	Testbench   string      `json:"measurement_testbench,omitempty"`
}
