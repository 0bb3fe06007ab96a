package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/domain"
)

// GeckoOptions selects the operating conditions for a GeckoCIRCUITS export.
// Nil gate voltages and zero resistors fall back to the per-type defaults
// and the datasheet recommendations.
type GeckoOptions struct {
	VSupply float64
	VGOn    *float64
	VGOff   *float64
	RGOn    float64
	RGOff   float64

	// Recheck snaps the requested voltages to the nearest stored curve
	// tags instead of failing on an exact-match miss.
	Recheck bool
}

// Gecko renders the switch and diode .scl files. A part without channel
// data is skipped; exporting a record with neither returns an empty slice.
func Gecko(t *domain.Transistor, opts GeckoOptions) ([]File, error) {
	defaults := config.GateDefaultsFor(t.Type)

	vSupply := opts.VSupply
	if vSupply == 0 {
		vSupply = t.VAbsMax / 2
	}
	vGOn := defaults.VGOn
	vDErr := defaults.VDErr
	if opts.VGOn != nil {
		vGOn = *opts.VGOn
		vDErr = *opts.VGOn
	}
	vGOff := defaults.VGOff
	vDChannel := defaults.VDChannel
	if opts.VGOff != nil {
		vGOff = *opts.VGOff
		vDChannel = *opts.VGOff
	}
	rgOn := opts.RGOn
	if rgOn == 0 {
		rgOn = t.RGOnRecommended
	}
	rgOff := opts.RGOff
	if rgOff == 0 {
		rgOff = t.RGOffRecommended
	}
	rgErr := rgOn

	switchSel := domain.GateSelection{VChannel: vGOn, VSupply: vSupply, VGOn: vGOn, VGOff: vGOff}
	diodeSel := domain.GateSelection{VChannel: vDChannel, VSupply: vSupply, VGOff: vDErr}
	if opts.Recheck {
		if sel, err := t.Switch.FindNextGateVoltage(switchSel, domain.DatasetGraphIE); err == nil {
			switchSel = sel
		} else {
			log.Info().Err(err).Msg("switch gate voltage recheck skipped")
		}
		if sel, err := t.Diode.FindNextGateVoltage(diodeSel, domain.DatasetGraphIE); err == nil {
			diodeSel = sel
		} else {
			log.Info().Err(err).Msg("diode gate voltage recheck skipped")
		}
	}

	var files []File
	if sw := geckoSwitchFile(t, switchSel, rgOn, rgOff); sw != nil {
		files = append(files, *sw)
	}
	if d := geckoDiodeFile(t, diodeSel, rgErr); d != nil {
		files = append(files, *d)
	}
	return files, nil
}

func geckoSwitchFile(t *domain.Transistor, sel domain.GateSelection, rgOn, rgOff float64) *File {
	var channels []domain.ChannelData
	for _, c := range t.Switch.Channel {
		if c.VG == sel.VChannel {
			channels = append(channels, c)
		}
	}
	if len(channels) == 0 {
		log.Info().Str("name", t.Name).Float64("v_g", sel.VChannel).
			Msg("gecko switch export skipped, no channel curve at gate voltage")
		return nil
	}

	eOns := geckoLossCurves(t, domain.KindEOn, sel.VSupply, sel.VGOn, rgOn)
	eOffs := geckoLossCurves(t, domain.KindEOff, sel.VSupply, sel.VGOff, rgOff)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "anzMesskurvenPvCOND %d\n", len(channels))
	mirror := t.Type.HasOhmicChannel() || t.Type == domain.TypeGaN
	for _, c := range channels {
		voltage := append([]float64(nil), c.Graph.X...)
		current := patchZeroCurrents(c.Graph.Y)
		if mirror {
			voltage = mirrorNegative(voltage)
			current = mirrorNegative(current)
		}
		buf.WriteString("<LeitverlusteMesskurve>\n")
		fmt.Fprintf(&buf, "data[][] 2 %d %s %s", len(current), joinFloats(voltage, 3), joinFloats(current, 3))
		fmt.Fprintf(&buf, "\ntj %s\n", num(c.TJ))
		buf.WriteString("<\\LeitverlusteMesskurve>\n")
	}

	if len(eOns) == 0 || len(eOffs) == 0 {
		log.Info().Str("name", t.Name).Msg("gecko switch export: no loss curves, writing zero block")
		buf.WriteString("anzMesskurvenPvSWITCH 1\n")
		writeGeckoZeroLoss(&buf)
	} else {
		fmt.Fprintf(&buf, "anzMesskurvenPvSWITCH %d\n", len(eOns))
		for _, eOn := range eOns {
			for _, eOff := range eOffs {
				if eOff.VSupply != sel.VSupply || eOff.VG != sel.VGOff || eOff.RG != rgOff || eOff.TJ != eOn.TJ {
					continue
				}
				axis := eOn.GraphIE.Resample(0, eOn.GraphIE.X[eOn.GraphIE.Len()-1], 10)
				onEnergy := axis.Y
				offEnergy := make([]float64, axis.Len())
				for i, x := range axis.X {
					offEnergy[i] = eOff.GraphIE.Interp(x)
				}
				buf.WriteString("<SchaltverlusteMesskurve>\n")
				fmt.Fprintf(&buf, "data[][] 3 %d %s %s %s",
					axis.Len(), joinFloats(axis.X, 2), joinFloats(onEnergy, 8), joinFloats(offEnergy, 8))
				fmt.Fprintf(&buf, "\ntj %s\n", num(eOn.TJ))
				fmt.Fprintf(&buf, "uBlock %s\n", num(eOn.VSupply))
				buf.WriteString("<\\SchaltverlusteMesskurve>\n")
			}
		}
	}

	name := fmt.Sprintf("%s_Switch(rg_on_%s)(rg_off_%s).scl", t.Name, num(rgOn), num(rgOff))
	return &File{Name: name, Data: buf.Bytes()}
}

func geckoDiodeFile(t *domain.Transistor, sel domain.GateSelection, rgErr float64) *File {
	var channels []domain.ChannelData
	for _, c := range t.Diode.Channel {
		if c.VG == sel.VChannel {
			channels = append(channels, c)
		}
	}
	if len(channels) == 0 {
		log.Info().Str("name", t.Name).Float64("v_g", sel.VChannel).
			Msg("gecko diode export skipped, no channel curve at gate voltage")
		return nil
	}

	var errCurves []domain.SwitchEnergyData
	for _, e := range t.Diode.ERr {
		if e.DatasetType == domain.DatasetGraphIE && e.VSupply == sel.VSupply && e.VG == sel.VGOff && e.RG == rgErr {
			errCurves = append(errCurves, e)
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "anzMesskurvenPvCOND %d\n", len(channels))
	for _, c := range channels {
		voltage := absAll(c.Graph.X)
		current := patchZeroCurrents(absAll(c.Graph.Y))
		buf.WriteString("<LeitverlusteMesskurve>\n")
		fmt.Fprintf(&buf, "data[][] 2 %d %s %s", len(current), joinFloats(voltage, 3), joinFloats(current, 3))
		fmt.Fprintf(&buf, "\ntj %s\n", num(c.TJ))
		buf.WriteString("<\\LeitverlusteMesskurve>\n")
	}

	// Recovery losses must be present even as zeros, else the simulator
	// falls back to its built-in defaults.
	if len(errCurves) == 0 {
		log.Info().Str("name", t.Name).Msg("gecko diode export: no recovery loss curves, writing zero block")
		buf.WriteString("anzMesskurvenPvSWITCH 1\n")
		writeGeckoZeroLoss(&buf)
	} else {
		fmt.Fprintf(&buf, "anzMesskurvenPvSWITCH %d\n", len(errCurves))
		for _, e := range errCurves {
			zeros := make([]float64, e.GraphIE.Len())
			buf.WriteString("<SchaltverlusteMesskurve>\n")
			fmt.Fprintf(&buf, "data[][] 3 %d %s %s %s",
				e.GraphIE.Len(), joinFloats(e.GraphIE.X, 2), joinFloats(zeros, 8), joinFloats(e.GraphIE.Y, 8))
			fmt.Fprintf(&buf, "\ntj %s\n", num(e.TJ))
			fmt.Fprintf(&buf, "uBlock %s\n", num(e.VSupply))
			buf.WriteString("<\\SchaltverlusteMesskurve>\n")
		}
	}

	name := fmt.Sprintf("%s_Diode(rg_%s).scl", t.Name, num(rgErr))
	return &File{Name: name, Data: buf.Bytes()}
}

// geckoLossCurves picks the graph_i_e loss datasets at the selected supply
// and gate voltage. A dataset stored at a different gate resistor is
// rescaled through the matching r_e curve when one exists.
func geckoLossCurves(t *domain.Transistor, kind domain.EnergyKind, vSupply, vg, rg float64) []domain.SwitchEnergyData {
	sets := t.Switch.EOn
	if kind == domain.KindEOff {
		sets = t.Switch.EOff
	}
	var out []domain.SwitchEnergyData
	for _, e := range sets {
		if e.DatasetType != domain.DatasetGraphIE || e.VSupply != vSupply || e.VG != vg {
			continue
		}
		if e.RG != rg {
			if scaled, err := t.CalcObjectIE(kind, rg, e.TJ, vSupply); err == nil {
				log.Info().Str("kind", string(kind)).Float64("r_g", rg).Float64("t_j", e.TJ).
					Msg("loss curve rescaled to requested gate resistor")
				out = append(out, *scaled)
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func writeGeckoZeroLoss(buf *bytes.Buffer) {
	buf.WriteString("<SchaltverlusteMesskurve>\n")
	buf.WriteString("data[][] 3 2 0 10 0 0 0 0")
	buf.WriteString("\ntj 25\n")
	buf.WriteString("uBlock 400\n")
	buf.WriteString("<\\SchaltverlusteMesskurve>\n")
}

// patchZeroCurrents replaces zero currents after the first sample with a
// small epsilon; the simulator cannot compute losses from two zero rows.
func patchZeroCurrents(current []float64) []float64 {
	out := append([]float64(nil), current...)
	for i := 1; i < len(out); i++ {
		if out[i] == 0 {
			out[i] = 0.001
		}
	}
	return out
}

// mirrorNegative prepends the negated, reversed non-zero samples, turning a
// first-quadrant characteristic into a symmetric two-quadrant one.
func mirrorNegative(vals []float64) []float64 {
	var rev []float64
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] != 0 {
			rev = append(rev, -vals[i])
		}
	}
	return append(rev, vals...)
}

func absAll(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Abs(v)
	}
	return out
}
