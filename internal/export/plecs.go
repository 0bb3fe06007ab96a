package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/curve"
	"github.com/powerlab/transistordb/internal/domain"
)

const plecsAxisPoints = 20

// Plecs renders the switch and diode XML files for the Plexim semiconductor
// library. Requested gate voltages default to the per-type configuration;
// with recheck they snap to the nearest stored tags.
func Plecs(t *domain.Transistor, recheck bool, gateVoltages []float64) ([]File, error) {
	defaults := config.GateDefaultsFor(t.Type)
	vGOn, vGOff := defaults.VGOn, defaults.VGOff
	vDOn, vDOff := defaults.VDChannel, defaults.VDErr
	if len(gateVoltages) == 4 {
		vGOn, vGOff, vDOn, vDOff = gateVoltages[0], gateVoltages[1], gateVoltages[2], gateVoltages[3]
	}

	var files []File
	if sw, err := plecsSwitch(t, recheck, vGOn, vGOff); err != nil {
		log.Info().Err(err).Str("name", t.Name).Msg("plecs switch export skipped")
	} else {
		files = append(files, *sw)
	}
	if d, err := plecsDiode(t, recheck, vDOn, vDOff); err != nil {
		log.Info().Err(err).Str("name", t.Name).Msg("plecs diode export skipped")
	} else {
		files = append(files, *d)
	}
	return files, nil
}

type plecsLibrary struct {
	XMLName xml.Name  `xml:"SemiconductorLibrary"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Package plecsPack `xml:"Package"`
}

type plecsPack struct {
	Class      string    `xml:"class,attr"`
	Vendor     string    `xml:"vendor,attr"`
	PartNumber string    `xml:"partnumber,attr"`
	Variables  string    `xml:"Variables"`
	Data       plecsData `xml:"SemiconductorData"`
}

type plecsData struct {
	Type           string          `xml:"type,attr"`
	TurnOnLoss     plecsLoss       `xml:"TurnOnLoss"`
	TurnOffLoss    plecsLoss       `xml:"TurnOffLoss"`
	ConductionLoss plecsConduction `xml:"ConductionLoss"`
	ThermalModel   plecsThermal    `xml:"ThermalModel"`
	Comment        string          `xml:"Comment"`
}

type plecsLoss struct {
	ComputationMethod string      `xml:"ComputationMethod"`
	CurrentAxis       string      `xml:"CurrentAxis"`
	VoltageAxis       string      `xml:"VoltageAxis"`
	TemperatureAxis   string      `xml:"TemperatureAxis"`
	Energy            plecsEnergy `xml:"Energy"`
}

type plecsEnergy struct {
	Scale    string         `xml:"scale,attr"`
	Voltages []plecsVoltage `xml:"Voltage"`
}

type plecsVoltage struct {
	Temperatures []string `xml:"Temperature"`
}

type plecsConduction struct {
	ComputationMethod string   `xml:"ComputationMethod"`
	CurrentAxis       string   `xml:"CurrentAxis"`
	TemperatureAxis   string   `xml:"TemperatureAxis"`
	VoltageDrop       plecsVD `xml:"VoltageDrop"`
}

type plecsVD struct {
	Scale        string   `xml:"scale,attr"`
	Temperatures []string `xml:"Temperature"`
}

type plecsThermal struct {
	Branch plecsBranch `xml:"Branch"`
}

type plecsBranch struct {
	Type     string       `xml:"type,attr"`
	Elements []plecsRTau `xml:"RTauElement"`
}

type plecsRTau struct {
	R    string `xml:"R,attr"`
	Tau  string `xml:"Tau,attr"`
	Name string `xml:"Name,attr"`
}

// lossTable is the intermediate 3D loss map: per supply voltage, one energy
// row per temperature, sampled on a shared current axis.
type lossTable struct {
	currentAxis  []float64
	temperatures []float64
	energy       map[float64][][]float64 // keyed by supply voltage
}

func (lt *lossTable) voltages() []float64 {
	out := make([]float64, 0, len(lt.energy))
	for v := range lt.energy {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// zeroRows inserts an all-zero energy surface at the given voltage.
func (lt *lossTable) zeroRows(voltage float64) {
	rows := make([][]float64, len(lt.temperatures))
	for i := range rows {
		rows[i] = make([]float64, len(lt.currentAxis))
	}
	lt.energy[voltage] = rows
}

func plecsSwitch(t *domain.Transistor, recheck bool, vGOn, vGOff float64) (*File, error) {
	if len(t.Switch.Channel) == 0 {
		return nil, fmt.Errorf("no switch channel data: %w", domain.ErrNotFound)
	}
	vChannel := vGOn
	if recheck {
		sel, err := t.Switch.FindNextGateVoltage(
			domain.GateSelection{VChannel: vGOn, VGOn: vGOn, VGOff: vGOff}, domain.DatasetGraphIE)
		if err == nil {
			vChannel, vGOn, vGOff = sel.VChannel, sel.VGOn, sel.VGOff
		}
	}

	cond := conductionTable(t.Switch.Channel, vChannel, false, t.Type.HasBodyDiode())
	if cond == nil {
		return nil, fmt.Errorf("no switch channel curve at v_g=%g: %w", vChannel, domain.ErrNotFound)
	}
	if t.Type.HasOhmicChannel() {
		mirrorConduction(cond)
	}

	onLoss := lossTableFor(t.Switch.EOn, vGOn, false)
	if onLoss == nil {
		onLoss = fallbackLoss(cond.currentAxis, t.VAbsMax)
	}
	offLoss := lossTableFor(t.Switch.EOff, vGOff, false)
	if offLoss == nil {
		offLoss = fallbackLoss(cond.currentAxis, t.VAbsMax)
	}
	// Loss interpolation anchors: zero energy at zero volts, and for
	// devices with an ohmic channel also below zero.
	onLoss.zeroRows(0)
	offLoss.zeroRows(0)
	if t.Type.HasOhmicChannel() {
		onLoss.zeroRows(-10)
		offLoss.zeroRows(-10)
	}

	data := plecsData{
		Type:           string(t.Type),
		TurnOnLoss:     renderLoss(onLoss),
		TurnOffLoss:    renderLoss(offLoss),
		ConductionLoss: renderConduction(cond),
		ThermalModel:   renderThermal(t.Switch.ThermalFoster),
		Comment:        plecsComment(t),
	}
	return renderPlecsFile(t, data, t.Name+"_Switch.xml")
}

func plecsDiode(t *domain.Transistor, recheck bool, vDOn, vDOff float64) (*File, error) {
	if len(t.Diode.Channel) == 0 {
		return nil, fmt.Errorf("no diode channel data: %w", domain.ErrNotFound)
	}
	vChannel := vDOn
	if recheck {
		sel, err := t.Diode.FindNextGateVoltage(
			domain.GateSelection{VChannel: vDOn, VGOff: vDOff}, domain.DatasetGraphIE)
		if err == nil {
			vChannel, vDOff = sel.VChannel, sel.VGOff
		}
	}

	cond := conductionTable(t.Diode.Channel, vChannel, true, t.Type.HasBodyDiode())
	if cond == nil {
		return nil, fmt.Errorf("no diode channel curve at v_g=%g: %w", vChannel, domain.ErrNotFound)
	}

	// Recovery losses are turn-off losses with the supply voltage negated;
	// diode turn-on losses are neglected.
	offLoss := lossTableFor(t.Diode.ERr, vDOff, true)
	if offLoss == nil {
		offLoss = &lossTable{
			currentAxis:  []float64{0},
			temperatures: []float64{25},
			energy:       map[float64][][]float64{0: {{0}}},
		}
	} else {
		offLoss.zeroRows(0)
	}
	onLoss := &lossTable{
		currentAxis:  []float64{0},
		temperatures: []float64{25},
		energy:       map[float64][][]float64{0: {{0}}},
	}

	data := plecsData{
		Type:           "Diode",
		TurnOnLoss:     renderLoss(onLoss),
		TurnOffLoss:    renderLoss(offLoss),
		ConductionLoss: renderConduction(cond),
		ThermalModel:   renderThermal(t.Diode.ThermalFoster),
		Comment:        plecsComment(t),
	}
	return renderPlecsFile(t, data, t.Name+"_Diode.xml")
}

type conduction struct {
	currentAxis  []float64
	temperatures []float64
	voltageDrop  [][]float64
}

// conductionTable resamples the channel curves at one gate voltage onto a
// shared 20-point current axis limited by the shortest curve. Diode curves
// of devices without a body diode match regardless of gate voltage.
func conductionTable(channels []domain.ChannelData, vg float64, isDiode, hasBodyDiode bool) *conduction {
	match := func(c domain.ChannelData) bool {
		return c.VG == vg || (isDiode && !hasBodyDiode)
	}
	limit := math.Inf(1)
	for _, c := range channels {
		if !match(c) {
			continue
		}
		max := 0.0
		for _, i := range c.Graph.Y {
			if a := math.Abs(i); a > max {
				max = a
			}
		}
		if max < limit {
			limit = max
		}
	}
	if math.IsInf(limit, 1) {
		return nil
	}
	var out conduction
	for _, c := range channels {
		if !match(c) {
			continue
		}
		inv := curve.Curve{X: absAll(c.Graph.Y), Y: absAll(c.Graph.X)}
		sampled := inv.Resample(0, limit, plecsAxisPoints)
		if out.currentAxis == nil {
			out.currentAxis = sampled.X
		}
		out.temperatures = append(out.temperatures, c.TJ)
		out.voltageDrop = append(out.voltageDrop, sampled.Y)
	}
	return &out
}

// mirrorConduction extends the table into the third quadrant for reverse-
// conducting devices.
func mirrorConduction(c *conduction) {
	c.currentAxis = mirrorNegative(c.currentAxis)
	for i, row := range c.voltageDrop {
		c.voltageDrop[i] = mirrorNegative(row)
	}
}

// lossTableFor collects the graph_i_e datasets at one gate voltage into a
// supply-voltage-keyed loss map on a shared 20-point current axis.
func lossTableFor(sets []domain.SwitchEnergyData, vg float64, recovery bool) *lossTable {
	limit := math.Inf(1)
	for _, e := range sets {
		if e.DatasetType != domain.DatasetGraphIE || e.VG != vg || e.GraphIE.IsZero() {
			continue
		}
		if max := e.GraphIE.X[e.GraphIE.Len()-1]; max < limit {
			limit = max
		}
	}
	if math.IsInf(limit, 1) {
		return nil
	}
	lt := &lossTable{energy: map[float64][][]float64{}}
	for _, e := range sets {
		if e.DatasetType != domain.DatasetGraphIE || e.VG != vg || e.GraphIE.IsZero() {
			continue
		}
		sampled := e.GraphIE.Resample(0, limit, plecsAxisPoints)
		if lt.currentAxis == nil {
			lt.currentAxis = sampled.X
		}
		voltage := e.VSupply
		if recovery {
			voltage = -math.Abs(e.VSupply)
		}
		lt.energy[voltage] = append(lt.energy[voltage], sampled.Y)
		if !containsFloat(lt.temperatures, e.TJ) {
			lt.temperatures = append(lt.temperatures, e.TJ)
		}
	}
	return lt
}

// fallbackLoss is a single zero-energy surface at the rated maximum voltage
// for parts without stored loss curves.
func fallbackLoss(currentAxis []float64, vAbsMax float64) *lossTable {
	lt := &lossTable{
		currentAxis:  currentAxis,
		temperatures: []float64{25},
		energy:       map[float64][][]float64{},
	}
	lt.zeroRows(vAbsMax)
	return lt
}

func renderLoss(lt *lossTable) plecsLoss {
	out := plecsLoss{
		ComputationMethod: "Table and formula",
		CurrentAxis:       joinFloats(lt.currentAxis, 2),
		VoltageAxis:       joinFloats(lt.voltages(), 0),
		TemperatureAxis:   joinFloats(lt.temperatures, 0),
		Energy:            plecsEnergy{Scale: "1"},
	}
	for _, v := range lt.voltages() {
		var pv plecsVoltage
		for _, row := range lt.energy[v] {
			pv.Temperatures = append(pv.Temperatures, joinFloats(row, 8))
		}
		out.Energy.Voltages = append(out.Energy.Voltages, pv)
	}
	return out
}

func renderConduction(c *conduction) plecsConduction {
	out := plecsConduction{
		ComputationMethod: "Table only",
		CurrentAxis:       joinFloats(c.currentAxis, 2),
		TemperatureAxis:   joinFloats(c.temperatures, 0),
		VoltageDrop:       plecsVD{Scale: "1"},
	}
	for _, row := range c.voltageDrop {
		out.VoltageDrop.Temperatures = append(out.VoltageDrop.Temperatures, joinFloats(row, 4))
	}
	return out
}

func renderThermal(f domain.FosterThermalModel) plecsThermal {
	branch := plecsBranch{Type: "Foster"}
	if len(f.RThVector) > 0 {
		for i := range f.RThVector {
			tau := 0.0
			switch {
			case i < len(f.TauVector):
				tau = f.TauVector[i]
			case i < len(f.CThVector):
				tau = f.RThVector[i] * f.CThVector[i]
			}
			branch.Elements = append(branch.Elements, plecsRTau{
				R:    num(f.RThVector[i]),
				Tau:  num(tau),
				Name: fmt.Sprintf("R_%d", i+1),
			})
		}
	} else {
		r := f.RThTotal
		if r == 0 {
			r = 1e-6
		}
		tau := f.TauTotal
		if tau == 0 {
			tau = r
		}
		branch.Elements = append(branch.Elements, plecsRTau{R: num(r), Tau: num(tau), Name: "R_1"})
	}
	return plecsThermal{Branch: branch}
}

func plecsComment(t *domain.Transistor) string {
	link := t.DatasheetHyperlink
	if link == "" {
		link = "unknown"
	}
	return fmt.Sprintf("Datasheet: %s. File generated %s.",
		link, time.Now().UTC().Format("2006-01-02"))
}

func renderPlecsFile(t *domain.Transistor, data plecsData, name string) (*File, error) {
	lib := plecsLibrary{
		XMLNS:   "http://www.plexim.com/xml/semiconductors/",
		Version: "1.1",
		Package: plecsPack{
			Class:      data.Type,
			Vendor:     t.Manufacturer,
			PartNumber: t.Name,
			Data:       data,
		},
	}
	body, err := xml.MarshalIndent(lib, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render plecs xml: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	out = append(out, '\n')
	return &File{Name: name, Data: out}, nil
}

func containsFloat(vals []float64, v float64) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
