package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/curve"
)

// DeviceType enumerates the supported transistor technologies.
type DeviceType string

const (
	TypeMOSFET    DeviceType = "MOSFET"
	TypeIGBT      DeviceType = "IGBT"
	TypeSiCMOSFET DeviceType = "SiC-MOSFET"
	TypeGaN       DeviceType = "GaN-Transistor"
)

// DeviceTypes lists the valid values for DeviceType.
var DeviceTypes = []DeviceType{TypeMOSFET, TypeIGBT, TypeSiCMOSFET, TypeGaN}

// HasOhmicChannel reports whether the switch channel behaves resistively
// (no forward voltage knee), which changes how linearization works.
func (d DeviceType) HasOhmicChannel() bool {
	return d == TypeMOSFET || d == TypeSiCMOSFET
}

// HasBodyDiode reports whether the diode channel is a body diode tagged
// with gate voltages rather than a discrete diode.
func (d DeviceType) HasBodyDiode() bool {
	return d == TypeSiCMOSFET || d == TypeGaN
}

// Part selects the component of a transistor an operation applies to.
type Part string

const (
	PartSwitch Part = "switch"
	PartDiode  Part = "diode"
	PartBoth   Part = "both"
)

// EnergyKind names a switching-loss family.
type EnergyKind string

const (
	KindEOn  EnergyKind = "e_on"
	KindEOff EnergyKind = "e_off"
	KindERr  EnergyKind = "e_rr"
)

// Transistor is the root of one datasheet record tree. Name is the unique
// key within a collection; ID is assigned once at construction and survives
// round trips through every store backend.
type Transistor struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Type         DeviceType `json:"type"`
	Author       string     `json:"author,omitempty"`
	Technology   string     `json:"technology,omitempty"`
	Manufacturer string     `json:"manufacturer"`
	HousingType  string     `json:"housing_type"`
	HousingArea  float64    `json:"housing_area,omitempty"`
	CoolingArea  float64    `json:"cooling_area,omitempty"`

	Comment            string     `json:"comment,omitempty"`
	DatasheetHyperlink string     `json:"datasheet_hyperlink,omitempty"`
	DatasheetDate      *time.Time `json:"datasheet_date,omitempty"`
	DatasheetVersion   string     `json:"datasheet_version,omitempty"`
	CreationDate       *time.Time `json:"creation_date,omitempty"`
	LastModified       *time.Time `json:"last_modified,omitempty"`

	// Absolute maximum ratings.
	VAbsMax float64 `json:"v_abs_max"`
	IAbsMax float64 `json:"i_abs_max"`
	ICont   float64 `json:"i_cont"`
	TCMax   float64 `json:"t_c_max,omitempty"`

	// Gate drive.
	RGInt            float64 `json:"r_g_int,omitempty"`
	RGOnRecommended  float64 `json:"r_g_on_recommended,omitempty"`
	RGOffRecommended float64 `json:"r_g_off_recommended,omitempty"`

	// Case thermal resistances.
	RThCS       float64 `json:"r_th_cs,omitempty"`
	RThSwitchCS float64 `json:"r_th_switch_cs,omitempty"`
	RThDiodeCS  float64 `json:"r_th_diode_cs,omitempty"`

	// Parasitic capacitances: fixed values and voltage-dependent curves.
	COssFix float64                       `json:"c_oss_fix,omitempty"`
	CIssFix float64                       `json:"c_iss_fix,omitempty"`
	CRssFix float64                       `json:"c_rss_fix,omitempty"`
	COss    []VoltageDependentCapacitance `json:"c_oss,omitempty"`
	CIss    []VoltageDependentCapacitance `json:"c_iss,omitempty"`
	CRss    []VoltageDependentCapacitance `json:"c_rss,omitempty"`

	// Measured output-capacitance energy curve; preferred over the
	// integrated one when present.
	GraphVECoss curve.Curve `json:"graph_v_ecoss,omitempty"`

	Switch Switch `json:"switch"`
	Diode  Diode  `json:"diode"`

	RawMeasurementData []RawMeasurementData `json:"raw_measurement_data,omitempty"`

	// WP is per-transistor scratch space for the most recent working-point
	// search. It is owned by the single calling context; concurrent callers
	// must operate on separate Transistor values. Never persisted.
	WP WP `json:"-"`
}

// New validates a freshly built transistor, assigns its ID and stamps the
// creation time. The housing-type and manufacturer whitelists come from
// configuration; matching is case- and leading-space-insensitive, and the
// stored value is canonicalized to the whitelist spelling.
func New(t Transistor, housingTypes, manufacturers []string) (*Transistor, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreationDate == nil {
		t.CreationDate = &now
	}
	t.LastModified = &now

	housing, ok := matchWhitelist(t.HousingType, housingTypes)
	if !ok {
		return nil, invalidf("housing type %q is not a known housing", t.HousingType)
	}
	t.HousingType = housing
	manufacturer, ok := matchWhitelist(t.Manufacturer, manufacturers)
	if !ok {
		return nil, invalidf("manufacturer %q is not a known module manufacturer", t.Manufacturer)
	}
	t.Manufacturer = manufacturer

	if err := t.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("name", t.Name).Str("type", string(t.Type)).Msg("transistor record created")
	return &t, nil
}

func matchWhitelist(value string, allowed []string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(value))
	if norm == "" {
		return "", false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimSpace(a)) == norm {
			return a, true
		}
	}
	return "", false
}

// Validate checks mandatory fields and every owned record. Whitelist
// membership is a construction-time concern; loads re-run only this.
func (t *Transistor) Validate() error {
	if t.Name == "" {
		return invalidf("transistor has no name")
	}
	valid := false
	for _, dt := range DeviceTypes {
		if t.Type == dt {
			valid = true
			break
		}
	}
	if !valid {
		return invalidf("transistor %s: unknown type %q", t.Name, t.Type)
	}
	if t.VAbsMax <= 0 || t.IAbsMax <= 0 || t.ICont <= 0 {
		return invalidf("transistor %s: absolute maximum ratings must be positive", t.Name)
	}
	for _, c := range [][]VoltageDependentCapacitance{t.COss, t.CIss, t.CRss} {
		for _, vc := range c {
			if err := vc.Validate(); err != nil {
				return fmt.Errorf("transistor %s: %w", t.Name, err)
			}
		}
	}
	if err := t.Switch.Validate(); err != nil {
		return fmt.Errorf("transistor %s: %w", t.Name, err)
	}
	if err := t.Diode.Validate(); err != nil {
		return fmt.Errorf("transistor %s: %w", t.Name, err)
	}
	return nil
}

// clone deep-copies the record tree through its JSON form. The scratch WP
// is not part of the serialization and starts fresh on the copy.
func (t *Transistor) clone() *Transistor {
	data, err := json.Marshal(t)
	if err != nil {
		// The tree is plain data; marshalling cannot fail for a valid record.
		panic(fmt.Sprintf("clone transistor %s: %v", t.Name, err))
	}
	var out Transistor
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("clone transistor %s: %v", t.Name, err))
	}
	return &out
}

// GetChannel returns the channel curve measured exactly at (t_j, v_g) for
// the chosen part. No fallback: a missing exact match is ErrNotFound with
// the available operating points listed.
func (t *Transistor) GetChannel(part Part, tj, vg float64) (*ChannelData, error) {
	var channels []ChannelData
	matchVG := true
	switch part {
	case PartSwitch:
		channels = t.Switch.Channel
	case PartDiode:
		channels = t.Diode.Channel
		// Discrete diodes carry no gate-voltage tag worth matching.
		matchVG = t.Type.HasBodyDiode()
	default:
		return nil, fmt.Errorf("part must be switch or diode, got %q", part)
	}

	var first *ChannelData
	matches := 0
	for i := range channels {
		c := &channels[i]
		if c.TJ == tj && (!matchVG || c.VG == vg) {
			if first == nil {
				first = c
			}
			matches++
		}
	}
	if first == nil {
		return nil, notFoundf("%s has no channel curve at t_j=%g v_g=%g (available: %v)",
			part, tj, vg, channelPoints(channels))
	}
	if matches > 1 {
		log.Info().Str("part", string(part)).Int("matches", matches).
			Msg("multiple channel curves match the operating point, first in stored order used")
	}
	return first, nil
}

// GetEnergy returns the loss dataset measured exactly at the given
// conditions. No fallback.
func (t *Transistor) GetEnergy(kind EnergyKind, tj, vg, vSupply, rg float64) (*SwitchEnergyData, error) {
	sets, err := t.energyFamily(kind)
	if err != nil {
		return nil, err
	}
	for i := range sets {
		e := &sets[i]
		if e.TJ == tj && e.VG == vg && e.VSupply == vSupply && e.RG == rg {
			return e, nil
		}
	}
	return nil, notFoundf("no %s dataset at t_j=%g v_g=%g v_supply=%g r_g=%g", kind, tj, vg, vSupply, rg)
}

func (t *Transistor) energyFamily(kind EnergyKind) ([]SwitchEnergyData, error) {
	switch kind {
	case KindEOn:
		return t.Switch.EOn, nil
	case KindEOff:
		return t.Switch.EOff, nil
	case KindERr:
		return t.Diode.ERr, nil
	default:
		return nil, fmt.Errorf("unknown energy kind %q", kind)
	}
}

// CalcLinChannel reduces the channel curve selected for (t_j, v_g) to the
// affine model v = v0 + r*i around the operating current. Devices with an
// ohmic channel get v0 = 0 and r = v(i)/i; devices with a forward-voltage
// knee use the finite difference between v(i) and v(0.9*i). Interpolation
// clamps at the curve ends; a current above the absolute maximum rating is
// ErrOutOfRange.
func (t *Transistor) CalcLinChannel(tj, vg, iChannel float64, part Part) (LinearizedModel, error) {
	if iChannel > t.IAbsMax {
		return LinearizedModel{}, outOfRangef("linearization current %g A above rated i_abs_max %g A", iChannel, t.IAbsMax)
	}
	if iChannel <= 0 {
		return LinearizedModel{}, outOfRangef("linearization current must be positive, got %g", iChannel)
	}
	ch, err := t.GetChannel(part, tj, vg)
	if err != nil {
		return LinearizedModel{}, err
	}

	ohmic := part == PartSwitch && t.Type.HasOhmicChannel()
	model := LinearizedModel{TJ: tj, VG: vg, IChannel: iChannel}
	v := ch.VoltageAt(iChannel)
	if ohmic {
		model.V0Channel = 0
		model.RChannel = v / iChannel
	} else {
		vLow := ch.VoltageAt(0.9 * iChannel)
		model.RChannel = (v - vLow) / (0.1 * iChannel)
		model.V0Channel = v - model.RChannel*iChannel
	}
	return model, nil
}

// CalcVEoss computes the output-capacitance stored-energy curve E(v) by
// cumulative trapezoidal integration of v*C_oss(v) from the first sample.
func (t *Transistor) CalcVEoss() (curve.Curve, error) {
	if len(t.COss) == 0 {
		return curve.Curve{}, notFoundf("transistor %s has no c_oss curve", t.Name)
	}
	return t.COss[0].Energy(), nil
}

// CalcVQoss computes the output-capacitance charge curve Q(v) by cumulative
// trapezoidal integration of C_oss(v) from the first sample.
func (t *Transistor) CalcVQoss() (curve.Curve, error) {
	if len(t.COss) == 0 {
		return curve.Curve{}, notFoundf("transistor %s has no c_oss curve", t.Name)
	}
	return t.COss[0].Charge(), nil
}

// CalcObjectIE derives an energy-vs-current curve for a gate resistor the
// datasheet does not give directly: the stored i_e curve at the junction
// temperature is rescaled by the ratio of the r_e curve evaluated at the
// wanted and the nominal gate resistor, with a linear supply-voltage
// correction on top.
func (t *Transistor) CalcObjectIE(kind EnergyKind, rg, tj, vSupply float64) (*SwitchEnergyData, error) {
	sets, err := t.energyFamily(kind)
	if err != nil {
		return nil, err
	}
	var ie *SwitchEnergyData
	for i := range sets {
		e := &sets[i]
		if e.DatasetType == DatasetGraphIE && e.TJ == tj {
			ie = e
			break
		}
	}
	if ie == nil {
		return nil, notFoundf("no %s graph_i_e dataset at t_j=%g", kind, tj)
	}

	res := filterEnergy(sets, DatasetGraphRE)
	if len(res) == 0 {
		return nil, notFoundf("no %s graph_r_e dataset to rescale with", kind)
	}
	// Prefer the r_e curve matching the i_e curve's conditions.
	re := &res[0]
	for i := range res {
		if res[i].TJ == ie.TJ && res[i].VG == ie.VG && res[i].VSupply == ie.VSupply {
			re = &res[i]
			break
		}
	}
	rgMax := re.GraphRE.X[len(re.GraphRE.X)-1]
	if rg > rgMax {
		return nil, outOfRangef("gate resistor %g above r_e curve maximum %g", rg, rgMax)
	}
	if vSupply <= 0 || vSupply > t.VAbsMax {
		log.Info().Float64("v_supply", vSupply).Float64("fallback", ie.VSupply).
			Msg("invalid supply voltage, dataset value used")
		vSupply = ie.VSupply
	}

	lossAtRG := re.GraphRE.Interp(rg)
	lossAtNominal := re.GraphRE.Interp(ie.RG)
	factor := lossAtRG / lossAtNominal * vSupply / ie.VSupply

	out := *ie
	out.GraphIE = ie.GraphIE.ScaleY(factor)
	out.RG = rg
	out.VSupply = vSupply
	return &out, nil
}
