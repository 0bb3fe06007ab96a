package domain

import (
	"github.com/rs/zerolog/log"
)

// Switch is the controlled part of a transistor: its thermal model, channel
// curves and turn-on/turn-off loss datasets. Sub-records are exclusively
// owned by the switch and have no identity outside it.
type Switch struct {
	Comment       string             `json:"comment,omitempty"`
	Manufacturer  string             `json:"manufacturer,omitempty"`
	Technology    string             `json:"technology,omitempty"`
	TJMax         float64            `json:"t_j_max"`
	ThermalFoster FosterThermalModel `json:"thermal_foster"`
	Channel       []ChannelData      `json:"channel"`
	EOn           []SwitchEnergyData `json:"e_on"`
	EOff          []SwitchEnergyData `json:"e_off"`
}

// Validate checks the switch and everything it owns, including the no-two-
// curves-at-the-same-operating-point invariant for channel data.
func (s *Switch) Validate() error {
	if err := s.ThermalFoster.Validate(); err != nil {
		return err
	}
	seen := map[opPoint]bool{}
	for _, c := range s.Channel {
		if err := c.Validate(); err != nil {
			return err
		}
		p := opPoint{tj: c.TJ, vg: c.VG}
		if seen[p] {
			return invalidf("switch has duplicate channel curve at t_j=%g v_g=%g", c.TJ, c.VG)
		}
		seen[p] = true
	}
	for _, e := range s.EOn {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, e := range s.EOff {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FindApproxWP selects the channel curve and the turn-on/turn-off loss
// datasets nearest to the requested operating point. Exact tag matches are
// preferred; otherwise temperature distance dominates gate-voltage distance.
func (s *Switch) FindApproxWP(tj, vg float64, energyType DatasetType) (*ChannelData, *SwitchEnergyData, *SwitchEnergyData, error) {
	if len(s.Channel) == 0 {
		return nil, nil, nil, notFoundf("switch has no channel data")
	}
	chIdx := nearestIndex(opPoint{tj: tj, vg: vg}, channelPoints(s.Channel))
	ch := &s.Channel[chIdx]

	eOns := filterEnergy(s.EOn, energyType)
	if len(eOns) == 0 {
		return ch, nil, nil, notFoundf("switch has no e_on data of type %s", energyType)
	}
	eOn := &eOns[nearestIndex(opPoint{tj: tj, vg: vg}, energyPoints(eOns))]

	eOffs := filterEnergy(s.EOff, energyType)
	if len(eOffs) == 0 {
		return ch, nil, nil, notFoundf("switch has no e_off data of type %s", energyType)
	}
	eOff := &eOffs[nearestIndex(opPoint{tj: tj, vg: vg}, energyPoints(eOffs))]

	log.Debug().
		Float64("req_t_j", tj).Float64("req_v_g", vg).
		Float64("channel_t_j", ch.TJ).Float64("channel_v_g", ch.VG).
		Float64("e_on_t_j", eOn.TJ).Float64("e_off_t_j", eOff.TJ).
		Msg("switch working point selected")
	return ch, eOn, eOff, nil
}

// GateVoltages collects the distinct channel gate voltages in stored order.
func (s *Switch) GateVoltages() []float64 {
	var out []float64
	seen := map[float64]bool{}
	for _, c := range s.Channel {
		if !seen[c.VG] {
			out = append(out, c.VG)
			seen[c.VG] = true
		}
	}
	return out
}

// GateSelection is the result of rechecking requested export gate voltages
// against the stored curve tags.
type GateSelection struct {
	VChannel float64
	VSupply  float64
	VGOn     float64
	VGOff    float64
}

// FindNextGateVoltage snaps requested export voltages to the nearest stored
// ones: the channel gate voltage to the channel curves, the turn-on and
// turn-off voltages to their loss datasets, and the supply voltage to the
// datasets at the chosen turn-on voltage.
func (s *Switch) FindNextGateVoltage(req GateSelection, energyType DatasetType) (GateSelection, error) {
	if len(s.Channel) == 0 {
		return req, notFoundf("switch has no channel data")
	}
	var channelVGs []float64
	for _, c := range s.Channel {
		channelVGs = append(channelVGs, c.VG)
	}
	out := req
	out.VChannel = nearestValue(req.VChannel, channelVGs)

	eOns := filterEnergy(s.EOn, energyType)
	if len(eOns) == 0 {
		return req, notFoundf("switch has no e_on data of type %s", energyType)
	}
	eOffs := filterEnergy(s.EOff, energyType)
	if len(eOffs) == 0 {
		return req, notFoundf("switch has no e_off data of type %s", energyType)
	}

	var onVGs, offVGs []float64
	for _, e := range eOns {
		onVGs = append(onVGs, e.VG)
	}
	for _, e := range eOffs {
		offVGs = append(offVGs, e.VG)
	}
	out.VGOn = nearestValue(req.VGOn, onVGs)
	out.VGOff = nearestValue(req.VGOff, offVGs)

	var supplies []float64
	for _, e := range eOns {
		if e.VG == out.VGOn {
			supplies = append(supplies, e.VSupply)
		}
	}
	if len(supplies) > 0 {
		out.VSupply = nearestValue(req.VSupply, supplies)
	}
	log.Debug().
		Float64("v_channel", out.VChannel).Float64("v_g_on", out.VGOn).
		Float64("v_g_off", out.VGOff).Float64("v_supply", out.VSupply).
		Msg("switch gate voltages rechecked")
	return out, nil
}
