package domain

import (
	"github.com/rs/zerolog/log"
)

// Diode is the freewheeling part of a transistor: thermal model, channel
// curves and reverse-recovery loss datasets. Devices without recovery data
// (MOSFET body diodes, GaN reverse conduction) simply carry an empty ERr.
type Diode struct {
	Comment       string             `json:"comment,omitempty"`
	Manufacturer  string             `json:"manufacturer,omitempty"`
	Technology    string             `json:"technology,omitempty"`
	TJMax         float64            `json:"t_j_max"`
	ThermalFoster FosterThermalModel `json:"thermal_foster"`
	Channel       []ChannelData      `json:"channel"`
	ERr           []SwitchEnergyData `json:"e_rr"`
}

// Validate checks the diode and everything it owns.
func (d *Diode) Validate() error {
	if err := d.ThermalFoster.Validate(); err != nil {
		return err
	}
	seen := map[opPoint]bool{}
	for _, c := range d.Channel {
		if err := c.Validate(); err != nil {
			return err
		}
		p := opPoint{tj: c.TJ, vg: c.VG}
		if seen[p] {
			return invalidf("diode has duplicate channel curve at t_j=%g v_g=%g", c.TJ, c.VG)
		}
		seen[p] = true
	}
	for _, e := range d.ERr {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the diode carries no data at all. Transistors
// without a separate diode keep a zero value here.
func (d *Diode) IsEmpty() bool {
	return len(d.Channel) == 0 && len(d.ERr) == 0 && d.ThermalFoster.Stages() == 0
}

// FindApproxWP selects the channel curve and the reverse-recovery loss
// dataset nearest to the requested operating point. A nil energy result with
// nil error never happens; a missing e_rr family reports ErrNotFound and the
// caller decides whether that is fatal (see Transistor.UpdateWP).
func (d *Diode) FindApproxWP(tj, vg float64, energyType DatasetType) (*ChannelData, *SwitchEnergyData, error) {
	if len(d.Channel) == 0 {
		return nil, nil, notFoundf("diode has no channel data")
	}
	chIdx := nearestIndex(opPoint{tj: tj, vg: vg}, channelPoints(d.Channel))
	ch := &d.Channel[chIdx]

	eRrs := filterEnergy(d.ERr, energyType)
	if len(eRrs) == 0 {
		return ch, nil, notFoundf("diode has no e_rr data of type %s", energyType)
	}
	eRr := &eRrs[nearestIndex(opPoint{tj: tj, vg: vg}, energyPoints(eRrs))]

	log.Debug().
		Float64("req_t_j", tj).Float64("req_v_g", vg).
		Float64("channel_t_j", ch.TJ).Float64("channel_v_g", ch.VG).
		Float64("e_rr_t_j", eRr.TJ).
		Msg("diode working point selected")
	return ch, eRr, nil
}

// FindNextGateVoltage snaps requested export voltages to the nearest stored
// channel and recovery-loss tags.
func (d *Diode) FindNextGateVoltage(req GateSelection, energyType DatasetType) (GateSelection, error) {
	if len(d.Channel) == 0 {
		return req, notFoundf("diode has no channel data")
	}
	var channelVGs []float64
	for _, c := range d.Channel {
		channelVGs = append(channelVGs, c.VG)
	}
	out := req
	out.VChannel = nearestValue(req.VChannel, channelVGs)

	eRrs := filterEnergy(d.ERr, energyType)
	if len(eRrs) == 0 {
		return req, notFoundf("diode has no e_rr data of type %s", energyType)
	}
	var offVGs []float64
	for _, e := range eRrs {
		offVGs = append(offVGs, e.VG)
	}
	out.VGOff = nearestValue(req.VGOff, offVGs)

	var supplies []float64
	for _, e := range eRrs {
		if e.VG == out.VGOff {
			supplies = append(supplies, e.VSupply)
		}
	}
	if len(supplies) > 0 {
		out.VSupply = nearestValue(req.VSupply, supplies)
	}
	return out, nil
}
