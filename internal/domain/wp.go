package domain

import (
	"github.com/rs/zerolog/log"

	"github.com/powerlab/transistordb/internal/curve"
)

// SearchMode selects how working-point construction treats missing loss
// data. The two behaviors serve two genuinely different call sites: manual
// analysis wants hard failures, automated sweeps want a best-effort scratch
// record. Both stay available behind this explicit flag.
type SearchMode int

const (
	// Strict fails the whole update on the first missing curve family.
	Strict SearchMode = iota
	// Lenient substitutes a zero sentinel dataset for any missing loss
	// family and continues, switching losses included, not only reverse
	// recovery; devices without recovery data (MOSFET, SiC-MOSFET, GaN)
	// are the common case. Missing channel curves stay fatal in both
	// modes.
	Lenient
)

// WP is the per-transistor working-point scratch record. Every UpdateWP or
// QuickstartWP call overwrites it wholesale; no persistence invariants apply.
type WP struct {
	SwitchVChannel float64 `json:"switch_v_channel"`
	SwitchRChannel float64 `json:"switch_r_channel"`
	DiodeVChannel  float64 `json:"diode_v_channel"`
	DiodeRChannel  float64 `json:"diode_r_channel"`

	SwitchChannel *ChannelData      `json:"switch_channel,omitempty"`
	DiodeChannel  *ChannelData      `json:"diode_channel,omitempty"`
	EOn           *SwitchEnergyData `json:"e_on,omitempty"`
	EOff          *SwitchEnergyData `json:"e_off,omitempty"`
	ERr           *SwitchEnergyData `json:"e_rr,omitempty"`

	VSwitchingRef float64 `json:"v_switching_ref,omitempty"`

	GraphVCoss curve.Curve `json:"graph_v_coss,omitempty"`
	GraphVEoss curve.Curve `json:"graph_v_eoss,omitempty"`
	GraphVQoss curve.Curve `json:"graph_v_qoss,omitempty"`

	ParallelTransistors int `json:"parallel_transistors,omitempty"`
}

// Reset clears the scratch record.
func (w *WP) Reset() { *w = WP{} }

// UpdateWP fills the scratch record with the curves nearest to the requested
// operating point and the channel linearization at the found curves' own
// tags. The mode decides what a missing diode recovery family does: Strict
// propagates ErrNotFound, Lenient writes a zero sentinel and continues.
// Missing channel data is fatal in both modes.
func (t *Transistor) UpdateWP(tj, vg, iChannel float64, part Part, mode SearchMode) error {
	t.WP.Reset()

	if part == PartDiode || part == PartBoth {
		if err := t.updateDiodeWP(tj, vg, iChannel, mode); err != nil {
			return err
		}
	}
	if part == PartSwitch || part == PartBoth {
		ch, eOn, eOff, err := t.Switch.FindApproxWP(tj, vg, DatasetGraphIE)
		if err != nil {
			if mode == Strict || ch == nil {
				return err
			}
			log.Info().Str("name", t.Name).Err(err).
				Msg("switch loss data missing, sentinel written")
			eOn, eOff = sentinelEnergy(), sentinelEnergy()
		}
		t.WP.SwitchChannel, t.WP.EOn, t.WP.EOff = ch, eOn, eOff
		lin, err := t.CalcLinChannel(ch.TJ, ch.VG, iChannel, PartSwitch)
		if err != nil {
			return err
		}
		t.WP.SwitchVChannel, t.WP.SwitchRChannel = lin.V0Channel, lin.RChannel
	}

	if len(t.COss) > 0 {
		t.WP.GraphVCoss = t.COss[0].Graph
		if t.GraphVECoss.IsZero() {
			t.WP.GraphVEoss = t.COss[0].Energy()
		} else {
			t.WP.GraphVEoss = t.GraphVECoss
		}
		t.WP.GraphVQoss = t.COss[0].Charge()
	}
	return nil
}

func (t *Transistor) updateDiodeWP(tj, vg, iChannel float64, mode SearchMode) error {
	ch, eRr, err := t.Diode.FindApproxWP(tj, vg, DatasetGraphIE)
	if err != nil {
		if mode == Strict || ch == nil {
			return err
		}
		log.Info().Str("name", t.Name).Float64("t_j", tj).Float64("v_g", vg).
			Msg("no reverse-recovery data, sentinel written (common for MOSFET/SiC/GaN devices)")
		eRr = sentinelEnergy()
	}
	t.WP.DiodeChannel, t.WP.ERr = ch, eRr

	linVG := ch.VG
	lin, err := t.CalcLinChannel(ch.TJ, linVG, iChannel, PartDiode)
	if err != nil {
		return err
	}
	t.WP.DiodeVChannel, t.WP.DiodeRChannel = lin.V0Channel, lin.RChannel
	return nil
}

// QuickstartDefaults are the explicit inputs for QuickstartWP. They come
// from configuration, not from hidden package-level constants.
type QuickstartDefaults struct {
	// VG is the gate voltage to search near.
	VG float64
	// TJOffset is subtracted from the switch's rated maximum junction
	// temperature to form the search temperature.
	TJOffset float64
	// Mode decides missing-data handling; Lenient fits the automated
	// nature of a quickstart call.
	Mode SearchMode
}

// QuickstartWP fills the scratch record at a typical operating point:
// t_j_max minus the configured offset, the configured gate voltage and the
// continuous current rating.
func (t *Transistor) QuickstartWP(d QuickstartDefaults) error {
	return t.UpdateWP(t.Switch.TJMax-d.TJOffset, d.VG, t.ICont, PartBoth, d.Mode)
}
