package domain

import "fmt"

// Parallel derives the equivalent record for n identical devices connected
// in parallel. Current ratings, curve current axes and switching energies
// scale by n; thermal and channel resistances divide by n; capacitances
// multiply by n. The returned record is independent of the receiver.
func (t *Transistor) Parallel(n int) (*Transistor, error) {
	if n < 2 {
		return nil, fmt.Errorf("parallel count must be at least 2, got %d", n)
	}
	f := float64(n)
	out := t.clone()
	out.ID = ""
	out.Name = fmt.Sprintf("%s_%d_parallel", t.Name, n)
	out.WP.Reset()
	out.WP.ParallelTransistors = n

	out.IAbsMax *= f
	out.ICont *= f
	out.COssFix *= f
	out.CIssFix *= f
	out.CRssFix *= f
	out.RThCS /= f
	out.RThSwitchCS /= f
	out.RThDiodeCS /= f

	scaleCaps := func(caps []VoltageDependentCapacitance) {
		for i := range caps {
			caps[i].Graph = caps[i].Graph.ScaleY(f)
		}
	}
	scaleCaps(out.COss)
	scaleCaps(out.CIss)
	scaleCaps(out.CRss)

	scaleChannels := func(channels []ChannelData) {
		for i := range channels {
			// Row 1 of graph_v_i is the current axis.
			g := channels[i].Graph.Clone()
			for j := range g.Y {
				g.Y[j] *= f
			}
			channels[i].Graph = g
		}
	}
	scaleChannels(out.Switch.Channel)
	scaleChannels(out.Diode.Channel)

	scaleEnergies := func(sets []SwitchEnergyData) {
		for i := range sets {
			switch sets[i].DatasetType {
			case DatasetGraphIE:
				// Both the current axis and the energy scale with n.
				sets[i].GraphIE = sets[i].GraphIE.ScaleX(f).ScaleY(f)
			case DatasetGraphRE:
				sets[i].GraphRE = sets[i].GraphRE.ScaleY(f)
			case DatasetSingle:
				sets[i].EX *= f
				sets[i].IX *= f
			}
		}
	}
	scaleEnergies(out.Switch.EOn)
	scaleEnergies(out.Switch.EOff)
	scaleEnergies(out.Diode.ERr)

	scaleFoster := func(m *FosterThermalModel) {
		m.RThTotal /= f
		m.CThTotal *= f
		for i := range m.RThVector {
			m.RThVector[i] /= f
		}
		for i := range m.CThVector {
			m.CThVector[i] *= f
		}
		// Time constants are unchanged: tau = (r/n)*(c*n).
		if !m.GraphTRthJC.IsZero() {
			m.GraphTRthJC = m.GraphTRthJC.ScaleY(1 / f)
		}
	}
	scaleFoster(&out.Switch.ThermalFoster)
	scaleFoster(&out.Diode.ThermalFoster)

	return out, nil
}
