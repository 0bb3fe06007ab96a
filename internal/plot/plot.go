// Package plot renders record curves to PNG images for quick datasheet
// sanity checks from the command line.
package plot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/powerlab/transistordb/internal/curve"
	"github.com/powerlab/transistordb/internal/domain"
)

// Kind selects which family of curves to render.
type Kind string

const (
	KindChannel Kind = "channel"
	KindEnergy  Kind = "energy"
	KindCoss    Kind = "coss"
)

type line struct {
	label string
	c     curve.Curve
}

func points(c curve.Curve) plotter.XYs {
	pts := make(plotter.XYs, c.Len())
	for i := range c.X {
		pts[i].X = c.X[i]
		pts[i].Y = c.Y[i]
	}
	return pts
}

func render(title, xLabel, yLabel, path string, lines []line) error {
	if len(lines) == 0 {
		return fmt.Errorf("nothing to plot: %w", domain.ErrNotFound)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	args := make([]any, 0, 2*len(lines))
	for _, l := range lines {
		args = append(args, l.label, points(l.c))
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("build plot %s: %w", title, err)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// Channel renders every stored channel curve of the selected part.
func Channel(t *domain.Transistor, part domain.Part, path string) error {
	var lines []line
	channels := t.Switch.Channel
	if part == domain.PartDiode {
		channels = t.Diode.Channel
	}
	for _, c := range channels {
		lines = append(lines, line{
			label: fmt.Sprintf("t_j=%g°C v_g=%gV", c.TJ, c.VG),
			c:     c.Graph,
		})
	}
	return render(t.Name+" channel", "v / V", "i / A", path, lines)
}

// Energy renders the stored switching loss curves of one energy family.
func Energy(t *domain.Transistor, kind domain.EnergyKind, path string) error {
	var sets []domain.SwitchEnergyData
	switch kind {
	case domain.KindEOn:
		sets = t.Switch.EOn
	case domain.KindEOff:
		sets = t.Switch.EOff
	case domain.KindERr:
		sets = t.Diode.ERr
	}
	var lines []line
	for _, e := range sets {
		if e.DatasetType != domain.DatasetGraphIE || e.GraphIE.IsZero() {
			continue
		}
		lines = append(lines, line{
			label: fmt.Sprintf("t_j=%g°C v=%gV r_g=%gΩ", e.TJ, e.VSupply, e.RG),
			c:     e.GraphIE,
		})
	}
	return render(fmt.Sprintf("%s %s", t.Name, kind), "i / A", "E / J", path, lines)
}

// Coss renders the output capacitance curves together with the derived
// charge and stored-energy curves.
func Coss(t *domain.Transistor, path string) error {
	var lines []line
	for _, c := range t.COss {
		lines = append(lines, line{
			label: fmt.Sprintf("C_oss t_j=%g°C", c.TJ),
			c:     c.Graph,
		})
	}
	if len(t.COss) > 0 {
		lines = append(lines,
			line{label: "Q_oss / C", c: t.COss[0].Charge()},
			line{label: "E_oss / J", c: t.COss[0].Energy()},
		)
	}
	if !t.GraphVECoss.IsZero() {
		lines = append(lines, line{label: "E_oss measured / J", c: t.GraphVECoss})
	}
	return render(t.Name+" output capacitance", "v / V", "C / F", path, lines)
}
