package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/powerlab/transistordb/internal/curve"
	"github.com/powerlab/transistordb/internal/domain"
)

// matlabFuncs renders float slices and curves as MATLAB literals.
var matlabFuncs = template.FuncMap{
	"vec": func(vals []float64) string {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = num(v)
		}
		return "[" + strings.Join(parts, " ") + "]"
	},
	"graph": func(c curve.Curve) string {
		rows := make([]string, 2)
		parts := make([]string, len(c.X))
		for i, v := range c.X {
			parts[i] = num(v)
		}
		rows[0] = strings.Join(parts, " ")
		parts = make([]string, len(c.Y))
		for i, v := range c.Y {
			parts[i] = num(v)
		}
		rows[1] = strings.Join(parts, " ")
		return "[" + rows[0] + "; " + rows[1] + "]"
	},
	"num": num,
	"inc": func(i int) int { return i + 1 },
}

var matlabTemplate = template.Must(template.New("matlab").Funcs(matlabFuncs).Parse(
	`% {{.Var}} datasheet record
% generated {{.Generated}}
{{.Var}} = struct();
{{.Var}}.name = '{{.T.Name}}';
{{.Var}}.type = '{{.T.Type}}';
{{.Var}}.manufacturer = '{{.T.Manufacturer}}';
{{.Var}}.housing_type = '{{.T.HousingType}}';
{{.Var}}.v_abs_max = {{num .T.VAbsMax}};
{{.Var}}.i_abs_max = {{num .T.IAbsMax}};
{{.Var}}.i_cont = {{num .T.ICont}};
{{.Var}}.r_g_int = {{num .T.RGInt}};
{{.Var}}.r_th_cs = {{num .T.RThCS}};
{{.Var}}.c_oss_fix = {{num .T.COssFix}};
{{.Var}}.c_iss_fix = {{num .T.CIssFix}};
{{.Var}}.c_rss_fix = {{num .T.CRssFix}};
{{- range $i, $c := .T.COss}}
{{$.Var}}.c_oss({{inc $i}}).t_j = {{num $c.TJ}};
{{$.Var}}.c_oss({{inc $i}}).graph_v_c = {{graph $c.Graph}};
{{- end}}
{{.Var}}.switch.t_j_max = {{num .T.Switch.TJMax}};
{{.Var}}.switch.r_th_total = {{num .T.Switch.ThermalFoster.RThTotal}};
{{.Var}}.switch.r_th_vector = {{vec .T.Switch.ThermalFoster.RThVector}};
{{.Var}}.switch.tau_vector = {{vec .T.Switch.ThermalFoster.TauVector}};
{{- range $i, $c := .T.Switch.Channel}}
{{$.Var}}.switch.channel({{inc $i}}).t_j = {{num $c.TJ}};
{{$.Var}}.switch.channel({{inc $i}}).v_g = {{num $c.VG}};
{{$.Var}}.switch.channel({{inc $i}}).graph_v_i = {{graph $c.Graph}};
{{- end}}
{{- range $i, $e := .T.Switch.EOn}}{{if $e.GraphIE.IsZero}}{{else}}
{{$.Var}}.switch.e_on({{inc $i}}).t_j = {{num $e.TJ}};
{{$.Var}}.switch.e_on({{inc $i}}).v_supply = {{num $e.VSupply}};
{{$.Var}}.switch.e_on({{inc $i}}).v_g = {{num $e.VG}};
{{$.Var}}.switch.e_on({{inc $i}}).r_g = {{num $e.RG}};
{{$.Var}}.switch.e_on({{inc $i}}).graph_i_e = {{graph $e.GraphIE}};
{{- end}}{{end}}
{{- range $i, $e := .T.Switch.EOff}}{{if $e.GraphIE.IsZero}}{{else}}
{{$.Var}}.switch.e_off({{inc $i}}).t_j = {{num $e.TJ}};
{{$.Var}}.switch.e_off({{inc $i}}).v_supply = {{num $e.VSupply}};
{{$.Var}}.switch.e_off({{inc $i}}).v_g = {{num $e.VG}};
{{$.Var}}.switch.e_off({{inc $i}}).r_g = {{num $e.RG}};
{{$.Var}}.switch.e_off({{inc $i}}).graph_i_e = {{graph $e.GraphIE}};
{{- end}}{{end}}
{{.Var}}.diode.t_j_max = {{num .T.Diode.TJMax}};
{{.Var}}.diode.r_th_total = {{num .T.Diode.ThermalFoster.RThTotal}};
{{.Var}}.diode.r_th_vector = {{vec .T.Diode.ThermalFoster.RThVector}};
{{.Var}}.diode.tau_vector = {{vec .T.Diode.ThermalFoster.TauVector}};
{{- range $i, $c := .T.Diode.Channel}}
{{$.Var}}.diode.channel({{inc $i}}).t_j = {{num $c.TJ}};
{{$.Var}}.diode.channel({{inc $i}}).v_g = {{num $c.VG}};
{{$.Var}}.diode.channel({{inc $i}}).graph_v_i = {{graph $c.Graph}};
{{- end}}
{{- range $i, $e := .T.Diode.ERr}}{{if $e.GraphIE.IsZero}}{{else}}
{{$.Var}}.diode.e_rr({{inc $i}}).t_j = {{num $e.TJ}};
{{$.Var}}.diode.e_rr({{inc $i}}).v_supply = {{num $e.VSupply}};
{{$.Var}}.diode.e_rr({{inc $i}}).v_g = {{num $e.VG}};
{{$.Var}}.diode.e_rr({{inc $i}}).r_g = {{num $e.RG}};
{{$.Var}}.diode.e_rr({{inc $i}}).graph_i_e = {{graph $e.GraphIE}};
{{- end}}{{end}}
`))

// Matlab renders the full record as a MATLAB/Octave script building one
// struct variable named after the part.
func Matlab(t *domain.Transistor) (File, error) {
	data := struct {
		Var       string
		Generated string
		T         *domain.Transistor
	}{
		Var:       matlabIdent(t.Name),
		Generated: time.Now().UTC().Format("2006-01-02"),
		T:         t,
	}
	var buf bytes.Buffer
	if err := matlabTemplate.Execute(&buf, data); err != nil {
		return File{}, fmt.Errorf("render matlab script: %w", err)
	}
	return File{Name: matlabIdent(t.Name) + "_Matlab.m", Data: buf.Bytes()}, nil
}

var simulinkTemplate = template.Must(template.New("simulink").Funcs(matlabFuncs).Parse(
	`% {{.Var}} inverter loss model
% generated {{.Generated}}
{{.Var}} = struct();
{{.Var}}.Name = '{{.Name}}';
{{.Var}}.R_th_CS = {{num .RThCS}};
{{.Var}}.R_th_Switch_CS = {{num .RThSwitchCS}};
{{.Var}}.R_th_Diode_CS = {{num .RThDiodeCS}};
{{.Var}}.r_g_on = {{num .RGOn}};
{{.Var}}.r_g_off = {{num .RGOff}};
{{.Var}}.Switch.T_j_channel = {{vec .SwitchTJChannel}};
{{.Var}}.Switch.T_j_ref_on = {{vec .TJRefOn}};
{{.Var}}.Switch.T_j_ref_off = {{vec .TJRefOff}};
{{.Var}}.Switch.R_th_total = {{num .SwitchRTh}};
{{.Var}}.Switch.C_th_total = 1;
{{.Var}}.Switch.V_ref_on = {{num .VRefOn}};
{{.Var}}.Switch.V_ref_off = {{num .VRefOff}};
{{.Var}}.Switch.i_vec = {{vec .IVec}};
{{.Var}}.Switch.v_channel = [{{vec .SwitchChannelLower}}; {{vec .SwitchChannelUpper}}];
{{.Var}}.Switch.Eon = [{{vec .EOnLower}}; {{vec .EOnUpper}}];
{{.Var}}.Switch.Eoff = [{{vec .EOffLower}}; {{vec .EOffUpper}}];
{{.Var}}.Diode.T_j_channel = {{vec .DiodeTJChannel}};
{{.Var}}.Diode.T_j_ref_rr = {{vec .TJRefRr}};
{{.Var}}.Diode.R_th_total = {{num .DiodeRTh}};
{{.Var}}.Diode.C_th_total = 1;
{{.Var}}.Diode.V_ref_rr = {{num .VRefRr}};
{{.Var}}.Diode.i_vec = {{vec .IVec}};
{{.Var}}.Diode.v_channel = [{{vec .DiodeChannelLower}}; {{vec .DiodeChannelUpper}}];
{{.Var}}.Diode.Err = [{{vec .ErrLower}}; {{vec .ErrUpper}}];
`))

// SimulinkLossModel renders the reduced IGBT loss model used by the
// Simscape three-phase inverter example: channel and loss curves at a low
// and a high junction temperature on a shared current axis, energies in mJ.
func SimulinkLossModel(t *domain.Transistor, rgOn, rgOff, vSupply float64) (File, error) {
	if t.Type != domain.TypeIGBT {
		return File{}, fmt.Errorf("loss model export supports IGBTs only, got %s: %w",
			t.Type, domain.ErrInvalidRecord)
	}
	const tjLower, tjUpper, vg = 25.0, 150.0, 15.0

	chLow, eOnLow, eOffLow, err := t.Switch.FindApproxWP(tjLower, vg, domain.DatasetGraphIE)
	if err != nil {
		return File{}, err
	}
	chUp, eOnUp, eOffUp, err := t.Switch.FindApproxWP(tjUpper, vg, domain.DatasetGraphIE)
	if err != nil {
		return File{}, err
	}
	if rgOn > 0 {
		eOnLow, eOnUp = rescalePair(t, domain.KindEOn, rgOn, vSupply, eOnLow, eOnUp)
	}
	if rgOff > 0 {
		eOffLow, eOffUp = rescalePair(t, domain.KindEOff, rgOff, vSupply, eOffLow, eOffUp)
	}

	dchLow, eRrLow, err := t.Diode.FindApproxWP(tjLower, vg, domain.DatasetGraphIE)
	if err != nil {
		return File{}, err
	}
	dchUp, eRrUp, err := t.Diode.FindApproxWP(tjUpper, vg, domain.DatasetGraphIE)
	if err != nil {
		return File{}, err
	}
	if rgOn > 0 {
		eRrLow, eRrUp = rescalePair(t, domain.KindERr, rgOn, vSupply, eRrLow, eRrUp)
	}

	iVec := make([]float64, 10)
	step := t.IAbsMax / 9
	for i := range iVec {
		iVec[i] = float64(i) * step
	}
	channelV := func(c *domain.ChannelData) []float64 {
		out := make([]float64, len(iVec))
		for i, x := range iVec {
			out[i] = c.VoltageAt(x)
		}
		return out
	}
	energyMJ := func(e *domain.SwitchEnergyData) []float64 {
		out := make([]float64, len(iVec))
		for i, x := range iVec {
			out[i] = e.GraphIE.Interp(x) * 1000
		}
		return out
	}
	// The loss model interpolates over temperature and cannot handle two
	// identical axis values.
	bump := func(lower, upper float64) float64 {
		if lower == upper {
			return upper + 1
		}
		return upper
	}
	nonZero := func(v float64) float64 {
		if v == 0 {
			return 1e-6
		}
		return v
	}

	data := struct {
		Var, Name, Generated                   string
		RThCS, RThSwitchCS, RThDiodeCS         float64
		RGOn, RGOff                            float64
		SwitchTJChannel, TJRefOn, TJRefOff     []float64
		SwitchRTh, VRefOn, VRefOff             float64
		IVec                                   []float64
		SwitchChannelLower, SwitchChannelUpper []float64
		EOnLower, EOnUpper                     []float64
		EOffLower, EOffUpper                   []float64
		DiodeTJChannel, TJRefRr                []float64
		DiodeRTh, VRefRr                       float64
		DiodeChannelLower, DiodeChannelUpper   []float64
		ErrLower, ErrUpper                     []float64
	}{
		Var:                matlabIdent(t.Name),
		Name:               t.Name,
		Generated:          time.Now().UTC().Format("2006-01-02"),
		RThCS:              nonZero(t.RThCS),
		RThSwitchCS:        nonZero(t.RThSwitchCS),
		RThDiodeCS:         nonZero(t.RThDiodeCS),
		RGOn:               eOnLow.RG,
		RGOff:              eOffLow.RG,
		SwitchTJChannel:    []float64{chLow.TJ, bump(chLow.TJ, chUp.TJ)},
		TJRefOn:            []float64{eOnLow.TJ, bump(eOnLow.TJ, eOnUp.TJ)},
		TJRefOff:           []float64{eOffLow.TJ, bump(eOffLow.TJ, eOffUp.TJ)},
		SwitchRTh:          nonZero(t.Switch.ThermalFoster.RThTotal),
		VRefOn:             eOnUp.VSupply,
		VRefOff:            eOnUp.VSupply,
		IVec:               iVec,
		SwitchChannelLower: channelV(chLow),
		SwitchChannelUpper: channelV(chUp),
		EOnLower:           energyMJ(eOnLow),
		EOnUpper:           energyMJ(eOnUp),
		EOffLower:          energyMJ(eOffLow),
		EOffUpper:          energyMJ(eOffUp),
		DiodeTJChannel:     []float64{dchLow.TJ, bump(dchLow.TJ, dchUp.TJ)},
		TJRefRr:            []float64{eRrLow.TJ, bump(eRrLow.TJ, eRrUp.TJ)},
		DiodeRTh:           nonZero(t.Diode.ThermalFoster.RThTotal),
		VRefRr:             eRrLow.VSupply,
		DiodeChannelLower:  channelV(dchLow),
		DiodeChannelUpper:  channelV(dchUp),
		ErrLower:           energyMJ(eRrLow),
		ErrUpper:           energyMJ(eRrUp),
	}
	var buf bytes.Buffer
	if err := simulinkTemplate.Execute(&buf, data); err != nil {
		return File{}, fmt.Errorf("render loss model script: %w", err)
	}
	return File{Name: matlabIdent(t.Name) + "_Simulink_lossmodel.m", Data: buf.Bytes()}, nil
}

// rescalePair rederives a lower/upper loss curve pair at a different gate
// resistor, keeping the stored pair when rescaling is not possible.
func rescalePair(t *domain.Transistor, kind domain.EnergyKind, rg, vSupply float64,
	lower, upper *domain.SwitchEnergyData) (*domain.SwitchEnergyData, *domain.SwitchEnergyData) {
	lo, err := t.CalcObjectIE(kind, rg, lower.TJ, vSupply)
	if err != nil {
		return lower, upper
	}
	up, err := t.CalcObjectIE(kind, rg, upper.TJ, vSupply)
	if err != nil || lo.TJ >= up.TJ {
		return lower, upper
	}
	return lo, up
}

// matlabIdent turns a part name into a valid MATLAB identifier.
func matlabIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "t_" + out
	}
	return out
}
