package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/domain"
)

var (
	wpTJ     float64
	wpVG     float64
	wpI      float64
	wpPart   string
	wpStrict bool
)

var wpCmd = &cobra.Command{
	Use:   "wp <name>",
	Short: "Run a working-point search and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		mode := domain.Lenient
		if wpStrict {
			mode = domain.Strict
		}
		if cmd.Flags().Changed("tj") || cmd.Flags().Changed("vg") || cmd.Flags().Changed("i") {
			tj, vg, i := wpTJ, wpVG, wpI
			if !cmd.Flags().Changed("tj") {
				tj = t.Switch.TJMax - config.Quickstart().TJOffset
			}
			if !cmd.Flags().Changed("vg") {
				vg = config.Quickstart().VG
			}
			if !cmd.Flags().Changed("i") {
				i = t.ICont
			}
			err = t.UpdateWP(tj, vg, i, domain.Part(wpPart), mode)
		} else {
			d := config.Quickstart()
			d.Mode = mode
			err = t.QuickstartWP(d)
		}
		if err != nil {
			return err
		}

		wp := t.WP
		fmt.Printf("switch:  v0=%.4g V  r=%.4g Ohm\n", wp.SwitchVChannel, wp.SwitchRChannel)
		fmt.Printf("diode:   v0=%.4g V  r=%.4g Ohm\n", wp.DiodeVChannel, wp.DiodeRChannel)
		if wp.EOn != nil {
			fmt.Printf("e_on:    t_j=%g v_supply=%g r_g=%g\n", wp.EOn.TJ, wp.EOn.VSupply, wp.EOn.RG)
		}
		if wp.EOff != nil {
			fmt.Printf("e_off:   t_j=%g v_supply=%g r_g=%g\n", wp.EOff.TJ, wp.EOff.VSupply, wp.EOff.RG)
		}
		if wp.ERr != nil {
			sentinel := ""
			if wp.ERr.IsSentinel() {
				sentinel = " (placeholder, no stored data)"
			}
			fmt.Printf("e_rr:    t_j=%g v_supply=%g r_g=%g%s\n", wp.ERr.TJ, wp.ERr.VSupply, wp.ERr.RG, sentinel)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wpCmd)

	wpCmd.Flags().Float64Var(&wpTJ, "tj", 0, "junction temperature in °C (default: t_j_max minus configured offset)")
	wpCmd.Flags().Float64Var(&wpVG, "vg", 0, "gate voltage in V (default: configured quickstart voltage)")
	wpCmd.Flags().Float64Var(&wpI, "i", 0, "channel current in A (default: i_cont)")
	wpCmd.Flags().StringVar(&wpPart, "part", "both", "switch, diode or both")
	wpCmd.Flags().BoolVar(&wpStrict, "strict", false, "fail instead of substituting placeholder loss data")
}
