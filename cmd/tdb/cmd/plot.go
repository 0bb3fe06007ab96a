package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/domain"
	"github.com/powerlab/transistordb/internal/plot"
)

var (
	plotKind string
	plotPart string
	plotOut  string
)

var plotCmd = &cobra.Command{
	Use:   "plot <name>",
	Short: "Render record curves to a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := plotOut
		if out == "" {
			out = fmt.Sprintf("%s_%s.png", t.Name, plotKind)
		}
		switch plot.Kind(plotKind) {
		case plot.KindChannel:
			err = plot.Channel(t, domain.Part(plotPart), out)
		case plot.KindEnergy:
			for _, kind := range []domain.EnergyKind{domain.KindEOn, domain.KindEOff, domain.KindERr} {
				out = fmt.Sprintf("%s_%s.png", t.Name, kind)
				if err = plot.Energy(t, kind, out); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						err = nil
						continue
					}
					break
				}
				fmt.Printf("wrote %s\n", out)
			}
			return err
		case plot.KindCoss:
			err = plot.Coss(t, out)
		default:
			return fmt.Errorf("unknown plot kind %q", plotKind)
		}
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

var parallelCmd = &cobra.Command{
	Use:   "parallel <name> <count>",
	Short: "Store the n-parallel variant of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var n int
		if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
			return fmt.Errorf("count must be an integer: %w", err)
		}
		t, err := mgr.Parallel(cmd.Context(), args[0], n, parallelOverwrite)
		if err != nil {
			return err
		}
		fmt.Printf("stored %s\n", t.Name)
		return nil
	},
}

var parallelOverwrite bool

func init() {
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(parallelCmd)

	plotCmd.Flags().StringVar(&plotKind, "kind", "channel", "channel, energy or coss")
	plotCmd.Flags().StringVar(&plotPart, "part", "switch", "switch or diode (channel plots)")
	plotCmd.Flags().StringVar(&plotOut, "out", "", "output file (default: <name>_<kind>.png)")

	parallelCmd.Flags().BoolVar(&parallelOverwrite, "overwrite", false, "replace an existing record")
}
