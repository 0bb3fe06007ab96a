package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/cloud"
	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/export"
)

var (
	exportFormat  string
	exportDir     string
	exportVSupply float64
	exportRGOn    float64
	exportRGOff   float64
	exportPublish bool
)

var exportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a record to a simulator file format",
	Long: `Export a stored record for a circuit simulator.

Formats:
  json     canonical record file, re-importable
  gecko    GeckoCIRCUITS .scl semiconductor characteristics
  plecs    Plexim semiconductor library XML
  matlab   MATLAB/Octave struct script
  simulink reduced IGBT inverter loss model script`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var files []export.File
		switch exportFormat {
		case "json":
			f, err := export.JSON(t)
			if err != nil {
				return err
			}
			files = []export.File{f}
		case "gecko":
			opts := export.GeckoOptions{
				VSupply: exportVSupply,
				RGOn:    exportRGOn,
				RGOff:   exportRGOff,
				Recheck: true,
			}
			files, err = export.Gecko(t, opts)
			if err != nil {
				return err
			}
		case "plecs":
			files, err = export.Plecs(t, true, nil)
			if err != nil {
				return err
			}
		case "matlab":
			f, err := export.Matlab(t)
			if err != nil {
				return err
			}
			files = []export.File{f}
		case "simulink":
			f, err := export.SimulinkLossModel(t, exportRGOn, exportRGOff, exportVSupply)
			if err != nil {
				return err
			}
			files = []export.File{f}
		default:
			return fmt.Errorf("unknown export format %q", exportFormat)
		}
		if len(files) == 0 {
			return fmt.Errorf("nothing exported for %s", t.Name)
		}

		for _, f := range files {
			path := filepath.Join(exportDir, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		}

		if exportPublish {
			pub, err := cloud.NewPublisher(cmd.Context(), config.AWSRegion(), config.S3Bucket())
			if err != nil {
				return err
			}
			for _, f := range files {
				url, err := pub.PublishExport(cmd.Context(), t.Name, f.Name, f.Data)
				if err != nil {
					return err
				}
				fmt.Printf("published %s\n", url)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json, gecko, plecs, matlab or simulink")
	exportCmd.Flags().StringVar(&exportDir, "out", ".", "output directory")
	exportCmd.Flags().Float64Var(&exportVSupply, "v-supply", 0, "supply voltage (default: half of v_abs_max)")
	exportCmd.Flags().Float64Var(&exportRGOn, "rg-on", 0, "turn-on gate resistor (default: datasheet recommendation)")
	exportCmd.Flags().Float64Var(&exportRGOff, "rg-off", 0, "turn-off gate resistor (default: datasheet recommendation)")
	exportCmd.Flags().BoolVar(&exportPublish, "publish", false, "also publish to the configured S3 bucket")
}
