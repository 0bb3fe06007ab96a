package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/config"
)

var updateOverwrite bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download every record from the file exchange",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := mgr.UpdateFromExchange(cmd.Context(), updateOverwrite,
			config.HousingTypesFile(), config.ManufacturersFile())
		if err != nil {
			return err
		}
		fmt.Printf("stored %d records\n", n)
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the local store against the file exchange index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := mgr.Compare(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range res.MissingLocally {
			fmt.Printf("missing locally: %s\n", n)
		}
		for _, n := range res.LocalOnly {
			fmt.Printf("local only:      %s\n", n)
		}
		if len(res.MissingLocally) == 0 && len(res.LocalOnly) == 0 {
			fmt.Println("store is in sync with the exchange")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(compareCmd)

	updateCmd.Flags().BoolVar(&updateOverwrite, "overwrite", false, "replace records that already exist")
}
