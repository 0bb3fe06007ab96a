package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/config"
	"github.com/powerlab/transistordb/internal/database"
	"github.com/powerlab/transistordb/internal/exchange"
	"github.com/powerlab/transistordb/internal/service"
)

var (
	verbose bool

	mgr        *service.Manager
	closeStore func()
)

var rootCmd = &cobra.Command{
	Use:   "tdb",
	Short: "Transistor datasheet database",
	Long: `Manage a database of semiconductor datasheet records and derive
simulation models from them.

Examples:
  tdb list --type SiC-MOSFET                  # List stored SiC MOSFETs
  tdb import CREE_C3M0016120K.json            # Import a record file
  tdb wp CREE_C3M0016120K --tj 125 --i 40     # Working-point search
  tdb export CREE_C3M0016120K --format gecko  # Simulator export`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		if err := config.Load(); err != nil {
			return err
		}
		store, closer, err := database.OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		closeStore = closer
		xc := exchange.New(config.ExchangeIndexURL(), config.ExchangeManufacturersURL(), config.ExchangeHousingTypesURL())
		mgr = service.NewManager(store, xc)
		mgr.LoadWhitelists(config.HousingTypesFile(), config.ManufacturersFile())
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if closeStore != nil {
			closeStore()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
