package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/repository"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one stored record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := repository.Encode(t)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete one stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mgr.Delete(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}
