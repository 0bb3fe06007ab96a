package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/repository"
)

var importOverwrite bool

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a record file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		t, err := repository.Decode(data)
		if err != nil {
			return err
		}
		if err := mgr.Save(cmd.Context(), t, importOverwrite); err != nil {
			return err
		}
		fmt.Printf("imported %s\n", t.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "replace an existing record")
}
