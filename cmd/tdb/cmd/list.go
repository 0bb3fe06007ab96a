package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powerlab/transistordb/internal/domain"
	"github.com/powerlab/transistordb/internal/service"
)

var (
	listName         string
	listType         string
	listManufacturer string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored transistors",
	RunE: func(cmd *cobra.Command, _ []string) error {
		items, err := mgr.List(cmd.Context(), service.Filter{
			Name:         listName,
			Type:         domain.DeviceType(listType),
			Manufacturer: listManufacturer,
		})
		if err != nil {
			return err
		}
		for _, t := range items {
			fmt.Printf("%-40s %-14s %s\n", t.Name, t.Type, t.Manufacturer)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listName, "filter", "", "name substring filter")
	listCmd.Flags().StringVar(&listType, "type", "", "device type (IGBT, MOSFET, SiC-MOSFET, GaN-Transistor)")
	listCmd.Flags().StringVar(&listManufacturer, "manufacturer", "", "manufacturer filter")
}
