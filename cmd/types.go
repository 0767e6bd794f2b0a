package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List available QR code types and their fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := loadTypes(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available QR types:")
		for _, t := range types.List() {
			fmt.Fprintf(out, "  - %s: %s\n", t.ID, t.Description)
			for _, f := range t.Fields {
				flags := []string{string(f.Type)}
				if f.Required {
					flags = append(flags, "required")
				}
				fmt.Fprintf(out, "      %-12s %s\n", f.ID, strings.Join(flags, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listTypesCmd)
}
