package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/transform"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Convert design configs between the app and renderer shapes",
}

var toBackendCmd = &cobra.Command{
	Use:   "to-backend [file]",
	Short: "Convert an app design config to the renderer's wire shape",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in design.Config
		if err := readJSONInput(cmd, args, &in); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), transform.ToBackend(&in))
	},
}

var fromBackendCmd = &cobra.Command{
	Use:   "from-backend [file]",
	Short: "Convert a renderer design config back to the app shape",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in transform.BackendDesignConfig
		if err := readJSONInput(cmd, args, &in); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), transform.FromBackend(in))
	},
}

// readJSONInput decodes the named file, or stdin when no file is given.
func readJSONInput(cmd *cobra.Command, args []string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r, name = f, args[0]
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	transformCmd.AddCommand(toBackendCmd)
	transformCmd.AddCommand(fromBackendCmd)
	rootCmd.AddCommand(transformCmd)
}
