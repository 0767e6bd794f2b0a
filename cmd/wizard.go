package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zdunecki/qrwizard/pkg/cli"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive QR code wizard",
	RunE:  runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the TUI; logs go to a file only with --debug.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if debug {
		if err := os.MkdirAll(cfg.Wizard.StateDir, 0700); err != nil {
			return err
		}
		f, err := tea.LogToFile(filepath.Join(cfg.Wizard.StateDir, "debug.log"), "qrwizard")
		if err != nil {
			return err
		}
		defer f.Close()
		log = newLogger(f)
	}

	sess, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	res := sess.Start()
	return cli.RunWizard(sess, res.Stale)
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}
