package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zdunecki/qrwizard/pkg/config"
)

var (
	// Global flags
	configFile string
	envFile    string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "qrwizard",
	Short: "Design QR codes step by step with live previews",
	Long: `A wizard for designing QR codes: pick a type, fill in the content,
style it, add a sticker and download the result. Previews are rendered
by a remote renderer while you edit. Progress is saved between runs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// setup loads the env file, configuration and logger shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(os.Stderr)
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file to load before reading the config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func Execute() error {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"wizard"})
	}
	return rootCmd.Execute()
}
