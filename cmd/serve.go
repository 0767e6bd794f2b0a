package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zdunecki/qrwizard/pkg/server"
)

var (
	servePort      int
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wizard JSON API for a browser frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		sess, err := newSession(cfg, logger)
		if err != nil {
			return err
		}
		defer sess.Close()
		sess.Start()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Start(ctx, sess, server.Options{
			Port:        port,
			OpenBrowser: !serveNoBrowser,
			Logger:      logger,
		})
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", true, "Do not open the system browser")
	rootCmd.AddCommand(serveCmd)
}
