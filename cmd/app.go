package cmd

import (
	"log/slog"

	"github.com/zdunecki/qrwizard/pkg/config"
	"github.com/zdunecki/qrwizard/pkg/preview"
	"github.com/zdunecki/qrwizard/pkg/qrtypes"
	"github.com/zdunecki/qrwizard/pkg/session"
	"github.com/zdunecki/qrwizard/pkg/wizard"
)

func loadTypes(c *config.Config) (*qrtypes.Registry, error) {
	if c.QRTypesFile == "" {
		return qrtypes.Builtin(), nil
	}
	return qrtypes.LoadFile(c.QRTypesFile)
}

func newEngine(c *config.Config, log *slog.Logger) *preview.Engine {
	return preview.NewEngine(preview.EngineOptions{
		Renderer: preview.NewHTTPRenderer(preview.HTTPRendererOptions{
			BaseURL: c.Renderer.BaseURL,
			Path:    c.Renderer.Path,
			Token:   c.Renderer.Token,
		}),
		Cache:    preview.NewCache(c.Preview.CacheSize),
		Debounce: c.Preview.Debounce,
		Logger:   log,
	})
}

func newStore(c *config.Config, log *slog.Logger) *wizard.Store {
	return wizard.NewStore(wizard.Options{
		Storage:    wizard.NewFileStorage(c.Wizard.StateDir),
		StaleAfter: c.Wizard.StaleAfter,
		Logger:     log,
	})
}

// newSession wires a wizard run backed by the state directory.
func newSession(c *config.Config, log *slog.Logger) (*session.Session, error) {
	types, err := loadTypes(c)
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Store:    newStore(c, log),
		Engine:   newEngine(c, log),
		BasePath: c.Wizard.BasePath,
		Types:    types,
		Logger:   log,
	}), nil
}
