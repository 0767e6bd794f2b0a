package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/preview"
	"github.com/zdunecki/qrwizard/pkg/session"
)

// SaveDownload writes the session's current artifact to path and ends the run.
// A partially written file is removed.
func SaveDownload(sess *session.Session, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := sess.Download(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// RenderOptions describes a one-shot render outside the wizard.
type RenderOptions struct {
	Type   string
	Data   map[string]any
	Design *design.Config
	Output string
}

// Render renders opts once through engine and writes the artifact to
// opts.Output.
func Render(engine *preview.Engine, opts RenderOptions, logf func(string, ...interface{})) error {
	if preview.IsEmptyData(opts.Data) {
		return fmt.Errorf("nothing to render: content is empty")
	}

	logf("🎨 Rendering %s QR code\n", opts.Type)
	engine.RequestPreview(opts.Data, opts.Type, opts.Design, preview.Options{})
	engine.Wait()

	snap := engine.Snapshot()
	if snap.Status != preview.StatusDisplayed {
		return fmt.Errorf("render failed: %s", snap.Error)
	}
	logf("   Hash: %s\n", snap.Hash)

	if err := os.WriteFile(opts.Output, []byte(snap.Artifact), 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Output, err)
	}
	logf("✅ Saved to %s\n", opts.Output)
	return nil
}
