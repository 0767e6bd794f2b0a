// Package session owns one wizard run: the state store, its preview surface
// and the history adapter, wired so that edits drive previews.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"reflect"

	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/history"
	"github.com/zdunecki/qrwizard/pkg/preview"
	"github.com/zdunecki/qrwizard/pkg/qrtypes"
	"github.com/zdunecki/qrwizard/pkg/wizard"
)

// ErrNoArtifact is returned by Download before any preview was displayed.
var ErrNoArtifact = errors.New("no preview to download")

type Options struct {
	Store    *wizard.Store
	Engine   *preview.Engine
	History  history.History
	BasePath string
	Types    *qrtypes.Registry
	Logger   *slog.Logger
}

type Session struct {
	store   *wizard.Store
	engine  *preview.Engine
	history history.History
	adapter *history.Adapter
	types   *qrtypes.Registry
	log     *slog.Logger

	unsubscribe func()
}

// RestoreResult reports what Start found in durable storage.
type RestoreResult struct {
	Restored bool `json:"restored"`
	Stale    bool `json:"stale"`
}

// New wires the collaborators. Nothing is observed until Start.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	types := opts.Types
	if types == nil {
		types = qrtypes.Builtin()
	}
	h := opts.History
	if h == nil {
		h = history.NewMemory(history.PathFor(opts.BasePath, wizard.StepType))
	}
	return &Session{
		store:   opts.Store,
		engine:  opts.Engine,
		history: h,
		adapter: history.NewAdapter(h, opts.Store, opts.BasePath, log),
		types:   types,
		log:     log,
	}
}

// Start restores a persisted run if there is one, mounts the history adapter
// and requests the first preview. A stale run is still restored; the caller
// decides whether to keep it.
func (s *Session) Start() RestoreResult {
	var res RestoreResult
	if s.store.Restore() {
		res.Restored = true
		res.Stale = s.store.IsStale()
		s.log.Info("session: restored wizard state", "session", s.store.State().SessionID, "stale", res.Stale)
	}

	s.adapter.Mount()
	s.unsubscribe = s.store.Subscribe(s.onStateChange)
	s.requestPreview(s.store.State())
	return res
}

// Close tears the session down. The persisted state is kept.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.adapter.Unmount()
	s.engine.Close()
}

func (s *Session) Store() *wizard.Store     { return s.store }
func (s *Session) Engine() *preview.Engine  { return s.engine }
func (s *Session) History() history.History { return s.history }
func (s *Session) Types() *qrtypes.Registry { return s.types }

// Adapter exposes popstate handling for histories that do not report it
// themselves.
func (s *Session) Adapter() *history.Adapter { return s.adapter }

func (s *Session) onStateChange(next, prev wizard.State) {
	if !previewInputsChanged(next, prev) {
		return
	}
	s.requestPreview(next)
}

func previewInputsChanged(next, prev wizard.State) bool {
	return next.QRType != prev.QRType ||
		next.ErrorCorrectionLevel != prev.ErrorCorrectionLevel ||
		!maps.EqualFunc(next.QRData, prev.QRData, func(a, b any) bool { return reflect.DeepEqual(a, b) }) ||
		!reflect.DeepEqual(next.DesignerConfig, prev.DesignerConfig) ||
		!reflect.DeepEqual(next.StickerConfig, prev.StickerConfig)
}

func (s *Session) requestPreview(st wizard.State) {
	s.engine.RequestPreview(st.QRData, st.QRType, RenderConfig(st), preview.Options{})
}

// RenderConfig is the design sent to the renderer for st: the designer config
// with the sticker colors folded in. The wizard-level error correction level
// overrides the one in the designer config.
func RenderConfig(st wizard.State) *design.Config {
	cfg := st.DesignerConfig.Clone()
	if cfg == nil {
		cfg = design.Default()
	}
	if st.ErrorCorrectionLevel != "" {
		cfg.ErrorCorrection = st.ErrorCorrectionLevel
	}
	if sc := st.StickerConfig; sc != nil && sc.Enabled && cfg.Sticker == nil {
		cfg.Sticker = &design.StickerColors{
			Type:           sc.Type,
			PrimaryColor:   sc.PrimaryColor,
			SecondaryColor: sc.SecondaryColor,
			TextColor:      sc.TextColor,
		}
	}
	return cfg
}

// ValidateContent checks the current qrData against the selected type.
func (s *Session) ValidateContent() error {
	st := s.store.State()
	t, err := s.types.Get(st.QRType)
	if err != nil {
		return err
	}
	return t.Validate(st.QRData)
}

// Next advances one step. Leaving the type step requires a known type and
// leaving the content step requires valid content.
func (s *Session) Next() error {
	st := s.store.State()
	switch st.CurrentStep {
	case wizard.StepType:
		if _, err := s.types.Get(st.QRType); err != nil {
			return err
		}
	case wizard.StepContent:
		if err := s.ValidateContent(); err != nil {
			return err
		}
	}
	s.store.GoToNextStep()
	return nil
}

func (s *Session) Back() {
	s.store.GoToPreviousStep()
}

// GoTo jumps to step if the navigation guard allows it.
func (s *Session) GoTo(step wizard.Step) error {
	return s.store.GoToStep(step)
}

// SelectType sets the QR type and seeds content with the type's defaults for
// fields not filled in yet.
func (s *Session) SelectType(id string) error {
	t, err := s.types.Get(id)
	if err != nil {
		return err
	}
	st := s.store.State()
	if st.QRType != id {
		s.store.SetQRType(id)
	}
	data := t.Defaults()
	if st.QRType == id {
		maps.Copy(data, st.QRData)
	}
	s.store.SetQRData(data)
	return nil
}

// Download writes the displayed artifact to w and ends the run. It is only
// available on the download step.
func (s *Session) Download(w io.Writer) error {
	if s.store.State().CurrentStep != wizard.StepDownload {
		return fmt.Errorf("download: %w", wizard.ErrStepBlocked)
	}
	artifact, ok := s.engine.Artifact()
	if !ok {
		return ErrNoArtifact
	}
	if _, err := io.WriteString(w, artifact); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	s.store.FinishDownload()
	return nil
}
