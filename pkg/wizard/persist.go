package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zdunecki/qrwizard/pkg/design"
)

const (
	// StorageKey is the single named entry the wizard persists under.
	StorageKey = "wizard-state"

	// EnvelopeVersion is written with every envelope. Envelopes carrying any
	// other version are discarded on restore.
	EnvelopeVersion = 1
)

// persistedState is the whitelist of fields that survive a restart. Dirty
// tracking is per process and is not part of it.
type persistedState struct {
	CurrentStep          Step           `json:"currentStep"`
	CompletedSteps       []Step         `json:"completedSteps"`
	QRType               string         `json:"qrType"`
	QRData               map[string]any `json:"qrData"`
	QRSize               int            `json:"qrSize"`
	ErrorCorrectionLevel string         `json:"errorCorrectionLevel"`
	DesignerConfig       *design.Config `json:"designerConfig,omitempty"`
	StickerConfig        *StickerConfig `json:"stickerConfig,omitempty"`
	Metadata             *Metadata      `json:"metadata,omitempty"`
	LastModified         time.Time      `json:"lastModified"`
	SessionID            string         `json:"sessionId"`
}

type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

func encodeState(st State) ([]byte, error) {
	ps := persistedState{
		CurrentStep:          st.CurrentStep,
		CompletedSteps:       st.CompletedSteps,
		QRType:               st.QRType,
		QRData:               st.QRData,
		QRSize:               st.QRSize,
		ErrorCorrectionLevel: st.ErrorCorrectionLevel,
		DesignerConfig:       st.DesignerConfig,
		StickerConfig:        st.StickerConfig,
		Metadata:             st.Metadata,
		LastModified:         st.LastModified,
		SessionID:            st.SessionID,
	}
	raw, err := json.Marshal(ps)
	if err != nil {
		return nil, fmt.Errorf("encode wizard state: %w", err)
	}
	return json.Marshal(envelope{State: raw, Version: EnvelopeVersion})
}

var errEnvelopeVersion = errors.New("unsupported envelope version")

func decodeState(data []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != EnvelopeVersion {
		return State{}, fmt.Errorf("%w: %d", errEnvelopeVersion, env.Version)
	}
	var ps persistedState
	if err := json.Unmarshal(env.State, &ps); err != nil {
		return State{}, fmt.Errorf("decode wizard state: %w", err)
	}
	if !ps.CurrentStep.Valid() {
		return State{}, fmt.Errorf("decode wizard state: %w: %q", ErrUnknownStep, ps.CurrentStep)
	}
	if ps.SessionID == "" {
		return State{}, fmt.Errorf("decode wizard state: missing session id")
	}

	st := State{
		CurrentStep:          ps.CurrentStep,
		CompletedSteps:       []Step{},
		QRType:               ps.QRType,
		QRData:               ps.QRData,
		QRSize:               ps.QRSize,
		ErrorCorrectionLevel: ps.ErrorCorrectionLevel,
		DesignerConfig:       ps.DesignerConfig,
		StickerConfig:        ps.StickerConfig,
		Metadata:             ps.Metadata,
		LastModified:         ps.LastModified,
		SessionID:            ps.SessionID,
	}
	for _, step := range ps.CompletedSteps {
		if step.Valid() {
			st.CompletedSteps = addCompleted(st.CompletedSteps, step)
		}
	}
	if st.QRData == nil {
		st.QRData = map[string]any{}
	}
	if st.QRSize <= 0 {
		st.QRSize = DefaultQRSize
	}
	if st.ErrorCorrectionLevel == "" {
		st.ErrorCorrectionLevel = DefaultErrorCorrectionLevel
	}
	return st, nil
}

func (s *Store) persist(st State) {
	if s.storage == nil {
		return
	}
	data, err := encodeState(st)
	if err != nil {
		s.log.Error("wizard: persist state", "error", err)
		return
	}
	if err := s.storage.Save(s.key, data); err != nil {
		s.log.Warn("wizard: persist state", "key", s.key, "error", err)
	}
}

// Restore replaces the in-memory state with the persisted one. It reports
// whether a usable entry was found; a missing, malformed or outdated entry
// leaves a fresh state in place. Restore does not judge staleness.
func (s *Store) Restore() bool {
	if s.storage == nil {
		return false
	}
	data, err := s.storage.Load(s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("wizard: load persisted state", "key", s.key, "error", err)
		}
		return false
	}
	st, err := decodeState(data)
	if err != nil {
		s.log.Warn("wizard: discarding persisted state", "key", s.key, "error", err)
		return false
	}

	s.apply(func(cur *State) bool {
		*cur = st
		return true
	}, persistNone)
	return true
}

// IsStale reports whether the state was last modified longer ago than the
// configured window. Callers decide whether to resume or discard.
func (s *Store) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.state.LastModified) > s.staleAfter
}
