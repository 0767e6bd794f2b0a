package wizard

import (
	"maps"
	"slices"
	"time"

	"github.com/zdunecki/qrwizard/pkg/design"
)

const (
	DefaultQRSize               = 300
	DefaultErrorCorrectionLevel = "M"
)

// State is a snapshot of the wizard. Values returned by Store.State are
// copies and may be modified freely.
type State struct {
	CurrentStep    Step   `json:"currentStep"`
	CompletedSteps []Step `json:"completedSteps"`

	QRType               string         `json:"qrType"`
	QRData               map[string]any `json:"qrData"`
	QRSize               int            `json:"qrSize"`
	ErrorCorrectionLevel string         `json:"errorCorrectionLevel"`

	DesignerConfig *design.Config `json:"designerConfig,omitempty"`
	StickerConfig  *StickerConfig `json:"stickerConfig,omitempty"`
	Metadata       *Metadata      `json:"metadata,omitempty"`

	IsDirty      bool      `json:"isDirty"`
	LastModified time.Time `json:"lastModified"`
	SessionID    string    `json:"sessionId"`
}

// StickerConfig is the decorative overlay chosen in the sticker step.
type StickerConfig struct {
	Enabled        bool   `json:"enabled"`
	Type           string `json:"type,omitempty"`
	Text           string `json:"text,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	TextColor      string `json:"textColor,omitempty"`
}

type Metadata struct {
	Name     string   `json:"name,omitempty"`
	Folder   string   `json:"folder,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func initialState(sessionID string, now time.Time) State {
	return State{
		CurrentStep:          StepType,
		CompletedSteps:       []Step{},
		QRData:               map[string]any{},
		QRSize:               DefaultQRSize,
		ErrorCorrectionLevel: DefaultErrorCorrectionLevel,
		LastModified:         now,
		SessionID:            sessionID,
	}
}

// IsCompleted reports whether step is in the completed set.
func (s State) IsCompleted(step Step) bool {
	return slices.Contains(s.CompletedSteps, step)
}

func (s State) clone() State {
	out := s
	out.CompletedSteps = slices.Clone(s.CompletedSteps)
	out.QRData = maps.Clone(s.QRData)
	out.DesignerConfig = s.DesignerConfig.Clone()
	if s.StickerConfig != nil {
		sc := *s.StickerConfig
		out.StickerConfig = &sc
	}
	if s.Metadata != nil {
		md := *s.Metadata
		md.Tags = slices.Clone(s.Metadata.Tags)
		out.Metadata = &md
	}
	return out
}

// addCompleted inserts step keeping CompletedSteps in wizard order.
func addCompleted(steps []Step, step Step) []Step {
	if slices.Contains(steps, step) {
		return steps
	}
	steps = append(steps, step)
	slices.SortFunc(steps, func(a, b Step) int { return a.Index() - b.Index() })
	return steps
}
