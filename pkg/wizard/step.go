package wizard

import (
	"fmt"
	"strings"
)

// Step is one stage of the QR creation sequence.
type Step string

const (
	StepType     Step = "type"
	StepContent  Step = "content"
	StepDesign   Step = "design"
	StepSticker  Step = "sticker"
	StepPreview  Step = "preview"
	StepDownload Step = "download"
)

// Steps is the fixed total order of the wizard.
var Steps = []Step{StepType, StepContent, StepDesign, StepSticker, StepPreview, StepDownload}

// Index returns the position of s in Steps, or -1 if s is not a step.
func (s Step) Index() int {
	for i, v := range Steps {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool { return s.Index() >= 0 }

func (s Step) String() string { return string(s) }

// Title is the human label used by the terminal wizard and breadcrumbs.
func (s Step) Title() string {
	switch s {
	case StepType:
		return "Type"
	case StepContent:
		return "Content"
	case StepDesign:
		return "Design"
	case StepSticker:
		return "Sticker"
	case StepPreview:
		return "Preview"
	case StepDownload:
		return "Download"
	}
	return string(s)
}

// ParseStep accepts a step name in any case.
func ParseStep(v string) (Step, error) {
	s := Step(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, v)
	}
	return s, nil
}

func next(s Step) (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Steps) {
		return s, false
	}
	return Steps[i+1], true
}

func previous(s Step) (Step, bool) {
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return Steps[i-1], true
}
