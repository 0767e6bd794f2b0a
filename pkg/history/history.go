// Package history keeps the wizard's current step and a location path in
// sync, the way a browser's back and forward buttons expect.
package history

import (
	"strings"

	"github.com/zdunecki/qrwizard/pkg/wizard"
)

// Entry is the state attached to a history entry.
type Entry struct {
	Step wizard.Step `json:"step"`
}

// History is the minimal surface of a browser-style session history.
type History interface {
	// Path returns the path of the current entry.
	Path() string
	Push(path string, entry *Entry)
	Replace(path string, entry *Entry)
}

// PopStater is implemented by histories that report back and forward
// navigation themselves. The adapter subscribes to them on Mount.
type PopStater interface {
	OnPopState(fn func(entry *Entry)) (unsubscribe func())
}

// PathFor maps a step to its location: the base path for the first step and
// base/<step> for every other one.
func PathFor(base string, step wizard.Step) string {
	base = normalizeBase(base)
	if step == wizard.Steps[0] {
		return base
	}
	if base == "/" {
		return "/" + step.String()
	}
	return base + "/" + step.String()
}

// StepFromPath is the inverse of PathFor. It reports false for paths outside
// base or naming an unknown step.
func StepFromPath(base, path string) (wizard.Step, bool) {
	base = normalizeBase(base)
	path = "/" + strings.Trim(path, "/")
	if path == base {
		return wizard.Steps[0], true
	}
	prefix := base + "/"
	if base == "/" {
		prefix = "/"
	}
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || strings.Contains(rest, "/") {
		return "", false
	}
	step := wizard.Step(rest)
	if !step.Valid() || step == wizard.Steps[0] {
		return "", false
	}
	return step, true
}

func normalizeBase(base string) string {
	return "/" + strings.Trim(base, "/")
}
