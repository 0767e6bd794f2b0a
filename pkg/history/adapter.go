package history

import (
	"log/slog"
	"sync"

	"github.com/zdunecki/qrwizard/pkg/wizard"
)

// Navigator is the part of the wizard store the adapter drives.
type Navigator interface {
	State() wizard.State
	CanGoToStep(step wizard.Step) bool
	SetCurrentStep(step wizard.Step)
	Subscribe(fn wizard.Listener) (unsubscribe func())
}

// Adapter mirrors step changes into a History and applies back and forward
// navigation to the wizard, vetoing navigation the guard rejects.
type Adapter struct {
	history History
	nav     Navigator
	base    string
	log     *slog.Logger

	mu      sync.Mutex
	cleanup []func()
}

func NewAdapter(h History, nav Navigator, basePath string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{history: h, nav: nav, base: basePath, log: logger}
}

// Mount replaces the current entry with the current step and starts syncing.
// Mounting an already mounted adapter is a no-op.
func (a *Adapter) Mount() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cleanup != nil {
		return
	}

	step := a.nav.State().CurrentStep
	a.history.Replace(PathFor(a.base, step), &Entry{Step: step})

	a.cleanup = append(a.cleanup, a.nav.Subscribe(a.onStateChange))
	if ps, ok := a.history.(PopStater); ok {
		a.cleanup = append(a.cleanup, ps.OnPopState(a.PopState))
	}
}

// Unmount stops syncing.
func (a *Adapter) Unmount() {
	a.mu.Lock()
	cleanup := a.cleanup
	a.cleanup = nil
	a.mu.Unlock()

	for _, fn := range cleanup {
		fn()
	}
}

func (a *Adapter) onStateChange(next, prev wizard.State) {
	if next.CurrentStep == prev.CurrentStep {
		return
	}
	path := PathFor(a.base, next.CurrentStep)
	if path == a.history.Path() {
		return
	}
	a.history.Push(path, &Entry{Step: next.CurrentStep})
}

// PopState handles a back or forward navigation that landed on entry.
func (a *Adapter) PopState(entry *Entry) {
	if entry == nil || entry.Step == "" {
		a.commit(wizard.Steps[0])
		return
	}
	if !a.nav.CanGoToStep(entry.Step) {
		current := a.nav.State().CurrentStep
		a.log.Debug("history: navigation blocked", "step", entry.Step, "current", current)
		a.history.Push(PathFor(a.base, current), &Entry{Step: current})
		return
	}
	a.commit(entry.Step)
}

func (a *Adapter) commit(step wizard.Step) {
	if a.nav.State().CurrentStep == step {
		return
	}
	a.nav.SetCurrentStep(step)
}
