package wizard

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zdunecki/qrwizard/pkg/design"
)

// DefaultStaleAfter is how old a recovered state may be before IsStale reports it.
const DefaultStaleAfter = 24 * time.Hour

// Listener is called after every mutation with the new and previous state.
type Listener func(next, prev State)

// Options configures a Store. The zero value is usable: no persistence, real
// clock, random session ids.
type Options struct {
	Storage    Storage
	Key        string
	StaleAfter time.Duration
	Now        func() time.Time
	NewID      func() string
	Logger     *slog.Logger
}

// Store owns the wizard state. All mutation goes through its action methods;
// each action persists the whitelisted fields and notifies subscribers.
type Store struct {
	mu    sync.Mutex
	state State

	storage    Storage
	key        string
	staleAfter time.Duration
	now        func() time.Time
	newID      func() string
	log        *slog.Logger

	// seq numbers mutations; writes to storage and listener calls follow it.
	seq       uint64
	persistMu sync.Mutex
	persisted uint64

	queueMu  sync.Mutex
	queue    []change
	draining bool

	subMu  sync.Mutex
	subs   map[int]Listener
	nextID int
}

// persistOp is what a mutation does to durable storage.
type persistOp int

const (
	persistNone persistOp = iota
	persistSave
	persistRemove
)

type change struct {
	next, prev State
}

// NewStore creates a store holding a fresh wizard state. Call Restore to pick
// up a persisted session.
func NewStore(opts Options) *Store {
	s := &Store{
		storage:    opts.Storage,
		key:        opts.Key,
		staleAfter: opts.StaleAfter,
		now:        opts.Now,
		newID:      opts.NewID,
		log:        opts.Logger,
		subs:       map[int]Listener{},
	}
	if s.key == "" {
		s.key = StorageKey
	}
	if s.staleAfter <= 0 {
		s.staleAfter = DefaultStaleAfter
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.state = initialState(s.newID(), s.now())
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn for state changes and returns a function that
// removes it. Listeners run outside the store lock and may call actions.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// update applies fn to the state under the lock, then persists and notifies.
// fn returns false to signal that nothing changed.
func (s *Store) update(fn func(st *State) bool) {
	s.apply(fn, persistSave)
}

// apply mutates the state, then writes storage and notifies listeners in
// mutation order. A write that lost the race to a newer one is skipped.
// Listeners queued by another goroutine, or by a listener itself, run on the
// goroutine already draining the queue.
func (s *Store) apply(fn func(st *State) bool, op persistOp) {
	s.mu.Lock()
	prev := s.state.clone()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	next := s.state.clone()
	s.seq++
	seq := s.seq
	s.queueMu.Lock()
	s.queue = append(s.queue, change{next: next, prev: prev})
	s.queueMu.Unlock()
	s.mu.Unlock()

	s.write(seq, next, op)
	s.drain()
}

func (s *Store) write(seq uint64, st State, op persistOp) {
	if op == persistNone || s.storage == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if seq <= s.persisted {
		return
	}
	s.persisted = seq
	switch op {
	case persistSave:
		s.persist(st)
	case persistRemove:
		if err := s.storage.Remove(s.key); err != nil {
			s.log.Warn("wizard: remove persisted state", "key", s.key, "error", err)
		}
	}
}

func (s *Store) drain() {
	s.queueMu.Lock()
	if s.draining {
		s.queueMu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		c := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()
		s.notify(c.next, c.prev)
		s.queueMu.Lock()
	}
	s.draining = false
	s.queueMu.Unlock()
}

func (s *Store) notify(next, prev State) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(next.clone(), prev.clone())
	}
}

// touch marks the state modified now.
func (s *Store) touch(st *State) {
	st.IsDirty = true
	st.LastModified = s.now()
}

// SetCurrentStep jumps to step without consulting the guard. Callers decide
// reachability with CanGoToStep first.
func (s *Store) SetCurrentStep(step Step) {
	if !step.Valid() {
		return
	}
	s.update(func(st *State) bool {
		st.CurrentStep = step
		s.touch(st)
		return true
	})
}

// GoToStep is SetCurrentStep behind the navigation guard.
func (s *Store) GoToStep(step Step) error {
	if !step.Valid() {
		return ErrUnknownStep
	}
	if !s.CanGoToStep(step) {
		return ErrStepBlocked
	}
	s.SetCurrentStep(step)
	return nil
}

// CompleteStep adds step to the completed set. Completing an already completed
// step changes nothing.
func (s *Store) CompleteStep(step Step) {
	if !step.Valid() {
		return
	}
	s.update(func(st *State) bool {
		if st.IsCompleted(step) {
			return false
		}
		st.CompletedSteps = addCompleted(st.CompletedSteps, step)
		s.touch(st)
		return true
	})
}

// GoToNextStep completes the current step and advances one position. It does
// nothing on the last step.
func (s *Store) GoToNextStep() {
	s.update(func(st *State) bool {
		to, ok := next(st.CurrentStep)
		if !ok {
			return false
		}
		st.CompletedSteps = addCompleted(st.CompletedSteps, st.CurrentStep)
		st.CurrentStep = to
		s.touch(st)
		return true
	})
}

// GoToPreviousStep moves back one position. It does nothing on the first step.
func (s *Store) GoToPreviousStep() {
	s.update(func(st *State) bool {
		to, ok := previous(st.CurrentStep)
		if !ok {
			return false
		}
		st.CurrentStep = to
		s.touch(st)
		return true
	})
}

// CanGoToStep is the navigation guard shared by every caller that changes the
// step from outside: breadcrumbs, history, direct links.
func (s *Store) CanGoToStep(step Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canGoTo(s.state, step)
}

func canGoTo(st State, step Step) bool {
	target := step.Index()
	current := st.CurrentStep.Index()
	if target < 0 {
		return false
	}
	switch {
	case target <= current:
		return true
	case target == current+1 && st.IsCompleted(st.CurrentStep):
		return true
	default:
		return st.IsCompleted(step)
	}
}

func (s *Store) SetQRType(qrType string) {
	s.update(func(st *State) bool {
		st.QRType = qrType
		s.touch(st)
		return true
	})
}

func (s *Store) SetQRData(data map[string]any) {
	s.update(func(st *State) bool {
		st.QRData = maps.Clone(data)
		if st.QRData == nil {
			st.QRData = map[string]any{}
		}
		s.touch(st)
		return true
	})
}

func (s *Store) SetQRSize(size int) {
	s.update(func(st *State) bool {
		st.QRSize = size
		s.touch(st)
		return true
	})
}

func (s *Store) SetErrorCorrectionLevel(level string) {
	s.update(func(st *State) bool {
		st.ErrorCorrectionLevel = level
		s.touch(st)
		return true
	})
}

// SetDesignerConfig replaces the design config. A nil config clears it.
func (s *Store) SetDesignerConfig(cfg *design.Config) {
	s.update(func(st *State) bool {
		st.DesignerConfig = cfg.Clone()
		s.touch(st)
		return true
	})
}

// UpdateDesignerConfig shallow-merges partial into the current design config,
// or into design.Default() when there is none yet.
func (s *Store) UpdateDesignerConfig(partial *design.Config) {
	s.update(func(st *State) bool {
		base := st.DesignerConfig
		if base == nil {
			base = design.Default()
		}
		st.DesignerConfig = design.Merge(base, partial)
		s.touch(st)
		return true
	})
}

func (s *Store) SetStickerConfig(cfg *StickerConfig) {
	s.update(func(st *State) bool {
		if cfg == nil {
			st.StickerConfig = nil
		} else {
			c := *cfg
			st.StickerConfig = &c
		}
		s.touch(st)
		return true
	})
}

func (s *Store) SetMetadata(md *Metadata) {
	s.update(func(st *State) bool {
		if md == nil {
			st.Metadata = nil
		} else {
			m := *md
			m.Tags = slices.Clone(md.Tags)
			st.Metadata = &m
		}
		s.touch(st)
		return true
	})
}

// MarkClean clears the dirty flag and nothing else.
func (s *Store) MarkClean() {
	s.update(func(st *State) bool {
		if !st.IsDirty {
			return false
		}
		st.IsDirty = false
		return true
	})
}

// ResetWizard returns every field to its initial value under a new session id.
func (s *Store) ResetWizard() {
	s.update(func(st *State) bool {
		*st = initialState(s.newID(), s.now())
		return true
	})
}

// ClearPersistedState resets the wizard and removes the durable entry. The
// fresh state is not written back; the next action persists it.
func (s *Store) ClearPersistedState() {
	s.apply(func(st *State) bool {
		*st = initialState(s.newID(), s.now())
		return true
	}, persistRemove)
}

// FinishDownload marks the download step complete and tears the session down:
// the persisted entry is removed and a fresh wizard begins.
func (s *Store) FinishDownload() {
	s.CompleteStep(StepDownload)
	s.ClearPersistedState()
}
