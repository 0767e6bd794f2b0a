package history

import "sync"

type memoryEntry struct {
	path  string
	entry *Entry
}

// Memory is an in-process History with back and forward navigation. The
// terminal wizard and the API server use it in place of a browser.
type Memory struct {
	mu      sync.Mutex
	entries []memoryEntry
	index   int

	subMu  sync.Mutex
	subs   map[int]func(*Entry)
	nextID int
}

// NewMemory returns a history holding a single entry at path.
func NewMemory(path string) *Memory {
	return &Memory{
		entries: []memoryEntry{{path: path}},
		subs:    map[int]func(*Entry){},
	}
}

func (m *Memory) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].path
}

// Current returns the state attached to the current entry.
func (m *Memory) Current() *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyEntry(m.entries[m.index].entry)
}

// Push adds an entry after the current one and drops everything ahead of it.
func (m *Memory) Push(path string, entry *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], memoryEntry{path: path, entry: copyEntry(entry)})
	m.index++
}

func (m *Memory) Replace(path string, entry *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = memoryEntry{path: path, entry: copyEntry(entry)}
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Back moves one entry back and fires popstate. It reports false at the
// oldest entry.
func (m *Memory) Back() bool { return m.Go(-1) }

// Forward moves one entry forward and fires popstate.
func (m *Memory) Forward() bool { return m.Go(1) }

// Go moves delta entries and fires popstate with the state of the entry
// landed on. Out of range moves do nothing.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	to := m.index + delta
	if delta == 0 || to < 0 || to >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = to
	entry := copyEntry(m.entries[to].entry)
	m.mu.Unlock()

	m.subMu.Lock()
	fns := make([]func(*Entry), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(copyEntry(entry))
	}
	return true
}

func (m *Memory) OnPopState(fn func(entry *Entry)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func copyEntry(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
