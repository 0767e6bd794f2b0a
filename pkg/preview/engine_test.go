package preview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zdunecki/qrwizard/pkg/design"
)

// manualScheduler collects timers and runs them only when Fire is called.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped atomic.Bool
}

func (t *manualTimer) Stop() bool { return !t.stopped.Swap(true) }

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of timers that would run on Fire.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

func (s *manualScheduler) Fire() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range timers {
		if !t.stopped.Swap(true) {
			t.f()
		}
	}
}

// funcRenderer answers synchronously and counts calls.
type funcRenderer struct {
	calls atomic.Int32
	fn    func(req Request) ([]byte, error)
}

func (r *funcRenderer) Render(_ context.Context, req Request) ([]byte, error) {
	r.calls.Add(1)
	return r.fn(req)
}

func svgFor(req Request) []byte {
	return []byte(`<svg data-hash="` + req.Hash + `"></svg>`)
}

func okRenderer() *funcRenderer {
	return &funcRenderer{fn: func(req Request) ([]byte, error) { return svgFor(req), nil }}
}

// pendingCall is one render waiting for the test to answer it.
type pendingCall struct {
	ctx   context.Context
	req   Request
	reply chan []byte
}

// chanRenderer hands every call to the test and blocks until it is answered.
// Cancellation is deliberately ignored so late results reach the engine.
type chanRenderer struct {
	calls chan *pendingCall
}

func (r *chanRenderer) Render(ctx context.Context, req Request) ([]byte, error) {
	c := &pendingCall{ctx: ctx, req: req, reply: make(chan []byte)}
	r.calls <- c
	return <-c.reply, nil
}

func newTestEngine(r Renderer, cache *Cache) (*Engine, *manualScheduler) {
	sched := &manualScheduler{}
	return NewEngine(EngineOptions{Renderer: r, Cache: cache, Scheduler: sched}), sched
}

func data(url string) map[string]any { return map[string]any{"url": url} }

func TestFirstRequestFiresImmediately(t *testing.T) {
	r := okRenderer()
	e, sched := newTestEngine(r, nil)
	defer e.Close()

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	if sched.Pending() != 0 {
		t.Fatal("first request was debounced")
	}
	e.Wait()

	snap := e.Snapshot()
	if snap.Status != StatusDisplayed {
		t.Fatalf("status = %s", snap.Status)
	}
	if r.calls.Load() != 1 {
		t.Fatalf("calls = %d", r.calls.Load())
	}
	if art, ok := e.Artifact(); !ok || art == "" {
		t.Fatal("no artifact")
	}
	if e.DataURI() == "" {
		t.Fatal("no data uri")
	}
}

func TestIdenticalRequestServedFromSharedCache(t *testing.T) {
	r := okRenderer()
	cache := NewCache(10)
	cfg := &design.Config{ModuleShape: "dots"}

	first, _ := newTestEngine(r, cache)
	defer first.Close()
	first.RequestPreview(data("https://a.example"), "url", cfg, Options{})
	first.Wait()

	second, _ := newTestEngine(r, cache)
	defer second.Close()
	var statuses []Status
	second.Subscribe(func(s Snapshot) { statuses = append(statuses, s.Status) })
	second.RequestPreview(data("https://a.example"), "url", cfg.Clone(), Options{})

	if r.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", r.calls.Load())
	}
	if len(statuses) != 1 || statuses[0] != StatusDisplayed {
		t.Fatalf("statuses = %v, loading should be skipped", statuses)
	}
	a, _ := first.Artifact()
	b, _ := second.Artifact()
	if a != b {
		t.Fatal("cached artifact differs")
	}
}

func TestEmptyDataClearsWithoutRequest(t *testing.T) {
	r := okRenderer()
	e, sched := newTestEngine(r, nil)
	defer e.Close()

	e.RequestPreview(map[string]any{}, "url", nil, Options{})
	if r.calls.Load() != 0 || e.Snapshot().Status != StatusIdle {
		t.Fatal("empty data on a fresh surface triggered work")
	}

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()
	e.RequestPreview(data("https://b.example"), "url", nil, Options{})
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d", sched.Pending())
	}

	e.RequestPreview(map[string]any{"url": ""}, "url", nil, Options{})
	if sched.Pending() != 0 {
		t.Fatal("clearing left a debounced request behind")
	}
	sched.Fire()
	e.Wait()

	if r.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", r.calls.Load())
	}
	snap := e.Snapshot()
	if snap.Status != StatusIdle || snap.Artifact != "" || snap.Error != "" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDebounceCoalescesEdits(t *testing.T) {
	r := okRenderer()
	e, sched := newTestEngine(r, nil)
	defer e.Close()

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()

	for _, u := range []string{"https://b.example", "https://bc.example", "https://bcd.example"} {
		e.RequestPreview(data(u), "url", nil, Options{})
	}
	if r.calls.Load() != 1 {
		t.Fatalf("edits went out before the debounce window: %d", r.calls.Load())
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", sched.Pending())
	}

	sched.Fire()
	e.Wait()
	if r.calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", r.calls.Load())
	}
	want, _ := BuildRequest(data("https://bcd.example"), "url", nil, Options{})
	if got := e.Snapshot().Hash; got != want.Hash {
		t.Fatalf("rendered %s, want the last edit %s", got, want.Hash)
	}
}

func TestSupersededResultIsDiscarded(t *testing.T) {
	r := &chanRenderer{calls: make(chan *pendingCall)}
	e, _ := newTestEngine(r, nil)
	defer e.Close()

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	first := <-r.calls
	e.RequestPreview(data("https://b.example"), "url", nil, Options{})
	second := <-r.calls

	if first.ctx.Err() == nil {
		t.Fatal("superseded request was not canceled")
	}

	second.reply <- svgFor(second.req)
	first.reply <- svgFor(first.req)
	e.Wait()

	snap := e.Snapshot()
	if snap.Status != StatusDisplayed || snap.Hash != second.req.Hash {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Artifact != string(svgFor(second.req)) {
		t.Fatalf("late result displayed: %q", snap.Artifact)
	}
}

func TestFailureKeepsLastArtifact(t *testing.T) {
	var fail atomic.Bool
	r := &funcRenderer{fn: func(req Request) ([]byte, error) {
		if fail.Load() {
			return nil, errors.New("connection refused")
		}
		return svgFor(req), nil
	}}
	e, sched := newTestEngine(r, nil)
	defer e.Close()

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()
	good, _ := e.Artifact()

	fail.Store(true)
	e.RequestPreview(data("https://b.example"), "url", nil, Options{})
	sched.Fire()
	e.Wait()

	snap := e.Snapshot()
	if snap.Status != StatusErrored || !snap.Retryable() {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Error != msgUnavailable {
		t.Fatalf("error = %q", snap.Error)
	}
	if snap.Artifact != good {
		t.Fatal("failure cleared the previous artifact")
	}

	fail.Store(false)
	e.Refresh()
	e.Wait()
	if st := e.Snapshot(); st.Status != StatusDisplayed || st.Error != "" {
		t.Fatalf("after refresh = %+v", st)
	}
}

func TestMalformedArtifactIsRejected(t *testing.T) {
	r := &funcRenderer{fn: func(Request) ([]byte, error) {
		return []byte("<html>gateway timeout</html>"), nil
	}}
	cache := NewCache(4)
	e, _ := newTestEngine(r, cache)
	defer e.Close()

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()

	snap := e.Snapshot()
	if snap.Status != StatusErrored || snap.Error != msgMalformed {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Artifact != "" || cache.Len() != 0 {
		t.Fatal("malformed body reached the surface or the cache")
	}
}

func TestRefreshBypassesCacheAndDebounce(t *testing.T) {
	r := okRenderer()
	e, sched := newTestEngine(r, nil)
	defer e.Close()

	e.Refresh()
	if r.calls.Load() != 0 {
		t.Fatal("refresh with no request issued a call")
	}

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()
	e.Refresh()
	if sched.Pending() != 0 {
		t.Fatal("refresh was debounced")
	}
	e.Wait()
	if r.calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", r.calls.Load())
	}
}

func TestCloseCancelsInflight(t *testing.T) {
	r := &chanRenderer{calls: make(chan *pendingCall)}
	e, _ := newTestEngine(r, nil)

	var updates atomic.Int32
	e.Subscribe(func(Snapshot) { updates.Add(1) })
	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	call := <-r.calls
	before := updates.Load()

	e.Close()
	if call.ctx.Err() == nil {
		t.Fatal("close did not cancel the request")
	}
	call.reply <- svgFor(call.req)
	e.Wait()

	if updates.Load() != before {
		t.Fatal("closed surface received an update")
	}
	if _, ok := e.Artifact(); ok {
		t.Fatal("closed surface displayed a result")
	}
}

func TestUnsubscribe(t *testing.T) {
	e, _ := newTestEngine(okRenderer(), nil)
	defer e.Close()

	var n atomic.Int32
	unsubscribe := e.Subscribe(func(Snapshot) { n.Add(1) })
	unsubscribe()
	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()
	if n.Load() != 0 {
		t.Fatalf("unsubscribed listener called %d times", n.Load())
	}
}

func TestScheduledFireAfterClearIsDropped(t *testing.T) {
	r := okRenderer()
	e, _ := newTestEngine(r, nil)
	defer e.Close()

	e.RequestPreview(data("https://a.example"), "url", nil, Options{})
	e.Wait()
	e.RequestPreview(data("https://b.example"), "url", nil, Options{})

	// The timer for b has already passed the debouncer when the data is
	// emptied; its call into the engine arrives late.
	e.mu.Lock()
	req, pending := *e.last, e.pending
	e.mu.Unlock()
	e.RequestPreview(map[string]any{}, "url", nil, Options{})

	e.fire(req, false, pending)
	e.Wait()

	if r.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", r.calls.Load())
	}
	if snap := e.Snapshot(); snap.Status != StatusIdle || snap.Artifact != "" {
		t.Fatalf("late fire repopulated a cleared surface: %+v", snap)
	}
}
