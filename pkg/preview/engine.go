package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/zdunecki/qrwizard/pkg/design"
)

// Status is the state of one preview surface.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusDisplayed Status = "displayed"
	StatusErrored   Status = "errored"
)

const (
	msgUnavailable = "Preview unavailable. Try again."
	msgMalformed   = "The renderer returned an invalid preview. Try again."
)

// Snapshot is what a surface shows. In the errored state Artifact still holds
// the last good render, if there was one.
type Snapshot struct {
	Status   Status `json:"status"`
	Artifact string `json:"artifact,omitempty"`
	Error    string `json:"error,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

// Retryable reports whether a manual refresh is offered.
func (s Snapshot) Retryable() bool { return s.Status == StatusErrored }

type EngineOptions struct {
	Renderer  Renderer
	Cache     *Cache
	Debounce  time.Duration
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Engine drives one preview surface. At most one render request is in flight;
// starting another cancels it, and a late result from a superseded request is
// dropped without touching the surface.
type Engine struct {
	renderer Renderer
	cache    *Cache
	debounce *debouncer
	log      *slog.Logger

	mu       sync.Mutex
	status   Status
	artifact string
	errMsg   string
	hash     string
	last     *Request
	inflight cancelSource
	gen      uint64
	pending  uint64 // bumped by every request, clear and failure
	closed   bool
	running  sync.WaitGroup

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

func NewEngine(opts EngineOptions) *Engine {
	cache := opts.Cache
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		renderer: opts.Renderer,
		cache:    cache,
		debounce: newDebouncer(opts.Scheduler, opts.Debounce),
		log:      log,
		status:   StatusIdle,
		subs:     map[int]func(Snapshot){},
	}
}

// RequestPreview asks for a render of rawData as qrType styled by cfg.
// Empty data clears the surface. The first request on a fresh surface goes
// out at once; later ones are debounced.
func (e *Engine) RequestPreview(rawData map[string]any, qrType string, cfg *design.Config, opts Options) {
	if IsEmptyData(rawData) {
		e.clear()
		return
	}

	req, err := BuildRequest(rawData, qrType, cfg, opts)
	if err != nil {
		e.log.Warn("preview: build request", "error", err)
		e.fail(err)
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.last = &req
	e.pending++
	pending := e.pending
	fresh := e.artifact == "" && e.errMsg == ""
	e.mu.Unlock()

	if fresh {
		e.debounce.Stop()
		e.fire(req, false, pending)
		return
	}
	e.debounce.Schedule(func() { e.fire(req, false, pending) })
}

// Refresh re-issues the last request, skipping both the debounce and the cache.
func (e *Engine) Refresh() {
	e.mu.Lock()
	last := e.last
	e.mu.Unlock()
	if last == nil {
		return
	}
	e.debounce.Stop()
	e.fire(*last, true, 0)
}

// fire starts req. A non-zero pending ties the call to the request that
// scheduled it; if anything newer happened since, the call is dropped.
func (e *Engine) fire(req Request, bypassCache bool, pending uint64) {
	e.mu.Lock()
	if e.closed || (pending != 0 && pending != e.pending) {
		e.mu.Unlock()
		return
	}

	if !bypassCache {
		if artifact, ok := e.cache.Get(req.Hash); ok {
			e.inflight.Cancel()
			e.gen++
			e.status = StatusDisplayed
			e.artifact = artifact
			e.errMsg = ""
			e.hash = req.Hash
			snap := e.snapshotLocked()
			e.mu.Unlock()
			e.log.Debug("preview: cache hit", "hash", req.Hash)
			e.notify(snap)
			return
		}
	}

	ctx := e.inflight.Next()
	e.gen++
	gen := e.gen
	e.status = StatusLoading
	e.hash = req.Hash
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	e.log.Debug("preview: request", "hash", req.Hash, "type", req.Type)
	e.running.Add(1)
	go e.run(ctx, gen, req)
}

func (e *Engine) run(ctx context.Context, gen uint64, req Request) {
	defer e.running.Done()

	var artifact string
	body, err := e.renderer.Render(ctx, req)
	if err == nil {
		artifact, err = ParseArtifact(body)
	}

	e.mu.Lock()
	if gen != e.gen || e.closed || ctx.Err() != nil {
		e.mu.Unlock()
		e.log.Debug("preview: dropped superseded result", "hash", req.Hash)
		return
	}
	e.inflight.Cancel()

	if err != nil {
		e.status = StatusErrored
		e.errMsg = errorMessage(err)
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.log.Warn("preview: render failed", "hash", req.Hash, "error", err)
		e.notify(snap)
		return
	}

	e.cache.Put(req.Hash, artifact)
	e.status = StatusDisplayed
	e.artifact = artifact
	e.errMsg = ""
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func errorMessage(err error) string {
	if errors.Is(err, ErrMalformedArtifact) || errors.Is(err, ErrEmptyArtifact) {
		return msgMalformed
	}
	return msgUnavailable
}

func (e *Engine) fail(err error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.inflight.Cancel()
	e.gen++
	e.pending++
	e.status = StatusErrored
	e.errMsg = errorMessage(err)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// clear drops the displayed artifact and any pending or in-flight work.
func (e *Engine) clear() {
	e.debounce.Stop()
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.inflight.Cancel()
	e.gen++
	e.pending++
	e.status = StatusIdle
	e.artifact = ""
	e.errMsg = ""
	e.hash = ""
	e.last = nil
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// Close tears the surface down: pending timers are stopped, the in-flight
// request is canceled and no further updates are delivered.
func (e *Engine) Close() {
	e.debounce.Stop()
	e.mu.Lock()
	e.closed = true
	e.inflight.Cancel()
	e.gen++
	e.pending++
	e.mu.Unlock()

	e.subMu.Lock()
	e.subs = map[int]func(Snapshot){}
	e.subMu.Unlock()
}

// Wait blocks until every started render has finished and been applied or
// dropped.
func (e *Engine) Wait() {
	e.running.Wait()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Status:   e.status,
		Artifact: e.artifact,
		Error:    e.errMsg,
		Hash:     e.hash,
	}
}

// Artifact returns the last displayed artifact, if any.
func (e *Engine) Artifact() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.artifact, e.artifact != ""
}

// DataURI returns the current artifact as an embeddable data URI, or "".
func (e *Engine) DataURI() string {
	artifact, _ := e.Artifact()
	return DataURI(artifact)
}

// Subscribe registers fn for snapshot changes. fn may be called from the
// goroutine that completes a render.
func (e *Engine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify(snap Snapshot) {
	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
