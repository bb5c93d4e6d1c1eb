package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle is the cancellation token of one in-flight translation job.
type Handle struct {
	id     string
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// ID returns the job identifier bound to the handle.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Context is cancelled as soon as the handle is superseded or ended.
func (h *Handle) Context() context.Context {
	return h.ctx
}

// Guard keeps at most one Handle active; Begin supersedes the previous one.
type Guard struct {
	mu     sync.Mutex
	seq    uint64
	active *Handle
}

// NewGuard creates a guard with no active handle.
func NewGuard() *Guard {
	return &Guard{}
}

// Begin cancels the active handle, if any, and returns a new active handle.
func (g *Guard) Begin(parent context.Context) *Handle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active != nil {
		g.active.cancel()
	}
	g.seq++
	h := &Handle{
		id:     uuid.NewString(),
		seq:    g.seq,
		ctx:    ctx,
		cancel: cancel,
	}
	g.active = h
	return h
}

// IsCancelled reports whether h was superseded, ended, or its context closed.
func (g *Guard) IsCancelled(h *Handle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.isActive(h)
}

// IsActive reports whether h is the current handle.
func (g *Guard) IsActive(h *Handle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isActive(h)
}

// Commit runs fn only while h is still active. Begin and Cancel block until fn returns.
func (g *Guard) Commit(h *Handle, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isActive(h) {
		return false
	}
	fn()
	return true
}

// End releases h if it is still active; superseded handles are a no-op.
func (g *Guard) End(h *Handle) bool {
	if h == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	h.cancel()
	if g.active != h {
		return false
	}
	g.active = nil
	return true
}

// Cancel invalidates the active handle and reports whether one existed.
func (g *Guard) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		return false
	}
	g.active.cancel()
	g.active = nil
	return true
}

// Active returns the active handle or nil.
func (g *Guard) Active() *Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Guard) isActive(h *Handle) bool {
	return h != nil && g.active == h && h.ctx.Err() == nil
}
