// Package debounce coalesces rapid text input into a single delayed fire.
package debounce

import (
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
)

// DefaultDelay is the pause after the last keystroke before firing.
const DefaultDelay = 1000 * time.Millisecond

// Handlers receives debouncer output. Fire runs on a timer goroutine and
// receives the generation returned by the Notify call that armed it.
type Handlers struct {
	Fire  func(text string, gen uint64)
	Clear func()
}

// Debouncer delays Fire until Notify calls pause for the configured delay.
type Debouncer struct {
	debounced func(f func())
	handlers  Handlers

	mu      sync.Mutex
	gen     uint64
	pending bool
}

// New creates a debouncer; a non-positive delay uses DefaultDelay.
func New(delay time.Duration, handlers Handlers) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		debounced: debounce.New(delay),
		handlers:  handlers,
	}
}

// Notify records text, re-arms the timer and returns the new generation.
// Blank text clears immediately. The timer is re-armed under mu so concurrent
// callers cannot reorder it.
func (d *Debouncer) Notify(text string) uint64 {
	d.mu.Lock()
	d.gen++
	gen := d.gen

	if strings.TrimSpace(text) == "" {
		d.pending = false
		d.debounced(noop)
		d.mu.Unlock()
		if d.handlers.Clear != nil {
			d.handlers.Clear()
		}
		return gen
	}

	d.pending = true
	defer d.mu.Unlock()

	d.debounced(func() {
		d.mu.Lock()
		if d.gen != gen || !d.pending {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.mu.Unlock()

		if d.handlers.Fire != nil {
			d.handlers.Fire(text, gen)
		}
	})
	return gen
}

// Cancel discards any pending fire without emitting.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.pending = false
	d.debounced(noop)
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func noop() {}
