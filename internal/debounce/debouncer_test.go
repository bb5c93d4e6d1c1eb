package debounce

import (
	"sync"
	"testing"
	"time"
)

// recorder collects debouncer output for assertions.
type recorder struct {
	mu     sync.Mutex
	fires  []string
	gens   []uint64
	clears int
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		Fire: func(text string, gen uint64) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.fires = append(r.fires, text)
			r.gens = append(r.gens, gen)
		},
		Clear: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.clears++
		},
	}
}

func (r *recorder) snapshot() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fires...), r.clears
}

// TestDebouncerCoalescesRapidNotifies verifies only the last text fires.
func TestDebouncerCoalescesRapidNotifies(t *testing.T) {
	rec := &recorder{}
	d := New(40*time.Millisecond, rec.handlers())

	d.Notify("H")
	d.Notify("He")
	d.Notify("Hello world")

	time.Sleep(150 * time.Millisecond)
	fires, clears := rec.snapshot()
	if len(fires) != 1 || fires[0] != "Hello world" {
		t.Fatalf("fires = %v, want [Hello world]", fires)
	}
	if clears != 0 {
		t.Fatalf("clears = %d, want 0", clears)
	}
	if d.Pending() {
		t.Fatal("expected no pending fire after expiry")
	}
}

// TestDebouncerBlankTextClears checks blank input never fires.
func TestDebouncerBlankTextClears(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		rec := &recorder{}
		d := New(20*time.Millisecond, rec.handlers())

		d.Notify("pending text")
		d.Notify(text)

		time.Sleep(80 * time.Millisecond)
		fires, clears := rec.snapshot()
		if len(fires) != 0 {
			t.Fatalf("Notify(%q) fires = %v, want none", text, fires)
		}
		if clears != 1 {
			t.Fatalf("Notify(%q) clears = %d, want 1", text, clears)
		}
	}
}

// TestDebouncerCancel verifies a cancelled timer never emits.
func TestDebouncerCancel(t *testing.T) {
	rec := &recorder{}
	d := New(30*time.Millisecond, rec.handlers())

	d.Notify("Bonjour")
	if !d.Pending() {
		t.Fatal("expected pending fire after notify")
	}
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	fires, _ := rec.snapshot()
	if len(fires) != 0 {
		t.Fatalf("fires = %v, want none", fires)
	}
}

// TestDebouncerFiresAgainAfterPause checks separate windows fire separately.
func TestDebouncerFiresAgainAfterPause(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.handlers())

	d.Notify("first")
	time.Sleep(80 * time.Millisecond)
	d.Notify("second")
	time.Sleep(80 * time.Millisecond)

	fires, _ := rec.snapshot()
	if len(fires) != 2 || fires[0] != "first" || fires[1] != "second" {
		t.Fatalf("fires = %v, want [first second]", fires)
	}
}

// TestDebouncerManyNotifies makes sure a burst produces one fire.
func TestDebouncerManyNotifies(t *testing.T) {
	rec := &recorder{}
	d := New(30*time.Millisecond, rec.handlers())

	for i := 0; i < 500; i++ {
		d.Notify("typing")
	}
	d.Notify("final")

	time.Sleep(120 * time.Millisecond)
	fires, _ := rec.snapshot()
	if len(fires) != 1 || fires[0] != "final" {
		t.Fatalf("fires = %v, want [final]", fires)
	}
}

// TestDebouncerFireCarriesGeneration checks Fire reports the arming Notify's generation.
func TestDebouncerFireCarriesGeneration(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.handlers())

	first := d.Notify("a")
	last := d.Notify("ab")
	if last <= first {
		t.Fatalf("generations %d then %d, want increasing", first, last)
	}

	time.Sleep(80 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.gens) != 1 || rec.gens[0] != last {
		t.Fatalf("gens = %v, want [%d]", rec.gens, last)
	}
}
