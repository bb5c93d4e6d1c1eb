package jobs

import "testing"

// TestEventBusSince verifies incremental event reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(3)
	bus.Publish(Event{Type: EventTypeStatus, Message: "1"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "2"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "3"})

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Type: EventTypeResult, TranslatedText: "1"})
	bus.Publish(Event{Type: EventTypeResult, TranslatedText: "2"})
	bus.Publish(Event{Type: EventTypeResult, TranslatedText: "3"})

	events := bus.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].TranslatedText != "2" || events[1].TranslatedText != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestEventBusLast finds the newest event of a type.
func TestEventBusLast(t *testing.T) {
	bus := NewEventBus(10)
	if _, ok := bus.Last(EventTypeResult); ok {
		t.Fatal("expected no result on empty bus")
	}

	bus.Publish(Event{Type: EventTypeResult, TranslatedText: "old"})
	bus.Publish(Event{Type: EventTypeStatus})
	bus.Publish(Event{Type: EventTypeResult, TranslatedText: "new"})
	bus.Publish(Event{Type: EventTypeError})

	got, ok := bus.Last(EventTypeResult)
	if !ok || got.TranslatedText != "new" {
		t.Fatalf("Last() = %+v,%v, want new result", got, ok)
	}
}
