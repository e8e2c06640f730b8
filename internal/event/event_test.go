package event

import (
	"errors"
	"testing"
)

func TestEmitter_OrderedDispatch(t *testing.T) {
	var em Emitter
	var got []int

	em.On(TrackChanged, func(ev Event) { got = append(got, 1) })
	em.On(TrackChanged, func(ev Event) { got = append(got, 2) })
	em.On(TrackChanged, func(ev Event) { got = append(got, 3) })

	em.Emit(Event{Type: TrackChanged, Index: 0})

	if len(got) != 3 {
		t.Fatalf("handler calls = %d, want 3", len(got))
	}
	for i, v := range got {
		if v != i+1 {
			t.Errorf("call order %v, want [1 2 3]", got)
			break
		}
	}
}

func TestEmitter_OnlyMatchingKind(t *testing.T) {
	var em Emitter
	loaded, changed := 0, 0

	em.On(TrackLoaded, func(ev Event) { loaded++ })
	em.On(TrackChanged, func(ev Event) { changed++ })

	em.Emit(Event{Type: TrackLoaded, Index: 2})

	if loaded != 1 || changed != 0 {
		t.Errorf("loaded=%d changed=%d, want 1 and 0", loaded, changed)
	}
}

func TestEmitter_NoHandlers(t *testing.T) {
	var em Emitter
	// must not panic
	em.Emit(Event{Type: Stopped})
}

func TestEmitter_PayloadPassedThrough(t *testing.T) {
	var em Emitter
	errBoom := errors.New("boom")
	var got Event

	em.On(TrackFailed, func(ev Event) { got = ev })
	em.Emit(Event{Type: TrackFailed, Index: 4, Err: errBoom})

	if got.Index != 4 || !errors.Is(got.Err, errBoom) {
		t.Errorf("got %+v, want index 4 with boom", got)
	}
}

func TestType_String(t *testing.T) {
	if TrackChanged.String() != "track_changed" {
		t.Errorf("TrackChanged.String() = %q", TrackChanged.String())
	}
	if Type(99).String() != "unknown" {
		t.Errorf("unknown type should stringify as unknown")
	}
}
