package event

import "sync"

// Type identifies a player event. The set is closed: handlers register
// against a known kind, never against an arbitrary string.
type Type int

const (
	TrackLoaded Type = iota // a track's decoded buffer became available
	TrackFailed             // a track load ended without a usable buffer
	TrackChanged            // the audible track index changed
	Started                 // a playback session was built and started
	Stopped                 // the session was torn down (stop or natural end)
)

func (t Type) String() string {
	switch t {
	case TrackLoaded:
		return "track_loaded"
	case TrackFailed:
		return "track_failed"
	case TrackChanged:
		return "track_changed"
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event carries the event kind plus the track index it concerns.
// Err is set only for TrackFailed.
type Event struct {
	Type  Type
	Index int
	Err   error
}

type Handler func(Event)

// Emitter dispatches events to handlers in registration order.
// Components hold an Emitter by value reference, they do not inherit
// from it. The zero value is ready to use.
type Emitter struct {
	mu       sync.Mutex
	handlers map[Type][]Handler
}

func (e *Emitter) On(t Type, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[Type][]Handler)
	}
	e.handlers[t] = append(e.handlers[t], h)
}

// Emit calls every handler registered for ev.Type, synchronously and
// in registration order. Handlers run without the emitter lock held.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	hs := e.handlers[ev.Type]
	e.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}
