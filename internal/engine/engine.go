/*
 * Copyright (c) 2026 elpescado.
 * This software is part of the Reamp Player project.
 * This code is provided "as is", without warranty of any kind.
 */

package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elpescado/reamp-player/internal/event"
	"github.com/elpescado/reamp-player/pkg/spec"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

var (
	ErrNoTracks         = errors.New("no tracks configured")
	ErrTrackRange       = errors.New("track index out of range")
	ErrTrackUnavailable = errors.New("track buffer not loaded")
)

// BufferTable is the engine's read view of the decoded-buffer table
// the loader fills. A nil slot means the track is not playable yet.
type BufferTable interface {
	Count() int
	Buffer(i int) *beep.Buffer
}

// session holds the per-track runtime audio handles. It exists only
// while playing and is rebuilt from the buffer table on every Play.
type session struct {
	gains   []*effects.Volume
	mixer   *beep.Mixer
	longest int
}

// Engine owns the current-track index and the Idle/Playing state
// machine. All renditions run through one mixer started at session
// time zero; exactly one gain stage is audible at any instant.
type Engine struct {
	mu sync.Mutex

	table BufferTable
	out   Output
	em    *event.Emitter

	current int
	playing bool
	session *session
	inited  bool
}

func New(table BufferTable, out Output, em *event.Emitter) *Engine {
	return &Engine{table: table, out: out, em: em}
}

// CurrentTrack returns the audible track index. It persists across
// play/stop cycles.
func (e *Engine) CurrentTrack() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Playing reports whether a session is active.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Play builds a fresh session and starts every rendition at once.
// Calling it while playing is a no-op. A missing buffer is a refused
// precondition, not a broken graph.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		return nil
	}

	n := e.table.Count()
	if n == 0 {
		return ErrNoTracks
	}

	bufs := make([]*beep.Buffer, n)
	longest := 0
	for i := 0; i < n; i++ {
		b := e.table.Buffer(i)
		if b == nil {
			return fmt.Errorf("track %d: %w", i, ErrTrackUnavailable)
		}
		bufs[i] = b
		if b.Len() > bufs[longest].Len() {
			longest = i
		}
	}

	if !e.inited {
		sr := beep.SampleRate(spec.SampleRate)
		if err := e.out.Init(sr, sr.N(100*time.Millisecond)); err != nil {
			return err
		}
		e.inited = true
	}

	s := &session{
		gains:   make([]*effects.Volume, n),
		mixer:   &beep.Mixer{},
		longest: longest,
	}
	for i := range bufs {
		vol := &effects.Volume{
			Streamer: bufs[i].Streamer(0, bufs[i].Len()),
			Base:     2,
			Volume:   0,
			Silent:   i != e.current,
		}
		s.gains[i] = vol

		if i == longest {
			// The longest rendition is the completion signal: when it
			// drains, every synchronized source has drained. The
			// callback fires inside the output's pull loop, so the
			// teardown must hop goroutines before it can Clear.
			s.mixer.Play(beep.Seq(vol, beep.Callback(func() {
				go e.onEnded(s)
			})))
		} else {
			s.mixer.Play(vol)
		}
	}

	e.session = s
	e.playing = true
	e.out.Play(s.mixer)

	e.em.Emit(event.Event{Type: event.Started, Index: e.current})
	return nil
}

// Stop tears the session down. Calling it while idle is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	e.teardown()
}

// SelectTrack updates the audible track. While playing the gain flip
// is immediate: previous muted, new unmuted, under the output lock.
// Exactly one TrackChanged is emitted per call, playing or not, even
// when the index does not change.
func (e *Engine) SelectTrack(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i < 0 || i >= e.table.Count() {
		return ErrTrackRange
	}

	prev := e.current
	e.current = i

	if e.playing && e.session != nil && i != prev {
		e.out.Lock()
		e.session.gains[prev].Silent = true
		e.session.gains[i].Silent = false
		e.out.Unlock()
	}

	e.em.Emit(event.Event{Type: event.TrackChanged, Index: i})
	return nil
}

// onEnded handles natural completion of the monitored rendition. It
// runs the same teardown as Stop so no session handles go stale.
func (e *Engine) onEnded(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing || e.session != s {
		// a Stop or a newer session already won
		return
	}
	e.teardown()
}

// teardown is the single exit path from Playing. Caller holds e.mu.
func (e *Engine) teardown() {
	e.out.Clear()
	e.session = nil
	e.playing = false
	e.em.Emit(event.Event{Type: event.Stopped, Index: e.current})
}
