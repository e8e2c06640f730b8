package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/elpescado/reamp-player/internal/event"
	"github.com/elpescado/reamp-player/internal/manifest"
	"github.com/elpescado/reamp-player/pkg/spec"

	"github.com/faiface/beep"
)

// ErrNoSupportedSource means a track declares no source the host can
// decode and no wav default either.
var ErrNoSupportedSource = errors.New("no supported source")

// State is a track slot's load state.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailReason classifies why a track ended up Failed.
type FailReason int

const (
	ReasonNone FailReason = iota
	ReasonNoSupportedSource
	ReasonFetchFailed
	ReasonDecodeFailed
)

func (r FailReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNoSupportedSource:
		return "no_supported_source"
	case ReasonFetchFailed:
		return "fetch_failed"
	case ReasonDecodeFailed:
		return "decode_failed"
	default:
		return "unknown"
	}
}

// Status is the per-track load outcome. A failed track stays failed
// and never corrupts playback of its neighbors.
type Status struct {
	State  State
	Reason FailReason
	Err    error
	Mime   string
	URI    string
}

// DecodeService is the consumed host decode/capability surface.
// *codec.Registry satisfies it.
type DecodeService interface {
	CanPlay(mime string) bool
	Decode(mime string, data []byte) (*beep.Buffer, error)
}

// SelectSource picks the URI to load for a track. Pure function of the
// track and the capability probe:
//
//  1. fixed preference order mp4 > ogg > mp3, first declared AND playable
//  2. the track's own declaration order, first playable
//  3. the declared wav source as a last resort
func SelectSource(t manifest.Track, canPlay func(mime string) bool) (mime, uri string, err error) {
	for _, m := range spec.PreferredMimes {
		if u, ok := t.SourceFor(m); ok && canPlay(m) {
			return m, u, nil
		}
	}
	for _, s := range t.Sources {
		if canPlay(s.Mime) {
			return s.Mime, s.URI, nil
		}
	}
	if u, ok := t.SourceFor(spec.MimeWAV); ok {
		return spec.MimeWAV, u, nil
	}
	return "", "", ErrNoSupportedSource
}

// Loader fills the decoded-buffer table, one slot per configured
// track, and reports completions through the emitter.
type Loader struct {
	fetch Fetcher
	dec   DecodeService
	em    *event.Emitter

	mu      sync.Mutex
	tracks  []manifest.Track
	buffers []*beep.Buffer
	status  []Status
}

func New(tracks []manifest.Track, f Fetcher, dec DecodeService, em *event.Emitter) *Loader {
	return &Loader{
		fetch:   f,
		dec:     dec,
		em:      em,
		tracks:  tracks,
		buffers: make([]*beep.Buffer, len(tracks)),
		status:  make([]Status, len(tracks)),
	}
}

// Count returns the number of configured tracks.
func (l *Loader) Count() int { return len(l.tracks) }

// Track returns the immutable config for a slot.
func (l *Loader) Track(i int) manifest.Track { return l.tracks[i] }

// Buffer returns the decoded buffer for a slot, nil while absent.
func (l *Loader) Buffer(i int) *beep.Buffer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.buffers) {
		return nil
	}
	return l.buffers[i]
}

// Status returns the load status for a slot.
func (l *Loader) Status(i int) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.status) {
		return Status{}
	}
	return l.status[i]
}

// Ready reports whether every slot holds a decoded buffer.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buffers {
		if b == nil {
			return false
		}
	}
	return len(l.buffers) > 0
}

// LoadAll loads every track concurrently and returns when all slots
// settled, Ready or Failed.
func (l *Loader) LoadAll(ctx context.Context) {
	var wg sync.WaitGroup
	for i := range l.tracks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Load(ctx, i)
		}(i)
	}
	wg.Wait()
}

// Load fetches and decodes one track. A later load for the same slot
// overwrites the previous buffer.
func (l *Loader) Load(ctx context.Context, i int) {
	if i < 0 || i >= len(l.tracks) {
		return
	}
	track := l.tracks[i]

	mime, uri, err := SelectSource(track, l.dec.CanPlay)
	if err != nil {
		l.fail(i, ReasonNoSupportedSource, Status{}, err)
		return
	}
	picked := Status{Mime: mime, URI: uri}

	raw, err := l.fetch.Fetch(ctx, uri)
	if err != nil {
		l.fail(i, ReasonFetchFailed, picked, fmt.Errorf("fetch %s: %w", uri, err))
		return
	}

	buf, err := l.dec.Decode(mime, raw)
	if err != nil {
		l.fail(i, ReasonDecodeFailed, picked, fmt.Errorf("decode %s: %w", uri, err))
		return
	}

	l.mu.Lock()
	l.buffers[i] = buf
	l.status[i] = Status{State: Ready, Mime: mime, URI: uri}
	l.mu.Unlock()

	l.em.Emit(event.Event{Type: event.TrackLoaded, Index: i})
}

func (l *Loader) fail(i int, reason FailReason, picked Status, err error) {
	l.mu.Lock()
	l.status[i] = Status{State: Failed, Reason: reason, Err: err, Mime: picked.Mime, URI: picked.URI}
	l.mu.Unlock()

	l.em.Emit(event.Event{Type: event.TrackFailed, Index: i, Err: err})
}
