package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/elpescado/reamp-player/internal/event"

	"github.com/faiface/beep"
)

type fakeOutput struct {
	mu       sync.Mutex
	inited   bool
	streamer beep.Streamer
	plays    int
	clears   int
}

func (f *fakeOutput) Init(sr beep.SampleRate, bufferSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = true
	return nil
}

func (f *fakeOutput) Play(s beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamer = s
	f.plays++
}

func (f *fakeOutput) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamer = nil
	f.clears++
}

func (f *fakeOutput) Lock()   {}
func (f *fakeOutput) Unlock() {}

func (f *fakeOutput) current() beep.Streamer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamer
}

func (f *fakeOutput) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays
}

type fakeTable struct {
	bufs []*beep.Buffer
}

func (t *fakeTable) Count() int                { return len(t.bufs) }
func (t *fakeTable) Buffer(i int) *beep.Buffer { return t.bufs[i] }

func makeBuffer(frames int) *beep.Buffer {
	format := beep.Format{SampleRate: 48000, NumChannels: 2, Precision: 2}
	b := beep.NewBuffer(format)
	b.Append(beep.Silence(frames))
	return b
}

func newTestEngine(frames ...int) (*Engine, *fakeOutput, *event.Emitter) {
	bufs := make([]*beep.Buffer, len(frames))
	for i, n := range frames {
		if n >= 0 {
			bufs[i] = makeBuffer(n)
		}
	}
	out := &fakeOutput{}
	em := &event.Emitter{}
	return New(&fakeTable{bufs: bufs}, out, em), out, em
}

func TestPlayStop_LeavesNoSession(t *testing.T) {
	e, out, _ := newTestEngine(1000, 1000)

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !e.Playing() {
		t.Fatal("not playing after Play")
	}

	e.Stop()

	if e.Playing() {
		t.Error("still playing after Stop")
	}
	if e.session != nil {
		t.Error("session retained after Stop")
	}
	if out.clears != 1 {
		t.Errorf("clears = %d, want 1", out.clears)
	}
	if out.streamer != nil {
		t.Error("output still holds a streamer")
	}
}

func TestPlay_Idempotent(t *testing.T) {
	e, out, _ := newTestEngine(1000)

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	first := e.session

	if err := e.Play(); err != nil {
		t.Fatalf("second Play: %v", err)
	}
	if out.plays != 1 {
		t.Errorf("plays = %d, want 1", out.plays)
	}
	if e.session != first {
		t.Error("second Play replaced the session")
	}
}

func TestPlay_MissingBufferRefused(t *testing.T) {
	e, out, _ := newTestEngine(1000, -1) // slot 1 never loaded

	err := e.Play()
	if !errors.Is(err, ErrTrackUnavailable) {
		t.Fatalf("err = %v, want ErrTrackUnavailable", err)
	}
	if e.Playing() {
		t.Error("engine playing after refused Play")
	}
	if out.plays != 0 {
		t.Error("output received a session")
	}
}

func TestPlay_NoTracks(t *testing.T) {
	e, _, _ := newTestEngine()
	if !errors.Is(e.Play(), ErrNoTracks) {
		t.Error("want ErrNoTracks")
	}
}

func TestStop_WhenIdleIsNoop(t *testing.T) {
	e, out, _ := newTestEngine(100)
	e.Stop()
	if out.clears != 0 {
		t.Error("Stop while idle touched the output")
	}
}

// activeGains returns which sessions gains are audible.
func activeGains(e *Engine) []bool {
	out := make([]bool, len(e.session.gains))
	for i, g := range e.session.gains {
		out[i] = !g.Silent
	}
	return out
}

func TestPlay_GainLayout(t *testing.T) {
	e, _, _ := newTestEngine(1000, 1000, 1000)
	if err := e.SelectTrack(1); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	got := activeGains(e)
	want := []bool{false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gains = %v, want %v", got, want)
		}
	}
}

func TestSelectTrack_FlipsGainsWhilePlaying(t *testing.T) {
	e, _, _ := newTestEngine(1000, 1000)
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	if err := e.SelectTrack(1); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}

	got := activeGains(e)
	if got[0] || !got[1] {
		t.Errorf("gains = %v, want [false true]", got)
	}

	// invariant: exactly one audible gain at any instant
	count := 0
	for _, a := range got {
		if a {
			count++
		}
	}
	if count != 1 {
		t.Errorf("audible gains = %d, want 1", count)
	}
}

func TestSelectTrack_AlwaysEmitsExactlyOnce(t *testing.T) {
	e, _, em := newTestEngine(1000, 1000)

	var events []event.Event
	em.On(event.TrackChanged, func(ev event.Event) { events = append(events, ev) })

	// idle
	if err := e.SelectTrack(1); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}
	// idle, unchanged index
	if err := e.SelectTrack(1); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}
	// playing
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := e.SelectTrack(0); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("TrackChanged count = %d, want 3", len(events))
	}
	wantIdx := []int{1, 1, 0}
	for i, ev := range events {
		if ev.Index != wantIdx[i] {
			t.Errorf("event %d index = %d, want %d", i, ev.Index, wantIdx[i])
		}
	}
}

func TestSelectTrack_OutOfRange(t *testing.T) {
	e, _, em := newTestEngine(1000)

	emitted := 0
	em.On(event.TrackChanged, func(event.Event) { emitted++ })

	if !errors.Is(e.SelectTrack(5), ErrTrackRange) {
		t.Error("want ErrTrackRange")
	}
	if !errors.Is(e.SelectTrack(-1), ErrTrackRange) {
		t.Error("want ErrTrackRange")
	}
	if emitted != 0 {
		t.Error("out of range select emitted TrackChanged")
	}
	if e.CurrentTrack() != 0 {
		t.Error("out of range select moved the index")
	}
}

func TestCurrentTrack_PersistsAcrossStop(t *testing.T) {
	e, _, _ := newTestEngine(1000, 1000)

	if err := e.SelectTrack(1); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	e.Stop()

	if e.CurrentTrack() != 1 {
		t.Errorf("current = %d, want 1", e.CurrentTrack())
	}
}

func TestNaturalEnd_TearsDownLikeStop(t *testing.T) {
	e, out, em := newTestEngine(2000, 500)

	stopped := make(chan struct{}, 1)
	em.On(event.Stopped, func(event.Event) { stopped <- struct{}{} })

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// drain the session past the longest rendition; the mixer keeps
	// streaming silence, the end callback fires on the way
	s := out.current()
	chunk := make([][2]float64, 512)
	for i := 0; i < 8; i++ {
		s.Stream(chunk)
	}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("no Stopped event after natural end")
	}

	deadline := time.Now().Add(2 * time.Second)
	for e.Playing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if e.Playing() {
		t.Fatal("still playing after natural end")
	}

	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess != nil {
		t.Error("session retained after natural end")
	}

	// engine must be restartable after a natural end
	if err := e.Play(); err != nil {
		t.Fatalf("Play after natural end: %v", err)
	}
	if out.playCount() != 2 {
		t.Errorf("plays = %d, want 2", out.playCount())
	}
}

func TestScenario_TwoRenditions(t *testing.T) {
	// two loaded tracks: play, verify gain layout, switch, verify flip
	e, out, em := newTestEngine(4800, 4800)

	var changed []int
	em.On(event.TrackChanged, func(ev event.Event) { changed = append(changed, ev.Index) })

	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !out.inited {
		t.Error("output never initialized")
	}
	if got := activeGains(e); !got[0] || got[1] {
		t.Errorf("gains = %v, want [true false]", got)
	}

	if err := e.SelectTrack(1); err != nil {
		t.Fatalf("SelectTrack: %v", err)
	}
	if got := activeGains(e); got[0] || !got[1] {
		t.Errorf("gains = %v, want [false true]", got)
	}
	if len(changed) != 1 || changed[0] != 1 {
		t.Errorf("TrackChanged = %v, want [1]", changed)
	}
}
