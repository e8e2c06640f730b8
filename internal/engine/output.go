package engine

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the consumed audio-graph surface. The speaker implements
// it in production; tests drive a recording fake.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	// Lock/Unlock bracket mutation of streamers the output is
	// currently pulling from.
	Lock()
	Unlock()
}

// SpeakerOutput routes the session to the default speaker.
type SpeakerOutput struct{}

func (SpeakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (SpeakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (SpeakerOutput) Clear()               { speaker.Clear() }
func (SpeakerOutput) Lock()                { speaker.Lock() }
func (SpeakerOutput) Unlock()              { speaker.Unlock() }
