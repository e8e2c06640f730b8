package codec

import "github.com/faiface/beep"

// pcmStreamer streams an in-memory slice of stereo samples once.
type pcmStreamer struct {
	samples [][2]float64
	pos     int
}

func (p *pcmStreamer) Stream(out [][2]float64) (int, bool) {
	if p.pos >= len(p.samples) {
		return 0, false
	}
	n := copy(out, p.samples[p.pos:])
	p.pos += n
	return n, true
}

func (p *pcmStreamer) Err() error { return nil }

// toHouse drains a streamer into a fresh buffer at house rate,
// resampling when the source clock differs.
func toHouse(s beep.Streamer, sr beep.SampleRate) *beep.Buffer {
	house := HouseFormat()
	if sr != house.SampleRate {
		s = beep.Resample(4, sr, house.SampleRate, s)
	}
	buf := beep.NewBuffer(house)
	buf.Append(s)
	return buf
}
