package codec

import (
	"bytes"
	"fmt"

	"github.com/faiface/beep"
	"github.com/go-audio/wav"
)

type wavDecoder struct{}

func (wavDecoder) Decode(data []byte) (*beep.Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("wav decode: empty pcm")
	}

	ch := buf.Format.NumChannels
	if ch != 1 && ch != 2 {
		return nil, fmt.Errorf("wav decode: %d channels not supported", ch)
	}

	scale := float64(int64(1) << (dec.BitDepth - 1))
	frames := len(buf.Data) / ch
	samples := make([][2]float64, frames)
	for i := 0; i < frames; i++ {
		l := float64(buf.Data[i*ch]) / scale
		r := l
		if ch == 2 {
			r = float64(buf.Data[i*ch+1]) / scale
		}
		samples[i] = [2]float64{l, r}
	}

	return toHouse(&pcmStreamer{samples: samples}, beep.SampleRate(buf.Format.SampleRate)), nil
}
