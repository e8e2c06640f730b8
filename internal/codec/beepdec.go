package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
)

// Compressed formats decode through the beep family of decoders and
// get resampled to house rate on the way into the buffer.

type mp3Decoder struct{}

func (mp3Decoder) Decode(data []byte) (*beep.Buffer, error) {
	s, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}
	defer s.Close()
	return toHouse(s, format.SampleRate), nil
}

type vorbisDecoder struct{}

func (vorbisDecoder) Decode(data []byte) (*beep.Buffer, error) {
	s, format, err := vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("vorbis decode: %w", err)
	}
	defer s.Close()
	return toHouse(s, format.SampleRate), nil
}

type flacDecoder struct{}

func (flacDecoder) Decode(data []byte) (*beep.Buffer, error) {
	s, format, err := flac.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flac decode: %w", err)
	}
	defer s.Close()
	return toHouse(s, format.SampleRate), nil
}
