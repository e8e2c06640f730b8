package codec

import (
	"fmt"

	"github.com/elpescado/reamp-player/pkg/spec"

	"github.com/faiface/beep"
)

// HouseFormat is the format every decoded buffer is normalized to.
// All renditions of a performance must share one clock or synchronized
// playback drifts.
func HouseFormat() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(spec.SampleRate),
		NumChannels: spec.Channels,
		Precision:   2,
	}
}

// Decoder turns raw fetched bytes into a decoded buffer at house rate.
type Decoder interface {
	Decode(data []byte) (*beep.Buffer, error)
}

// Registry maps MIME types to decoders. CanPlay doubles as the host
// capability probe the loader consults before choosing a source URI.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry builds the default registry. audio/mp4 is deliberately
// absent: there is no AAC decoder in the stack, so the probe reports
// it unplayable and the loader falls through to the next source.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(spec.MimeWAV, wavDecoder{})
	r.Register(spec.MimeMP3, mp3Decoder{})
	r.Register(spec.MimeOGG, vorbisDecoder{})
	r.Register(spec.MimeFLAC, flacDecoder{})
	r.Register(spec.MimeSealed, sealedDecoder{})
	return r
}

func (r *Registry) Register(mime string, d Decoder) {
	r.decoders[mime] = d
}

func (r *Registry) CanPlay(mime string) bool {
	_, ok := r.decoders[mime]
	return ok
}

func (r *Registry) Decode(mime string, data []byte) (*beep.Buffer, error) {
	d, ok := r.decoders[mime]
	if !ok {
		return nil, fmt.Errorf("no decoder for %q", mime)
	}
	return d.Decode(data)
}
