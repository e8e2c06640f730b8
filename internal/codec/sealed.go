package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elpescado/reamp-player/internal/security"
	"github.com/elpescado/reamp-player/pkg/spec"

	"github.com/faiface/beep"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hraban/opus"
)

// Sealed assets (.rmp) carry one rendition as length-prefixed,
// AES-GCM encrypted opus frames between tag sections:
//
//	"REAMPA01" | KEYS <locker> | AUDI <frames> | META <json>
//
// The KEYS payload holds the asset password wrapped under the master
// key, so a sealed asset is self-contained.

// SealedMeta is the trailing descriptor written by the packer.
type SealedMeta struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Frames   int     `json:"frames"`
}

type sealedDecoder struct{}

func (sealedDecoder) Decode(data []byte) (*beep.Buffer, error) {
	buf, _, err := DecodeSealed(data)
	return buf, err
}

// DecodeSealed opens a sealed asset and decodes it into a buffer at
// house rate. Sealed audio is always 48 kHz stereo, no resample runs.
func DecodeSealed(data []byte) (*beep.Buffer, SealedMeta, error) {
	var meta SealedMeta

	if len(data) < len(spec.SealedMagic) || string(data[:len(spec.SealedMagic)]) != spec.SealedMagic {
		return nil, meta, fmt.Errorf("sealed: invalid magic")
	}

	var locker, frames []byte
	pos := len(spec.SealedMagic)
	for pos+8 <= len(data) {
		tag := string(data[pos : pos+4])
		size := binary.BigEndian.Uint32(data[pos+4 : pos+8])
		pos += 8
		if pos+int(size) > len(data) {
			return nil, meta, fmt.Errorf("sealed: truncated %s tag", tag)
		}
		payload := data[pos : pos+int(size)]
		pos += int(size)

		switch tag {
		case spec.KeyLocker:
			locker = payload
		case spec.AudioData:
			frames = payload
		case spec.MetaData:
			if err := json.Unmarshal(payload, &meta); err != nil {
				return nil, meta, fmt.Errorf("sealed: bad meta: %w", err)
			}
		}
	}

	if locker == nil {
		return nil, meta, fmt.Errorf("sealed: missing %s tag", spec.KeyLocker)
	}
	if frames == nil {
		return nil, meta, fmt.Errorf("sealed: missing %s tag", spec.AudioData)
	}

	password, err := security.OpenPassword(locker)
	if err != nil {
		return nil, meta, fmt.Errorf("sealed: %w", err)
	}
	key := security.DeriveKey(password, []byte(spec.Salt))

	dec, err := opus.NewDecoder(spec.SampleRate, spec.Channels)
	if err != nil {
		return nil, meta, err
	}

	var samples [][2]float64
	out := make([]int16, 5760*spec.Channels)
	fpos := 0
	for fpos < len(frames) {
		if fpos+2 > len(frames) {
			return nil, meta, fmt.Errorf("sealed: truncated frame header")
		}
		fLen := int(binary.BigEndian.Uint16(frames[fpos : fpos+2]))
		fpos += 2
		if fpos+fLen > len(frames) {
			return nil, meta, fmt.Errorf("sealed: truncated frame")
		}

		plain, err := security.Decrypt(frames[fpos:fpos+fLen], key)
		if err != nil {
			return nil, meta, fmt.Errorf("sealed: frame decrypt: %w", err)
		}
		fpos += fLen

		n, err := dec.Decode(plain, out)
		if err != nil {
			return nil, meta, fmt.Errorf("sealed: frame decode: %w", err)
		}
		for i := 0; i < n; i++ {
			samples = append(samples, [2]float64{
				float64(out[i*2]) / 32768.0,
				float64(out[i*2+1]) / 32768.0,
			})
		}
	}

	house := beep.NewBuffer(HouseFormat())
	house.Append(&pcmStreamer{samples: samples})
	return house, meta, nil
}

// WriteSealed encodes a 48 kHz stereo WAV stream into a sealed asset.
// The AUDI size is patched in place after the frame loop, the META
// descriptor is sealed last, the way the hdx volume forger laid out
// its trailer.
func WriteSealed(w io.WriteSeeker, wavData io.ReadSeeker, password, title string) (SealedMeta, error) {
	var meta SealedMeta

	dec := wav.NewDecoder(wavData)
	dec.ReadInfo()
	if dec.SampleRate != spec.SampleRate || int(dec.NumChans) != spec.Channels {
		return meta, fmt.Errorf("sealed: input must be %d Hz stereo wav, got %d Hz %d ch",
			spec.SampleRate, dec.SampleRate, dec.NumChans)
	}

	enc, err := opus.NewEncoder(spec.SampleRate, spec.Channels, opus.AppAudio)
	if err != nil {
		return meta, err
	}
	key := security.DeriveKey(password, []byte(spec.Salt))

	if _, err := w.Write([]byte(spec.SealedMagic)); err != nil {
		return meta, err
	}

	locker, err := security.SealPassword(password)
	if err != nil {
		return meta, err
	}
	if err := writeTag(w, spec.KeyLocker, locker); err != nil {
		return meta, err
	}

	// AUDI header with a zero size, patched after the frame loop
	if _, err := w.Write([]byte(spec.AudioData)); err != nil {
		return meta, err
	}
	sizePos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return meta, err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(0)); err != nil {
		return meta, err
	}
	audioStart := sizePos + 4

	frameSamples := spec.SampleRate * spec.FrameMillis / 1000
	pcmBuf := make([]int16, frameSamples*spec.Channels)
	opusBuf := make([]byte, 1500)

	// read one second per I/O cycle
	intBuf := &audio.IntBuffer{
		Data:   make([]int, spec.SampleRate*spec.Channels),
		Format: &audio.Format{NumChannels: spec.Channels, SampleRate: spec.SampleRate},
	}

	totalSamples := 0
	frameCount := 0
	for {
		n, err := dec.PCMBuffer(intBuf)
		if err != nil && err != io.EOF {
			return meta, err
		}
		if n == 0 {
			break
		}

		for i := 0; i < n; i += len(pcmBuf) {
			batch := len(pcmBuf)
			if i+batch > n {
				batch = n - i
				// pad the tail frame with silence
				for j := range pcmBuf {
					pcmBuf[j] = 0
				}
			}
			for j := 0; j < batch; j++ {
				pcmBuf[j] = int16(intBuf.Data[i+j])
			}

			outLen, err := enc.Encode(pcmBuf, opusBuf)
			if err != nil {
				return meta, err
			}
			sealed, err := security.Encrypt(opusBuf[:outLen], key)
			if err != nil {
				return meta, err
			}
			if err := binary.Write(w, binary.BigEndian, uint16(len(sealed))); err != nil {
				return meta, err
			}
			if _, err := w.Write(sealed); err != nil {
				return meta, err
			}
			totalSamples += batch
			frameCount++
		}

		if err == io.EOF {
			break
		}
	}

	audioEnd, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return meta, err
	}
	if _, err := w.Seek(sizePos, io.SeekStart); err != nil {
		return meta, err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(audioEnd-audioStart)); err != nil {
		return meta, err
	}
	if _, err := w.Seek(audioEnd, io.SeekStart); err != nil {
		return meta, err
	}

	meta = SealedMeta{
		Title:    title,
		Duration: float64(totalSamples) / float64(spec.SampleRate) / float64(spec.Channels),
		Frames:   frameCount,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return meta, err
	}
	if err := writeTag(w, spec.MetaData, metaBytes); err != nil {
		return meta, err
	}
	return meta, nil
}

func writeTag(w io.Writer, tag string, payload []byte) error {
	if _, err := w.Write([]byte(tag)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
