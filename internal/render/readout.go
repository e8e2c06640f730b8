package render

import (
	"math"
	"math/cmplx"

	"github.com/faiface/beep"
	"github.com/mjibson/go-dsp/fft"
)

// Levels condenses a decoded buffer into amplitude bars (0-255), one
// byte per point, for the widget's level readout.
func Levels(buf *beep.Buffer, points int) []byte {
	if buf == nil || buf.Len() == 0 || points <= 0 {
		return nil
	}

	step := buf.Len() / points
	if step == 0 {
		step = 1
	}

	s := buf.Streamer(0, buf.Len())
	chunk := make([][2]float64, step)
	var out []byte
	for {
		n, ok := s.Stream(chunk)
		if n > 0 {
			var sum float64
			for i := 0; i < n; i++ {
				m := (chunk[i][0] + chunk[i][1]) / 2
				sum += m * m
			}
			rms := math.Sqrt(sum / float64(n))
			out = append(out, uint8(math.Min(rms*255.0*5.0, 255.0)))
		}
		if !ok {
			break
		}
	}
	return out
}

// Spectrum computes bin magnitudes over the opening window of a
// buffer, for the widget's frequency readout.
func Spectrum(buf *beep.Buffer, bins int) []float64 {
	const fftSize = 1024

	if buf == nil || buf.Len() == 0 || bins <= 0 {
		return nil
	}

	window := make([]float64, fftSize)
	s := buf.Streamer(0, buf.Len())
	tmp := make([][2]float64, fftSize)
	n, _ := s.Stream(tmp)
	for i := 0; i < n; i++ {
		window[i] = (tmp[i][0] + tmp[i][1]) / 2
	}

	coeffs := fft.FFTReal(window)

	const half = fftSize / 2
	if bins > half {
		bins = half
	}
	per := half / bins
	out := make([]float64, bins)
	for b := 0; b < bins; b++ {
		var acc float64
		count := 0
		for k := b * per; k < (b+1)*per && k < half; k++ {
			acc += cmplx.Abs(coeffs[k])
			count++
		}
		if count > 0 {
			out[b] = acc / float64(count)
		}
	}
	return out
}
