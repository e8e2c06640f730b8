package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/elpescado/reamp-player/internal/manifest"
)

// Knob strip geometry, in pixels of the host canvas.
const (
	KnobRadius  = 22
	KnobPitch   = 56
	StripHeight = 72
)

type Kind int

const (
	OpCircle Kind = iota // knob face outline, center (X,Y) radius R
	OpLine               // needle, (X,Y) -> (X2,Y2)
	OpLabel              // text hint below the knob, anchored at (X,Y)
)

// Op is one draw instruction. The set is small on purpose: a host
// canvas only needs circles, lines and text to show a rig.
type Op struct {
	Kind         Kind
	X, Y, X2, Y2 float64
	R            float64
	Text         string
}

// StripSize returns the canvas size needed for n knobs.
func StripSize(n int) (w, h int) {
	if n < 1 {
		n = 1
	}
	return n * KnobPitch, StripHeight
}

// Knobs maps rig settings to draw instructions. Pure function: the
// same settings always produce the same ops, nothing here reads
// engine state. The needle sweeps 270 degrees, 0.0 at lower left,
// 1.0 at lower right.
func Knobs(settings []manifest.Setting) []Op {
	ops := make([]Op, 0, len(settings)*3)
	for i, s := range settings {
		cx := float64(KnobPitch/2 + i*KnobPitch)
		cy := float64(KnobRadius + 6)

		ops = append(ops, Op{Kind: OpCircle, X: cx, Y: cy, R: KnobRadius})

		a := math.Pi * (1.25 - 1.5*clamp01(s.Value))
		nr := 0.8 * KnobRadius
		ops = append(ops, Op{
			Kind: OpLine,
			X:    cx, Y: cy,
			X2: cx + nr*math.Cos(a),
			Y2: cy - nr*math.Sin(a),
		})

		ops = append(ops, Op{
			Kind: OpLabel,
			X:    cx, Y: cy + KnobRadius + 12,
			Text: s.Name,
		})
	}
	return ops
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var (
	stripBg     = color.RGBA{R: 18, G: 18, B: 18, A: 255}
	stripStroke = color.RGBA{R: 225, G: 225, B: 225, A: 255}
	stripNeedle = color.RGBA{R: 255, G: 140, B: 0, A: 255}
)

// Rasterize draws geometry ops into an RGBA image. Labels are hints
// for text-capable hosts and are skipped here.
func Rasterize(ops []Op, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, stripBg)
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case OpCircle:
			steps := int(2 * math.Pi * op.R * 2)
			for i := 0; i < steps; i++ {
				a := 2 * math.Pi * float64(i) / float64(steps)
				img.Set(int(op.X+op.R*math.Cos(a)), int(op.Y+op.R*math.Sin(a)), stripStroke)
			}
		case OpLine:
			dx, dy := op.X2-op.X, op.Y2-op.Y
			steps := int(math.Hypot(dx, dy)) * 2
			if steps < 1 {
				steps = 1
			}
			for i := 0; i <= steps; i++ {
				t := float64(i) / float64(steps)
				img.Set(int(op.X+t*dx), int(op.Y+t*dy), stripNeedle)
			}
		}
	}
	return img
}

// EncodePNG rasterizes a knob strip and returns PNG bytes.
func EncodePNG(ops []Op, w, h int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Rasterize(ops, w, h)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
