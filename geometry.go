package spots

import "math"

// Size is a width/height pair in host units (points, cells, rows).
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Rect is a positioned Size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 {
	return r.Y + r.Height
}

// Axis is the scroll direction of a region.
type Axis uint8

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// clampDim turns negative, NaN and infinite values into 0.
func clampDim(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampSize(s Size) Size {
	return Size{Width: clampDim(s.Width), Height: clampDim(s.Height)}
}
