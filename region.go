package spots

import (
	"slices"

	"github.com/google/uuid"
)

// RegionState is the lifecycle state of a region inside a composer.
type RegionState uint8

const (
	// RegionNew regions have not been attached yet.
	RegionNew RegionState = iota
	// RegionAttached regions are observed but not yet positioned with a
	// computed height.
	RegionAttached
	// RegionSized regions have been positioned at least once after their
	// height was computed.
	RegionSized
	// RegionDetached regions were removed from their composer.
	RegionDetached
)

func (s RegionState) String() string {
	switch s {
	case RegionAttached:
		return "attached"
	case RegionSized:
		return "sized"
	case RegionDetached:
		return "detached"
	}
	return "new"
}

// Region is one independently scrollable child of a Composer. Vertical
// regions are expanded to their full content height and never scroll on
// their own; horizontal regions keep their own horizontal offset.
type Region struct {
	id            uuid.UUID
	axis          Axis
	contentHeight float64
	contentWidth  float64
	measured      bool
	offsetX       float64
	frame         Rect
	state         RegionState
	listeners     []listener
	nextID        int
}

type listener struct {
	id int
	fn func(*Region)
}

// NewRegion creates an unattached region.
func NewRegion(axis Axis) *Region {
	return &Region{id: uuid.New(), axis: axis}
}

// ID returns the region's identity.
func (r *Region) ID() uuid.UUID { return r.id }

// Axis returns the scroll axis.
func (r *Region) Axis() Axis { return r.axis }

// State returns the lifecycle state.
func (r *Region) State() RegionState { return r.state }

// Frame returns the position assigned by the last re-flow.
func (r *Region) Frame() Rect { return r.frame }

// ContentHeight returns the last reported content height.
func (r *Region) ContentHeight() float64 { return r.contentHeight }

// ContentWidth returns the horizontal extent of the content.
func (r *Region) ContentWidth() float64 { return r.contentWidth }

// Measured reports whether a content height has been reported.
func (r *Region) Measured() bool { return r.measured }

// SetContentHeight records the content height and notifies subscribers if
// it changed. Negative and NaN heights are treated as zero.
func (r *Region) SetContentHeight(h float64) {
	h = clampDim(h)
	first := !r.measured
	r.measured = true
	if h == r.contentHeight && !first {
		return
	}
	r.contentHeight = h
	r.notify()
}

// SetContentWidth records the horizontal extent and clamps the offset.
func (r *Region) SetContentWidth(w float64) {
	r.contentWidth = clampDim(w)
	r.ScrollX(0)
}

// OffsetX returns the horizontal scroll offset.
func (r *Region) OffsetX() float64 { return r.offsetX }

// ScrollX scrolls a horizontal region by dx, clamped to its content.
// Vertical regions ignore it.
func (r *Region) ScrollX(dx float64) {
	if r.axis != Horizontal {
		return
	}
	limit := max(0, r.contentWidth-r.frame.Width)
	r.offsetX = min(max(0, r.offsetX+dx), limit)
}

// Subscribe adds a content-size listener and returns an unsubscribe
// function.
func (r *Region) Subscribe(fn func(*Region)) func() {
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, listener{id: id, fn: fn})
	return func() {
		r.listeners = slices.DeleteFunc(r.listeners, func(l listener) bool { return l.id == id })
	}
}

func (r *Region) notify() {
	for _, l := range slices.Clone(r.listeners) {
		l.fn(r)
	}
}
