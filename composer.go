package spots

import (
	"log"
	"slices"
)

// Composer stacks regions into one vertically continuous scrollable
// surface. Region tops are contiguous in attach order and the content
// height is never smaller than the viewport.
//
// A Composer is not safe for concurrent use; it is driven from the host's
// UI goroutine.
type Composer struct {
	regions   []*attachment
	bounds    Size
	content   Size
	offsetY   float64
	maxPasses int
	bounce    float64

	reflowing bool
	pending   bool
	last      ReflowResult
	log       logger
}

type attachment struct {
	region *Region
	unsub  func()
}

// ReflowResult describes one call to Reflow.
type ReflowResult struct {
	Passes        int
	Changed       bool
	Converged     bool
	ContentHeight float64
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithReflowPasses bounds the number of passes one Reflow may run.
func WithReflowPasses(n int) ComposerOption {
	return func(c *Composer) {
		if n > 0 {
			c.maxPasses = n
		}
	}
}

// WithBounce allows ScrollTo to pull the surface up to d above the top.
func WithBounce(d float64) ComposerOption {
	return func(c *Composer) { c.bounce = clampDim(d) }
}

// WithComposerLogger sets the composer logger.
func WithComposerLogger(l *log.Logger) ComposerOption {
	return func(c *Composer) { c.log.l = l }
}

// NewComposer creates an empty composer.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{maxPasses: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach adds r below the regions already attached and re-flows.
// Attaching a region twice is a no-op.
func (c *Composer) Attach(r *Region) {
	if c.index(r) >= 0 {
		return
	}
	r.state = RegionAttached
	unsub := r.Subscribe(func(*Region) { c.Reflow() })
	c.regions = append(c.regions, &attachment{region: r, unsub: unsub})
	c.Reflow()
}

// Insert attaches r at position i in the stacking order and re-flows.
func (c *Composer) Insert(i int, r *Region) {
	if c.index(r) >= 0 {
		return
	}
	i = min(max(i, 0), len(c.regions))
	r.state = RegionAttached
	unsub := r.Subscribe(func(*Region) { c.Reflow() })
	c.regions = slices.Insert(c.regions, i, &attachment{region: r, unsub: unsub})
	c.Reflow()
}

// Detach removes r, stops observing it and re-flows the remaining regions.
func (c *Composer) Detach(r *Region) {
	i := c.index(r)
	if i < 0 {
		return
	}
	c.regions[i].unsub()
	c.regions = slices.Delete(c.regions, i, i+1)
	r.state = RegionDetached
	r.frame = Rect{}
	c.Reflow()
}

// SetBounds sets the visible viewport size and re-flows.
func (c *Composer) SetBounds(width, height float64) {
	b := Size{Width: clampDim(width), Height: clampDim(height)}
	if b == c.bounds {
		return
	}
	c.bounds = b
	c.Reflow()
}

// Bounds returns the viewport size.
func (c *Composer) Bounds() Size { return c.bounds }

// Reflow positions every region and recomputes the content size. It is
// idempotent and safe to call repeatedly; notifications arriving while a
// re-flow runs are folded into it.
func (c *Composer) Reflow() ReflowResult {
	if c.reflowing {
		c.pending = true
		return c.last
	}
	c.reflowing = true
	defer func() { c.reflowing = false }()

	var res ReflowResult
	for res.Passes < c.maxPasses {
		res.Passes++
		c.pending = false
		changed := c.pass()
		res.Changed = res.Changed || changed
		if !c.pending && (!changed || res.Passes > 1) {
			res.Converged = !changed
			break
		}
	}
	if !res.Converged && (res.Passes > 1 || c.pending) {
		c.log.warnf("composer: re-flow did not settle after %d passes", res.Passes)
	}
	if res.Passes == 1 && !c.pending {
		res.Converged = true
	}
	res.ContentHeight = c.content.Height
	c.last = res
	return res
}

// pass walks the regions once and reports whether any geometry moved.
func (c *Composer) pass() bool {
	changed := false
	var y float64
	for _, a := range c.regions {
		r := a.region
		fr := Rect{Y: y, Width: c.bounds.Width, Height: r.contentHeight}
		if fr != r.frame {
			r.frame = fr
			changed = true
		}
		if r.axis == Horizontal {
			r.ScrollX(0)
		}
		if r.measured && r.state == RegionAttached {
			r.state = RegionSized
		}
		y += fr.Height
	}
	content := Size{Width: c.bounds.Width, Height: max(y, c.bounds.Height)}
	if content != c.content {
		c.content = content
		changed = true
	}
	c.offsetY = c.clampOffset(c.offsetY)
	return changed
}

// ContentSize returns the size of the scrollable surface.
func (c *Composer) ContentSize() Size { return c.content }

// ContentOffset returns the vertical scroll offset.
func (c *Composer) ContentOffset() float64 { return c.offsetY }

// MaxOffset returns the largest offset ScrollTo accepts.
func (c *Composer) MaxOffset() float64 {
	return max(0, c.content.Height-c.bounds.Height)
}

// ScrollTo moves the viewport to y, clamped to the content and the bounce
// distance above the top.
func (c *Composer) ScrollTo(y float64) float64 {
	c.offsetY = c.clampOffset(y)
	return c.offsetY
}

// ScrollBy moves the viewport by dy.
func (c *Composer) ScrollBy(dy float64) float64 {
	return c.ScrollTo(c.offsetY + dy)
}

func (c *Composer) clampOffset(y float64) float64 {
	if y != y { // NaN
		return 0
	}
	return min(max(y, -c.bounce), c.MaxOffset())
}

// Regions returns the attached regions in stacking order.
func (c *Composer) Regions() []*Region {
	out := make([]*Region, len(c.regions))
	for i, a := range c.regions {
		out[i] = a.region
	}
	return out
}

// Len returns the number of attached regions.
func (c *Composer) Len() int { return len(c.regions) }

// Offset returns the top of r, if attached.
func (c *Composer) Offset(r *Region) (float64, bool) {
	if c.index(r) < 0 {
		return 0, false
	}
	return r.frame.Y, true
}

// Offsets returns the top of every attached region.
func (c *Composer) Offsets() []float64 {
	out := make([]float64, len(c.regions))
	for i, a := range c.regions {
		out[i] = a.region.frame.Y
	}
	return out
}

// RegionAt returns the region covering content position y.
func (c *Composer) RegionAt(y float64) (*Region, bool) {
	i, found := slices.BinarySearchFunc(c.regions, y, func(a *attachment, y float64) int {
		switch {
		case a.region.frame.MaxY() <= y:
			return -1
		case a.region.frame.Y > y:
			return 1
		}
		return 0
	})
	if !found {
		return nil, false
	}
	return c.regions[i].region, true
}

// Visible returns the regions intersecting the current viewport.
func (c *Composer) Visible() []*Region {
	top, bottom := c.offsetY, c.offsetY+c.bounds.Height
	var out []*Region
	for _, a := range c.regions {
		fr := a.region.frame
		if fr.MaxY() > top && fr.Y < bottom {
			out = append(out, a.region)
		}
	}
	return out
}

func (c *Composer) index(r *Region) int {
	return slices.IndexFunc(c.regions, func(a *attachment) bool { return a.region == r })
}
