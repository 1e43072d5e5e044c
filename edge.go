package spots

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Edge identifies a scroll edge.
type Edge uint8

const (
	// EdgeEnd is reached when the viewport bottom meets the content bottom.
	EdgeEnd Edge = iota
	// EdgeBeginning is reached when the surface is pulled past the top.
	EdgeBeginning
)

func (e Edge) String() string {
	if e == EdgeBeginning {
		return "beginning"
	}
	return "end"
}

// EdgeHandler is called when an edge is reached and no request for that
// edge is in flight. It must not block: fetch on another goroutine and
// complete the request from the controller's goroutine.
type EdgeHandler func(req *EdgeRequest)

// EdgeRequest asks the host for items at one edge. Completing it appends
// (end) or prepends (beginning) the items to the target component, unless
// the request was cancelled or its component was removed meanwhile.
type EdgeRequest struct {
	ID     uuid.UUID
	Edge   Edge
	ctx    context.Context
	cancel context.CancelFunc
	ctl    *Controller
	region *Region
	done   bool
}

// Context is cancelled when the request becomes stale.
func (r *EdgeRequest) Context() context.Context { return r.ctx }

// Component returns the current index of the target component, or -1 if
// it is gone.
func (r *EdgeRequest) Component() int {
	for i, e := range r.ctl.entries {
		if e.region == r.region {
			return i
		}
	}
	return -1
}

// Complete delivers items. It returns ErrRequestDone if the request was
// already completed or cancelled; in that case done is not called.
func (r *EdgeRequest) Complete(items []Item, done Completion) error {
	if r.done {
		return fmt.Errorf("%s request %s: %w", r.Edge, r.ID, ErrRequestDone)
	}
	if err := r.ctx.Err(); err != nil {
		r.finish()
		return fmt.Errorf("%s request %s: %w: %w", r.Edge, r.ID, ErrRequestDone, err)
	}
	r.finish()
	ci := r.Component()
	if ci < 0 {
		return fmt.Errorf("%s request %s: %w", r.Edge, r.ID, ErrRequestDone)
	}
	if r.Edge == EdgeBeginning {
		return r.ctl.Prepend(ci, items, done)
	}
	return r.ctl.Append(ci, items, done)
}

// Cancel abandons the request and clears the in-flight flag for its edge.
func (r *EdgeRequest) Cancel() {
	if r.done {
		return
	}
	r.finish()
}

func (r *EdgeRequest) finish() {
	r.done = true
	r.cancel()
	if r.ctl.edges[r.Edge] == r {
		r.ctl.edges[r.Edge] = nil
	}
}

// InFlight returns the pending request for edge, if any.
func (c *Controller) InFlight(edge Edge) (*EdgeRequest, bool) {
	r := c.edges[edge]
	return r, r != nil
}

// Scroll moves the viewport to y and signals the edge handlers when an
// edge is reached. It returns the clamped offset.
func (c *Controller) Scroll(y float64) float64 {
	off := c.composer.ScrollTo(y)
	if len(c.entries) == 0 {
		return off
	}
	if off <= -c.cfg.Scroll.RefreshThreshold {
		c.signal(EdgeBeginning, c.onRefresh, c.entries[0].region)
	}
	bottom := off + c.composer.Bounds().Height
	if bottom >= c.composer.ContentSize().Height-c.cfg.Scroll.EndThreshold {
		c.signal(EdgeEnd, c.onEnd, c.entries[len(c.entries)-1].region)
	}
	return off
}

// ScrollBy moves the viewport by dy. See Scroll.
func (c *Controller) ScrollBy(dy float64) float64 {
	return c.Scroll(c.composer.ContentOffset() + dy)
}

func (c *Controller) signal(edge Edge, h EdgeHandler, target *Region) {
	if h == nil || c.edges[edge] != nil {
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	req := &EdgeRequest{
		ID:     uuid.New(),
		Edge:   edge,
		ctx:    ctx,
		cancel: cancel,
		ctl:    c,
		region: target,
	}
	c.edges[edge] = req
	c.log.debugf("controller: reached %s, request %s", edge, req.ID)
	h(req)
}

func (c *Controller) cancelEdgesFor(r *Region) {
	for _, req := range c.edges {
		if req != nil && req.region == r {
			req.Cancel()
		}
	}
}
