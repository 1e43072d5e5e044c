package spots

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"sync"
)

// Completion is invoked once a mutation has been applied and the composer
// has re-flowed. err is non-nil when the mutation was rejected.
type Completion func(err error)

// Controller is the composition root: it owns the components, lays each
// out through an Engine, mounts one Region per component in a Composer and
// exposes the mutation API.
//
// A Controller must be driven from a single goroutine. Mutations issued
// while another mutation is being applied (from a completion, for example)
// are queued and applied in order once the current one settles. Work done
// on other goroutines should be marshalled back through a Queue; a mutation
// that arrives from another goroutine anyway is serialized behind the
// current one, or panics under WithOwnerCheck.
type Controller struct {
	reg      *Registry
	cfg      Config
	engine   *Engine
	composer *Composer
	entries  []*entry
	width    float64

	mu         sync.Mutex
	busy       bool
	queue      []func()
	ownerCheck bool
	owner      uint64

	parent    context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	edges     [2]*EdgeRequest
	onEnd     EdgeHandler
	onRefresh EdgeHandler

	log logger
}

type entry struct {
	comp   Component
	region *Region
	cells  []Cell
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger for the controller, its engine and
// its composer.
func WithControllerLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) { c.log.l = l }
}

// WithOwnerCheck makes a mutation issued from another goroutine while one
// is being applied panic instead of being queued.
func WithOwnerCheck() ControllerOption {
	return func(c *Controller) { c.ownerCheck = true }
}

// WithContext sets the parent context of edge requests. Cancelling it
// cancels every in-flight request.
func WithContext(ctx context.Context) ControllerOption {
	return func(c *Controller) { c.parent = ctx }
}

// OnReachEnd sets the handler called when the viewport reaches the bottom.
func OnReachEnd(h EdgeHandler) ControllerOption {
	return func(c *Controller) { c.onEnd = h }
}

// OnRefresh sets the handler called when the surface is pulled past the
// top.
func OnRefresh(h EdgeHandler) ControllerOption {
	return func(c *Controller) { c.onRefresh = h }
}

// NewController creates a controller with no components.
func NewController(reg *Registry, cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{reg: reg, cfg: cfg, parent: context.Background()}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.parent)
	c.engine = NewEngine(reg, cfg.Layout, WithEngineLogger(c.log.l))
	c.composer = NewComposer(
		WithReflowPasses(cfg.Layout.ReflowPasses),
		WithBounce(cfg.Scroll.Bounce),
		WithComposerLogger(c.log.l),
	)
	return c
}

// Close cancels in-flight edge requests. The controller stays usable and
// later requests get a fresh context.
func (c *Controller) Close() {
	for _, req := range c.edges {
		if req != nil {
			req.Cancel()
		}
	}
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(c.parent)
}

// Engine returns the layout engine.
func (c *Controller) Engine() *Engine { return c.engine }

// Composer returns the scroll composer.
func (c *Controller) Composer() *Composer { return c.composer }

// Registry returns the view registry.
func (c *Controller) Registry() *Registry { return c.reg }

// Len returns the number of components.
func (c *Controller) Len() int { return len(c.entries) }

// Component returns a copy of the laid out component at i.
func (c *Controller) Component(i int) (Component, bool) {
	if i < 0 || i >= len(c.entries) {
		return Component{}, false
	}
	return c.entries[i].comp.Clone(), true
}

// Components returns copies of every component.
func (c *Controller) Components() []Component {
	out := make([]Component, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.comp.Clone()
	}
	return out
}

// Region returns the region mounted for component i.
func (c *Controller) Region(i int) (*Region, bool) {
	if i < 0 || i >= len(c.entries) {
		return nil, false
	}
	return c.entries[i].region, true
}

// Cells returns the views bound to component i by the last layout pass.
func (c *Controller) Cells(i int) []Cell {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	return slices.Clone(c.entries[i].cells)
}

// run applies op, re-flows and completes, or queues it behind the
// mutation currently being applied.
func (c *Controller) run(name string, op func() error, done Completion) error {
	c.mu.Lock()
	if c.busy {
		if c.ownerCheck {
			if id := goid(); id != c.owner {
				c.mu.Unlock()
				panic(fmt.Sprintf("spots: %s from goroutine %d while goroutine %d is mutating the controller", name, id, c.owner))
			}
		}
		c.log.debugf("controller: queueing %s", name)
		c.queue = append(c.queue, func() { c.apply(name, op, done) })
		c.mu.Unlock()
		return nil
	}
	c.busy = true
	if c.ownerCheck {
		c.owner = goid()
	}
	c.mu.Unlock()

	err := c.apply(name, op, done)
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.busy = false
			c.mu.Unlock()
			return err
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		next()
	}
}

func (c *Controller) apply(name string, op func() error, done Completion) error {
	c.syncGeneration()
	err := op()
	if err != nil {
		c.log.warnf("controller: %s: %v", name, err)
	}
	c.composer.Reflow()
	if done != nil {
		done(err)
	}
	return err
}

// syncGeneration lays out every component again when the registry changed
// since their last pass.
func (c *Controller) syncGeneration() {
	if !c.stale() {
		return
	}
	c.log.debugf("controller: registry generation %d, laying out %d components", c.reg.Generation(), len(c.entries))
	for i := range c.entries {
		c.relayout(i)
	}
}

// Refresh lays out every component again if the registry was changed
// since the last layout pass.
func (c *Controller) Refresh(done Completion) error {
	return c.run("refresh", func() error { return nil }, done)
}

func (c *Controller) stale() bool {
	for _, e := range c.entries {
		if !c.engine.Current(e.cells) {
			return true
		}
	}
	return false
}

// relayout runs the layout pass for component i and reports its new size
// to its region, which re-flows the composer.
func (c *Controller) relayout(i int) {
	e := c.entries[i]
	c.engine.Release(e.cells)
	laid, cells := c.engine.Layout(e.comp, c.width)
	c.mount(i, laid, cells)
}

// update lays out next in place of component i, configuring only the items
// ch reports as changed.
func (c *Controller) update(i int, next Component, ch Changes) {
	e := c.entries[i]
	laid, cells := c.engine.Update(e.comp, e.cells, next, c.width, ch)
	e.cells = nil
	c.mount(i, laid, cells)
}

func (c *Controller) mount(i int, laid Component, cells []Cell) {
	e := c.entries[i]
	laid.Index = i
	e.comp, e.cells = laid, cells

	var w float64
	for _, it := range laid.Items {
		w += it.Size.Width
	}
	e.region.SetContentWidth(w)
	e.region.SetContentHeight(laid.Size.Height)
}

func (c *Controller) reindexComponents() {
	for i, e := range c.entries {
		e.comp.Index = i
	}
}

func (c *Controller) newEntry(comp Component) *entry {
	comp = comp.Clone()
	return &entry{comp: comp, region: NewRegion(comp.Axis())}
}

func (c *Controller) entry(ci int) (*entry, error) {
	if ci < 0 || ci >= len(c.entries) {
		return nil, fmt.Errorf("component %d: %w", ci, ErrNoComponent)
	}
	return c.entries[ci], nil
}

// SetComponents replaces every component.
func (c *Controller) SetComponents(cs []Component, done Completion) error {
	return c.run("set components", func() error {
		for _, e := range c.entries {
			c.unmount(e)
		}
		c.entries = c.entries[:0]
		for _, comp := range cs {
			c.entries = append(c.entries, c.newEntry(comp))
		}
		c.reindexComponents()
		for i, e := range c.entries {
			c.composer.Attach(e.region)
			c.relayout(i)
		}
		return nil
	}, done)
}

func (c *Controller) unmount(e *entry) {
	c.cancelEdgesFor(e.region)
	c.composer.Detach(e.region)
	c.engine.Release(e.cells)
	e.cells = nil
}

// Append adds items to the end of component ci.
func (c *Controller) Append(ci int, items []Item, done Completion) error {
	return c.run("append", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		e.comp.Items = append(e.comp.Items, items...)
		c.relayout(ci)
		return nil
	}, done)
}

// Prepend adds items to the start of component ci, keeping their order.
func (c *Controller) Prepend(ci int, items []Item, done Completion) error {
	return c.run("prepend", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		e.comp.Items = slices.Insert(e.comp.Items, 0, items...)
		c.relayout(ci)
		return nil
	}, done)
}

// Insert adds items to component ci before position at. at may equal the
// item count.
func (c *Controller) Insert(ci, at int, items []Item, done Completion) error {
	return c.run("insert", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		if at < 0 || at > len(e.comp.Items) {
			return fmt.Errorf("insert at %d in component %d: %w", at, ci, ErrIndexOutOfRange)
		}
		e.comp.Items = slices.Insert(e.comp.Items, at, items...)
		c.relayout(ci)
		return nil
	}, done)
}

// Update replaces the item at position at in component ci.
func (c *Controller) Update(ci, at int, item Item, done Completion) error {
	return c.run("update", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		if at < 0 || at >= len(e.comp.Items) {
			return fmt.Errorf("update %d in component %d: %w", at, ci, ErrIndexOutOfRange)
		}
		e.comp.Items[at] = item
		c.relayout(ci)
		return nil
	}, done)
}

// Delete removes the items at the given positions from component ci.
// Either every index is valid and all are removed, or none is.
func (c *Controller) Delete(ci int, indexes []int, done Completion) error {
	return c.run("delete", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		idx := slices.Clone(indexes)
		sort.Sort(sort.Reverse(sort.IntSlice(idx)))
		idx = slices.Compact(idx)
		for _, i := range idx {
			if i < 0 || i >= len(e.comp.Items) {
				return fmt.Errorf("delete %d in component %d: %w", i, ci, ErrIndexOutOfRange)
			}
		}
		for _, i := range idx {
			e.comp.Items = slices.Delete(e.comp.Items, i, i+1)
		}
		c.relayout(ci)
		return nil
	}, done)
}

// ReplaceComponent swaps component ci for comp. The region is kept when the
// axis does not change, so horizontal scroll state survives.
func (c *Controller) ReplaceComponent(ci int, comp Component, done Completion) error {
	return c.run("replace component", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		c.replace(ci, e, comp)
		return nil
	}, done)
}

func (c *Controller) replace(ci int, e *entry, comp Component) {
	if comp.Axis() != e.region.Axis() {
		c.unmount(e)
		ne := c.newEntry(comp)
		c.entries[ci] = ne
		c.composer.Insert(ci, ne.region)
	} else {
		e.comp = comp.Clone()
	}
	c.relayout(ci)
}

// AppendComponent adds comp below the existing components.
func (c *Controller) AppendComponent(comp Component, done Completion) error {
	return c.run("append component", func() error {
		e := c.newEntry(comp)
		c.entries = append(c.entries, e)
		c.reindexComponents()
		c.composer.Attach(e.region)
		c.relayout(len(c.entries) - 1)
		return nil
	}, done)
}

// InsertComponent adds comp at position ci.
func (c *Controller) InsertComponent(ci int, comp Component, done Completion) error {
	return c.run("insert component", func() error {
		if ci < 0 || ci > len(c.entries) {
			return fmt.Errorf("insert component at %d: %w", ci, ErrIndexOutOfRange)
		}
		e := c.newEntry(comp)
		c.entries = slices.Insert(c.entries, ci, e)
		c.reindexComponents()
		c.composer.Insert(ci, e.region)
		c.relayout(ci)
		return nil
	}, done)
}

// RemoveComponent detaches component ci. In-flight edge requests targeting
// it are cancelled.
func (c *Controller) RemoveComponent(ci int, done Completion) error {
	return c.run("remove component", func() error {
		e, err := c.entry(ci)
		if err != nil {
			return err
		}
		c.unmount(e)
		c.entries = slices.Delete(c.entries, ci, ci+1)
		c.reindexComponents()
		return nil
	}, done)
}

// ReloadIfNeeded replaces the components with cs, laying out again only
// the components whose content changed.
func (c *Controller) ReloadIfNeeded(cs []Component, done Completion) error {
	return c.run("reload", func() error {
		n := min(len(cs), len(c.entries))
		for i := 0; i < n; i++ {
			e := c.entries[i]
			if e.comp.Equal(cs[i]) {
				continue
			}
			if e.comp.Kind != cs[i].Kind {
				c.replace(i, e, cs[i])
				continue
			}
			ch := DiffItems(e.comp.Items, cs[i].Items)
			c.log.debugf("controller: reload component %d: %s", i, ch)
			c.update(i, cs[i], ch)
		}
		for len(c.entries) > len(cs) {
			last := len(c.entries) - 1
			c.unmount(c.entries[last])
			c.entries = c.entries[:last]
		}
		for i := n; i < len(cs); i++ {
			e := c.newEntry(cs[i])
			c.entries = append(c.entries, e)
			c.composer.Attach(e.region)
			c.relayout(i)
		}
		c.reindexComponents()
		return nil
	}, done)
}

// Resize sets the viewport size. A width change lays out every component
// again.
func (c *Controller) Resize(width, height float64, done Completion) error {
	return c.run("resize", func() error {
		width = clampDim(width)
		relayout := width != c.width
		c.width = width
		c.composer.SetBounds(width, height)
		if relayout {
			for i := range c.entries {
				c.relayout(i)
			}
		}
		return nil
	}, done)
}

// ScrollX scrolls the horizontal region of component ci by dx.
func (c *Controller) ScrollX(ci int, dx float64) {
	if ci < 0 || ci >= len(c.entries) {
		return
	}
	c.entries[ci].region.ScrollX(dx)
}

// goid returns the current goroutine's id from its stack header.
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
