package spots

import "log"

// Cell is a view bound to one item after a layout pass.
type Cell struct {
	// Kind is the reuse identifier the view was pooled under.
	Kind  string
	View  View
	Frame Rect

	generation uint64
}

// Engine materializes views for the items of a component, lets each view
// size its item and aggregates the component height. The layout pass is the
// only place that writes Item.Size and Component.Size; everything else
// reads them.
type Engine struct {
	reg  *Registry
	cfg  LayoutConfig
	pool *viewPool
	log  logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.log.l = l }
}

// NewEngine creates a layout engine resolving views through reg.
func NewEngine(reg *Registry, cfg LayoutConfig, opts ...EngineOption) *Engine {
	e := &Engine{reg: reg, cfg: cfg, pool: newViewPool()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry views are resolved from.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Config returns the layout settings.
func (e *Engine) Config() LayoutConfig {
	return e.cfg
}

// engineBinder is implemented by views that lay out nested components.
type engineBinder interface {
	bindEngine(*Engine)
}

// Layout runs one pass over c at the given container width. The returned
// component is a copy with every item sized and Size set; c is not
// modified. The cells must be given back with Release once the caller stops
// displaying them.
func (e *Engine) Layout(c Component, width float64) (Component, []Cell) {
	gen := e.reg.Generation()
	e.pool.sync(gen)

	c = c.Clone()
	reindex(c.Items)
	width = clampDim(width)
	cellW := e.cellWidth(c, width)

	cells := make([]Cell, len(c.Items))
	for i, it := range c.Items {
		c.Items[i], cells[i] = e.configure(c, i, it, cellW, width, gen)
	}
	return e.finish(c, width, cells)
}

// Update lays out next reusing the sizes and views of prev, a component
// laid out earlier at the same width, for items that ch does not report as
// changed. It falls back to a full Layout when the previous pass cannot be
// reused: different kind, span or width, or views from an older registry
// generation. The previous cells are consumed either way.
func (e *Engine) Update(prev Component, prevCells []Cell, next Component, width float64, ch Changes) (Component, []Cell) {
	gen := e.reg.Generation()
	width = clampDim(width)
	if !e.reusable(prev, prevCells, next, width, gen) {
		e.Release(prevCells)
		return e.Layout(next, width)
	}

	next = next.Clone()
	reindex(next.Items)
	cellW := e.cellWidth(next, width)
	dirty := make(map[int]bool, len(ch.Updated)+len(ch.Inserted))
	for _, i := range ch.Updated {
		dirty[i] = true
	}
	for _, i := range ch.Inserted {
		dirty[i] = true
	}

	cells := make([]Cell, len(next.Items))
	for i, it := range next.Items {
		if i < len(prev.Items) && !dirty[i] {
			it.Size = prev.Items[i].Size
			next.Items[i], cells[i] = it, prevCells[i]
			prevCells[i] = Cell{}
			continue
		}
		next.Items[i], cells[i] = e.configure(next, i, it, cellW, width, gen)
	}
	e.Release(prevCells)
	return e.finish(next, width, cells)
}

func (e *Engine) reusable(prev Component, prevCells []Cell, next Component, width float64, gen uint64) bool {
	if prev.Kind != next.Kind || prev.Columns() != next.Columns() || prev.Size.Width != width {
		return false
	}
	if len(prevCells) != len(prev.Items) {
		return false
	}
	for _, cell := range prevCells {
		if cell.generation != gen {
			return false
		}
	}
	return true
}

// configure sizes item i of c through a pooled view.
func (e *Engine) configure(c Component, i int, it Item, cellW, width float64, gen uint64) (Item, Cell) {
	kind := it.Kind
	if kind == "" {
		kind = c.Kind
	}
	f := e.reg.Resolve(kind)
	v := e.pool.get(kind, f)
	if b, ok := v.(engineBinder); ok {
		b.bindEngine(e)
	}

	def := clampSize(f.DefaultSize(cellW))
	if c.Axis() == Vertical || it.Size.Width <= 0 {
		it.Size.Width = def.Width
	}
	if it.Size.Width <= 0 {
		it.Size.Width = width
	}
	presetW := it.Size.Width

	out := v.Configure(it)
	out.Index = i
	out.Size = clampSize(out.Size)
	if out.Size.Width == 0 {
		out.Size.Width = presetW
	}
	if out.Size.Height == 0 {
		out.Size.Height = def.Height
		if def.Height == 0 && len(out.Children) == 0 {
			e.log.debugf("layout: %s item %d (kind %q) has no height", c.Kind, i, kind)
		}
	}
	return out, Cell{Kind: kind, View: v, generation: gen}
}

func (e *Engine) finish(c Component, width float64, cells []Cell) (Component, []Cell) {
	c.Size = Size{
		Width:  width,
		Height: clampDim(e.contentHeight(c) + e.HeaderHeight(c)),
	}
	for i, fr := range ItemFrames(c, e.HeaderHeight(c)) {
		cells[i].Frame = fr
	}
	return c, cells
}

// Current reports whether every cell was built under the registry's
// current generation.
func (e *Engine) Current(cells []Cell) bool {
	gen := e.reg.Generation()
	for _, cell := range cells {
		if cell.generation != gen {
			return false
		}
	}
	return true
}

// Release returns cells to the view pool. Cells from an older registry
// generation are dropped.
func (e *Engine) Release(cells []Cell) {
	gen := e.reg.Generation()
	e.pool.sync(gen)
	for _, cell := range cells {
		if cell.generation != gen {
			continue
		}
		e.pool.put(cell.Kind, cell.View)
	}
}

// PoolStats reports view reuse counters.
func (e *Engine) PoolStats() PoolStats {
	return e.pool.stats()
}

// HeaderHeight returns the space reserved above c's items.
func (e *Engine) HeaderHeight(c Component) float64 {
	if !c.HasHeader() {
		return 0
	}
	return clampDim(e.cfg.HeaderHeight)
}

func (e *Engine) cellWidth(c Component, width float64) float64 {
	if c.Axis() == Horizontal {
		return clampDim(e.cfg.CardWidth)
	}
	return width / float64(c.Columns())
}

// contentHeight aggregates item heights: the tallest item for horizontal
// components, otherwise the sum over rows of the tallest item in each row.
// With one column that is the plain sum of item heights.
func (e *Engine) contentHeight(c Component) float64 {
	if c.Axis() == Horizontal {
		var h float64
		for _, it := range c.Items {
			h = max(h, it.Size.Height)
		}
		return h
	}
	cols := c.Columns()
	var total, row float64
	for i, it := range c.Items {
		row = max(row, it.Size.Height)
		if (i+1)%cols == 0 || i == len(c.Items)-1 {
			total += row
			row = 0
		}
	}
	return total
}

// ItemFrames positions the items of an already laid out component below a
// header of the given height. It only reads sizes.
func ItemFrames(c Component, header float64) []Rect {
	frames := make([]Rect, len(c.Items))
	if c.Axis() == Horizontal {
		var x float64
		for i, it := range c.Items {
			frames[i] = Rect{X: x, Y: header, Width: it.Size.Width, Height: it.Size.Height}
			x += it.Size.Width
		}
		return frames
	}

	cols := c.Columns()
	y := header
	for start := 0; start < len(c.Items); start += cols {
		end := min(start+cols, len(c.Items))
		var x, rowH float64
		for i := start; i < end; i++ {
			it := c.Items[i]
			frames[i] = Rect{X: x, Y: y, Width: it.Size.Width, Height: it.Size.Height}
			x += it.Size.Width
			rowH = max(rowH, it.Size.Height)
		}
		y += rowH
	}
	return frames
}
