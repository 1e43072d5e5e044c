package spots

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLayoutHeight(t *testing.T) {
	eng := NewEngine(fixedRegistry(), testConfig().Layout)

	tests := []struct {
		name string
		comp Component
		want float64
	}{
		{"Empty", NewComponent("row", ""), 0},
		{"EmptyWithTitle", NewComponent("row", "Header"), 10},
		{"Rows", NewComponent("row", "", titled("a", "b", "c")...), 60},
		{"RowsWithTitle", NewComponent("row", "Header", titled("a", "b")...), 50},
		{"MixedKinds", NewComponent("row", "", Item{Kind: "tall"}, Item{}, Item{Kind: "nope"}), 40 + 20 + 10},
		{"DeclaredHeight", NewComponent("row", "", Item{Size: Size{Height: 7}}, Item{}), 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			laid, cells := eng.Layout(tt.comp, 300)
			defer eng.Release(cells)

			if laid.Size.Height != tt.want {
				t.Errorf("height = %g, want %g", laid.Size.Height, tt.want)
			}
			var sum float64
			for _, it := range laid.Items {
				sum += it.Size.Height
			}
			if laid.HasHeader() {
				sum += 10
			}
			if laid.Size.Height != sum {
				t.Errorf("height %g does not match item sum %g", laid.Size.Height, sum)
			}
			if len(cells) != len(laid.Items) {
				t.Errorf("got %d cells for %d items", len(cells), len(laid.Items))
			}
		})
	}
}

func TestLayoutGridSpan(t *testing.T) {
	reg := NewRegistry(NewFactory("default", Size{Height: 1}, nil))
	reg.Register(KindGrid, NewFactory(KindGrid, Size{Height: 50}, nil))
	cfg := testConfig().Layout
	cfg.HeaderHeight = 0
	eng := NewEngine(reg, cfg)

	grid := NewComponent(KindGrid, "", titled("a", "b", "c", "d")...)
	grid.Span = 2
	laid, cells := eng.Layout(grid, 200)

	if laid.Size.Height != 100 {
		t.Errorf("height = %g, want 2 rows of 50", laid.Size.Height)
	}
	var frames []Rect
	for _, c := range cells {
		frames = append(frames, c.Frame)
	}
	want := []Rect{
		{X: 0, Y: 0, Width: 100, Height: 50},
		{X: 100, Y: 0, Width: 100, Height: 50},
		{X: 0, Y: 50, Width: 100, Height: 50},
		{X: 100, Y: 50, Width: 100, Height: 50},
	}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	if row1 := laid.Items[0].Size.Width + laid.Items[1].Size.Width; row1 != 200 {
		t.Errorf("first row width = %g, want 200", row1)
	}
}

func TestLayoutGridRowUsesTallest(t *testing.T) {
	eng := NewEngine(fixedRegistry(), testConfig().Layout)
	grid := NewComponent("row", "", Item{}, Item{Kind: "tall"}, Item{})
	grid.Span = 2
	laid, _ := eng.Layout(grid, 100)
	if laid.Size.Height != 60 {
		t.Errorf("height = %g, want 40 (row 1) + 20 (row 2)", laid.Size.Height)
	}
}

func TestLayoutCarousel(t *testing.T) {
	eng := NewEngine(fixedRegistry(), testConfig().Layout)
	c := NewComponent(KindCarousel, "", titled("a", "b", "c")...)
	c.Items[1].Size.Height = 45

	laid, cells := eng.Layout(c, 80)
	if laid.Size.Height != 45 {
		t.Errorf("height = %g, want tallest card 45", laid.Size.Height)
	}
	for i, it := range laid.Items {
		if it.Size.Width != 50 {
			t.Errorf("item %d width = %g, want card width 50", i, it.Size.Width)
		}
	}
	if x := cells[2].Frame.X; x != 100 {
		t.Errorf("third card x = %g, want 100", x)
	}
}

func TestLayoutWriteBack(t *testing.T) {
	reg := NewRegistry(NewFactory("default", Size{Height: 10}, nil))
	reg.Register("measure", NewFactory("measure", Size{Height: 10}, func(it Item) Item {
		it.Size.Height = it.MetaFloat("lines", 1) * 5
		return it
	}))
	eng := NewEngine(reg, testConfig().Layout)

	c := NewComponent("measure", "",
		Item{Meta: map[string]any{"lines": 3}},
		Item{Meta: map[string]any{"lines": 1}},
	)
	laid, _ := eng.Layout(c, 100)

	if laid.Items[0].Size.Height != 15 || laid.Items[1].Size.Height != 5 {
		t.Errorf("heights = %g, %g; want 15, 5", laid.Items[0].Size.Height, laid.Items[1].Size.Height)
	}
	if c.Items[0].Size.Height != 0 {
		t.Error("layout mutated the input component")
	}
	for i, it := range laid.Items {
		if it.Index != i {
			t.Errorf("item %d has index %d", i, it.Index)
		}
	}
}

func TestLayoutClampsBadSizes(t *testing.T) {
	reg := NewRegistry(NewFactory("default", Size{Height: 10}, nil))
	reg.Register("negative", NewFactory("negative", Size{Height: 8}, func(it Item) Item {
		it.Size.Height = -3
		return it
	}))
	reg.Register("nan", NewFactory("nan", Size{Height: 6}, func(it Item) Item {
		it.Size.Height = math.NaN()
		it.Size.Width = math.Inf(1)
		return it
	}))
	eng := NewEngine(reg, testConfig().Layout)

	laid, _ := eng.Layout(NewComponent("x", "", Item{Kind: "negative"}, Item{Kind: "nan"}), 100)
	if h := laid.Items[0].Size.Height; h != 8 {
		t.Errorf("negative height became %g, want factory default 8", h)
	}
	if h := laid.Items[1].Size.Height; h != 6 {
		t.Errorf("NaN height became %g, want factory default 6", h)
	}
	if w := laid.Items[1].Size.Width; w != 100 {
		t.Errorf("infinite width became %g, want cell width 100", w)
	}
	if laid.Size.Height != 14 {
		t.Errorf("component height = %g, want 14", laid.Size.Height)
	}
}

func TestLayoutReusesViews(t *testing.T) {
	eng := NewEngine(fixedRegistry(), testConfig().Layout)
	c := NewComponent("row", "", titled("a", "b", "c")...)

	_, cells := eng.Layout(c, 100)
	eng.Release(cells)
	_, cells = eng.Layout(c, 100)

	st := eng.PoolStats()
	if st.Created != 3 || st.Reused != 3 {
		t.Errorf("stats = %+v, want 3 created and 3 reused", st)
	}
	eng.Release(cells)
	if st := eng.PoolStats(); st.Idle != 3 {
		t.Errorf("idle = %d, want 3", st.Idle)
	}
}

func TestLayoutDropsViewsOnRegistryChange(t *testing.T) {
	reg := fixedRegistry()
	eng := NewEngine(reg, testConfig().Layout)
	c := NewComponent("row", "", titled("a", "b")...)

	_, cells := eng.Layout(c, 100)
	eng.Release(cells)

	reg.Register("row", NewFactory("row", Size{Height: 33}, nil))
	laid, _ := eng.Layout(c, 100)

	if laid.Size.Height != 66 {
		t.Errorf("height = %g, want views from the new factory", laid.Size.Height)
	}
	if st := eng.PoolStats(); st.Reused != 0 {
		t.Errorf("reused %d stale views", st.Reused)
	}
}

func TestReleaseDropsStaleCells(t *testing.T) {
	reg := fixedRegistry()
	eng := NewEngine(reg, testConfig().Layout)
	c := NewComponent("row", "", titled("a", "b")...)

	_, first := eng.Layout(c, 100)
	_, second := eng.Layout(c, 100)
	eng.Release(first)

	reg.Register("row", NewFactory("row", Size{Height: 33}, nil))
	_, fresh := eng.Layout(c, 100)
	if eng.Current(second) || !eng.Current(fresh) {
		t.Fatal("cell generations not tracked")
	}
	eng.Release(second)
	if st := eng.PoolStats(); st.Idle != 0 {
		t.Errorf("idle = %d, stale cells went back to the pool", st.Idle)
	}
	laid, _ := eng.Layout(c, 100)
	if laid.Size.Height != 66 {
		t.Errorf("height = %g, want 66 from the new factory", laid.Size.Height)
	}
}

func TestLayoutUpdate(t *testing.T) {
	var configured []string
	reg := NewRegistry(NewFactory("default", Size{Height: 10}, func(it Item) Item {
		configured = append(configured, it.Title)
		return it
	}))
	eng := NewEngine(reg, testConfig().Layout)
	prev, cells := eng.Layout(NewComponent("list", "", titled("a", "b")...), 100)

	tests := []struct {
		name  string
		next  Component
		width float64
		want  []string
	}{
		{"Appended", NewComponent("list", "", titled("a", "b", "c")...), 100, []string{"c"}},
		{"Updated", NewComponent("list", "", titled("a", "B")...), 100, []string{"B"}},
		{"OtherWidth", NewComponent("list", "", titled("a", "b")...), 50, []string{"a", "b"}},
		{"OtherKind", NewComponent("feed", "", titled("a", "b")...), 100, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configured = nil
			_, prevCells := eng.Layout(prev, 100)
			configured = nil
			laid, got := eng.Update(prev, prevCells, tt.next, tt.width, DiffItems(prev.Items, tt.next.Items))
			if diff := cmp.Diff(tt.want, configured); diff != "" {
				t.Errorf("configured (-want +got):\n%s", diff)
			}
			if len(got) != tt.next.Len() || laid.Size.Height != float64(10*tt.next.Len()) {
				t.Errorf("cells = %d, height = %g", len(got), laid.Size.Height)
			}
			eng.Release(got)
		})
	}
	eng.Release(cells)
}

func TestLayoutComposite(t *testing.T) {
	reg := fixedRegistry()
	reg.Register(KindComposite, NewCompositeFactory(KindComposite))
	eng := NewEngine(reg, testConfig().Layout)

	inner := NewComponent("row", "Inner", titled("x", "y")...)
	outer := NewComponent(KindComposite, "",
		Item{Children: []Component{inner, NewComponent("tall", "", Item{})}},
	)
	laid, _ := eng.Layout(outer, 100)

	// Inner: header 10 + 2 rows of 20; second child: one tall row.
	if h := laid.Items[0].Size.Height; h != 90 {
		t.Errorf("composite item height = %g, want 90", h)
	}
	if h := laid.Items[0].Children[0].Size.Height; h != 50 {
		t.Errorf("first child height = %g, want 50", h)
	}
	if inner.Size.Height != 0 {
		t.Error("layout mutated the nested input component")
	}
}

func TestItemFrames(t *testing.T) {
	c := Component{Kind: KindList, Items: []Item{
		{Size: Size{Width: 10, Height: 3}},
		{Size: Size{Width: 10, Height: 4}},
	}}
	got := ItemFrames(c, 2)
	want := []Rect{{Y: 2, Width: 10, Height: 3}, {Y: 5, Width: 10, Height: 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ItemFrames mismatch (-want +got):\n%s", diff)
	}
}
