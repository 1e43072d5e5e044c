package spots

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextViewHeight(t *testing.T) {
	v := NewTextFactory(KindList, 1).NewView()

	short := v.Configure(Item{Title: "hi", Size: Size{Width: 20}})
	assert.Equal(t, 1.0, short.Size.Height)

	sub := v.Configure(Item{Title: "hi", Subtitle: "there", Size: Size{Width: 20}})
	assert.Equal(t, 2.0, sub.Size.Height)

	wrapped := v.Configure(Item{Title: "a title that will not fit", Size: Size{Width: 10}})
	assert.GreaterOrEqual(t, wrapped.Size.Height, 2.0)

	empty := NewTextFactory(KindFeed, 2).NewView().Configure(Item{Size: Size{Width: 20}})
	assert.Equal(t, 2.0, empty.Size.Height)
}

func TestCardView(t *testing.T) {
	f := NewCardFactory(KindCarousel, Size{Width: 20, Height: 4})
	assert.Equal(t, Size{Width: 20, Height: 4}, f.DefaultSize(100))
	assert.Equal(t, Size{Width: 100, Height: 3}, NewCardFactory(KindGrid, Size{Height: 3}).DefaultSize(100))

	v := f.NewView()
	it := v.Configure(Item{Title: "Wide", Size: Size{Width: 20}, Meta: map[string]any{"width": 30, "height": 6}})
	assert.Equal(t, Size{Width: 30, Height: 6}, it.Size)

	out := v.(Renderer).Render(Item{Title: "Mountains and valleys", Image: "alps.jpg", Size: Size{Height: 5}}, 12)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, out, "Mountains")
	assert.Contains(t, out, "…")
}

func TestCompositeView(t *testing.T) {
	cfg := DefaultConfig().Layout
	e := NewEngine(DefaultRegistry(cfg), cfg)

	inner := NewComponent(KindList, "Inner", titled("one", "two")...)
	c := NewComponent(KindComposite, "", Item{Title: "wrap", Children: []Component{inner, inner}})
	laid, cells := e.Layout(c, 40)

	require.Len(t, laid.Items, 1)
	children := laid.Items[0].Children
	require.Len(t, children, 2)
	assert.Equal(t, 3.0, children[0].Size.Height)
	assert.Equal(t, 1, children[1].Index)
	assert.Equal(t, 6.0, laid.Items[0].Size.Height)
	assert.Equal(t, 6.0, laid.Size.Height)

	out := renderCell(cells[0], laid.Items[0])
	assert.Len(t, strings.Split(out, "\n"), 6)
	assert.Equal(t, 2, strings.Count(out, "Inner"))
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry(DefaultConfig().Layout)
	assert.Equal(t, []string{KindCarousel, KindComposite, KindFeed, KindGrid, KindList}, reg.Kinds())
	_, ok := reg.Resolve("unknown").(*TextFactory)
	assert.True(t, ok)
	assert.Equal(t, 20.0, reg.Resolve(KindCarousel).DefaultSize(80).Width)
}
