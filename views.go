package spots

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextFactory builds views that wrap the title and subtitle to the cell
// width. Their height is the number of wrapped lines, never less than the
// declared default.
type TextFactory struct {
	kind     string
	height   float64
	title    lipgloss.Style
	subtitle lipgloss.Style
}

// NewTextFactory creates a text factory with the given default height.
func NewTextFactory(kind string, defaultHeight float64) *TextFactory {
	return &TextFactory{
		kind:     kind,
		height:   defaultHeight,
		title:    lipgloss.NewStyle().Bold(true),
		subtitle: lipgloss.NewStyle().Faint(true),
	}
}

// Styles overrides the title and subtitle styles.
func (f *TextFactory) Styles(title, subtitle lipgloss.Style) *TextFactory {
	f.title, f.subtitle = title, subtitle
	return f
}

func (f *TextFactory) NewView() View { return &textView{f: f} }

func (f *TextFactory) DefaultSize(width float64) Size {
	return Size{Width: width, Height: f.height}
}

type textView struct {
	f *TextFactory
}

func (v *textView) Kind() string { return v.f.kind }

func (v *textView) Configure(item Item) Item {
	if item.Title == "" && item.Subtitle == "" {
		item.Size.Height = v.f.height
		return item
	}
	lines := lipgloss.Height(v.Render(item, int(item.Size.Width)))
	item.Size.Height = max(float64(lines), v.f.height)
	return item
}

func (v *textView) Render(item Item, width int) string {
	title, sub := v.f.title, v.f.subtitle
	if width > 0 {
		title = title.Width(width)
		sub = sub.Width(width)
	}
	if item.Subtitle == "" {
		return title.Render(item.Title)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title.Render(item.Title), sub.Render(item.Subtitle))
}

// CardFactory builds fixed-size bordered cards, used for carousels and
// grids. A zero width fills the cell. Items may override the size through
// meta "width" and "height".
type CardFactory struct {
	kind   string
	size   Size
	border lipgloss.Style
}

// NewCardFactory creates a card factory with the given default size.
func NewCardFactory(kind string, def Size) *CardFactory {
	return &CardFactory{
		kind:   kind,
		size:   def,
		border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
	}
}

func (f *CardFactory) NewView() View { return &cardView{f: f} }

func (f *CardFactory) DefaultSize(width float64) Size {
	s := f.size
	if s.Width == 0 {
		s.Width = width
	}
	return s
}

type cardView struct {
	f *CardFactory
}

func (v *cardView) Kind() string { return v.f.kind }

func (v *cardView) Configure(item Item) Item {
	item.Size.Width = item.MetaFloat("width", item.Size.Width)
	item.Size.Height = item.MetaFloat("height", v.f.size.Height)
	return item
}

func (v *cardView) Render(item Item, width int) string {
	inner := max(width-2, 1)
	lines := []string{runewidth.Truncate(item.Title, inner, "…")}
	if item.Subtitle != "" {
		lines = append(lines, runewidth.Truncate(item.Subtitle, inner, "…"))
	}
	if item.Image != "" {
		lines = append(lines, runewidth.Truncate("▣ "+item.Image, inner, "…"))
	}
	style := v.f.border.Width(inner)
	if h := int(item.Size.Height) - 2; h > 0 {
		style = style.Height(h).MaxHeight(h + 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// CompositeFactory builds views whose items nest whole components in
// Item.Children. The item height is the sum of the laid out children.
type CompositeFactory struct {
	kind string
}

// NewCompositeFactory creates a composite factory.
func NewCompositeFactory(kind string) *CompositeFactory {
	return &CompositeFactory{kind: kind}
}

func (f *CompositeFactory) NewView() View { return &compositeView{kind: f.kind} }

func (f *CompositeFactory) DefaultSize(width float64) Size {
	return Size{Width: width}
}

type compositeView struct {
	kind   string
	engine *Engine
}

func (v *compositeView) bindEngine(e *Engine) { v.engine = e }

func (v *compositeView) Kind() string { return v.kind }

func (v *compositeView) Configure(item Item) Item {
	if v.engine == nil || len(item.Children) == 0 {
		return item
	}
	children := make([]Component, len(item.Children))
	var h float64
	for i, child := range item.Children {
		laid, cells := v.engine.Layout(child, item.Size.Width)
		v.engine.Release(cells)
		laid.Index = i
		children[i] = laid
		h += laid.Size.Height
	}
	item.Children = children
	item.Size.Height = h
	return item
}

func (v *compositeView) Render(item Item, width int) string {
	if v.engine == nil {
		return ""
	}
	parts := make([]string, 0, len(item.Children))
	for _, child := range item.Children {
		laid, cells := v.engine.Layout(child, float64(width))
		parts = append(parts, renderComponent(laid, cells, v.engine.HeaderHeight(laid), 0))
		v.engine.Release(cells)
	}
	return strings.Join(parts, "\n")
}

// DefaultRegistry returns a registry with the built-in kinds registered and
// a text view as the fallback.
func DefaultRegistry(cfg LayoutConfig, opts ...RegistryOption) *Registry {
	r := NewRegistry(NewTextFactory("default", cfg.DefaultItemHeight("default")), opts...)
	r.Register(KindList, NewTextFactory(KindList, cfg.DefaultItemHeight(KindList)))
	r.Register(KindFeed, NewTextFactory(KindFeed, cfg.DefaultItemHeight(KindFeed)))
	r.Register(KindGrid, NewCardFactory(KindGrid, Size{Height: cfg.DefaultItemHeight(KindGrid)}))
	r.Register(KindCarousel, NewCardFactory(KindCarousel, Size{Width: cfg.CardWidth, Height: cfg.DefaultItemHeight(KindCarousel)}))
	r.Register(KindComposite, NewCompositeFactory(KindComposite))
	return r
}
