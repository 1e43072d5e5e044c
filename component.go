package spots

import (
	"fmt"
	"reflect"
)

// Built-in component kinds.
const (
	KindList      = "list"
	KindGrid      = "grid"
	KindCarousel  = "carousel"
	KindFeed      = "feed"
	KindComposite = "composite"
)

// Component is one renderable section: a titled, ordered sequence of items
// laid out by kind. A component owns its items; they are never shared.
type Component struct {
	Index int            `json:"index" yaml:"index"`
	Title string         `json:"title,omitempty" yaml:"title,omitempty"`
	Kind  string         `json:"kind" yaml:"kind"`
	Span  float64        `json:"span,omitempty" yaml:"span,omitempty"`
	Items []Item         `json:"items" yaml:"items"`
	Size  Size           `json:"size" yaml:"size"`
	Meta  map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// NewComponent creates a component of the given kind holding items.
// Items are copied and reindexed.
func NewComponent(kind, title string, items ...Item) Component {
	c := Component{Kind: kind, Title: title, Span: 1}
	c.Items = append([]Item(nil), items...)
	reindex(c.Items)
	return c
}

// Axis returns the scroll axis implied by the kind.
func (c Component) Axis() Axis {
	if c.Kind == KindCarousel {
		return Horizontal
	}
	return Vertical
}

// Columns returns how many items share one row. Span values below one,
// including the zero value, mean a single column.
func (c Component) Columns() int {
	if c.Span < 1 {
		return 1
	}
	return int(c.Span)
}

// HasHeader reports whether a header is reserved above the items.
func (c Component) HasHeader() bool {
	return c.Title != ""
}

// Len returns the number of items.
func (c Component) Len() int {
	return len(c.Items)
}

// Item returns the item at index i.
func (c Component) Item(i int) (Item, bool) {
	if i < 0 || i >= len(c.Items) {
		return Item{}, false
	}
	return c.Items[i], true
}

// Clone returns a copy that shares no item storage with c.
func (c Component) Clone() Component {
	out := c
	out.Items = make([]Item, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// Equal compares component content, ignoring derived sizes and indexes.
func (c Component) Equal(other Component) bool {
	if c.Title != other.Title || c.Kind != other.Kind || c.Span != other.Span {
		return false
	}
	if len(c.Items) != len(other.Items) || len(c.Meta) != len(other.Meta) {
		return false
	}
	if len(c.Meta) > 0 && !reflect.DeepEqual(c.Meta, other.Meta) {
		return false
	}
	for i := range c.Items {
		if !c.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	return true
}

// MetaString returns meta[key] as a string, or def when missing.
func (c Component) MetaString(key, def string) string {
	return metaString(c.Meta, key, def)
}

// MetaFloat returns meta[key] as a float64, or def when missing.
func (c Component) MetaFloat(key string, def float64) float64 {
	return metaFloat(c.Meta, key, def)
}

func (c Component) String() string {
	return fmt.Sprintf("Component{%d %q kind=%q items=%d h=%g}", c.Index, c.Title, c.Kind, len(c.Items), c.Size.Height)
}
