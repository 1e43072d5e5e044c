package spots

import (
	"fmt"
	"reflect"
	"strconv"
)

// Item is the data behind one cell of a component.
// Identity is positional: Index is its position inside the owning
// component and is rewritten whenever the item list changes.
type Item struct {
	Index    int            `json:"index" yaml:"index"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string         `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Image    string         `json:"image,omitempty" yaml:"image,omitempty"`
	Kind     string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Action   string         `json:"action,omitempty" yaml:"action,omitempty"`
	Size     Size           `json:"size" yaml:"size"`
	Meta     map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`

	// Children holds nested components for composite cells.
	Children []Component `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasAction reports whether the item carries an action identifier.
func (it Item) HasAction() bool {
	return it.Action != ""
}

// MetaString returns meta[key] as a string, or def when missing.
func (it Item) MetaString(key, def string) string {
	return metaString(it.Meta, key, def)
}

// MetaFloat returns meta[key] as a float64, or def when missing or not numeric.
func (it Item) MetaFloat(key string, def float64) float64 {
	return metaFloat(it.Meta, key, def)
}

// MetaBool returns meta[key] as a bool, or def when missing.
func (it Item) MetaBool(key string, def bool) bool {
	return metaBool(it.Meta, key, def)
}

// Equal compares item content. Index and Size are ignored: they are
// derived by the layout pass, not by the data source.
func (it Item) Equal(other Item) bool {
	if it.Title != other.Title || it.Subtitle != other.Subtitle ||
		it.Image != other.Image || it.Kind != other.Kind || it.Action != other.Action {
		return false
	}
	if len(it.Meta) != len(other.Meta) || len(it.Children) != len(other.Children) {
		return false
	}
	if len(it.Meta) > 0 && !reflect.DeepEqual(it.Meta, other.Meta) {
		return false
	}
	for i := range it.Children {
		if !it.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

func (it Item) String() string {
	return fmt.Sprintf("Item{%d %q kind=%q h=%g}", it.Index, it.Title, it.Kind, it.Size.Height)
}

// reindex rewrites Index on every item so it matches its position.
func reindex(items []Item) {
	for i := range items {
		items[i].Index = i
	}
}

func metaString(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func metaFloat(m map[string]any, key string, def float64) float64 {
	v, ok := m[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

func metaBool(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// toFloat accepts every numeric shape produced by the JSON, YAML and TOML
// decoders.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
