package spots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a declarative input format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Warning reports a malformed field that was replaced by its zero value.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Message
}

// Warnings is the list of problems found while decoding.
type Warnings []Warning

func (ws Warnings) String() string {
	lines := make([]string, len(ws))
	for i, w := range ws {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Decode parses a declarative description. The top level is either
// {components: [...]}, a single component, or a bare list of components.
//
// Only syntax errors are returned as errors. Fields of the wrong type, and
// unknown fields, become warnings and the affected fields keep their zero
// values.
func Decode(data []byte, format Format) ([]Component, Warnings, error) {
	var root any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, nil, fmt.Errorf("decode toml: %w", err)
		}
		root = m
	default:
		return nil, nil, fmt.Errorf("decode %q: %w", format, ErrUnknownFormat)
	}

	var d decoder
	return d.root(root), d.warnings, nil
}

type decoder struct {
	warnings Warnings
}

func (d *decoder) warn(path, format string, args ...any) {
	d.warnings = append(d.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

var (
	componentFields = fieldSet("index", "title", "kind", "span", "items", "size", "meta")
	itemFields      = fieldSet("index", "title", "subtitle", "image", "kind", "action", "size", "meta", "children")
)

func fieldSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func (d *decoder) root(v any) []Component {
	switch root := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if cs, ok := root["components"]; ok {
			return d.components("components", cs)
		}
		c := d.component("$", root)
		return []Component{c}
	}
	if list, ok := asList(v); ok {
		return d.components("$", list)
	}
	d.warn("$", "expected an object or a list, got %T", v)
	return nil
}

func (d *decoder) components(path string, v any) []Component {
	list, ok := asList(v)
	if !ok {
		d.warn(path, "expected a list of components, got %T", v)
		return nil
	}
	out := make([]Component, 0, len(list))
	for i, el := range list {
		p := fmt.Sprintf("%s[%d]", path, i)
		m, ok := el.(map[string]any)
		if !ok {
			d.warn(p, "expected a component object, got %T", el)
			continue
		}
		c := d.component(p, m)
		c.Index = len(out)
		out = append(out, c)
	}
	return out
}

func (d *decoder) component(path string, m map[string]any) Component {
	d.unknown(path, m, componentFields)
	c := Component{
		Title: d.str(path, m, "title"),
		Kind:  d.str(path, m, "kind"),
		Span:  d.num(path, m, "span"),
		Size:  d.size(path, m),
		Meta:  d.meta(path, m),
	}
	if c.Kind == "" {
		d.warn(path+".kind", "missing kind")
	}
	if v := m["items"]; v != nil {
		c.Items = d.items(path+".items", v)
	}
	return c
}

func (d *decoder) items(path string, v any) []Item {
	list, ok := asList(v)
	if !ok {
		d.warn(path, "expected a list of items, got %T", v)
		return nil
	}
	out := make([]Item, 0, len(list))
	for i, el := range list {
		p := fmt.Sprintf("%s[%d]", path, i)
		m, ok := el.(map[string]any)
		if !ok {
			d.warn(p, "expected an item object, got %T", el)
			continue
		}
		d.unknown(p, m, itemFields)
		it := Item{
			Index:    len(out),
			Title:    d.str(p, m, "title"),
			Subtitle: d.str(p, m, "subtitle"),
			Image:    d.str(p, m, "image"),
			Kind:     d.str(p, m, "kind"),
			Action:   d.str(p, m, "action"),
			Size:     d.size(p, m),
			Meta:     d.meta(p, m),
		}
		if ch := m["children"]; ch != nil {
			it.Children = d.components(p+".children", ch)
		}
		out = append(out, it)
	}
	return out
}

func (d *decoder) unknown(path string, m map[string]any, known map[string]bool) {
	var extra []string
	for k := range m {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		d.warn(path+"."+k, "unknown field")
	}
}

func (d *decoder) str(path string, m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.warn(path+"."+key, "expected a string, got %T", v)
		return ""
	}
	return s
}

func (d *decoder) num(path string, m map[string]any, key string) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	f, ok := toFloat(v)
	if !ok {
		d.warn(path+"."+key, "expected a number, got %T", v)
		return 0
	}
	if clampDim(f) != f {
		d.warn(path+"."+key, "invalid value %v", f)
		return 0
	}
	return f
}

func (d *decoder) size(path string, m map[string]any) Size {
	v, ok := m["size"]
	if !ok || v == nil {
		return Size{}
	}
	sm, ok := v.(map[string]any)
	if !ok {
		d.warn(path+".size", "expected an object, got %T", v)
		return Size{}
	}
	p := path + ".size"
	return Size{Width: d.num(p, sm, "width"), Height: d.num(p, sm, "height")}
}

func (d *decoder) meta(path string, m map[string]any) map[string]any {
	v, ok := m["meta"]
	if !ok || v == nil {
		return nil
	}
	meta, ok := v.(map[string]any)
	if !ok {
		d.warn(path+".meta", "expected an object, got %T", v)
		return nil
	}
	return meta
}

// asList accepts the list shapes produced by the three decoders; TOML
// arrays of tables decode to []map[string]any.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// CheckKinds reports component and item kinds that have no registration
// of their own and would silently use the default view.
func CheckKinds(cs []Component, reg *Registry) Warnings {
	var ws Warnings
	var walk func(path string, cs []Component)
	check := func(path, kind string) {
		if kind == "" || reg.Has(kind) {
			return
		}
		msg := fmt.Sprintf("kind %q is not registered, using the default view", kind)
		if s, ok := reg.Suggest(kind); ok {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		ws = append(ws, Warning{Path: path, Message: msg})
	}
	walk = func(path string, cs []Component) {
		for i, c := range cs {
			p := fmt.Sprintf("%s[%d]", path, i)
			check(p+".kind", c.Kind)
			for j, it := range c.Items {
				ip := fmt.Sprintf("%s.items[%d]", p, j)
				check(ip+".kind", it.Kind)
				walk(ip+".children", it.Children)
			}
		}
	}
	walk("components", cs)
	return ws
}

// Encode writes components in the {components: [...]} shape.
func Encode(cs []Component, format Format) ([]byte, error) {
	doc := struct {
		Components []Component `json:"components" yaml:"components"`
	}{cs}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("encode %q: %w", format, ErrUnknownFormat)
}
