package spots

import (
	"log"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"
)

// View is a reusable cell. Configure is pure: it reads the item and returns
// it, possibly with a new Size. The caller writes the result back into the
// owning component.
type View interface {
	Kind() string
	Configure(item Item) Item
}

// Renderer is implemented by views that can draw themselves as text.
type Renderer interface {
	Render(item Item, width int) string
}

// Factory produces views for one kind. DefaultSize is what a view reports
// for a zero-valued item at the given cell width; its height is also the
// fallback when Configure leaves the height unset.
type Factory interface {
	NewView() View
	DefaultSize(width float64) Size
}

// NewFactory builds a Factory from a configure function. A zero def.Width
// means "fill the cell". configure may be nil, in which case views keep the
// item untouched and the default height applies.
func NewFactory(kind string, def Size, configure func(Item) Item) Factory {
	return &funcFactory{kind: kind, def: def, configure: configure}
}

type funcFactory struct {
	kind      string
	def       Size
	configure func(Item) Item
}

func (f *funcFactory) NewView() View {
	return &funcView{f: f}
}

func (f *funcFactory) DefaultSize(width float64) Size {
	s := f.def
	if s.Width == 0 {
		s.Width = width
	}
	return s
}

type funcView struct {
	f *funcFactory
}

func (v *funcView) Kind() string { return v.f.kind }

func (v *funcView) Configure(item Item) Item {
	if v.f.configure == nil {
		return item
	}
	return v.f.configure(item)
}

// Registry maps kind strings to factories with a single default fallback.
// Lookups never fail.
//
// A registry is meant to be filled during configuration. The first Resolve
// freezes it; later registrations still apply but bump Generation so that
// engines drop views built by replaced factories. WithStrictFreeze turns
// late registration into a panic.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	def        Factory
	frozen     bool
	strict     bool
	generation uint64
	log        logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrictFreeze makes registration after first use panic.
func WithStrictFreeze() RegistryOption {
	return func(r *Registry) { r.strict = true }
}

// WithRegistryLogger sets the logger used for registry warnings.
func WithRegistryLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) { r.log.l = l }
}

// NewRegistry creates a registry whose fallback is def.
func NewRegistry(def Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		def:       def,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register maps kind to factory, replacing any previous mapping.
func (r *Registry) Register(kind string, factory Factory) {
	if factory == nil {
		r.log.warnf("registry: ignoring nil factory for kind %q", kind)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lateMutation("register " + kind)
	r.factories[kind] = factory
}

// SetDefault replaces the fallback factory.
func (r *Registry) SetDefault(factory Factory) {
	if factory == nil {
		r.log.warnf("registry: ignoring nil default factory")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lateMutation("set default")
	r.def = factory
}

// lateMutation must be called with mu held.
func (r *Registry) lateMutation(what string) {
	if !r.frozen {
		return
	}
	if r.strict {
		panic("spots: registry mutated after first use: " + what)
	}
	r.generation++
	r.log.warnf("registry: %s after first use; invalidating views (generation %d)", what, r.generation)
}

// Resolve returns the factory registered for kind, or the default.
func (r *Registry) Resolve(kind string) Factory {
	r.mu.RLock()
	f, ok := r.factories[kind]
	def, frozen := r.def, r.frozen
	r.mu.RUnlock()
	if !frozen {
		r.Freeze()
	}
	if ok {
		return f
	}
	return def
}

// Default returns the fallback factory.
func (r *Registry) Default() Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Has reports whether kind has its own registration.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Freeze marks the registry as in use.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry has been used.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Generation increases every time a frozen registry is mutated.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Suggest returns the registered kind closest to kind by edit distance,
// if one is close enough to be a plausible typo.
func (r *Registry) Suggest(kind string) (string, bool) {
	best, bestDist := "", -1
	for _, k := range r.Kinds() {
		d := levenshtein.ComputeDistance(kind, k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist < 0 || bestDist == 0 {
		return "", false
	}
	limit := max(2, len(kind)/3)
	if bestDist > limit {
		return "", false
	}
	return best, true
}
