package spots

// viewPool keeps released views keyed by their reuse identifier, which is
// the kind string. Pools belong to a registry generation: when the registry
// is mutated after first use every pooled view is dropped, since it may have
// been built by a factory that is no longer registered.
type viewPool struct {
	free       map[string][]View
	generation uint64
	created    int
	reused     int
}

func newViewPool() *viewPool {
	return &viewPool{free: make(map[string][]View)}
}

// sync drops pooled views if gen differs from the pool's generation.
func (p *viewPool) sync(gen uint64) {
	if gen == p.generation {
		return
	}
	clear(p.free)
	p.generation = gen
}

// get returns a pooled view for kind or builds one from f.
func (p *viewPool) get(kind string, f Factory) View {
	if free := p.free[kind]; len(free) > 0 {
		v := free[len(free)-1]
		free[len(free)-1] = nil
		p.free[kind] = free[:len(free)-1]
		p.reused++
		return v
	}
	p.created++
	return f.NewView()
}

// put returns a view to the pool under kind.
func (p *viewPool) put(kind string, v View) {
	if v == nil {
		return
	}
	p.free[kind] = append(p.free[kind], v)
}

// PoolStats reports view reuse counters.
type PoolStats struct {
	Created int
	Reused  int
	Idle    int
}

func (p *viewPool) stats() PoolStats {
	idle := 0
	for _, vs := range p.free {
		idle += len(vs)
	}
	return PoolStats{Created: p.created, Reused: p.reused, Idle: idle}
}
