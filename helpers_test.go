package spots

// testConfig uses round numbers so expected offsets are easy to read.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Layout.HeaderHeight = 10
	cfg.Layout.CardWidth = 50
	cfg.Scroll = ScrollConfig{Bounce: 50, RefreshThreshold: 40, EndThreshold: 0}
	return cfg
}

// fixedRegistry returns factories whose views keep the default height.
func fixedRegistry() *Registry {
	reg := NewRegistry(NewFactory("default", Size{Height: 10}, nil))
	reg.Register("row", NewFactory("row", Size{Height: 20}, nil))
	reg.Register("tall", NewFactory("tall", Size{Height: 40}, nil))
	reg.Register(KindCarousel, NewFactory(KindCarousel, Size{Width: 50, Height: 30}, nil))
	return reg
}

func titled(titles ...string) []Item {
	items := make([]Item, len(titles))
	for i, t := range titles {
		items[i] = Item{Title: t}
	}
	return items
}

func titlesOf(c Component) []string {
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Title
	}
	return out
}
