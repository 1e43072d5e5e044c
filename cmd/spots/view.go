package main

import (
	"fmt"
	"time"

	"spots"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Up, Down, PageUp, PageDown key.Binding
	Left, Right                key.Binding
	Top, Bottom, Refresh, Quit key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "b")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", " ", "f")),
	Left:     key.NewBinding(key.WithKeys("left", "h")),
	Right:    key.NewBinding(key.WithKeys("right", "l")),
	Top:      key.NewBinding(key.WithKeys("home", "g")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G")),
	Refresh:  key.NewBinding(key.WithKeys("r")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

var statusStyle = lipgloss.NewStyle().Reverse(true)

// edgeHandlers turns edge requests into commands. The controller calls it
// from inside Update, so it only records work; the fetch runs as a tea.Cmd
// and its result comes back as a message.
type edgeHandlers struct {
	pending []tea.Cmd
	pages   int
	loaded  int
}

type loadedMsg struct {
	req   *spots.EdgeRequest
	items []spots.Item
}

func (h *edgeHandlers) end(req *spots.EdgeRequest) {
	if h.loaded >= h.pages {
		req.Cancel()
		return
	}
	h.loaded++
	page := h.loaded
	h.pending = append(h.pending, fetch(req, func() []spots.Item {
		items := make([]spots.Item, 10)
		for i := range items {
			items[i] = spots.Item{
				Title:    fmt.Sprintf("Page %d, item %d", page, i+1),
				Subtitle: "loaded on reaching the end",
			}
		}
		return items
	}))
}

func (h *edgeHandlers) refresh(req *spots.EdgeRequest) {
	h.pending = append(h.pending, fetch(req, func() []spots.Item {
		return []spots.Item{{
			Title:    "Refreshed at " + time.Now().Format("15:04:05"),
			Subtitle: "pulled from the top",
		}}
	}))
}

// fetch builds items off the UI goroutine, honouring the request context.
func fetch(req *spots.EdgeRequest, build func() []spots.Item) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-req.Context().Done():
			return nil
		case <-time.After(300 * time.Millisecond):
		}
		return loadedMsg{req: req, items: build()}
	}
}

func (h *edgeHandlers) drain() tea.Cmd {
	cmds := h.pending
	h.pending = nil
	return tea.Batch(cmds...)
}

type model struct {
	env    *env
	status string
}

func browse(e *env, opts options) error {
	e.handlers.pages = opts.pages
	_, err := tea.NewProgram(&model{env: e}, tea.WithAltScreen()).Run()
	return err
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctl := m.env.ctl
	page := ctl.Composer().Bounds().Height

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ctl.Resize(float64(msg.Width), float64(msg.Height-1), nil)

	case loadedMsg:
		if err := msg.req.Complete(msg.items, nil); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("%d items added at the %s", len(msg.items), msg.req.Edge)
		}
		if msg.req.Edge == spots.EdgeBeginning {
			ctl.Scroll(0)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			ctl.ScrollBy(-1)
		case key.Matches(msg, keys.Down):
			ctl.ScrollBy(1)
		case key.Matches(msg, keys.PageUp):
			ctl.ScrollBy(-page)
		case key.Matches(msg, keys.PageDown):
			ctl.ScrollBy(page)
		case key.Matches(msg, keys.Top):
			ctl.Scroll(0)
		case key.Matches(msg, keys.Bottom):
			ctl.Scroll(ctl.Composer().MaxOffset())
		case key.Matches(msg, keys.Refresh):
			ctl.Scroll(-m.env.cfg.Scroll.Bounce)
		case key.Matches(msg, keys.Left):
			m.scrollCarousel(-m.env.cfg.Layout.CardWidth)
		case key.Matches(msg, keys.Right):
			m.scrollCarousel(m.env.cfg.Layout.CardWidth)
		}
	}
	return m, m.env.handlers.drain()
}

// scrollCarousel scrolls the first visible horizontal region.
func (m *model) scrollCarousel(dx float64) {
	ctl := m.env.ctl
	for i := 0; i < ctl.Len(); i++ {
		r, _ := ctl.Region(i)
		if r.Axis() != spots.Horizontal {
			continue
		}
		for _, v := range ctl.Composer().Visible() {
			if v == r {
				ctl.ScrollX(i, dx)
				return
			}
		}
	}
}

func (m *model) View() string {
	ctl := m.env.ctl
	comp := ctl.Composer()
	status := fmt.Sprintf(" %g/%g  %d components  %s",
		comp.ContentOffset(), comp.MaxOffset(), ctl.Len(), m.status)
	width := int(comp.Bounds().Width)
	return spots.Render(ctl) + "\n" + statusStyle.Width(width).MaxWidth(width).Render(status)
}
