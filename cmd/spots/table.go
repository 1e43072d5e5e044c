package main

import (
	"fmt"
	"strconv"

	"spots"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func layoutTable(ctl *spots.Controller) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "KIND", "TITLE", "ITEMS", "SPAN", "HEIGHT", "OFFSET", "STATE")
	for i, c := range ctl.Components() {
		r, _ := ctl.Region(i)
		t.Row(
			strconv.Itoa(i),
			c.Kind,
			c.Title,
			strconv.Itoa(c.Len()),
			strconv.Itoa(c.Columns()),
			fmt.Sprintf("%g", c.Size.Height),
			fmt.Sprintf("%g", r.Frame().Y),
			r.State().String(),
		)
	}
	size := ctl.Composer().ContentSize()
	return t.Render() + fmt.Sprintf("\ncontent %gx%g\n", size.Width, size.Height)
}
