package spots

import "fmt"

// Changes lists item positions that differ between two item sequences.
// Identity is positional, so a changed item at the same index is an update
// and length differences show up as inserts or deletes at the tail.
type Changes struct {
	Inserted []int
	Deleted  []int
	Updated  []int
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Deleted) == 0 && len(c.Updated) == 0
}

func (c Changes) String() string {
	return fmt.Sprintf("+%d -%d ~%d", len(c.Inserted), len(c.Deleted), len(c.Updated))
}

// DiffItems compares old and new by content.
func DiffItems(old, new []Item) Changes {
	var ch Changes
	n := min(len(old), len(new))
	for i := 0; i < n; i++ {
		if !old[i].Equal(new[i]) {
			ch.Updated = append(ch.Updated, i)
		}
	}
	for i := n; i < len(new); i++ {
		ch.Inserted = append(ch.Inserted, i)
	}
	for i := n; i < len(old); i++ {
		ch.Deleted = append(ch.Deleted, i)
	}
	return ch
}
