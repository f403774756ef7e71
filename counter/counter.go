package counter

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

const border = "+----------------------------------------------------------------+"

// Entry is the tally of one cut label
type Entry struct {
	Label    string
	Raw      int64
	Weighted float64
}

// Counter keeps raw and weighted pass counts per cut label
type Counter struct {
	name    string
	order   []string
	entries map[string]*Entry
}

func New(name string) *Counter {
	return &Counter{
		name:    name,
		entries: make(map[string]*Entry),
	}
}

func (c *Counter) Name() string {
	return c.name
}

func (c *Counter) Update(label string, weight float64) {
	e, ok := c.entries[label]
	if !ok {
		e = &Entry{Label: label}
		c.entries[label] = e
		c.order = append(c.order, label)
	}

	e.Raw++
	e.Weighted += weight
}

// Get returns a zero entry for labels never updated
func (c *Counter) Get(label string) Entry {
	if e, ok := c.entries[label]; ok {
		return *e
	}
	return Entry{Label: label}
}

// Entries sorted by raw count descending, equal counts in first-seen order
func (c *Counter) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, label := range c.order {
		out = append(out, *c.entries[label])
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Raw > b.Raw:
			return -1
		case a.Raw < b.Raw:
			return 1
		}
		return 0
	})
	return out
}

// Report writes the bordered cut-flow table
func (c *Counter) Report(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(border)
	sb.WriteByte('\n')
	for _, e := range c.Entries() {
		fmt.Fprintf(&sb, "|%20s : %20d : %17.2f |\n", e.Label, e.Raw, e.Weighted)
	}
	sb.WriteString(border)
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("unable to write cut flow of %s: %w", c.name, err)
	}
	return nil
}
