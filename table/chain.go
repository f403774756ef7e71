package table

import (
	"errors"
	"fmt"
	"sort"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

// ChainTable concatenates tables that share one layout, like all files of one sample
type ChainTable struct {
	name   string
	tables []Table

	// first global row of every table
	starts []int
	rows   int
}

func Chain(name string, tables ...Table) *ChainTable {
	c := &ChainTable{
		name:   name,
		tables: tables,
		starts: make([]int, len(tables)),
	}

	for i, t := range tables {
		c.starts[i] = c.rows
		c.rows += t.Rows()
	}

	return c
}

func (c *ChainTable) Name() string {
	return c.name
}

func (c *ChainTable) Rows() int {
	return c.rows
}

func (c *ChainTable) Columns() []schema.Column {
	if len(c.tables) == 0 {
		return nil
	}
	return c.tables[0].Columns()
}

func (c *ChainTable) Column(name string) (Column, error) {
	if len(c.tables) == 0 {
		return nil, fmt.Errorf("%w: %s in empty chain %s", ErrColumnNotFound, name, c.name)
	}

	parts := make([]Column, len(c.tables))
	for i, t := range c.tables {
		col, err := t.Column(name)
		if err != nil {
			return nil, fmt.Errorf("unable to chain %s: %w", t.Name(), err)
		}
		parts[i] = col
	}

	return &chainColumn{chain: c, parts: parts}, nil
}

func (c *ChainTable) Close() error {
	var errs []error
	for _, t := range c.tables {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

// locate maps a global row to the table index and its local row
func (c *ChainTable) locate(row int) (int, int, error) {
	if row < 0 || row >= c.rows {
		return 0, 0, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, row, c.rows)
	}

	// last table starting at or before row, never an empty one
	idx := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > row }) - 1

	return idx, row - c.starts[idx], nil
}

type chainColumn struct {
	chain *ChainTable
	parts []Column
}

func (c *chainColumn) Info() schema.Column {
	return c.parts[0].Info()
}

func (c *chainColumn) Bounds() (schema.BoundsFloat, error) {
	result := schema.BoundsFloat{}
	seen := false

	for i, part := range c.parts {
		if c.chain.tables[i].Rows() == 0 {
			continue
		}

		b, err := part.Bounds()
		if err != nil {
			return result, err
		}

		if !seen {
			result = b
			seen = true
			continue
		}
		result.Morph(b)
	}

	return result, nil
}

func (c *chainColumn) Float32s(row int, out []float32) (int, error) {
	idx, local, err := c.chain.locate(row)
	if err != nil {
		return 0, err
	}
	return c.parts[idx].Float32s(local, out)
}

func (c *chainColumn) Int32s(row int, out []int32) (int, error) {
	idx, local, err := c.chain.locate(row)
	if err != nil {
		return 0, err
	}
	return c.parts[idx].Int32s(local, out)
}

func (c *chainColumn) Uint32s(row int, out []uint32) (int, error) {
	idx, local, err := c.chain.locate(row)
	if err != nil {
		return 0, err
	}
	return c.parts[idx].Uint32s(local, out)
}

func (c *chainColumn) Bools(row int, out []bool) (int, error) {
	idx, local, err := c.chain.locate(row)
	if err != nil {
		return 0, err
	}
	return c.parts[idx].Bools(local, out)
}
