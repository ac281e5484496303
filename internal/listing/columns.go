package listing

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/localnerve/archhub/internal/form"
)

var ErrUnknownColumn = errors.New("unknown column")

// Column is one list column
type Column struct {
	Field    string `json:"field"`
	Title    string `json:"title"`
	Visible  bool   `json:"visible"`
	Order    int    `json:"order"`
	ListType string `json:"listType,omitempty"`
	Wide     bool   `json:"wide,omitempty"`
}

// Columns is the ordered column configuration of the list view
type Columns struct {
	cols []Column
}

// NewColumns derives the list columns from the form fields marked isList,
// ordered by sequence. Primary fields are visible.
func NewColumns(meta *form.Metadata) *Columns {
	fields := meta.Fields()
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Sequence < fields[j].Sequence
	})

	c := &Columns{}
	for _, f := range fields {
		if !f.IsList {
			continue
		}
		title := f.Heading
		if title == "" {
			title = f.Title
		}
		if title == "" {
			title = f.Key
		}
		c.cols = append(c.cols, Column{
			Field:    f.Key,
			Title:    title,
			Visible:  f.IsPrimary,
			Order:    len(c.cols),
			ListType: f.ListType,
			Wide:     f.ColumnSize == 12,
		})
	}
	return c
}

// All returns every column in display order
func (c *Columns) All() []Column {
	return slices.Clone(c.cols)
}

// Visible returns the visible columns in display order
func (c *Columns) Visible() []Column {
	out := make([]Column, 0, len(c.cols))
	for _, col := range c.cols {
		if col.Visible {
			out = append(out, col)
		}
	}
	return out
}

func (c *Columns) index(field string) int {
	return slices.IndexFunc(c.cols, func(col Column) bool { return col.Field == field })
}

// Toggle flips the visibility of field and returns the new state
func (c *Columns) Toggle(field string) (bool, error) {
	i := c.index(field)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownColumn, field)
	}
	c.cols[i].Visible = !c.cols[i].Visible
	return c.cols[i].Visible, nil
}

// ShowAll makes every column visible
func (c *Columns) ShowAll() {
	for i := range c.cols {
		c.cols[i].Visible = true
	}
}

// Move places the column named from at the position of the column named to,
// as a drag and drop does.
func (c *Columns) Move(from, to string) error {
	i, j := c.index(from), c.index(to)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, from)
	}
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, to)
	}
	if i == j {
		return nil
	}

	col := c.cols[i]
	c.cols = slices.Delete(c.cols, i, i+1)
	c.cols = slices.Insert(c.cols, j, col)
	c.renumber()
	return nil
}

// Select returns a copy showing exactly fields, in the given order, followed
// by the hidden remainder. An empty selection keeps the current configuration.
func (c *Columns) Select(fields []string) (*Columns, error) {
	if len(fields) == 0 {
		return &Columns{cols: c.All()}, nil
	}

	out := &Columns{cols: make([]Column, 0, len(c.cols))}
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		i := c.index(field)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, field)
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		col := c.cols[i]
		col.Visible = true
		out.cols = append(out.cols, col)
	}
	for _, col := range c.cols {
		if !seen[col.Field] {
			col.Visible = false
			out.cols = append(out.cols, col)
		}
	}
	out.renumber()
	return out, nil
}

func (c *Columns) renumber() {
	for i := range c.cols {
		c.cols[i].Order = i
	}
}
