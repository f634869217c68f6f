// Package frame implements the time-indexed table that flows along
// dataflow graph edges: ordered float64 columns over a strictly
// increasing time index.
package frame

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Column is a named series of values aligned to a Frame's index.
type Column struct {
	Name   string
	Values []float64
}

// Frame is a table of named float64 columns indexed by strictly
// increasing timestamps. Cells may hold NaN. Column order is preserved.
type Frame struct {
	index []time.Time
	names []string
	data  map[string][]float64
}

// New builds a Frame from an index and columns. The index must be
// strictly increasing, every column must match the index length, and
// column names must be unique and non-empty.
func New(index []time.Time, cols ...Column) (*Frame, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("index must be strictly increasing: index[%d]=%s is not after index[%d]=%s",
				i, index[i].Format(time.RFC3339), i-1, index[i-1].Format(time.RFC3339))
		}
	}
	f := &Frame{
		index: slices.Clone(index),
		data:  make(map[string][]float64, len(cols)),
	}
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column name must not be empty")
		}
		if _, ok := f.data[c.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if len(c.Values) != len(index) {
			return nil, fmt.Errorf("column %q has %d values for %d index entries",
				c.Name, len(c.Values), len(index))
		}
		f.names = append(f.names, c.Name)
		f.data[c.Name] = slices.Clone(c.Values)
	}
	return f, nil
}

// MustNew is New for static test/fixture data; it panics on error.
func MustNew(index []time.Time, cols ...Column) *Frame {
	f, err := New(index, cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// NumRows returns the index length.
func (f *Frame) NumRows() int { return len(f.index) }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.names) }

// Index returns a copy of the time index.
func (f *Frame) Index() []time.Time { return slices.Clone(f.index) }

// Columns returns the column names in order.
func (f *Frame) Columns() []string { return slices.Clone(f.names) }

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.data[name]
	return ok
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	vals, ok := f.data[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found (have %s)", name, strings.Join(f.names, ", "))
	}
	return slices.Clone(vals), nil
}

// At returns the cell at (row, column name).
func (f *Frame) At(row int, name string) (float64, error) {
	vals, ok := f.data[name]
	if !ok {
		return 0, fmt.Errorf("column %q not found", name)
	}
	if row < 0 || row >= len(f.index) {
		return 0, fmt.Errorf("row %d out of range [0, %d)", row, len(f.index))
	}
	return vals[row], nil
}

// Copy returns a deep copy.
func (f *Frame) Copy() *Frame {
	out := &Frame{
		index: slices.Clone(f.index),
		names: slices.Clone(f.names),
		data:  make(map[string][]float64, len(f.names)),
	}
	for name, vals := range f.data {
		out.data[name] = slices.Clone(vals)
	}
	return out
}

// Select returns a copy containing only the named columns, in the given
// order.
func (f *Frame) Select(names []string) (*Frame, error) {
	out := &Frame{
		index: slices.Clone(f.index),
		data:  make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		vals, ok := f.data[name]
		if !ok {
			return nil, fmt.Errorf("select: column %q not found", name)
		}
		if _, dup := out.data[name]; dup {
			return nil, fmt.Errorf("select: duplicate column %q", name)
		}
		out.names = append(out.names, name)
		out.data[name] = slices.Clone(vals)
	}
	return out, nil
}

// Drop returns a copy without the named columns. Every name must exist.
func (f *Frame) Drop(names []string) (*Frame, error) {
	for _, name := range names {
		if !f.HasColumn(name) {
			return nil, fmt.Errorf("drop: column %q not found", name)
		}
	}
	var keep []string
	for _, name := range f.names {
		if !slices.Contains(names, name) {
			keep = append(keep, name)
		}
	}
	return f.Select(keep)
}

// Rename returns a copy with column names mapped through fn. The mapped
// names must remain unique.
func (f *Frame) Rename(fn func(string) string) (*Frame, error) {
	out := &Frame{
		index: slices.Clone(f.index),
		data:  make(map[string][]float64, len(f.names)),
	}
	for _, name := range f.names {
		renamed := fn(name)
		if renamed == "" {
			return nil, fmt.Errorf("rename: column %q mapped to empty name", name)
		}
		if _, dup := out.data[renamed]; dup {
			return nil, fmt.Errorf("rename: duplicate column %q after rename", renamed)
		}
		out.names = append(out.names, renamed)
		out.data[renamed] = slices.Clone(f.data[name])
	}
	return out, nil
}

// OuterJoin joins other onto f by index: the result index is the sorted
// union of both indices, f's columns come first, and cells missing on
// either side are NaN. Column names must be disjoint.
func (f *Frame) OuterJoin(other *Frame) (*Frame, error) {
	for _, name := range other.names {
		if f.HasColumn(name) {
			return nil, fmt.Errorf("outer join: column %q present on both sides", name)
		}
	}
	union := unionIndex(f.index, other.index)
	out := &Frame{
		index: union,
		data:  make(map[string][]float64, len(f.names)+len(other.names)),
	}
	for _, src := range []*Frame{f, other} {
		pos := indexPositions(src.index, union)
		for _, name := range src.names {
			vals := make([]float64, len(union))
			for i := range vals {
				vals[i] = math.NaN()
			}
			for srcRow, outRow := range pos {
				vals[outRow] = src.data[name][srcRow]
			}
			out.names = append(out.names, name)
			out.data[name] = vals
		}
	}
	return out, nil
}

// TakeRows returns a copy restricted to the given row positions, which
// must be sorted and unique.
func (f *Frame) TakeRows(rows []int) (*Frame, error) {
	out := &Frame{
		index: make([]time.Time, 0, len(rows)),
		names: slices.Clone(f.names),
		data:  make(map[string][]float64, len(f.names)),
	}
	for _, r := range rows {
		if r < 0 || r >= len(f.index) {
			return nil, fmt.Errorf("row %d out of range [0, %d)", r, len(f.index))
		}
		out.index = append(out.index, f.index[r])
	}
	for _, name := range f.names {
		vals := make([]float64, 0, len(rows))
		for _, r := range rows {
			vals = append(vals, f.data[name][r])
		}
		out.data[name] = vals
	}
	return out, nil
}

// DropNaNRows returns a copy without the rows that contain any NaN.
func (f *Frame) DropNaNRows() *Frame {
	var rows []int
	for i := range f.index {
		hasNaN := false
		for _, name := range f.names {
			if math.IsNaN(f.data[name][i]) {
				hasNaN = true
				break
			}
		}
		if !hasNaN {
			rows = append(rows, i)
		}
	}
	out, _ := f.TakeRows(rows)
	return out
}

// Equal reports deep equality of index, column order, and values.
// NaN cells compare equal to NaN.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || len(f.index) != len(other.index) || !slices.Equal(f.names, other.names) {
		return false
	}
	for i := range f.index {
		if !f.index[i].Equal(other.index[i]) {
			return false
		}
	}
	for _, name := range f.names {
		a, b := f.data[name], other.data[name]
		for i := range a {
			if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
				return false
			}
		}
	}
	return true
}

// Summary returns a one-line diagnostic description of the frame.
func (f *Frame) Summary() string {
	if len(f.index) == 0 {
		return fmt.Sprintf("rows=0 cols=[%s]", strings.Join(f.names, " "))
	}
	return fmt.Sprintf("rows=%d cols=[%s] span=%s..%s",
		len(f.index),
		strings.Join(f.names, " "),
		f.index[0].Format(time.RFC3339),
		f.index[len(f.index)-1].Format(time.RFC3339))
}

// Reindex returns a copy aligned to the given strictly increasing
// index: rows absent from the new index are dropped and rows absent
// from the frame become NaN.
func (f *Frame) Reindex(index []time.Time) (*Frame, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("reindex: index must be strictly increasing")
		}
	}
	pos := indexPositions(f.index, index)
	out := &Frame{
		index: slices.Clone(index),
		names: slices.Clone(f.names),
		data:  make(map[string][]float64, len(f.names)),
	}
	for _, name := range f.names {
		vals := make([]float64, len(index))
		for i := range vals {
			vals[i] = math.NaN()
		}
		for srcRow, outRow := range pos {
			vals[outRow] = f.data[name][srcRow]
		}
		out.data[name] = vals
	}
	return out, nil
}

// IndexEqual reports whether both frames share an identical index.
func (f *Frame) IndexEqual(other *Frame) bool {
	if len(f.index) != len(other.index) {
		return false
	}
	for i := range f.index {
		if !f.index[i].Equal(other.index[i]) {
			return false
		}
	}
	return true
}

// unionIndex merges two strictly increasing indices into one.
func unionIndex(a, b []time.Time) []time.Time {
	out := make([]time.Time, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Before(b[j]):
			out = append(out, a[i])
			i++
		case b[j].Before(a[i]):
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// indexPositions maps each row of src to its position in union.
// Both indices are strictly increasing and src ⊆ union.
func indexPositions(src, union []time.Time) map[int]int {
	pos := make(map[int]int, len(src))
	j := 0
	for i, ts := range src {
		for j < len(union) && union[j].Before(ts) {
			j++
		}
		if j < len(union) && union[j].Equal(ts) {
			pos[i] = j
		}
	}
	return pos
}
