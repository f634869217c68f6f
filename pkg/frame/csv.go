package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// Timestamp layouts accepted by ReadCSV, tried in order.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadCSV reads a frame from CSV. The first header column is the
// timestamp index; the remaining columns are parsed as float64, with
// empty cells and "NaN" becoming NaN.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("read csv: need a timestamp column and at least one value column")
	}
	index := make([]time.Time, 0, len(records)-1)
	cols := make([]Column, len(header)-1)
	for i, name := range header[1:] {
		cols[i].Name = name
	}
	for rowNum, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("read csv: row %d has %d fields, want %d", rowNum+2, len(rec), len(header))
		}
		ts, err := ParseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read csv: row %d: %w", rowNum+2, err)
		}
		index = append(index, ts)
		for i, cell := range rec[1:] {
			v := math.NaN()
			if cell != "" && cell != "NaN" {
				v, err = strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("read csv: row %d column %q: %w", rowNum+2, header[i+1], err)
				}
			}
			cols[i].Values = append(cols[i].Values, v)
		}
	}
	return New(index, cols...)
}

// WriteCSV writes the frame as CSV with a leading "timestamp" column in
// RFC3339. NaN cells are written empty.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"timestamp"}, f.names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for i, ts := range f.index {
		rec := make([]string, 0, len(header))
		rec = append(rec, ts.Format(time.RFC3339))
		for _, name := range f.names {
			v := f.data[name][i]
			if math.IsNaN(v) {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseTime parses a timestamp in any of the accepted CSV layouts
// (RFC3339, "2006-01-02 15:04:05", "2006-01-02").
func ParseTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
