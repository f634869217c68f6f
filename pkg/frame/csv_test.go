package frame_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

func TestCSV_RoundTrip(t *testing.T) {
	orig := frame.MustNew(dates(3),
		frame.Column{Name: "close", Values: []float64{100.5, math.NaN(), 101.25}},
		frame.Column{Name: "vol", Values: []float64{10, 20, 30}},
	)
	var buf bytes.Buffer
	if err := orig.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := frame.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !orig.Equal(back) {
		t.Errorf("round trip mismatch:\n  wrote %s\n  read  %s", orig.Summary(), back.Summary())
	}
}

func TestReadCSV_DateOnlyTimestamps(t *testing.T) {
	src := "timestamp,a\n2020-01-01,1\n2020-01-02,2\n"
	f, err := frame.ReadCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if f.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", f.NumRows())
	}
}

func TestReadCSV_BadTimestamp(t *testing.T) {
	src := "timestamp,a\nnot-a-date,1\n"
	if _, err := frame.ReadCSV(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for bad timestamp")
	}
}

func TestReadCSV_BadNumber(t *testing.T) {
	src := "timestamp,a\n2020-01-01,abc\n"
	if _, err := frame.ReadCSV(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for non-numeric cell")
	}
}

func TestReadCSV_NoValueColumns(t *testing.T) {
	src := "timestamp\n2020-01-01\n"
	if _, err := frame.ReadCSV(strings.NewReader(src)); err == nil {
		t.Fatal("expected error for missing value columns")
	}
}
