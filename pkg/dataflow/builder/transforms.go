package builder

import (
	"math"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// ZScore standardizes every column: (x - mean) / std, computed over
// the non-NaN values of the frame it is given. As a stateless column
// func it sees only the causally sampled data the graph feeds it.
func ZScore(df *frame.Frame) (*frame.Frame, error) {
	cols := make([]frame.Column, 0, df.NumCols())
	for _, name := range df.Columns() {
		vals, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		mean, std := meanStd(vals)
		out := make([]float64, len(vals))
		for i, v := range vals {
			if math.IsNaN(v) || std == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = (v - mean) / std
			}
		}
		cols = append(cols, frame.Column{Name: name, Values: out})
	}
	return frame.New(df.Index(), cols...)
}

// Diff computes the first difference of every column; the first row is
// NaN.
func Diff(df *frame.Frame) (*frame.Frame, error) {
	cols := make([]frame.Column, 0, df.NumCols())
	for _, name := range df.Columns() {
		vals, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(vals))
		for i := range vals {
			if i == 0 {
				out[i] = math.NaN()
			} else {
				out[i] = vals[i] - vals[i-1]
			}
		}
		cols = append(cols, frame.Column{Name: name, Values: out})
	}
	return frame.New(df.Index(), cols...)
}

// meanStd returns the mean and sample standard deviation of the
// non-NaN values.
func meanStd(vals []float64) (float64, float64) {
	var kept []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN(), math.NaN()
	}
	mean := 0.0
	for _, v := range kept {
		mean += v
	}
	mean /= float64(len(kept))
	if len(kept) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range kept {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(kept)-1))
}
