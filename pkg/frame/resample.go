package frame

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Resample buckets rows by truncating timestamps to rule and reduces
// each bucket's non-NaN values per column. Buckets with only NaN
// values yield NaN. The result index holds the bucket start times.
func (f *Frame) Resample(rule time.Duration, reduce func([]float64) float64) (*Frame, error) {
	if rule <= 0 {
		return nil, fmt.Errorf("resample: rule must be positive, got %s", rule)
	}
	if reduce == nil {
		return nil, fmt.Errorf("resample: reduce func must not be nil")
	}
	var buckets []time.Time
	rowsByBucket := make(map[time.Time][]int)
	for i, ts := range f.index {
		b := ts.Truncate(rule)
		if _, ok := rowsByBucket[b]; !ok {
			buckets = append(buckets, b)
		}
		rowsByBucket[b] = append(rowsByBucket[b], i)
	}
	out := &Frame{
		index: buckets,
		names: slices.Clone(f.names),
		data:  make(map[string][]float64, len(f.names)),
	}
	for _, name := range f.names {
		vals := make([]float64, len(buckets))
		for bi, b := range buckets {
			var kept []float64
			for _, row := range rowsByBucket[b] {
				if v := f.data[name][row]; !math.IsNaN(v) {
					kept = append(kept, v)
				}
			}
			if len(kept) == 0 {
				vals[bi] = math.NaN()
			} else {
				vals[bi] = reduce(kept)
			}
		}
		out.data[name] = vals
	}
	return out, nil
}
