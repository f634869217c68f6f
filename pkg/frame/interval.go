package frame

import (
	"fmt"
	"time"
)

// Interval is a closed sub-range of a time index. A nil bound is open
// and extends to the start (or end) of the available data. A fully open
// interval selects the entire range.
type Interval struct {
	Start *time.Time
	End   *time.Time
}

// Validate checks that Start <= End when both bounds are set.
func (iv Interval) Validate() error {
	if iv.Start != nil && iv.End != nil && iv.Start.After(*iv.End) {
		return fmt.Errorf("interval start %s is after end %s",
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether ts falls inside the closed interval.
func (iv Interval) Contains(ts time.Time) bool {
	if iv.Start != nil && ts.Before(*iv.Start) {
		return false
	}
	if iv.End != nil && ts.After(*iv.End) {
		return false
	}
	return true
}

// ValidateIntervals validates every interval in the list.
func ValidateIntervals(intervals []Interval) error {
	for i, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("interval %d: %w", i, err)
		}
	}
	return nil
}

// SliceIntervals returns a copy of the frame restricted to the union of
// rows selected by the intervals. Overlapping intervals select each row
// once. A nil or empty interval list selects the whole frame.
func (f *Frame) SliceIntervals(intervals []Interval) (*Frame, error) {
	if len(intervals) == 0 {
		return f.Copy(), nil
	}
	if err := ValidateIntervals(intervals); err != nil {
		return nil, err
	}
	var rows []int
	for i, ts := range f.index {
		for _, iv := range intervals {
			if iv.Contains(ts) {
				rows = append(rows, i)
				break
			}
		}
	}
	return f.TakeRows(rows)
}
