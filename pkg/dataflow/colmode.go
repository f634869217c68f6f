package dataflow

import (
	"fmt"
	"strings"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// ColMode selects how a node's transformed output is combined with its
// original input to produce the externally visible output.
type ColMode string

const (
	// ColModeMergeAll outer-joins the transformed columns onto the
	// original frame. Transformed names must not collide with original
	// names.
	ColModeMergeAll ColMode = "merge_all"
	// ColModeReplaceSelected drops the selected columns from the
	// original frame and joins the transformed columns in their place.
	ColModeReplaceSelected ColMode = "replace_selected"
	// ColModeReplaceAll discards the original frame entirely.
	ColModeReplaceAll ColMode = "replace_all"
)

// ParseColMode converts a string to a ColMode. Empty defaults to
// merge_all.
func ParseColMode(s string) (ColMode, error) {
	switch ColMode(s) {
	case "":
		return ColModeMergeAll, nil
	case ColModeMergeAll, ColModeReplaceSelected, ColModeReplaceAll:
		return ColMode(s), nil
	default:
		return "", fmt.Errorf("unsupported column mode %q", s)
	}
}

// ApplyColMode merges a transformed frame back into its source frame
// under the given policy.
//
// cols names the original columns that were transformed; it is only
// consulted by replace_selected. renameFn (nil for identity) is applied
// to the transformed column names before collision checking and
// merging. The result never contains duplicate column names: any
// collision is an error naming the offending columns.
func ApplyColMode(original, transformed *frame.Frame, cols []string, renameFn func(string) string, mode ColMode) (*frame.Frame, error) {
	if renameFn != nil {
		renamed, err := transformed.Rename(renameFn)
		if err != nil {
			return nil, err
		}
		transformed = renamed
	}
	switch mode {
	case "", ColModeMergeAll:
		if shared := sharedColumns(original, transformed); len(shared) > 0 {
			return nil, fmt.Errorf("transformed columns [%s] conflict with existing columns [%s]",
				strings.Join(shared, " "), strings.Join(original.Columns(), " "))
		}
		return original.OuterJoin(transformed)
	case ColModeReplaceSelected:
		remaining, err := original.Drop(cols)
		if err != nil {
			return nil, fmt.Errorf("replace_selected: %w", err)
		}
		if shared := sharedColumns(remaining, transformed); len(shared) > 0 {
			return nil, fmt.Errorf("transformed columns [%s] conflict with retained columns [%s]",
				strings.Join(shared, " "), strings.Join(remaining.Columns(), " "))
		}
		return remaining.OuterJoin(transformed)
	case ColModeReplaceAll:
		return transformed.Copy(), nil
	default:
		return nil, fmt.Errorf("unsupported column mode %q", mode)
	}
}

func sharedColumns(a, b *frame.Frame) []string {
	var shared []string
	for _, name := range b.Columns() {
		if a.HasColumn(name) {
			shared = append(shared, name)
		}
	}
	return shared
}
