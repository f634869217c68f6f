package builder

import (
	"fmt"
	"math"
	"time"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

func strParam(params map[string]any, key string, required bool) (string, error) {
	raw, ok := params[key]
	if !ok {
		if required {
			return "", fmt.Errorf("param %q is required", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("param %q has type %T, want string", key, raw)
	}
	return s, nil
}

func floatParam(params map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("param %q has type %T, want number", key, raw)
	}
}

// intParam reads an integer without going through float64, so values
// beyond 2^53 keep their exact value.
func intParam(params map[string]any, key string, fallback int64) (int64, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("param %q value %d overflows int64", key, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("param %q has type %T, want integer", key, raw)
	}
}

func strSliceParam(params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("param %q has type %T, want list of strings", key, raw)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("param %q item %d has type %T, want string", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func durationParam(params map[string]any, key string, fallback time.Duration) (time.Duration, error) {
	s, err := strParam(params, key, false)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", key, err)
	}
	return d, nil
}

func timeParam(params map[string]any, key string) (*time.Time, error) {
	s, err := strParam(params, key, false)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	ts, err := frame.ParseTime(s)
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", key, err)
	}
	return &ts, nil
}
