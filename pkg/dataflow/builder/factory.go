package builder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
)

// Constructor builds a node of one kind from its config params.
type Constructor func(id string, params map[string]any) (dataflow.FitPredictNode, error)

// Factory maps node kinds to constructors.
type Factory struct {
	ctors map[string]Constructor
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

// Register associates a constructor with a kind.
func (f *Factory) Register(kind string, ctor Constructor) {
	f.ctors[kind] = ctor
}

// Kinds returns the registered kind names, sorted.
func (f *Factory) Kinds() []string {
	kinds := make([]string, 0, len(f.ctors))
	for k := range f.ctors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New constructs a node of the given kind.
func (f *Factory) New(kind, id string, params map[string]any) (dataflow.FitPredictNode, error) {
	ctor, ok := f.ctors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q (registered: %s)", kind, strings.Join(f.Kinds(), ", "))
	}
	node, err := ctor(id, params)
	if err != nil {
		return nil, fmt.Errorf("node %q (kind=%q): %w", id, kind, err)
	}
	return node, nil
}

// DefaultFactory returns a factory with all built-in node kinds
// registered.
func DefaultFactory() *Factory {
	f := NewFactory()
	f.Register("disk_source", newDiskSource)
	f.Register("random_walk_source", newRandomWalkSource)
	f.Register("zscore", newZScore)
	f.Register("diff", newDiff)
	f.Register("resample", newResample)
	f.Register("vol_normalizer", newVolNormalizer)
	return f
}

// ─── built-in constructors ───────────────────────────────────────────────────

func newDiskSource(id string, params map[string]any) (dataflow.FitPredictNode, error) {
	path, err := strParam(params, "path", true)
	if err != nil {
		return nil, err
	}
	start, err := timeParam(params, "start")
	if err != nil {
		return nil, err
	}
	end, err := timeParam(params, "end")
	if err != nil {
		return nil, err
	}
	return dataflow.NewDiskSource(id, path, start, end), nil
}

func newRandomWalkSource(id string, params map[string]any) (dataflow.FitPredictNode, error) {
	start, err := timeParam(params, "start")
	if err != nil {
		return nil, err
	}
	end, err := timeParam(params, "end")
	if err != nil {
		return nil, err
	}
	if start == nil || end == nil {
		return nil, fmt.Errorf("params start and end are required")
	}
	freq, err := durationParam(params, "freq", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	scale, err := floatParam(params, "scale", 1)
	if err != nil {
		return nil, err
	}
	seed, err := intParam(params, "seed", 0)
	if err != nil {
		return nil, err
	}
	return dataflow.NewRandomWalkSource(id, *start, *end, freq, scale, seed)
}

func newZScore(id string, params map[string]any) (dataflow.FitPredictNode, error) {
	cfg, err := columnTransformerConfig(params, "_z")
	if err != nil {
		return nil, err
	}
	return dataflow.NewColumnTransformer(id, ZScore, cfg)
}

func newDiff(id string, params map[string]any) (dataflow.FitPredictNode, error) {
	cfg, err := columnTransformerConfig(params, "_d1")
	if err != nil {
		return nil, err
	}
	return dataflow.NewColumnTransformer(id, Diff, cfg)
}

func newResample(id string, params map[string]any) (dataflow.FitPredictNode, error) {
	rule, err := durationParam(params, "rule", 0)
	if err != nil {
		return nil, err
	}
	if rule <= 0 {
		return nil, fmt.Errorf("param rule is required")
	}
	agg, err := strParam(params, "agg", false)
	if err != nil {
		return nil, err
	}
	if agg == "" {
		agg = string(dataflow.AggMean)
	}
	return dataflow.NewResampler(id, rule, dataflow.AggFunc(agg))
}

func newVolNormalizer(id string, params map[string]any) (dataflow.FitPredictNode, error) {
	col, err := strParam(params, "col", true)
	if err != nil {
		return nil, err
	}
	target, err := floatParam(params, "target_volatility", 0)
	if err != nil {
		return nil, err
	}
	mode, err := strParam(params, "col_mode", false)
	if err != nil {
		return nil, err
	}
	return dataflow.NewVolatilityNormalizer(id, col, target, dataflow.ColMode(mode))
}

// columnTransformerConfig reads the shared cols/suffix/col_mode/nan_mode
// params for column-transformer kinds.
func columnTransformerConfig(params map[string]any, defaultSuffix string) (dataflow.ColumnTransformerConfig, error) {
	var cfg dataflow.ColumnTransformerConfig
	cols, err := strSliceParam(params, "cols")
	if err != nil {
		return cfg, err
	}
	suffix, err := strParam(params, "suffix", false)
	if err != nil {
		return cfg, err
	}
	if suffix == "" {
		suffix = defaultSuffix
	}
	colMode, err := strParam(params, "col_mode", false)
	if err != nil {
		return cfg, err
	}
	nanMode, err := strParam(params, "nan_mode", false)
	if err != nil {
		return cfg, err
	}
	cfg.Cols = cols
	cfg.RenameFunc = func(name string) string { return name + suffix }
	cfg.ColMode = dataflow.ColMode(colMode)
	cfg.NaNMode = dataflow.NaNMode(nanMode)
	return cfg, nil
}
