package dataflow

import (
	"fmt"
	"time"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// NaNMode controls how a transformer treats NaN rows before applying
// its function.
type NaNMode string

const (
	NaNModeLeaveUnchanged NaNMode = "leave_unchanged"
	NaNModeDrop           NaNMode = "drop"
)

// ParseNaNMode converts a string to a NaNMode. Empty defaults to
// leave_unchanged.
func ParseNaNMode(s string) (NaNMode, error) {
	switch NaNMode(s) {
	case "":
		return NaNModeLeaveUnchanged, nil
	case NaNModeLeaveUnchanged, NaNModeDrop:
		return NaNMode(s), nil
	default:
		return "", fmt.Errorf("unrecognized nan_mode %q", s)
	}
}

// TransformFunc maps an input frame to an output frame plus diagnostic
// info. It must be stateless: the engine calls the same function for
// fit and predict.
type TransformFunc func(df *frame.Frame) (*frame.Frame, Info, error)

// Transformer is a stateless single-input single-output node. Fit and
// predict both delegate to the same transform function, so fit-time and
// predict-time behavior are identical by construction and no future
// information can leak into a stateful transform. Column-name
// uniqueness on both sides of the transform is guaranteed by the Frame
// type itself.
type Transformer struct {
	FitPredictBase
	transform TransformFunc
}

// NewTransformer builds a transformer around fn.
func NewTransformer(id string, fn TransformFunc) *Transformer {
	return &Transformer{
		FitPredictBase: NewFitPredictBase(id, nil, nil),
		transform:      fn,
	}
}

func (t *Transformer) Fit(inputs map[string]*frame.Frame) (Outputs, error) {
	return t.apply(MethodFit, inputs)
}

func (t *Transformer) Predict(inputs map[string]*frame.Frame) (Outputs, error) {
	return t.apply(MethodPredict, inputs)
}

func (t *Transformer) apply(method Method, inputs map[string]*frame.Frame) (Outputs, error) {
	in, ok := inputs[DefaultInput]
	if !ok || in == nil {
		return nil, fmt.Errorf("node %q: missing input %q", t.ID(), DefaultInput)
	}
	out, info, err := t.transform(in)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", t.ID(), err)
	}
	t.SetInfo(method, info)
	return Outputs{DefaultOutput: out}, nil
}

// ColumnFunc is a user transformation over the selected columns of a
// frame. The returned frame's index must be a subset of the input
// index.
type ColumnFunc func(df *frame.Frame) (*frame.Frame, error)

// ColumnTransformerConfig configures a ColumnTransformer. Zero values
// select all columns, identity renaming, merge_all, leave_unchanged.
type ColumnTransformerConfig struct {
	// Cols are the input columns to transform; nil means all columns,
	// pinned on the first invocation.
	Cols []string
	// RenameFunc maps transformed column names before merging.
	RenameFunc func(string) string
	ColMode    ColMode
	NaNMode    NaNMode
}

// ColumnTransformer applies a ColumnFunc to a column subset and merges
// the result back into the input under a column-merge policy. It never
// modifies the index: output rows are realigned to the input index.
type ColumnTransformer struct {
	*Transformer
	fn  ColumnFunc
	cfg ColumnTransformerConfig

	// fitCols pins the column set on first use when cfg.Cols is nil.
	fitCols            []string
	transformedColumns []string
}

// NewColumnTransformer builds a column transformer. The mode and NaN
// mode in cfg must be valid enumeration values.
func NewColumnTransformer(id string, fn ColumnFunc, cfg ColumnTransformerConfig) (*ColumnTransformer, error) {
	if fn == nil {
		return nil, fmt.Errorf("node %q: transform func must not be nil", id)
	}
	mode, err := ParseColMode(string(cfg.ColMode))
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	cfg.ColMode = mode
	nanMode, err := ParseNaNMode(string(cfg.NaNMode))
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	cfg.NaNMode = nanMode
	ct := &ColumnTransformer{fn: fn, cfg: cfg, fitCols: cfg.Cols}
	ct.Transformer = NewTransformer(id, ct.doTransform)
	return ct, nil
}

// TransformedColumns returns the column names produced by the last
// invocation. Erroring before any invocation mirrors the "called prior
// to graph execution" contract.
func (ct *ColumnTransformer) TransformedColumns() ([]string, error) {
	if ct.transformedColumns == nil {
		return nil, fmt.Errorf("node %q: no transformed columns; invoked prior to graph execution", ct.ID())
	}
	return ct.transformedColumns, nil
}

func (ct *ColumnTransformer) doTransform(df *frame.Frame) (*frame.Frame, Info, error) {
	dfIn := df.Copy()
	if ct.fitCols == nil {
		ct.fitCols = df.Columns()
	}
	work, err := df.Select(ct.fitCols)
	if err != nil {
		return nil, nil, err
	}
	if ct.cfg.NaNMode == NaNModeDrop {
		work = work.DropNaNRows()
	}
	out, err := ct.fn(work)
	if err != nil {
		return nil, nil, err
	}
	// Realign to the input index; Reindex drops rows the transform
	// invented and restores rows it removed as NaN, so the output index
	// always matches the input index afterwards.
	out, err = out.Reindex(dfIn.Index())
	if err != nil {
		return nil, nil, err
	}
	merged, err := ApplyColMode(dfIn, out, ct.fitCols, ct.cfg.RenameFunc, ct.cfg.ColMode)
	if err != nil {
		return nil, nil, err
	}
	renamed := out.Columns()
	if ct.cfg.RenameFunc != nil {
		for i, name := range renamed {
			renamed[i] = ct.cfg.RenameFunc(name)
		}
	}
	ct.transformedColumns = renamed
	info := Info{"df_transformed_info": merged.Summary()}
	return merged, info, nil
}

// AggFunc reduces a bucket of values to one. NaNs are skipped before
// the function is applied.
type AggFunc string

const (
	AggMean  AggFunc = "mean"
	AggSum   AggFunc = "sum"
	AggFirst AggFunc = "first"
	AggLast  AggFunc = "last"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// Resampler downsamples a frame to a coarser frequency: rows are
// bucketed by truncating timestamps to the rule and each bucket is
// reduced with the aggregation function. Buckets with no non-NaN
// values yield NaN.
type Resampler struct {
	*Transformer
}

// NewResampler builds a resampling transformer.
func NewResampler(id string, rule time.Duration, agg AggFunc) (*Resampler, error) {
	if rule <= 0 {
		return nil, fmt.Errorf("node %q: resample rule must be positive, got %s", id, rule)
	}
	reduce, err := aggReducer(agg)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	r := &Resampler{}
	r.Transformer = NewTransformer(id, func(df *frame.Frame) (*frame.Frame, Info, error) {
		out, err := df.Resample(rule, reduce)
		if err != nil {
			return nil, nil, err
		}
		return out, Info{"df_transformed_info": out.Summary()}, nil
	})
	return r, nil
}

func aggReducer(agg AggFunc) (func([]float64) float64, error) {
	switch agg {
	case AggMean:
		return func(vals []float64) float64 {
			sum := 0.0
			for _, v := range vals {
				sum += v
			}
			return sum / float64(len(vals))
		}, nil
	case AggSum:
		return func(vals []float64) float64 {
			sum := 0.0
			for _, v := range vals {
				sum += v
			}
			return sum
		}, nil
	case AggFirst:
		return func(vals []float64) float64 { return vals[0] }, nil
	case AggLast:
		return func(vals []float64) float64 { return vals[len(vals)-1] }, nil
	case AggMin:
		return func(vals []float64) float64 {
			m := vals[0]
			for _, v := range vals[1:] {
				if v < m {
					m = v
				}
			}
			return m
		}, nil
	case AggMax:
		return func(vals []float64) float64 {
			m := vals[0]
			for _, v := range vals[1:] {
				if v > m {
					m = v
				}
			}
			return m
		}, nil
	default:
		return nil, fmt.Errorf("unsupported aggregation %q", agg)
	}
}
