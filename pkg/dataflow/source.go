package dataflow

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// SourceBase is a zero-input node that holds a single full frame and
// samples it causally: fit returns the union of the rows selected by
// the fit intervals, predict the union selected by the predict
// intervals. Unset intervals mean the whole frame. Each call returns a
// fresh copy, so predict windows can be swapped and re-run without
// re-fitting.
type SourceBase struct {
	FitPredictBase
	df               *frame.Frame
	fitIntervals     []frame.Interval
	predictIntervals []frame.Interval
}

// NewSourceBase builds a source with no inputs and a single output
// slot. Empty output defaults to df_out.
func NewSourceBase(id, output string) SourceBase {
	if output == "" {
		output = DefaultOutput
	}
	return SourceBase{
		FitPredictBase: NewFitPredictBase(id, []string{}, []string{output}),
	}
}

// SetFitIntervals configures the training sample windows.
func (s *SourceBase) SetFitIntervals(intervals []frame.Interval) error {
	if err := frame.ValidateIntervals(intervals); err != nil {
		return fmt.Errorf("node %q: fit intervals: %w", s.ID(), err)
	}
	s.fitIntervals = intervals
	return nil
}

// SetPredictIntervals configures the out-of-sample windows.
func (s *SourceBase) SetPredictIntervals(intervals []frame.Interval) error {
	if err := frame.ValidateIntervals(intervals); err != nil {
		return fmt.Errorf("node %q: predict intervals: %w", s.ID(), err)
	}
	s.predictIntervals = intervals
	return nil
}

// SetFrame installs the full held frame.
func (s *SourceBase) SetFrame(df *frame.Frame) { s.df = df }

// Frame returns the full held frame.
func (s *SourceBase) Frame() (*frame.Frame, error) {
	if s.df == nil {
		return nil, fmt.Errorf("node %q: no frame loaded", s.ID())
	}
	return s.df, nil
}

func (s *SourceBase) Fit(map[string]*frame.Frame) (Outputs, error) {
	return s.sample(MethodFit, s.fitIntervals)
}

func (s *SourceBase) Predict(map[string]*frame.Frame) (Outputs, error) {
	return s.sample(MethodPredict, s.predictIntervals)
}

func (s *SourceBase) sample(method Method, intervals []frame.Interval) (Outputs, error) {
	if s.df == nil {
		return nil, fmt.Errorf("node %q: no frame loaded", s.ID())
	}
	sampled, err := s.df.SliceIntervals(intervals)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", s.ID(), err)
	}
	if sampled.NumRows() == 0 {
		return nil, fmt.Errorf("node %q: no data to %s on: intervals select an empty sample", s.ID(), method)
	}
	s.SetInfo(method, Info{
		string(method) + "_df_info": sampled.Summary(),
		"rows":                      sampled.NumRows(),
		"cols":                      sampled.NumCols(),
	})
	return Outputs{s.SingleOutputName(): sampled}, nil
}

// FrameSource is a source over an in-memory frame.
type FrameSource struct {
	SourceBase
}

// NewFrameSource wraps an existing frame as a source node.
func NewFrameSource(id string, df *frame.Frame) (*FrameSource, error) {
	if df == nil {
		return nil, fmt.Errorf("node %q: frame must not be nil", id)
	}
	src := &FrameSource{SourceBase: NewSourceBase(id, "")}
	src.SetFrame(df)
	return src, nil
}

// DiskSource lazily reads a CSV file on first fit or predict and
// optionally clamps it to [start, end] before interval sampling.
type DiskSource struct {
	SourceBase
	path  string
	start *time.Time
	end   *time.Time
}

// NewDiskSource builds a CSV-backed source. start/end (either may be
// nil) clamp the loaded data inclusively.
func NewDiskSource(id, path string, start, end *time.Time) *DiskSource {
	return &DiskSource{
		SourceBase: NewSourceBase(id, ""),
		path:       path,
		start:      start,
		end:        end,
	}
}

func (d *DiskSource) Fit(inputs map[string]*frame.Frame) (Outputs, error) {
	if err := d.lazyLoad(); err != nil {
		return nil, err
	}
	return d.SourceBase.Fit(inputs)
}

func (d *DiskSource) Predict(inputs map[string]*frame.Frame) (Outputs, error) {
	if err := d.lazyLoad(); err != nil {
		return nil, err
	}
	return d.SourceBase.Predict(inputs)
}

func (d *DiskSource) lazyLoad() error {
	if d.df != nil {
		return nil
	}
	file, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("node %q: %w", d.ID(), err)
	}
	defer file.Close()
	df, err := frame.ReadCSV(file)
	if err != nil {
		return fmt.Errorf("node %q: %s: %w", d.ID(), d.path, err)
	}
	clamped, err := df.SliceIntervals([]frame.Interval{{Start: d.start, End: d.end}})
	if err != nil {
		return fmt.Errorf("node %q: %w", d.ID(), err)
	}
	if clamped.NumRows() == 0 {
		return fmt.Errorf("node %q: %s: no rows within [start, end]", d.ID(), d.path)
	}
	d.df = clamped
	return nil
}

// RandomWalkSource generates a synthetic close/vol frame: prices are a
// cumulative sum of seeded Gaussian returns, volume is constant. Useful
// for experiments that need reproducible data without a disk fixture.
type RandomWalkSource struct {
	SourceBase
	start time.Time
	end   time.Time
	freq  time.Duration
	scale float64
	seed  int64
}

// NewRandomWalkSource builds the generator. scale <= 0 defaults to 1.
func NewRandomWalkSource(id string, start, end time.Time, freq time.Duration, scale float64, seed int64) (*RandomWalkSource, error) {
	if freq <= 0 {
		return nil, fmt.Errorf("node %q: frequency must be positive, got %s", id, freq)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("node %q: end %s before start %s", id, end, start)
	}
	if scale <= 0 {
		scale = 1
	}
	return &RandomWalkSource{
		SourceBase: NewSourceBase(id, ""),
		start:      start,
		end:        end,
		freq:       freq,
		scale:      scale,
		seed:       seed,
	}, nil
}

func (r *RandomWalkSource) Fit(inputs map[string]*frame.Frame) (Outputs, error) {
	if err := r.lazyGenerate(); err != nil {
		return nil, err
	}
	return r.SourceBase.Fit(inputs)
}

func (r *RandomWalkSource) Predict(inputs map[string]*frame.Frame) (Outputs, error) {
	if err := r.lazyGenerate(); err != nil {
		return nil, err
	}
	return r.SourceBase.Predict(inputs)
}

func (r *RandomWalkSource) lazyGenerate() error {
	if r.df != nil {
		return nil
	}
	var index []time.Time
	for ts := r.start; !ts.After(r.end); ts = ts.Add(r.freq) {
		index = append(index, ts)
	}
	rng := rand.New(rand.NewSource(r.seed))
	close_ := make([]float64, len(index))
	vol := make([]float64, len(index))
	price := 0.0
	for i := range index {
		price += rng.NormFloat64() * r.scale
		close_[i] = price
		vol[i] = 100
	}
	df, err := frame.New(index,
		frame.Column{Name: "close", Values: close_},
		frame.Column{Name: "vol", Values: vol},
	)
	if err != nil {
		return fmt.Errorf("node %q: %w", r.ID(), err)
	}
	r.df = df
	return nil
}
