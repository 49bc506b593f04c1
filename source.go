package demgrid

import (
	"context"
	"fmt"
	"log/slog"
)

// A Source produces samples.
//
// The concrete types are TupleListSource, DelimitedTextSource,
// GeoTIFFSource, and SyntheticSource. Callers choose one per input, for
// example by file extension.
type Source interface {
	// Name returns a human readable name for the source, typically its
	// filename.
	Name() string

	// ReadSamples calls yield for every valid sample in the source, in
	// order. Rows that cannot be parsed are skipped and reported with
	// skip. A non-nil error means the source as a whole could not be read.
	ReadSamples(ctx context.Context, yield func(Sample), skip func(row int, err error)) error
}

// An unbufferedSource is a Source whose ReadSamples only fails when its
// context is done.
type unbufferedSource interface {
	Source
	unbuffered()
}

// An IngestResult counts what happened to the samples from one or more
// sources.
type IngestResult struct {
	Sources       int
	FailedSources int
	Samples       int
	Stored        int
	OutOfBounds   int
	Malformed     int
}

func (r *IngestResult) add(other IngestResult) {
	r.Sources += other.Sources
	r.FailedSources += other.FailedSources
	r.Samples += other.Samples
	r.Stored += other.Stored
	r.OutOfBounds += other.OutOfBounds
	r.Malformed += other.Malformed
}

// LogValue implements log/slog.LogValuer.
func (r IngestResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("sources", r.Sources),
		slog.Int("failed_sources", r.FailedSources),
		slog.Int("samples", r.Samples),
		slog.Int("stored", r.Stored),
		slog.Int("out_of_bounds", r.OutOfBounds),
		slog.Int("malformed", r.Malformed),
	)
}

// An IngestOption sets an option on Ingest or IngestAll.
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger. Failed sources are logged at error level and
// skipped rows at debug level. By default nothing is logged.
func WithLogger(logger *slog.Logger) IngestOption {
	return func(o *ingestOptions) {
		o.logger = logger
	}
}

func newIngestOptions(options []IngestOption) *ingestOptions {
	o := &ingestOptions{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// Ingest reads all samples from source and stores them in grid. Samples
// outside grid are dropped. If source returns an error then grid is not
// modified.
func Ingest(ctx context.Context, grid *Grid, source Source, options ...IngestOption) (IngestResult, error) {
	o := newIngestOptions(options)
	return ingest(ctx, grid, source, o)
}

func ingest(ctx context.Context, grid *Grid, source Source, o *ingestOptions) (IngestResult, error) {
	result := IngestResult{
		Sources: 1,
	}

	set := func(sample Sample) {
		result.Samples++
		if grid.Set(sample.Lat, sample.Lon, sample.Elevation) {
			result.Stored++
		} else {
			result.OutOfBounds++
		}
	}
	skip := func(row int, err error) {
		result.Malformed++
		o.logger.Debug("skipping row", "source", source.Name(), "row", row, "err", err)
	}

	// Unless the source can only fail by cancellation, read it completely
	// before touching grid so that a failure part way through does not leave
	// a partially applied source.
	var samples []Sample
	yield := set
	if _, ok := source.(unbufferedSource); !ok {
		yield = func(sample Sample) {
			samples = append(samples, sample)
		}
	}
	if err := source.ReadSamples(ctx, yield, skip); err != nil {
		sourcesFailed.Inc()
		return IngestResult{Sources: 1, FailedSources: 1}, fmt.Errorf("%s: %w", source.Name(), err)
	}
	for _, sample := range samples {
		set(sample)
	}

	sourcesIngested.Inc()
	samplesStored.Add(float64(result.Stored))
	samplesOutOfBounds.Add(float64(result.OutOfBounds))
	malformedRows.Add(float64(result.Malformed))
	return result, nil
}

// IngestAll ingests each of sources into grid in order. A source that fails
// is logged and skipped. IngestAll only returns an error if ctx is done.
func IngestAll(ctx context.Context, grid *Grid, sources []Source, options ...IngestOption) (IngestResult, error) {
	o := newIngestOptions(options)
	var total IngestResult
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		result, err := ingest(ctx, grid, source, o)
		total.add(result)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return total, ctxErr
			}
			o.logger.Error("skipping source", "source", source.Name(), "err", err)
			continue
		}
		o.logger.Info("processed source", "source", source.Name(), "result", result)
	}
	return total, nil
}
