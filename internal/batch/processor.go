package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch size bounds.
const (
	DefaultBatchSize = 40
	MinBatchSize     = 1
	MaxBatchSize     = 1000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Callback processes one batch. batchIndex is 0-based.
type Callback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// ProgressCallback is invoked after each completed batch.
type ProgressCallback func(snapshot ProgressSnapshot)

// Processor splits items into fixed-size batches.
type Processor[T any] struct {
	batchSize  int
	onProgress ProgressCallback
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// NewProcessorWithDefaults creates a processor with DefaultBatchSize.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{batchSize: DefaultBatchSize}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int {
	return p.batchSize
}

// Batches returns the [start, end) boundaries for totalItems items.
func (p *Processor[T]) Batches(totalItems int) [][2]int {
	n := (totalItems + p.batchSize - 1) / p.batchSize
	out := make([][2]int, n)
	for i := 0; i < n; i++ {
		start := i * p.batchSize
		out[i] = [2]int{start, min(start+p.batchSize, totalItems)}
	}
	return out
}

// Process runs callback on each batch in order and stops on the first error.
// An empty items slice is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback Callback[T]) error {
	if callback == nil {
		return ErrNilCallback
	}

	bounds := p.Batches(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize)
	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := items[b[0]:b[1]]
		if err := callback(ctx, batch, i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
		p.report(progress, len(batch))
	}
	return nil
}

// ProcessConcurrent runs callback on every batch with at most maxConcurrency
// batches in flight. The first error cancels the remaining batches and is
// returned.
func (p *Processor[T]) ProcessConcurrent(
	ctx context.Context,
	items []T,
	callback Callback[T],
	maxConcurrency int,
) error {
	if callback == nil {
		return ErrNilCallback
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	bounds := p.Batches(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, b := range bounds {
		i := i
		batch := items[b[0]:b[1]]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := callback(gctx, batch, i); err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			p.report(progress, len(batch))
			return nil
		})
	}
	return g.Wait()
}

// Map runs fn on every batch concurrently and concatenates the results in
// batch order.
func Map[T, R any](
	ctx context.Context,
	p *Processor[T],
	items []T,
	maxConcurrency int,
	fn func(ctx context.Context, batch []T) ([]R, error),
) ([]R, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}

	results := make([][]R, len(p.Batches(len(items))))
	err := p.ProcessConcurrent(ctx, items, func(ctx context.Context, batch []T, batchIndex int) error {
		out, err := fn(ctx, batch)
		if err != nil {
			return err
		}
		results[batchIndex] = out
		return nil
	}, maxConcurrency)
	if err != nil {
		return nil, err
	}

	var merged []R
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

func (p *Processor[T]) report(progress *Progress, n int) {
	progress.AddProcessed(n)
	if p.onProgress != nil {
		p.onProgress(progress.Snapshot())
	}
}
