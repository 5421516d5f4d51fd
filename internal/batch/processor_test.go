package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestProcessor_Process(t *testing.T) {
	items := sequence(25)

	t.Run("Sequential", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)
		var sizes []int

		err = p.Process(context.Background(), items, func(_ context.Context, batch []int, batchIndex int) error {
			assert.Equal(t, len(sizes), batchIndex)
			sizes = append(sizes, len(batch))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{10, 10, 5}, sizes)
	})

	t.Run("ErrorStops", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		calls := 0
		err := p.Process(context.Background(), items, func(context.Context, []int, int) error {
			calls++
			if calls == 2 {
				return errors.New("fail")
			}
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch 1 failed")
		assert.Equal(t, 2, calls)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		called := false
		err := p.Process(context.Background(), nil, func(context.Context, []int, int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("NilCallback", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		assert.ErrorIs(t, p.Process(context.Background(), items, nil), ErrNilCallback)
	})

	t.Run("Cancelled", func(t *testing.T) {
		p, _ := NewProcessor[int](5)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Process(ctx, items, func(context.Context, []int, int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewProcessor_InvalidBatchSize(t *testing.T) {
	_, err := NewProcessor[int](0)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
	_, err = NewProcessor[int](MaxBatchSize + 1)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestProcessor_Batches(t *testing.T) {
	p, _ := NewProcessor[string](40)
	assert.Equal(t, [][2]int{{0, 40}, {40, 80}, {80, 85}}, p.Batches(85))
	assert.Empty(t, p.Batches(0))
	assert.Equal(t, 40, p.BatchSize())
}

func TestProcessor_ProcessConcurrent(t *testing.T) {
	items := sequence(25)

	t.Run("AllBatches", func(t *testing.T) {
		p, _ := NewProcessor[int](5)
		var processed int32
		var mu sync.Mutex
		var snapshots []ProgressSnapshot
		p.WithProgressCallback(func(s ProgressSnapshot) {
			mu.Lock()
			snapshots = append(snapshots, s)
			mu.Unlock()
		})

		err := p.ProcessConcurrent(context.Background(), items, func(_ context.Context, batch []int, _ int) error {
			atomic.AddInt32(&processed, int32(len(batch)))
			return nil
		}, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(25), processed)
		require.Len(t, snapshots, 5)

		last := snapshots[0]
		for _, s := range snapshots {
			if s.ProcessedBatches > last.ProcessedBatches {
				last = s
			}
		}
		assert.Equal(t, 5, last.ProcessedBatches)
		assert.InDelta(t, 100.0, last.PercentComplete, 0.001)
	})

	t.Run("LimitsConcurrency", func(t *testing.T) {
		p, _ := NewProcessor[int](1)
		var inFlight, peak int32
		err := p.ProcessConcurrent(context.Background(), items, func(context.Context, []int, int) error {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			atomic.AddInt32(&inFlight, -1)
			return nil
		}, 3)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak, int32(3))
	})

	t.Run("FirstErrorReturned", func(t *testing.T) {
		p, _ := NewProcessor[int](5)
		boom := errors.New("boom")
		err := p.ProcessConcurrent(context.Background(), items, func(_ context.Context, _ []int, i int) error {
			if i == 3 {
				return boom
			}
			return nil
		}, 1)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "batch 3 failed")
	})
}

func TestMap_PreservesOrder(t *testing.T) {
	p, _ := NewProcessor[int](3)
	out, err := Map(context.Background(), p, sequence(10), 4, func(_ context.Context, batch []int) ([]string, error) {
		res := make([]string, 0, len(batch))
		for _, n := range batch {
			res = append(res, string(rune('a'+n)))
		}
		return res, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, out)
}

func TestMap_Error(t *testing.T) {
	p, _ := NewProcessor[int](3)
	_, err := Map(context.Background(), p, sequence(10), 2, func(context.Context, []int) ([]int, error) {
		return nil, errors.New("nope")
	})
	assert.Error(t, err)

	_, err = Map[int, int](context.Background(), p, sequence(1), 1, nil)
	assert.ErrorIs(t, err, ErrNilCallback)
}

func TestProgress(t *testing.T) {
	p := NewProgress(10, 2, 5)
	assert.False(t, p.IsComplete())
	p.AddProcessed(5)
	s := p.Snapshot()
	assert.Equal(t, 1, s.ProcessedBatches)
	assert.InDelta(t, 50.0, s.PercentComplete, 0.001)
	p.AddProcessed(5)
	assert.True(t, p.IsComplete())
	assert.Equal(t, 0.0, NewProgress(0, 0, 5).Snapshot().PercentComplete)
}
