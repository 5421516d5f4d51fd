package batch

import (
	"sync"
	"time"
)

const percentMultiplier = 100

// Progress tracks completed batches. It is safe for concurrent use.
type Progress struct {
	mu               sync.RWMutex
	totalItems       int
	processedItems   int
	totalBatches     int
	processedBatches int
	batchSize        int
	startTime        time.Time
}

// ProgressSnapshot is an immutable copy of Progress.
type ProgressSnapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	BatchSize        int
	PercentComplete  float64
	Elapsed          time.Duration
}

// NewProgress creates a new progress tracker.
func NewProgress(totalItems, totalBatches, batchSize int) *Progress {
	return &Progress{
		totalItems:   totalItems,
		totalBatches: totalBatches,
		batchSize:    batchSize,
		startTime:    time.Now(),
	}
}

// AddProcessed records one completed batch of n items.
func (p *Progress) AddProcessed(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += n
	p.processedBatches++
}

// IsComplete reports whether every item has been processed.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processedItems >= p.totalItems
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var pct float64
	if p.totalItems > 0 {
		pct = float64(p.processedItems) / float64(p.totalItems) * percentMultiplier
	}
	return ProgressSnapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		BatchSize:        p.batchSize,
		PercentComplete:  pct,
		Elapsed:          time.Since(p.startTime),
	}
}
