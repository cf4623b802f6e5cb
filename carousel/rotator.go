// Package carousel drives the landing page's auto-advancing feature slides.
package carousel

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultInterval = 3 * time.Second

type Rotator struct {
	count    int
	interval time.Duration
	log      *zap.Logger

	mu    sync.RWMutex
	index int
	subs  []func(index int)
}

func NewRotator(count int, interval time.Duration, log *zap.Logger) (*Rotator, error) {
	if count <= 0 {
		return nil, errors.New("carousel: count must be positive")
	}
	if interval <= 0 {
		return nil, errors.New("carousel: interval must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Rotator{count: count, interval: interval, log: log}, nil
}

// OnAdvance registers fn to be called with the new index after every advance.
// Callbacks run on the rotator's goroutine and must not block.
func (r *Rotator) OnAdvance(fn func(index int)) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

func (r *Rotator) Current() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}

func (r *Rotator) Count() int { return r.count }

func (r *Rotator) Interval() time.Duration { return r.interval }

// Advance moves to the next slide, wrapping after the last one.
func (r *Rotator) Advance() int {
	r.mu.Lock()
	r.index = (r.index + 1) % r.count
	idx := r.index
	subs := append([]func(int){}, r.subs...)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(idx)
	}
	return idx
}

// Run advances every interval until ctx is cancelled.
func (r *Rotator) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("[Carousel] rotation started", zap.Duration("interval", r.interval), zap.Int("features", r.count))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("[Carousel] rotation stopped")
			return nil
		case <-ticker.C:
			r.Advance()
		}
	}
}
