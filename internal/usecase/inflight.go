package usecase

import (
	"context"
	"sync"

	"github.com/foodscout/backend/internal/domain"
)

// inflightCall is one network fetch shared between every caller that asked
// for the same SearchKey while it was running. The owner closes done exactly
// once; waiters read records only after done is closed.
type inflightCall struct {
	done    chan struct{}
	records []domain.FoodRecord
}

// wait blocks until the owning fetch completes or ctx is cancelled. The
// boolean is false on cancellation; the fetch itself keeps running for the
// remaining waiters.
func (c *inflightCall) wait(ctx context.Context) ([]domain.FoodRecord, bool) {
	select {
	case <-c.done:
		return c.records, true
	case <-ctx.Done():
		return nil, false
	}
}

// inflightRegistry maps SearchKeys to their single in-flight fetch. It is the
// sole source of truth for "is a fetch already running for this key".
type inflightRegistry struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{
		calls: make(map[string]*inflightCall),
	}
}

// begin returns the call for key and whether the caller owns it. The lookup
// and the insert are one atomic check-and-set, so exactly one caller per key
// becomes the owner.
func (r *inflightRegistry) begin(key string) (*inflightCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if call, ok := r.calls[key]; ok {
		return call, false
	}

	call := &inflightCall{done: make(chan struct{})}
	r.calls[key] = call
	return call, true
}

// complete publishes the result and removes the entry in one critical
// section, so a search arriving after completion always starts a fresh
// fetch and every registered waiter sees the identical slice.
func (r *inflightRegistry) complete(key string, call *inflightCall, records []domain.FoodRecord) {
	r.mu.Lock()
	if r.calls[key] == call {
		delete(r.calls, key)
	}
	call.records = records
	close(call.done)
	r.mu.Unlock()
}

// size returns the number of in-flight fetches.
func (r *inflightRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
