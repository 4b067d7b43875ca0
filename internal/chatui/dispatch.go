package chatui

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dispatcher runs jobs on a fixed pool of workers. Jobs with the same key
// always land on the same worker, so messages from one chat are handled in
// the order they arrived.
type Dispatcher struct {
	queues []chan func()
	g      errgroup.Group
}

func NewDispatcher(workers, depth int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{queues: make([]chan func(), workers)}
	for i := range d.queues {
		q := make(chan func(), depth)
		d.queues[i] = q
		d.g.Go(func() error {
			for job := range q {
				job()
			}
			return nil
		})
	}
	return d
}

// Submit queues job for key's worker. It blocks while that queue is full and
// returns false if ctx is done first. Submit must not be called after Close.
func (d *Dispatcher) Submit(ctx context.Context, key int64, job func()) bool {
	select {
	case d.queues[d.worker(key)] <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops the workers once their queues are drained.
func (d *Dispatcher) Close() {
	for _, q := range d.queues {
		close(q)
	}
	_ = d.g.Wait()
}

func (d *Dispatcher) worker(key int64) int {
	return int(uint64(key) % uint64(len(d.queues)))
}
