// Package workers provides the background execution layer for lifecycle
// work: a bounded fire-and-forget pool and per-key mutual exclusion.
package workers

import (
	"context"
	"subsidy/internal/logger"
	"sync"
)

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Dispatcher executes submitted tasks on a fixed pool of goroutines. Task
// failures are logged and swallowed: callers get an acknowledgment, not a
// guarantee. There is no retry and no caller-driven cancellation; a task runs
// to completion or fails once.
type Dispatcher struct {
	queue       chan task
	wg          sync.WaitGroup
	log         logger.Logger
	synchronous bool
	closeOnce   sync.Once
}

func New(poolSize int) *Dispatcher {
	if poolSize <= 0 {
		poolSize = 4
	}

	d := &Dispatcher{
		queue: make(chan task, poolSize*32),
		log:   logger.New("dispatcher"),
	}

	d.wg.Add(poolSize)
	for i := 0; i < poolSize; i++ {
		go d.worker()
	}

	return d
}

// NewSynchronous returns a dispatcher that runs tasks inline on the calling
// goroutine. Tests use it to make background work deterministic.
func NewSynchronous() *Dispatcher {
	return &Dispatcher{
		synchronous: true,
		log:         logger.New("dispatcher"),
	}
}

// Dispatch submits a task. In pool mode it never reports the task's outcome
// to the caller; failures only show up in logs.
func (d *Dispatcher) Dispatch(name string, run func(ctx context.Context) error) {
	if d.synchronous {
		d.execute(task{name: name, run: run})
		return
	}

	d.queue <- task{name: name, run: run}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.queue {
		d.execute(t)
	}
}

func (d *Dispatcher) execute(t task) {
	log := d.log.Function("execute")

	defer func() {
		if r := recover(); r != nil {
			log.ErMsg("background task panicked", "task", t.name, "panic", r)
		}
	}()

	if err := t.run(context.Background()); err != nil {
		log.Er("background task failed", err, "task", t.name)
	}
}

// Close stops accepting tasks and waits for in-flight work to finish.
func (d *Dispatcher) Close() {
	if d.synchronous {
		return
	}
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
