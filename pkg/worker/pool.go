// Package worker runs tasks on a fixed set of long-lived goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Task captures its own context; the pool only schedules it.
type Task func()

type Pool struct {
	tasks  chan Task
	size   int
	logger logger.ILogger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(size int, log logger.ILogger) *Pool {
	if size <= 0 {
		size = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	p := &Pool{
		tasks:  make(chan Task),
		size:   size,
		logger: log,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.work(i)
	}
	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(id, task)
	}
}

func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("WORKER", "Task panicked", map[string]interface{}{
				"worker": id,
				"error":  fmt.Sprint(r),
			})
		}
	}()
	task()
}

// Submit blocks until a worker picks the task up.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Size() int {
	return p.size
}

// Close stops accepting tasks and waits for running ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
