package services

import (
	"errors"
	"sync"

	applog "ferremas/internal/log"
)

// Mirror is the bounded background-work pool through which all asynchronous
// remote mirroring flows. Storage writes never wait on it; a saturated queue
// drops the task with an error log and the local store stays authoritative.
type Mirror struct {
	tasks  chan task
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

type task struct {
	name string
	fn   func() error
}

var (
	errQueueFull = errors.New("mirror queue full")
	errClosed    = errors.New("mirror closed")
)

func NewMirror(workers, queue int) *Mirror {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = 16
	}
	m := &Mirror{tasks: make(chan task, queue)}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

func (m *Mirror) worker() {
	defer m.wg.Done()
	for t := range m.tasks {
		if err := t.fn(); err != nil {
			applog.Error(nil, t.name+".fail", err, nil)
		}
	}
}

// Enqueue never blocks the caller. A task arriving after Close, or into a
// full queue, is dropped with an error log.
func (m *Mirror) Enqueue(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		applog.Error(nil, name+".drop", errClosed, nil)
		return
	}
	select {
	case m.tasks <- task{name: name, fn: fn}:
	default:
		applog.Error(nil, name+".drop", errQueueFull, nil)
	}
}

// Close stops accepting tasks and waits for in-flight work to finish.
func (m *Mirror) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		close(m.tasks)
	})
	m.wg.Wait()
}
