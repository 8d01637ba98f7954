package queue

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler processes one batch of customer ids.
type Handler func([]uuid.UUID) error

// RegenerationQueue is an in-memory queue of customer id batches awaiting
// recommendation regeneration.
type RegenerationQueue struct {
	items    chan []uuid.UUID
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	workers  sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewRegenerationQueue creates a queue holding at most bufferSize batches.
func NewRegenerationQueue(bufferSize int, logger *logrus.Logger) *RegenerationQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &RegenerationQueue{
		items:   make(chan []uuid.UUID, bufferSize),
		done:    make(chan struct{}),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch without blocking. Empty batches are ignored.
func (q *RegenerationQueue) Push(customerIDs []uuid.UUID) error {
	if len(customerIDs) == 0 {
		return nil
	}

	// The read lock is held across the send so Close cannot run in between.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- customerIDs:
		q.logger.WithField("batch_size", len(customerIDs)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// PushChunked splits ids into batches of at most size and pushes each.
func (q *RegenerationQueue) PushChunked(ids []uuid.UUID, size int) error {
	if size < 1 {
		size = len(ids)
	}
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		if err := q.Push(ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe adds a handler that is called for each batch.
func (q *RegenerationQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches workers goroutines draining the queue. Each batch is
// taken by exactly one worker.
func (q *RegenerationQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.workers.Add(1)
		go q.process(i)
	}
}

func (q *RegenerationQueue) process(worker int) {
	defer q.workers.Done()
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			if !ok {
				return
			}
			q.processBatch(worker, batch)
		}
	}
}

// processBatch hands the batch to every subscribed handler.
func (q *RegenerationQueue) processBatch(worker int, batch []uuid.UUID) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithFields(logrus.Fields{
				"worker":     worker,
				"batch_size": len(batch),
			}).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches and waits for running workers to return.
// Batches still buffered are dropped.
func (q *RegenerationQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	q.mu.Unlock()

	q.workers.Wait()
	return nil
}

// Len returns the number of batches waiting.
func (q *RegenerationQueue) Len() int {
	return len(q.items)
}

func (q *RegenerationQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
