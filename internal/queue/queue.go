package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// PredictionQueue is an in-memory queue of prediction batches awaiting persistence
type PredictionQueue struct {
	items    chan []*models.Prediction
	stopped  chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.Prediction) error
}

// NewPredictionQueue creates a queue holding at most bufferSize batches
func NewPredictionQueue(bufferSize int, logger *logrus.Logger) *PredictionQueue {
	return &PredictionQueue{
		items:    make(chan []*models.Prediction, bufferSize),
		stopped:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.Prediction) error, 0),
	}
}

// Push adds a batch without blocking. A full queue rejects the batch.
func (q *PredictionQueue) Push(predictions []*models.Prediction) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- predictions:
		q.logger.WithField("batch_size", len(predictions)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler called for each batch
func (q *PredictionQueue) Subscribe(handler func([]*models.Prediction) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins dispatching batches to the handlers
func (q *PredictionQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.process()
}

func (q *PredictionQueue) process() {
	defer close(q.stopped)
	for batch := range q.items {
		q.processBatch(batch)
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *PredictionQueue) processBatch(batch []*models.Prediction) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close rejects further pushes and waits until the batches already queued are handled
func (q *PredictionQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	started := q.started
	q.mu.Unlock()

	if started {
		<-q.stopped
	}
	return nil
}

// Len returns the current number of batches in the queue
func (q *PredictionQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *PredictionQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
