package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertycrm/server/config"
	"propertycrm/server/internal/apperr"
	"propertycrm/server/internal/queue"
	"propertycrm/server/internal/recommendation"
)

// Regenerator rebuilds one customer's recommendations.
type Regenerator interface {
	Regenerate(ctx context.Context, customerID uuid.UUID) (recommendation.Result, error)
}

// BatchProcessor drains the regeneration queue and retries failed customers.
type BatchProcessor struct {
	regenerator Regenerator
	logger      *logrus.Logger
	config      *config.Config
	queue       *queue.RegenerationQueue
	startOnce   sync.Once
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewBatchProcessor(regenerator Regenerator, queue *queue.RegenerationQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		regenerator: regenerator,
		queue:       queue,
		config:      config,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start subscribes to the queue and launches the configured number of workers.
func (p *BatchProcessor) Start() {
	p.startOnce.Do(func() {
		p.queue.Subscribe(func(batch []uuid.UUID) error {
			return p.processBatch(batch)
		})
		p.queue.Start(p.config.BatchProcessing.ProcessorCount)
	})
}

// Stop cancels in-flight retries and waits for the workers to exit.
func (p *BatchProcessor) Stop() {
	p.cancel()
	_ = p.queue.Close()
}

// processBatch regenerates every customer in the batch. A customer that
// keeps failing does not stop the others; all failures are returned joined.
func (p *BatchProcessor) processBatch(batch []uuid.UUID) error {
	var errs []error
	for _, id := range batch {
		if err := p.regenerateWithRetry(id); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		p.logger.WithField("batch_size", len(batch)).Info("Successfully processed regeneration batch")
		return nil
	}
	return errors.Join(errs...)
}

func (p *BatchProcessor) regenerateWithRetry(id uuid.UUID) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	delay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.WithFields(logrus.Fields{
				"customer_id": id,
				"attempt":     attempt,
				"max_retries": maxRetries,
			}).Info("Retrying regeneration")

			select {
			case <-p.ctx.Done():
				return fmt.Errorf("regeneration of %s cancelled: %w", id, err)
			case <-time.After(delay):
			}
		}

		_, err = p.regenerator.Regenerate(p.ctx, id)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			p.logger.WithError(err).WithField("customer_id", id).Warn("Skipping customer")
			return nil
		}
		p.logger.WithError(err).WithField("customer_id", id).Error("Regeneration failed")
	}

	return fmt.Errorf("failed to regenerate %s after %d attempts: %w", id, maxRetries+1, err)
}

// retryable reports whether another attempt could succeed. Missing
// profiles and invalid input will not fix themselves.
func retryable(err error) bool {
	switch apperr.GetKind(err) {
	case apperr.KindNotFound, apperr.KindValidation:
		return false
	default:
		return true
	}
}
