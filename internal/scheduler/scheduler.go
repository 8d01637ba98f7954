package scheduler

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"propertycrm/server/internal/recommendation"
)

// JobType represents the kinds of recompute the scheduler runs
type JobType int

const (
	JobTypeStartup JobType = iota
	JobTypeNightly
	JobTypeManual
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeStartup:
		return "startup"
	case JobTypeNightly:
		return "nightly"
	case JobTypeManual:
		return "manual"
	default:
		return "unknown"
	}
}

// BatchRegenerator regenerates every customer's recommendations.
type BatchRegenerator interface {
	RegenerateAll(ctx context.Context) (recommendation.BatchResult, error)
}

// Scheduler runs the full recommendation recompute once a night
type Scheduler struct {
	regenerator   BatchRegenerator
	logger        *logrus.Logger
	recomputeHour int
	stopChan      chan struct{}
	stopOnce      sync.Once
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	jobMutex      sync.Mutex // Ensures full runs never overlap
	isStartupRun  atomic.Bool
	lastRun       time.Time
}

// NewScheduler creates a scheduler that recomputes at recomputeHour local time
func NewScheduler(regenerator BatchRegenerator, recomputeHour int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		regenerator:   regenerator,
		logger:        logger,
		recomputeHour: recomputeHour,
		stopChan:      make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start runs a startup recompute and then checks the schedule every minute
func (s *Scheduler) Start() {
	s.isStartupRun.Store(true)
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		defer s.isStartupRun.Store(false)
		s.logger.Info("Running startup recompute")
		_, _ = s.run(JobTypeStartup)
	}()

	go s.runScheduler()
}

// runScheduler handles the minute ticker
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs the nightly recompute when t is due
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	if s.isStartupRun.Load() {
		s.logger.Debug("Skipping scheduled jobs while startup is in progress")
		return
	}
	if !s.shouldRun(t) {
		return
	}
	_, _ = s.run(JobTypeNightly)
}

// shouldRun reports whether the nightly recompute is due at t and has not
// already run that day.
func (s *Scheduler) shouldRun(t time.Time) bool {
	if t.Hour() != s.recomputeHour {
		return false
	}
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	return !sameDay(s.lastRun, t)
}

// RunNow triggers a full recompute immediately, waiting for any run in
// progress to finish first.
func (s *Scheduler) RunNow(ctx context.Context) (recommendation.BatchResult, error) {
	return s.runWith(ctx, JobTypeManual)
}

func (s *Scheduler) run(job JobType) (recommendation.BatchResult, error) {
	return s.runWith(s.ctx, job)
}

func (s *Scheduler) runWith(ctx context.Context, job JobType) (recommendation.BatchResult, error) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("job_type", job.String()).Info("Starting recompute job")
	res, err := s.regenerator.RegenerateAll(ctx)
	fields := logrus.Fields{
		"job_type":  job.String(),
		"customers": res.Customers,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	}
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Recompute job failed")
		return res, err
	}

	s.lastRun = time.Now()
	s.logger.WithFields(fields).Info("Recompute job completed successfully")
	return res, nil
}

// Stop gracefully stops the scheduler, cancelling a run in progress
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.stopChan)
	})
	s.wg.Wait()
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
