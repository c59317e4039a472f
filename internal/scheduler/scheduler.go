package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JobType represents the kinds of periodic maintenance jobs
type JobType int

const (
	JobTypeReferenceReload JobType = iota
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeReferenceReload:
		return "reference_reload"
	default:
		return "unknown"
	}
}

// Reloader is anything that can refresh itself from its source
type Reloader interface {
	Reload() error
}

// Scheduler periodically reloads the reference table
type Scheduler struct {
	reloader Reloader
	interval time.Duration
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
	runs     int
}

// NewScheduler creates a scheduler running every interval. A zero interval disables it.
func NewScheduler(reloader Reloader, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		reloader: reloader,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Enabled reports whether the scheduler has a positive interval
func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.logger.Info("Reference reload scheduler disabled")
		return
	}
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunNow()
		}
	}
}

// RunNow executes the reload job immediately
func (s *Scheduler) RunNow() error {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	fields := logrus.Fields{"job_type": JobTypeReferenceReload.String()}
	s.logger.WithFields(fields).Debug("Starting scheduled job")

	start := time.Now()
	err := s.reloader.Reload()
	s.runs++
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Scheduled job failed")
		return err
	}

	fields["duration"] = time.Since(start).String()
	s.logger.WithFields(fields).Info("Scheduled job completed successfully")
	return nil
}

// Runs returns how many times the job has executed
func (s *Scheduler) Runs() int {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	return s.runs
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
}
