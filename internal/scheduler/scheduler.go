package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultInterval   = 300 * time.Second
	DefaultReportSpec = "0 21 * * *"
)

var ErrNoCycle = errors.New("scheduler: cycle function not set")

// Scheduler runs the polling cycle immediately and then every interval,
// plus an optional daily report. Polling runs never overlap: a tick that
// fires while a cycle is still running is skipped.
type Scheduler struct {
	cron       *cron.Cron
	cronLogger cron.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *zap.Logger
	interval   time.Duration

	cycleFunc  func(ctx context.Context) error
	reportFunc func(ctx context.Context) error
	reportSpec string
	pollJob    cron.Job

	mu       sync.Mutex
	stopped  bool
	inflight sync.WaitGroup
}

// New creates a stopped scheduler. Intervals under a second fall back to
// DefaultInterval.
func New(interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval < time.Second {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	cl := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cl)),
		cronLogger: cl,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
		interval:   interval,
		reportSpec: DefaultReportSpec,
	}
}

// SetCycleFunction sets the polling cycle.
func (s *Scheduler) SetCycleFunction(f func(ctx context.Context) error) {
	s.cycleFunc = f
}

// SetReportFunction sets a job run on the given cron spec (UTC). An empty
// spec keeps the default of 21:00 daily.
func (s *Scheduler) SetReportFunction(spec string, f func(ctx context.Context) error) {
	if spec != "" {
		s.reportSpec = spec
	}
	s.reportFunc = f
}

// Start registers the jobs, starts the cron loop and kicks off the first
// polling cycle without waiting for the first tick.
func (s *Scheduler) Start() error {
	if s.cycleFunc == nil && s.reportFunc == nil {
		s.logger.Warn("no cycle or report function set, scheduler has nothing to do")
		return nil
	}

	if s.reportFunc != nil {
		_, err := s.cron.AddFunc(s.reportSpec, func() {
			s.logger.Info("triggered daily report", zap.String("spec", s.reportSpec))
			if err := s.reportFunc(s.ctx); err != nil {
				s.logger.Error("daily report failed", zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
	}

	if s.cycleFunc != nil {
		s.pollJob = cron.NewChain(cron.SkipIfStillRunning(s.cronLogger)).Then(cron.FuncJob(s.runCycle))
		s.cron.Schedule(cron.Every(s.interval), s.pollJob)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval), zap.Bool("daily_report", s.reportFunc != nil))

	if s.pollJob != nil {
		// tracked so Stop also waits for this goroutine, not only for a cycle
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.pollJob.Run()
		}()
	}
	return nil
}

// RunOnce invokes the cycle exactly once on the caller's goroutine.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.cycleFunc == nil {
		return ErrNoCycle
	}
	return s.cycleFunc(ctx)
}

// Stop cancels future ticks and waits for an in-flight cycle to finish;
// it never interrupts one.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.inflight.Wait()
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether any job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

func (s *Scheduler) runCycle() {
	if !s.enter() {
		return
	}
	defer s.inflight.Done()

	start := time.Now()
	if err := s.cycleFunc(s.ctx); err != nil {
		s.logger.Error("polling cycle failed", zap.Error(err))
		return
	}
	s.logger.Debug("polling cycle done", zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.inflight.Add(1)
	return true
}
