package app

import (
	"context"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultSchedule = "0 3 * * *"

// Scheduler runs Clean on a cron schedule. Every tick is an independent
// invocation with its own cluster client and credentials; overlapping ticks
// are skipped.
type Scheduler struct {
	service  Service
	request  CleanRequest
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

func NewScheduler(service Service, request CleanRequest, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		service:  service,
		request:  request,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid cron schedule " + s.schedule).
			WithCause(err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to schedule retention run").
			WithCause(err)
	}
	s.cron.Start()
	s.running = true

	log.Info().
		Str("schedule", s.schedule).
		Str("endpoint", s.request.Settings.Endpoint()).
		Bool("dry_run", s.request.DryRun).
		Msg("retention scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// RunOnce executes a single scheduled run. Failures are logged and left to
// the next tick.
func (s *Scheduler) RunOnce(ctx context.Context) {
	result, err := s.service.Clean(ctx, s.request)
	if err != nil {
		log.Error().Err(err).Msg("scheduled retention run failed")
		return
	}
	log.Info().
		Int("targeted", len(result.Report.Deletion.Targeted)).
		Str("mode", string(result.Report.Deletion.Mode)).
		Msg("scheduled retention run completed")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	done := s.cron.Stop()
	<-done.Done()
	s.running = false
	log.Info().Msg("retention scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
