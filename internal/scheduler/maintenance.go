// Package scheduler runs periodic catalog maintenance with robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Dispatcher hands a task to the queue or runs it inline.
type Dispatcher interface {
	Dispatch(ctx context.Context, task backlite.Task) (string, error)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// NextRun returns the next activation of schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Job is a named cron entry that dispatches one task.
type Job struct {
	Name     string
	Schedule string
	Task     backlite.Task
}

// Jobs returns the maintenance jobs enabled by the configuration.
func Jobs(cfg *config.Config) []Job {
	var jobs []Job
	if cfg.Export.Enabled && cfg.Export.Schedule != "" {
		jobs = append(jobs, Job{
			Name:     "catalog export",
			Schedule: cfg.Export.Schedule,
			Task:     tasks.ExportCatalogTask{Dir: cfg.Export.Dir},
		})
	}
	if cfg.AdminLog.RetentionDays > 0 && cfg.AdminLog.Schedule != "" {
		jobs = append(jobs, Job{
			Name:     "admin log pruning",
			Schedule: cfg.AdminLog.Schedule,
			Task:     tasks.PruneAdminLogTask{RetentionDays: cfg.AdminLog.RetentionDays},
		})
	}
	return jobs
}

// MaintenanceScheduler fires maintenance jobs on their cron schedules.
type MaintenanceScheduler struct {
	dispatcher Dispatcher
	jobs       []Job

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	running   map[string]bool
}

func NewMaintenanceScheduler(dispatcher Dispatcher, jobs []Job) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		dispatcher: dispatcher,
		jobs:       jobs,
		cron:       cron.New(cron.WithParser(parser)),
		entries:    make(map[string]cron.EntryID),
		running:    make(map[string]bool),
	}
}

// Start registers every job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		log.Printf("Maintenance scheduler: no jobs enabled")
		return nil
	}

	for _, job := range s.jobs {
		if err := ValidateSchedule(job.Schedule); err != nil {
			return fmt.Errorf("%s: %w", job.Name, err)
		}
		job := job
		id, err := s.cron.AddFunc(job.Schedule, func() { s.run(ctx, job) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.entries[job.Name] = id
	}

	s.cron.Start()
	s.isRunning = true

	for _, job := range s.jobs {
		next, _ := NextRun(job.Schedule, time.Now())
		log.Printf("Maintenance scheduler: %s scheduled '%s'. Next run: %v", job.Name, job.Schedule, next)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for running jobs and stops the cron loop.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("Maintenance scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the named job fires next, or nil.
func (s *MaintenanceScheduler) NextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[name]
	if !ok || !s.isRunning {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

// RunNow dispatches the named job immediately.
func (s *MaintenanceScheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			s.run(ctx, job)
			return nil
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *MaintenanceScheduler) run(ctx context.Context, job Job) {
	s.mu.Lock()
	if s.running[job.Name] {
		s.mu.Unlock()
		log.Printf("Maintenance scheduler: %s skipped (already running)", job.Name)
		return
	}
	s.running[job.Name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, job.Name)
		s.mu.Unlock()
	}()

	id, err := s.dispatcher.Dispatch(ctx, job.Task)
	switch {
	case err != nil:
		log.Printf("Maintenance scheduler: %s failed: %v", job.Name, err)
	case id != "":
		log.Printf("Maintenance scheduler: %s enqueued as task %s", job.Name, id)
	default:
		log.Printf("Maintenance scheduler: %s completed", job.Name)
	}
}
