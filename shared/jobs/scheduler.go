// Package jobs runs in-process cron tasks. Schedules use six fields with
// seconds first. Missed runs are not persisted and nothing coordinates
// between replicas.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ErrInPast is returned by ScheduleOnce for a time that has already passed.
var ErrInPast = errors.New("scheduled time is in the past")

type Task func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	once map[cron.EntryID]string
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log.StandardLogger()))),
		),
		ctx:    ctx,
		cancel: cancel,
		once:   make(map[cron.EntryID]string),
	}
}

// Schedule runs task on every tick of the cron expression.
func (s *Scheduler) Schedule(name, spec string, task Task) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, s.wrap(name, task))
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	log.WithFields(log.Fields{"job": name, "spec": spec}).Info("job scheduled")
	return id, nil
}

// ScheduleOnce runs task a single time at at and then forgets it.
func (s *Scheduler) ScheduleOnce(name string, at time.Time, task Task) (cron.EntryID, error) {
	if !at.After(time.Now()) {
		return 0, fmt.Errorf("job %s at %s: %w", name, at.Format(time.RFC3339), ErrInPast)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id cron.EntryID
	run := s.wrap(name, task)
	id = s.cron.Schedule(onceAt(at), cron.FuncJob(func() {
		s.mu.Lock()
		delete(s.once, id)
		s.mu.Unlock()
		s.cron.Remove(id)
		run()
	}))
	s.once[id] = name

	log.WithFields(log.Fields{"job": name, "at": at.Format(time.RFC3339)}).Info("one-off job scheduled")
	return id, nil
}

// Cancel drops a one-off job that has not fired yet. Unknown ids are ignored.
func (s *Scheduler) Cancel(id cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.once[id]; !ok {
		return
	}
	delete(s.once, id)
	s.cron.Remove(id)
}

// Pending reports how many one-off jobs have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.once)
}

func (s *Scheduler) wrap(name string, task Task) func() {
	return func() {
		entry := log.WithField("job", name)
		start := time.Now()
		if err := task(s.ctx); err != nil {
			entry.WithError(err).Error("job failed")
			return
		}
		entry.WithField("took", time.Since(start).String()).Debug("job finished")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn("scheduler stopped before running jobs finished")
	}
}

type onceAt time.Time

func (o onceAt) Next(t time.Time) time.Time {
	at := time.Time(o)
	if t.Before(at) {
		return at
	}
	return time.Time{}
}
