package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"taskcycle/internal/domain"
	"taskcycle/internal/history"
	"taskcycle/internal/roster"
	"taskcycle/internal/runner"
)

// Store is the roster persistence the loop polls and writes back.
type Store interface {
	Load() (*roster.Roster, error)
	Save(*roster.Roster) error
}

// Launcher dispatches one due task and blocks until it returns.
type Launcher interface {
	Resolve(path string) string
	Execute(ctx context.Context, task domain.Task) domain.Outcome
}

// state of the poll loop. The loop has no terminal state under normal
// operation; stateTerminated is reached only when the roster file is gone.
type state int

const (
	statePolling state = iota
	stateProcessing
	statePersisting
	stateTerminated
)

type Options struct {
	Interval time.Duration
	// Window, when non-nil, replaces Interval: cycles start only at the
	// schedule's activation times.
	Window cron.Schedule
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	store    Store
	launcher Launcher
	hist     *history.Store
	log      zerolog.Logger

	interval time.Duration
	window   cron.Schedule
	now      func() time.Time

	// lastRun carries the newest stamp per process name across cycles so a
	// failed persist cannot roll a row's timestamp backwards on reload.
	lastRun map[string]string

	// wake forces an early poll; the roster watcher feeds it.
	wake chan struct{}
}

func New(store Store, launcher Launcher, hist *history.Store, log zerolog.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &Service{
		store:    store,
		launcher: launcher,
		hist:     hist,
		log:      log,
		interval: opts.Interval,
		window:   opts.Window,
		now:      opts.Now,
		lastRun:  make(map[string]string),
		wake:     make(chan struct{}, 1),
	}
}

// Run polls until the roster file disappears or ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		terminated, err := s.Cycle(ctx)
		if terminated {
			return nil
		}
		if err != nil {
			s.log.Error().Err(err).Msg("cycle failed, retrying after sleep")
		}
		if !s.sleep(ctx) {
			return ctx.Err()
		}
	}
}

// Cycle is one Polling → Processing → Persisting pass. terminated reports
// the loop's single normal exit: the roster file no longer exists. A non-nil
// error is transient; the caller sleeps and re-polls.
func (s *Service) Cycle(ctx context.Context) (terminated bool, err error) {
	var ro *roster.Roster
	var updated bool

	for st := statePolling; ; {
		switch st {
		case statePolling:
			ro, err = s.store.Load()
			if errors.Is(err, roster.ErrNotExist) {
				s.log.Error().Err(err).Msg("roster file missing, terminating")
				st = stateTerminated
				err = nil
				continue
			}
			if err != nil {
				return false, err
			}
			st = stateProcessing

		case stateProcessing:
			updated = s.process(ctx, ro)
			st = statePersisting

		case statePersisting:
			if updated {
				if err := s.store.Save(ro); err != nil {
					// Non-fatal: the cache keeps this cycle's stamps and the
					// next successful persist catches up.
					s.log.Error().Err(err).Msg("failed to persist roster")
				} else {
					s.log.Info().Msg("roster updated")
				}
			}
			return false, nil

		case stateTerminated:
			return true, nil
		}
	}
}

// process walks the roster in row order. Every per-row failure is contained
// in that row; nothing here may stop the loop.
func (s *Service) process(ctx context.Context, ro *roster.Roster) bool {
	now := s.now()
	updated := false

	for i := range ro.Rows {
		def := ro.Definition(i)
		if s.overlayCache(ro, i, &def) {
			updated = true
		}

		task, warnings, err := roster.Validate(def)
		if err != nil {
			s.log.Warn().Str("process", def.ProcessName).Err(err).Msg("skipping row")
			continue
		}
		for _, w := range warnings {
			s.log.Warn().Str("process", task.ProcessName).Msg(w)
		}

		ev := roster.Evaluate(task, now)
		if !ev.Due {
			if ev.Skip != "" {
				s.log.Info().Str("process", task.ProcessName).Str("reason", string(ev.Skip)).Msg("skipping task")
			} else {
				s.log.Info().Str("process", task.ProcessName).
					Time("next_run", ev.NextRunAt).Msg("not due yet")
			}
			continue
		}

		s.dispatch(ctx, task)

		// Stamped regardless of outcome: a failing task waits out a full
		// period before the next attempt.
		ro.SetLastRun(i, now)
		s.lastRun[task.ProcessName] = now.Format(domain.TimeLayout)
		updated = true
	}
	return updated
}

// overlayCache re-applies a newer in-memory stamp over a stale on-disk one,
// which happens after a failed persist. The wire layout orders
// lexicographically, so a string compare suffices. Reports whether the row
// changed.
func (s *Service) overlayCache(ro *roster.Roster, i int, def *domain.Definition) bool {
	cached, ok := s.lastRun[def.ProcessName]
	if !ok || cached <= def.LastRunTime {
		return false
	}
	def.LastRunTime = cached
	ro.Rows[i][roster.ColLastRunTime] = cached
	return true
}

func (s *Service) dispatch(ctx context.Context, task domain.Task) {
	resolved := s.launcher.Resolve(task.ExecutablePath)
	started := s.now()
	outcome := s.launcher.Execute(ctx, task)
	finished := s.now()

	if !outcome.Success {
		s.log.Warn().Str("process", task.ProcessName).Str("detail", outcome.Detail).Msg("execution failed")
	}

	if _, err := s.hist.Record(ctx, history.Attempt{
		ProcessName: task.ProcessName,
		Path:        resolved,
		Mode:        runner.Classify(resolved).String(),
		StartedAt:   started,
		FinishedAt:  finished,
		Success:     outcome.Success,
		Error:       outcome.Detail,
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to record attempt history")
	}
}

// sleep waits for the next cycle. Returns false when ctx ended. A roster
// change wakes the loop early.
func (s *Service) sleep(ctx context.Context) bool {
	d := s.interval
	if s.window != nil {
		d = s.window.Next(s.now()).Sub(s.now())
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	case <-s.wake:
		s.log.Info().Msg("roster changed, polling early")
		return true
	}
}

// Wake requests an immediate poll. Safe from any goroutine; extra wakes
// while one is pending are dropped.
func (s *Service) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
