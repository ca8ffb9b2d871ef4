package roster

import (
	"strings"
	"time"

	"taskcycle/internal/domain"
)

// Evaluation is the scheduling decision for one task at one instant.
// When Due is false and Skip is empty the task is simply not due yet;
// NextRunAt says when it will be.
type Evaluation struct {
	Due       bool
	NextRunAt time.Time
	Skip      domain.SkipReason
}

// Evaluate decides whether a validated task should run now. Gating checks
// run in a fixed order and only the first failure is reported.
func Evaluate(task domain.Task, now time.Time) Evaluation {
	ev := Evaluation{NextRunAt: task.NextRunAt()}
	switch {
	case !task.Enabled:
		ev.Skip = domain.SkipDisabled
	case strings.TrimSpace(task.ProcessName) == "":
		ev.Skip = domain.SkipNoProcessName
	case strings.TrimSpace(task.ExecutablePath) == "":
		ev.Skip = domain.SkipNoExecutablePath
	case task.FrequencyMinutes <= 0:
		ev.Skip = domain.SkipInvalidFrequency
	case !now.Before(ev.NextRunAt):
		ev.Due = true
	}
	return ev
}
