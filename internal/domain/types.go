package domain

import "time"

// SentinelEpoch stands in for "never run". Any sane Frequency makes a task
// carrying it immediately due.
var SentinelEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.Local)

// TimeLayout is the wire format for LastRunTime in the roster file.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultFrequencyMinutes is substituted when a row's Frequency does not
// parse as a positive integer.
const DefaultFrequencyMinutes = 30

// Definition is one raw roster row, untyped, exactly as read from storage.
type Definition struct {
	Enabled        string
	ProcessName    string
	ExecutablePath string
	Arguments      string
	Frequency      string
	LastRunTime    string
}

// Task is a validated, schedulable definition.
type Task struct {
	Enabled          bool
	ProcessName      string
	ExecutablePath   string
	Arguments        string
	FrequencyMinutes int
	LastRunTime      time.Time
}

// NextRunAt is the earliest instant the task becomes due again.
func (t Task) NextRunAt() time.Time {
	return t.LastRunTime.Add(time.Duration(t.FrequencyMinutes) * time.Minute)
}

type SkipReason string

const (
	SkipMissingField     SkipReason = "missing required field"
	SkipDisabled         SkipReason = "disabled"
	SkipNoProcessName    SkipReason = "missing process name"
	SkipNoExecutablePath SkipReason = "missing executable path"
	SkipInvalidFrequency SkipReason = "invalid frequency"
	SkipUnknown          SkipReason = "unknown"
)

// Outcome is the result of one execution attempt.
type Outcome struct {
	Success  bool
	NotFound bool   // resolved executable did not exist; nothing was launched
	Detail   string // failure detail; empty on success
}

func Success() Outcome { return Outcome{Success: true} }

func Failure(detail string) Outcome { return Outcome{Success: false, Detail: detail} }

func NotFound(detail string) Outcome {
	return Outcome{Success: false, NotFound: true, Detail: detail}
}
