package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskcycle/internal/domain"
)

// ErrMissingField marks a row that cannot be scheduled at all. Defaulting is
// only attempted for rows that carry every required field.
var ErrMissingField = errors.New("missing required field")

// Validate turns one raw definition into a schedulable task. Returned
// warnings name values that were substituted (bad Frequency, bad
// LastRunTime); they never fail the row. Pure: no I/O, no clock reads.
func Validate(def domain.Definition) (domain.Task, []string, error) {
	for _, f := range []struct{ name, value string }{
		{ColEnabled, def.Enabled},
		{ColProcessName, def.ProcessName},
		{ColExecutablePath, def.ExecutablePath},
		{ColFrequency, def.Frequency},
	} {
		if strings.TrimSpace(f.value) == "" {
			return domain.Task{}, nil, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	task := domain.Task{
		Enabled:        parseEnabled(def.Enabled),
		ProcessName:    strings.TrimSpace(def.ProcessName),
		ExecutablePath: strings.TrimSpace(def.ExecutablePath),
		Arguments:      strings.TrimSpace(def.Arguments),
	}

	var warnings []string

	freq, err := strconv.Atoi(strings.TrimSpace(def.Frequency))
	if err != nil || freq <= 0 {
		warnings = append(warnings, fmt.Sprintf("Frequency %q is not a positive integer, using %d", def.Frequency, domain.DefaultFrequencyMinutes))
		freq = domain.DefaultFrequencyMinutes
	}
	task.FrequencyMinutes = freq

	task.LastRunTime = domain.SentinelEpoch
	if raw := strings.TrimSpace(def.LastRunTime); raw != "" {
		last, err := time.ParseInLocation(domain.TimeLayout, raw, time.Local)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("LastRunTime %q is unparsable, treating as never run", def.LastRunTime))
		} else {
			task.LastRunTime = last
		}
	}

	return task, warnings, nil
}

// parseEnabled accepts true/1/yes, any case. Everything else is off.
func parseEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
