package roster

import (
	"errors"
	"testing"
	"time"

	"taskcycle/internal/domain"
)

func validDef() domain.Definition {
	return domain.Definition{
		Enabled:        "true",
		ProcessName:    "Backup",
		ExecutablePath: "backup.exe",
		Arguments:      "",
		Frequency:      "60",
		LastRunTime:    "2024-01-01 00:00:00",
	}
}

func TestValidateMissingFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*domain.Definition)
	}{
		{name: "empty enabled", mutate: func(d *domain.Definition) { d.Enabled = "" }},
		{name: "blank process name", mutate: func(d *domain.Definition) { d.ProcessName = "   " }},
		{name: "empty executable path", mutate: func(d *domain.Definition) { d.ExecutablePath = "" }},
		{name: "blank frequency", mutate: func(d *domain.Definition) { d.Frequency = "\t" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			def := validDef()
			tt.mutate(&def)
			_, _, err := Validate(def)
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("Validate error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestValidateEnabledParsing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"Yes", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"on", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			def := validDef()
			def.Enabled = tt.raw
			task, _, err := Validate(def)
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if task.Enabled != tt.want {
				t.Fatalf("Enabled = %v, want %v", task.Enabled, tt.want)
			}
		})
	}
}

func TestValidateFrequencyDefaulting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		want     int
		warnings int
	}{
		{name: "plain", raw: "15", want: 15},
		{name: "padded", raw: " 45 ", want: 45},
		{name: "garbage", raw: "often", want: domain.DefaultFrequencyMinutes, warnings: 1},
		{name: "zero", raw: "0", want: domain.DefaultFrequencyMinutes, warnings: 1},
		{name: "negative", raw: "-5", want: domain.DefaultFrequencyMinutes, warnings: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			def := validDef()
			def.Frequency = tt.raw
			task, warnings, err := Validate(def)
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if task.FrequencyMinutes != tt.want {
				t.Fatalf("FrequencyMinutes = %d, want %d", task.FrequencyMinutes, tt.want)
			}
			if len(warnings) != tt.warnings {
				t.Fatalf("warnings = %v, want %d", warnings, tt.warnings)
			}
		})
	}
}

func TestValidateLastRunTime(t *testing.T) {
	t.Parallel()

	def := validDef()
	task, _, err := Validate(def)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	if !task.LastRunTime.Equal(want) {
		t.Fatalf("LastRunTime = %v, want %v", task.LastRunTime, want)
	}

	for _, raw := range []string{"", "   ", "yesterday", "2024/01/01"} {
		def := validDef()
		def.LastRunTime = raw
		task, _, err := Validate(def)
		if err != nil {
			t.Fatalf("Validate(%q) error: %v", raw, err)
		}
		if !task.LastRunTime.Equal(domain.SentinelEpoch) {
			t.Fatalf("LastRunTime for %q = %v, want sentinel", raw, task.LastRunTime)
		}
	}
}

func TestValidateTrimsArguments(t *testing.T) {
	t.Parallel()
	def := validDef()
	def.Arguments = "   "
	task, _, err := Validate(def)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if task.Arguments != "" {
		t.Fatalf("Arguments = %q, want empty", task.Arguments)
	}
}
