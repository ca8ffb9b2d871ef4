package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"taskcycle/internal/domain"
)

// Mode is the launch strategy picked from the executable's extension.
type Mode int

const (
	// ModeScript invokes the file through its interpreter with arguments
	// split on whitespace.
	ModeScript Mode = iota
	// ModeBatch hands one concatenated command line to the system command
	// interpreter.
	ModeBatch
	// ModeDirect spawns the file itself, raw argument string as a single
	// argument.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeScript:
		return "script"
	case ModeBatch:
		return "batch"
	default:
		return "direct"
	}
}

// Runner launches due tasks one at a time and blocks until each returns.
type Runner struct {
	baseDir string
	log     zerolog.Logger
}

func New(baseDir string, log zerolog.Logger) *Runner {
	return &Runner{baseDir: baseDir, log: log}
}

// Resolve turns the roster's executable path into an absolute one. Relative
// paths are anchored at the runner's base directory.
func (r *Runner) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

// Classify picks the launch mode for a resolved path.
func Classify(path string) Mode {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := scriptInterpreters[ext]; ok {
		return ModeScript
	}
	if batchExtensions[ext] {
		return ModeBatch
	}
	return ModeDirect
}

// BuildCommand returns the argv for launching path with the raw roster
// argument string, per the mode rules above.
func BuildCommand(path, args string) []string {
	args = strings.TrimSpace(args)
	switch Classify(path) {
	case ModeScript:
		ext := strings.ToLower(filepath.Ext(path))
		argv := append(append([]string{}, scriptInterpreters[ext]...), path)
		if args != "" {
			argv = append(argv, strings.Fields(args)...)
		}
		return argv
	case ModeBatch:
		line := path
		if args != "" {
			line += " " + args
		}
		return append(append([]string{}, shellCommand...), line)
	default:
		argv := []string{path}
		if args != "" {
			argv = append(argv, args)
		}
		return argv
	}
}

// Execute runs one due task to completion. Every failure comes back as an
// Outcome; a broken row must never take the loop down with it.
func (r *Runner) Execute(ctx context.Context, task domain.Task) domain.Outcome {
	full := r.Resolve(task.ExecutablePath)
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return domain.NotFound(fmt.Sprintf("executable not found: %s", full))
		}
		return domain.Failure(fmt.Sprintf("stat %s: %v", full, err))
	}

	argv := BuildCommand(full, task.Arguments)
	r.log.Info().
		Str("process", task.ProcessName).
		Str("path", full).
		Stringer("mode", Classify(full)).
		Msg("starting execution")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.baseDir
	hideWindow(cmd)

	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := fmt.Sprintf("launch error: %v", err)
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			detail = fmt.Sprintf("%s; out=%s", detail, trimmed)
		}
		r.log.Warn().Str("process", task.ProcessName).Msg(detail)
		return domain.Failure(detail)
	}

	ev := r.log.Info().Str("process", task.ProcessName)
	if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
		ev = ev.Str("output", trimmed)
	}
	ev.Msg("completed successfully")
	return domain.Success()
}
