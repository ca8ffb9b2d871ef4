package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
	_ "modernc.org/sqlite"

	"taskcycle/internal/config"
	"taskcycle/internal/history"
	"taskcycle/internal/roster"
	"taskcycle/internal/runner"
	"taskcycle/internal/scheduler"
	"taskcycle/internal/singleinstance"
	"taskcycle/internal/startup"
)

const appName = "taskcycle"

func main() {
	var (
		cfgPath    = flag.String("config", "taskcycle.yaml", "config file path")
		rosterPath = flag.String("roster", "", "task roster CSV path (overrides config)")
		interval   = flag.Duration("interval", 0, "poll interval (overrides config)")
		once       = flag.Bool("once", false, "run one cycle and exit")
		install    = flag.Bool("install", false, "register for launch at login and exit")
		uninstall  = flag.Bool("uninstall", false, "unregister launch at login and exit")
	)
	flag.Parse()

	if *install || *uninstall {
		runStartup(*install)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *rosterPath != "" {
		cfg.Roster = *rosterPath
	}

	log.Logger = newLogger(cfg.LogFile)

	lock, err := singleinstance.Acquire(cfg.LockPort)
	if err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, "ALREADY RUNNING: could not acquire lock, exiting")
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("acquire instance lock")
	}
	defer lock.Release()

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(cfg.Roster)
	}

	pollInterval, _ := cfg.Interval()
	if *interval > 0 {
		pollInterval = *interval
	}
	window, _ := cfg.Window()

	var hist *history.Store
	if cfg.HistoryDB != "" {
		dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)", cfg.HistoryDB)
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("open history db")
		}
		defer db.Close()
		db.SetMaxOpenConns(1) // SQLite single writer
		if err := history.EnsureSchema(db); err != nil {
			log.Fatal().Err(err).Msg("ensure history schema")
		}
		hist = history.NewStore(db)
	}

	store := roster.NewStore(cfg.Roster)
	run := runner.New(baseDir, log.Logger)
	svc := scheduler.New(store, run, hist, log.Logger, scheduler.Options{
		Interval: pollInterval,
		Window:   window,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("shutting down")
		cancel()
	}()

	if *once {
		if _, err := svc.Cycle(ctx); err != nil {
			log.Fatal().Err(err).Msg("single cycle failed")
		}
		return
	}

	go func() {
		if err := svc.WatchRoster(ctx, cfg.Roster); err != nil {
			log.Warn().Err(err).Msg("roster watch unavailable")
		}
	}()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("scheduler loop")
	}
}

// newLogger writes console output plus a rotating log file, the latter so a
// box that runs unattended for months doesn't fill its disk with task logs.
func newLogger(logFile string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stdout}}
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     90, // days
		})
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func runStartup(install bool) {
	var (
		path string
		err  error
	)
	if install {
		path, err = startup.Install(appName)
	} else {
		path, err = startup.Uninstall(appName)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if install {
		fmt.Printf("registered for launch at login: %s\n", path)
	} else {
		fmt.Printf("unregistered launch at login: %s\n", path)
	}
}
