package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"flowtop/collector"
	"flowtop/config"
	"flowtop/engine"
	"flowtop/model"
	"flowtop/ui"
)

// Version is set at build time via ldflags.
var Version = "0.4.2"

// Config holds CLI configuration after flags and the config file merge.
type Config struct {
	Interval    time.Duration
	Top         int
	Group       string
	ThresholdKB float64
	BG          string
	WatchMode   bool
	WatchCount  int
	Source      string
	RecordPath  string
	ReplayPath  string
	Debug       bool
	Passthrough []string
}

var validBGs = []string{"black", "trueblack", "default"}

func printUsage() {
	fmt.Fprintf(os.Stderr, `flowtop v%s — live per-flow network throughput, ranked

Usage:
  flowtop [OPTIONS] [INTERVAL] [-- SOURCE_ARGS...]

Modes:
  (default)         Interactive TUI (bubbletea, fullscreen)
  -watch            Plain text output — one frame per interval, no escapes
  -replay FILE      Replay a recording instead of invoking the source
  -version          Print version and exit

Options:
  -interval N       Sampling interval in seconds, fractional ok (default: 3)
  -top N            Rows to display (default: 20)
  -group MODE       Group flows by process or remote (default: process)
  -threshold N      Highlight rows at or above N KB/s, 0 disables (default: 500)
  -bg MODE          Background hint: black, trueblack, default (default: black)
  -count N          Iterations for -watch mode (0 = infinite, default: 0)
  -source CMD       Accounting command to sample (default: nettop)
  -record FILE      Record raw snapshots to FILE while running
  -debug            Verbose diagnostics to flowtop-debug.log

Positional:
  INTERVAL          First positional arg sets interval: flowtop 5 = flowtop -interval 5

Keys (interactive):
  h help   i sort IN   o sort OUT   d sort Δ   m toggle Δ/SUM   t interval   q quit

Config:
  ~/.config/flowtop/config.yaml supplies defaults; flags always win.

Examples:
  flowtop                            Interactive, 3s refresh
  flowtop 0.5                        Interactive, 500ms refresh
  flowtop -group remote              One row per (process, remote endpoint)
  flowtop -watch -count 10           Ten plain frames, then exit
  flowtop -watch | tee flows.log     Append-only frames, pipe-safe
  flowtop -record session.flog       Record while watching
  flowtop -replay session.flog       Re-examine a recording, any OS
  flowtop -threshold 2000            Highlight flows moving ≥ 2 MB/s
  flowtop -- -m tcp                  Extra args passed to nettop verbatim
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	defaults := config.Load()

	// Everything after "--" goes to the accounting command verbatim.
	argv, passthrough := splitPassthrough(os.Args[1:])

	var cfg Config
	var intervalSec float64
	var showVersion bool

	flags := flag.NewFlagSet("flowtop", flag.ExitOnError)
	flags.Float64Var(&intervalSec, "interval", defaults.IntervalSec, "Sampling interval in seconds")
	flags.IntVar(&cfg.Top, "top", defaults.Top, "Rows to display")
	flags.StringVar(&cfg.Group, "group", defaults.Group, "Grouping mode (process, remote)")
	flags.Float64Var(&cfg.ThresholdKB, "threshold", defaults.ThresholdKBs, "Highlight threshold in KB/s (0 disables)")
	flags.StringVar(&cfg.BG, "bg", defaults.BG, "Background hint (black, trueblack, default)")
	flags.BoolVar(&cfg.WatchMode, "watch", false, "Plain text output mode (no TUI)")
	flags.IntVar(&cfg.WatchCount, "count", 0, "Number of iterations for -watch (0=infinite)")
	flags.StringVar(&cfg.Source, "source", defaults.Source, "Accounting command to sample")
	flags.StringVar(&cfg.RecordPath, "record", "", "Record raw snapshots to file for later replay")
	flags.StringVar(&cfg.ReplayPath, "replay", "", "Replay snapshots from a recorded file")
	flags.BoolVar(&cfg.Debug, "debug", false, "Verbose diagnostics to flowtop-debug.log")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.Usage = printUsage
	flags.Parse(argv)
	cfg.Passthrough = passthrough

	if showVersion {
		fmt.Printf("flowtop v%s\n", Version)
		return nil
	}

	// Support positional arg for interval: `flowtop 5` = `flowtop -interval 5`
	if args := flags.Args(); len(args) > 0 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v <= 0 || len(args) > 1 {
			fmt.Fprintf(os.Stderr, "Error: invalid positional arguments %v\n\n", args)
			printUsage()
			os.Exit(1)
		}
		intervalSec = v
	}
	cfg.Interval = time.Duration(intervalSec * float64(time.Second))

	sess := &model.Session{
		Mode:        model.GroupMode(cfg.Group),
		Sort:        model.SortDelta,
		Metric:      model.MetricDelta,
		Interval:    cfg.Interval,
		Top:         cfg.Top,
		ThresholdKB: cfg.ThresholdKB,
		ShowHelp:    true,
	}
	if err := sess.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}
	if !validBG(cfg.BG) {
		fmt.Fprintf(os.Stderr, "Error: unknown background %q (valid: black, trueblack, default)\n\n", cfg.BG)
		printUsage()
		os.Exit(1)
	}

	batch := cfg.WatchMode || !stdioIsTerminal()
	logger := newLogger(cfg.Debug, batch)

	src, closeSrc, err := buildSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	eng := engine.New(src, sess.Mode, defaults.PruneAfter, defaults.HistorySize, logger)

	// -watch mode, or stdout is a pipe: plain frames
	if batch {
		return runWatch(eng, sess, cfg)
	}

	// Normal TUI mode
	m := ui.NewModel(eng, sess, cfg.BG)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// buildSource assembles the snapshot source: live command or replay,
// optionally wrapped with recording. The returned closer owns any open
// record file.
func buildSource(cfg Config, logger *log.Logger) (collector.Source, func(), error) {
	closer := func() {}

	var src collector.Source
	if cfg.ReplayPath != "" {
		f, err := os.Open(cfg.ReplayPath)
		if err != nil {
			return nil, closer, fmt.Errorf("cannot open replay file: %w", err)
		}
		p, perr := collector.NewPlayer(f, filepath.Base(cfg.ReplayPath))
		f.Close()
		if perr != nil {
			return nil, closer, fmt.Errorf("cannot load replay file: %w", perr)
		}
		src = p
	} else {
		if cfg.Source == "nettop" && runtime.GOOS != "darwin" {
			return nil, closer, fmt.Errorf("nettop is only available on macOS; use -source or -replay here")
		}
		if _, err := exec.LookPath(cfg.Source); err != nil {
			return nil, closer, fmt.Errorf("%s not found in PATH", cfg.Source)
		}
		timeout := 2*cfg.Interval + time.Second
		src = collector.NewCmdSource(cfg.Source, cfg.Passthrough, timeout, logger)
	}

	if cfg.RecordPath != "" {
		f, err := os.Create(cfg.RecordPath)
		if err != nil {
			return nil, closer, fmt.Errorf("cannot create record file: %w", err)
		}
		closer = func() { f.Close() }
		src = collector.NewRecordingSource(src, f, logger)
	}
	return src, closer, nil
}

// newLogger routes diagnostics away from the table output: a debug file
// when asked, stderr warnings in batch mode, silence under the TUI.
func newLogger(debug, batch bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	if batch {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(log.WarnLevel)
	}
	if debug {
		f, err := os.OpenFile("flowtop-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open debug log: %v\n", err)
		} else {
			logger.SetOutput(f)
			logger.SetLevel(log.DebugLevel)
		}
	}
	return logger
}

// splitPassthrough separates our own arguments from everything after the
// first "--", which is handed to the accounting command verbatim.
func splitPassthrough(argv []string) (own, extra []string) {
	for i, a := range argv {
		if a == "--" {
			return argv[:i], argv[i+1:]
		}
	}
	return argv, nil
}

func stdioIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) &&
		isatty.IsTerminal(os.Stdout.Fd()) &&
		os.Getenv("TERM") != ""
}

func validBG(bg string) bool {
	for _, b := range validBGs {
		if bg == b {
			return true
		}
	}
	return false
}
