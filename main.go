package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/snapkit/internal/config"
	"github.com/olivier-w/snapkit/internal/engine"
	"github.com/olivier-w/snapkit/internal/haptic"
	"github.com/olivier-w/snapkit/internal/script"
	"github.com/olivier-w/snapkit/internal/snap"
	"github.com/olivier-w/snapkit/internal/telemetry"
	"github.com/olivier-w/snapkit/internal/ui"
)

type options struct {
	configPath string
	scriptPath string
	realtime   bool
	overrides  config.FlagOverrides
}

func (o options) headless() bool { return o.scriptPath != "" }

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs reads the command line. Only flags that were actually given end
// up in the overrides so config file values survive otherwise.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("snapkit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath    = fs.String("config", "", "Path to YAML config file")
		scriptPath    = fs.String("script", "", "Replay a gesture script headlessly and print one line per frame")
		realtime      = fs.Bool("realtime", false, "Pace script replay with the wall clock")
		reducedMotion = fs.Bool("reduced-motion", false, "Jump to targets instead of animating")
		springPreset  = fs.String("spring", "", "Spring preset: "+strings.Join(snap.PresetNames(), ", "))
		springModel   = fs.String("model", "", "Spring integrator: euler or analytic")
		fps           = fs.Int("fps", 0, "Frame rate for the animation loop")
		haptics       = fs.Bool("haptics", true, "Play a click when a settle completes")
		hapticStyle   = fs.String("haptic-style", "", "Click style: light, medium, heavy")
		listen        = fs.String("serve", "", "Serve websocket telemetry on addr (e.g. 127.0.0.1:7878)")
		logLevel      = fs.String("log-level", "", "Log level: error, warn, info, debug")
		logFile       = fs.String("log-file", "", "Write logs to this file")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: snapkit [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Drag the rail with the mouse, press 1-9 to snap, q to quit.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	opts := options{
		configPath: *configPath,
		scriptPath: *scriptPath,
		realtime:   *realtime,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reduced-motion":
			opts.overrides.ReducedMotion = reducedMotion
		case "spring":
			opts.overrides.SpringPreset = springPreset
		case "model":
			opts.overrides.SpringModel = springModel
		case "fps":
			opts.overrides.FPS = fps
		case "haptics":
			opts.overrides.Haptics = haptics
		case "haptic-style":
			opts.overrides.HapticStyle = hapticStyle
		case "serve":
			opts.overrides.Listen = listen
		case "log-level":
			opts.overrides.LogLevel = logLevel
		case "log-file":
			opts.overrides.LogFile = logFile
		}
	})
	if opts.realtime && !opts.headless() {
		return options{}, errors.New("-realtime requires -script")
	}
	return opts, nil
}

// loadConfig layers defaults, the config file and flag overrides, then
// validates the result.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadFile(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	opts.overrides.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var s script.Script
	if opts.headless() {
		s, err = script.Load(opts.scriptPath)
		if err != nil {
			return err
		}
	}

	level, err := config.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logOut, closeLog, err := openLog(cfg.Logging.File, opts.headless())
	if err != nil {
		return err
	}
	defer closeLog()
	logger := config.SetupLogger(level, logOut)

	sc, err := cfg.Snap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reduced atomic.Bool
	reduced.Store(cfg.Motion.Reduced)

	var pulser haptic.Pulser = haptic.Nop{}
	if !opts.headless() || opts.realtime {
		click, closeClick := newClick(cfg, logger)
		defer closeClick()
		pulser = click
	}
	if opts.headless() {
		pulser = haptic.Multi{pulser, haptic.Func(func() { fmt.Fprintln(os.Stdout, "# pulse") })}
	}

	engOpts := []engine.Option{
		engine.WithHaptics(pulser),
		engine.WithReducedMotion(reduced.Load),
		engine.WithLogger(logger),
		engine.WithSpringModel(cfg.SpringModel()),
		engine.WithSettleFrames(cfg.Motion.SettleFrames),
	}

	var srv *telemetry.Server
	var bc *telemetry.Broadcaster
	var eng *engine.Engine
	if cfg.Telemetry.Listen != "" {
		srv = telemetry.NewServer(logger, func() engine.State { return eng.State() }, telemetry.ServerConfig{
			Hub:        telemetry.HubConfig{SendBuf: cfg.Telemetry.SendBuffer},
			MaxClients: cfg.Telemetry.MaxClients,
		})
		bc = telemetry.NewBroadcaster(logger, srv.Hub(), cfg.Coalesce())
		engOpts = append(engOpts, engine.WithListener(bc.Observe))
	}

	eng, err = engine.New(sc, engOpts...)
	if err != nil {
		return err
	}
	defer eng.Dispose()

	if srv != nil {
		go srv.Hub().Run(ctx)
		go bc.Run(ctx)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Telemetry.Listen); err != nil {
				logger.Error("telemetry server stopped", "addr", cfg.Telemetry.Listen, "error", err)
			}
		}()
	}

	logger.Info("engine ready",
		"points", len(sc.Points),
		"model", cfg.SpringModel(),
		"reduced_motion", cfg.Motion.Reduced,
		"fps", cfg.Motion.FPS,
	)

	if opts.headless() {
		runner := script.NewRunner(eng, script.Options{
			Out:      os.Stdout,
			FPS:      cfg.Motion.FPS,
			Realtime: opts.realtime,
			Reduced:  &reduced,
		})
		return runner.Run(ctx, s)
	}

	p := tea.NewProgram(ui.New(eng, &reduced, cfg.Motion.FPS), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// openLog picks the log destination. The TUI owns the terminal, so without
// a log file interactive runs discard logs.
func openLog(path string, headless bool) (io.Writer, func(), error) {
	if path != "" {
		f, err := os.OpenFile(config.ExpandPath(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return f, func() { f.Close() }, nil
	}
	if headless {
		return os.Stderr, func() {}, nil
	}
	return io.Discard, func() {}, nil
}

// newClick builds the audible pulser. Audio failures are not fatal; the
// engine runs silently instead.
func newClick(cfg config.Config, logger *slog.Logger) (haptic.Pulser, func()) {
	if !cfg.Haptics.Enabled {
		return haptic.Nop{}, func() {}
	}

	var pcm []byte
	if cfg.Haptics.Sample != "" {
		b, err := haptic.LoadSample(config.ExpandPath(cfg.Haptics.Sample))
		if err != nil {
			logger.Warn("haptic sample unusable, using synthesized click", "path", cfg.Haptics.Sample, "error", err)
		} else {
			pcm = b
		}
	}

	var (
		c   *haptic.Click
		err error
	)
	if pcm != nil {
		c, err = haptic.NewClickFromPCM(pcm, cfg.Haptics.Volume)
	} else {
		c, err = haptic.NewClick(cfg.HapticStyle(), cfg.Haptics.Volume)
	}
	if err != nil {
		logger.Warn("audio unavailable, haptics disabled", "error", err)
		return haptic.Nop{}, func() {}
	}
	return c, func() { c.Close() }
}
