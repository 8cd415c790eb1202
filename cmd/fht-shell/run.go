package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/logging"
	"github.com/nnyyxxxx/fht-compositor/internal/metrics"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
	"github.com/nnyyxxxx/fht-compositor/internal/scenario"
	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

var (
	flagFrameRate int
	flagLinger    time.Duration
	flagNoWatch   bool
	flagNoMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Play a scenario file against the shell",
	Long: `run loads the configuration, builds a shell with the scenario's
outputs and replays its events on a frame clock. The config file is watched
while the scenario runs; edits and SIGHUP apply the new config live, the
same way the compositor does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenario(args[0])
	},
}

func init() {
	runCmd.Flags().IntVar(&flagFrameRate, "frame-rate", 60, "animation frames per second")
	runCmd.Flags().DurationVar(&flagLinger, "linger", time.Second, "how long to keep ticking after the last event")
	runCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "do not watch the config file for changes")
	runCmd.Flags().BoolVar(&flagNoMetrics, "no-metrics", false, "skip the metrics snapshot on exit")
	rootCmd.AddCommand(runCmd)
}

func runScenario(scenarioPath string) error {
	logger := logging.New(os.Stderr, flagLogLevel)

	cfgPath := configPath()
	cfg, raw, err := loadConfig(cfgPath, logger)
	if err != nil {
		return err
	}
	compiled, err := rules.FromConfig(cfg.WindowRules)
	if err != nil {
		return fmt.Errorf("compile window rules: %w", err)
	}

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(!flagNoMetrics)
	sh := shell.New(logger, newLogTransport(logger), shellOptions(cfg, collector))
	sh.SetRules(compiled)
	for i := range sc.Outputs {
		out := &sc.Outputs[i]
		sh.AddOutput(shell.NewOutput(out.Name, out.Rect()))
	}

	reloader := newConfigReloader(cfgPath, logger, sh, collector, raw)
	reloadRequests := make(chan string, 1)
	if !flagNoWatch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()
		if err := watchConfigPath(logger, watcher, cfgPath, reloadRequests); err != nil {
			logger.Warn().Err(err).Msg("config watching disabled")
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	rate := flagFrameRate
	if rate < 1 {
		rate = 60
	}
	frames := time.NewTicker(time.Second / time.Duration(rate))
	defer frames.Stop()

	pl := scenario.NewPlayer(logger, sh)
	start := time.Now()
	var idleSince time.Time

	logger.Info().
		Str("scenario", scenarioPath).
		Int("outputs", len(sc.Outputs)).
		Int("events", len(sc.Events)).
		Msg("scenario started")

	for {
		select {
		case now := <-frames.C:
			done := pl.PlayDue(sc.Events, now.Sub(start), now)
			sh.AdvanceAnimations(now)
			if !done {
				continue
			}
			if idleSince.IsZero() {
				idleSince = now
			}
			if now.Sub(idleSince) >= flagLinger {
				logger.Info().Msg("scenario finished")
				return printMetrics(os.Stdout, collector)
			}
		case reason := <-reloadRequests:
			if err := reloader.Reload(reason); err != nil {
				logger.Error().Err(err).Msg("reload failed")
			}
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				if err := reloader.Reload("received SIGHUP"); err != nil {
					logger.Error().Err(err).Msg("reload failed")
				}
				continue
			}
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			return printMetrics(os.Stdout, collector)
		}
	}
}

// loadConfig reads the configuration, falling back to defaults when the file
// does not exist. The raw bytes seed the reloader's diff baseline.
func loadConfig(path string, logger zerolog.Logger) (*config.Config, []byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info().Str("path", path).Msg("no config file, using defaults")
		return config.Default(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return cfg, raw, nil
}

// shellOptions maps the file configuration onto the shell's runtime options.
func shellOptions(cfg *config.Config, collector *metrics.Collector) shell.Options {
	ws := cfg.Animations.WorkspaceSwitch
	return shell.Options{
		FocusNewWindows:   cfg.General.FocusNewWindows,
		WorkspaceCount:    cfg.General.WorkspaceCount,
		MasterWidthFactor: cfg.General.MasterWidthFactor,
		Gaps: geometry.Gaps{
			Inner: cfg.General.Gaps.Inner,
			Outer: cfg.General.Gaps.Outer,
		},
		WorkspaceSwitch: shell.SwitchAnimationOptions{
			Enable:   ws.Enable,
			Curve:    ws.Curve.Curve,
			Duration: time.Duration(ws.DurationMs) * time.Millisecond,
		},
		Metrics: collector,
	}
}

func printMetrics(out io.Writer, collector *metrics.Collector) error {
	if !collector.Enabled() {
		return nil
	}
	data, err := json.MarshalIndent(collector.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
