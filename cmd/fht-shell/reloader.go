package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
	"github.com/nnyyxxxx/fht-compositor/internal/metrics"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

// configReloader re-reads the config file and applies it to a running shell.
// A config that fails to parse or compile leaves the previous one in place
// and logs a diff against the last accepted file.
type configReloader struct {
	path           string
	logger         zerolog.Logger
	shell          *shell.Shell
	metrics        *metrics.Collector
	lastSerialized []byte
}

func newConfigReloader(path string, logger zerolog.Logger, sh *shell.Shell, collector *metrics.Collector, serialized []byte) *configReloader {
	return &configReloader{
		path:           path,
		logger:         logger,
		shell:          sh,
		metrics:        collector,
		lastSerialized: append([]byte(nil), serialized...),
	}
}

func (r *configReloader) Reload(reason string) error {
	r.logger.Info().Str("reason", reason).Msg("reloading config")
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		r.logDiff(raw)
		return err
	}
	compiled, err := rules.FromConfig(cfg.WindowRules)
	if err != nil {
		r.logDiff(raw)
		return fmt.Errorf("compile window rules: %w", err)
	}

	r.shell.SetRules(compiled)
	r.shell.SetOptions(shellOptions(cfg, r.metrics))
	r.lastSerialized = append([]byte(nil), raw...)
	r.logger.Info().Int("windowRules", len(compiled)).Msg("config applied")
	return nil
}

func (r *configReloader) logDiff(current []byte) {
	diff := config.DiffSerialized(r.lastSerialized, current)
	if diff == "" {
		r.logger.Warn().Msg("config change rejected; unable to compute diff vs last valid config")
		return
	}
	r.logger.Warn().Msg("config change rejected; diff vs last valid config:\n" + diff)
}

// watchConfigPath registers the config file and its directory with the
// watcher and starts the debounced forwarding goroutine. Watching the
// directory catches editors that replace the file instead of rewriting it.
func watchConfigPath(logger zerolog.Logger, watcher *fsnotify.Watcher, path string, reloadRequests chan<- string) error {
	full, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	full = filepath.Clean(full)
	if err := watcher.Add(filepath.Dir(full)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	if err := watcher.Add(full); err != nil {
		logger.Debug().Err(err).Str("path", full).Msg("unable to watch config file directly")
	}
	go watchConfig(logger, watcher, full, reloadRequests)
	return nil
}

// watchConfig forwards debounced change notifications for target into
// reloadRequests. It exits when the watcher closes.
func watchConfig(logger zerolog.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
