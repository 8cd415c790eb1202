// Command bench replays a scenario against a fresh shell a number of times
// and reports per-event latency, configure counts and allocation behaviour.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
	"github.com/nnyyxxxx/fht-compositor/internal/geometry"
	"github.com/nnyyxxxx/fht-compositor/internal/logging"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
	"github.com/nnyyxxxx/fht-compositor/internal/scenario"
	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

// frameStep is the virtual time added between events; animations advance on
// this clock instead of wall time so replays stay deterministic.
const frameStep = 16 * time.Millisecond

type benchLatencyStats struct {
	Min    float64 `json:"minMs"`
	Mean   float64 `json:"meanMs"`
	Median float64 `json:"medianMs"`
	P95    float64 `json:"p95Ms"`
	Max    float64 `json:"maxMs"`
}

type benchAllocationStats struct {
	Total             uint64  `json:"totalAllocations"`
	PerEvent          float64 `json:"allocationsPerEvent"`
	BytesTotal        uint64  `json:"bytesTotal"`
	BytesPerEvent     float64 `json:"bytesPerEvent"`
	MiBTotal          float64 `json:"miBTotal"`
	HeapAllocDelta    int64   `json:"heapAllocDeltaBytes"`
	HeapAllocPerEvent float64 `json:"heapAllocDeltaPerEvent"`
	HeapObjectsDelta  int64   `json:"heapObjectsDelta"`
}

type benchConfigureStats struct {
	Total        int     `json:"total"`
	PerIteration float64 `json:"perIteration"`
	PerEvent     float64 `json:"perEvent"`
}

type benchSummary struct {
	Scenario           string               `json:"scenario"`
	Iterations         int                  `json:"iterations"`
	WarmupIterations   int                  `json:"warmupIterations"`
	EventsPerIteration int                  `json:"eventsPerIteration"`
	TotalEvents        int                  `json:"totalEvents"`
	Configures         benchConfigureStats  `json:"configures"`
	Latency            benchLatencyStats    `json:"latency"`
	IterationDuration  benchLatencyStats    `json:"iterationDuration"`
	Allocations        benchAllocationStats `json:"allocations"`
	TotalDurationMs    float64              `json:"totalDurationMs"`
	EventsPerSecond    float64              `json:"eventsPerSecond"`
}

type benchIteration struct {
	Index      int     `json:"index"`
	DurationMs float64 `json:"durationMs"`
	Configures int     `json:"configures"`
	Events     int     `json:"events"`
}

type benchReport struct {
	Summary     benchSummary     `json:"summary"`
	DurationsMs []float64        `json:"durationsMs"`
	Iterations  []benchIteration `json:"iterations,omitempty"`
}

// benchTransport counts configures instead of sending them anywhere.
type benchTransport struct {
	configures int
	refs       map[refKey]shell.OutputRef
	next       shell.OutputRef
}

type refKey struct {
	client shell.ClientID
	output string
}

func newBenchTransport() *benchTransport {
	return &benchTransport{refs: make(map[refKey]shell.OutputRef), next: 1}
}

func (t *benchTransport) SendConfigure(shell.SurfaceID) {
	t.configures++
}

func (t *benchTransport) ClientOutputs(client shell.ClientID, output *shell.Output) []shell.OutputRef {
	if output == nil {
		return nil
	}
	key := refKey{client: client, output: output.Name()}
	ref, ok := t.refs[key]
	if !ok {
		ref = t.next
		t.next++
		t.refs[key] = ref
	}
	return []shell.OutputRef{ref}
}

func (t *benchTransport) Configures() int { return t.configures }

func main() {
	cfgPath := flag.String("config", "", "path to compositor config (defaults to the XDG location)")
	scenarioPath := flag.String("scenario", "", "path to scenario YAML (empty for the built-in synthetic session)")
	iterations := flag.Int("iterations", 10, "number of times to replay the scenario")
	warmup := flag.Int("warmup", 0, "number of warm-up iterations to run before timing")
	cpuProfile := flag.String("cpu-profile", "", "write CPU profile to file")
	memProfile := flag.String("mem-profile", "", "write heap profile to file")
	logLevel := flag.String("log-level", "warn", "log level (trace|debug|info|warn|error)")
	outputPath := flag.String("output", "-", "write JSON report to file ('-' for stdout)")
	humanSummary := flag.Bool("human", false, "print a tabular summary alongside the JSON output")
	flag.Parse()

	if *iterations <= 0 {
		fmt.Fprintln(os.Stderr, "iterations must be positive")
		os.Exit(1)
	}
	if *warmup < 0 {
		fmt.Fprintln(os.Stderr, "warmup must be zero or positive")
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, *logLevel)

	path := *cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("config not found, benchmarking with defaults")
			cfg = config.Default()
		} else {
			exitErr(fmt.Errorf("load config: %w", err))
		}
	}
	compiled, err := rules.FromConfig(cfg.WindowRules)
	if err != nil {
		exitErr(fmt.Errorf("compile window rules: %w", err))
	}

	name := "synthetic-session"
	sc := defaultScenario()
	if *scenarioPath != "" {
		sc, err = scenario.Load(*scenarioPath)
		if err != nil {
			exitErr(err)
		}
		name = filepath.Base(*scenarioPath)
	}
	if len(sc.Events) == 0 {
		exitErr(errors.New("scenario contains no events"))
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			exitErr(fmt.Errorf("create cpu profile: %w", err))
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			exitErr(fmt.Errorf("start cpu profile: %w", err))
		}
		defer pprof.StopCPUProfile()
	}

	for i := 0; i < *warmup; i++ {
		replayIteration(logger, cfg, compiled, sc, false)
	}

	runtime.GC()
	var startMem runtime.MemStats
	runtime.ReadMemStats(&startMem)

	eventsPerIteration := len(sc.Events)
	durations := make([]time.Duration, 0, eventsPerIteration*(*iterations))
	iterationDurations := make([]time.Duration, 0, *iterations)
	iterationConfigures := make([]int, 0, *iterations)
	totalConfigures := 0

	for i := 0; i < *iterations; i++ {
		iterationDuration, configures, eventDurations := replayIteration(logger, cfg, compiled, sc, true)
		iterationDurations = append(iterationDurations, iterationDuration)
		iterationConfigures = append(iterationConfigures, configures)
		totalConfigures += configures
		durations = append(durations, eventDurations...)
	}

	runtime.GC()
	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			exitErr(fmt.Errorf("create mem profile: %w", err))
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			exitErr(fmt.Errorf("write heap profile: %w", err))
		}
	}

	report := buildReport(name, *iterations, *warmup, eventsPerIteration, durations, iterationDurations, iterationConfigures, totalConfigures, startMem, endMem)
	if err := writeReport(report, *outputPath); err != nil {
		exitErr(fmt.Errorf("encode report: %w", err))
	}
	if *humanSummary {
		if err := printHumanSummary(report.Summary, os.Stdout); err != nil {
			exitErr(fmt.Errorf("print human summary: %w", err))
		}
	}
}

// replayIteration plays the whole scenario against a fresh shell, timing
// each event. AtMs stamps are ignored; the virtual clock advances one frame
// per event so animations still progress.
func replayIteration(logger zerolog.Logger, cfg *config.Config, compiled []rules.Rule, sc *scenario.Scenario, capture bool) (time.Duration, int, []time.Duration) {
	transport := newBenchTransport()
	sh := shell.New(logger, transport, buildOptions(cfg))
	sh.SetRules(compiled)
	for i := range sc.Outputs {
		out := &sc.Outputs[i]
		sh.AddOutput(shell.NewOutput(out.Name, out.Rect()))
	}
	player := scenario.NewPlayer(logger, sh)

	var eventDurations []time.Duration
	if capture {
		eventDurations = make([]time.Duration, 0, len(sc.Events))
	}

	clock := time.Unix(0, 0)
	iterationStart := time.Now()
	for i := range sc.Events {
		start := time.Now()
		player.Apply(&sc.Events[i], clock)
		if capture {
			eventDurations = append(eventDurations, time.Since(start))
		}
		clock = clock.Add(frameStep)
		sh.AdvanceAnimations(clock)
	}
	return time.Since(iterationStart), transport.Configures(), eventDurations
}

func buildOptions(cfg *config.Config) shell.Options {
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
	}
}

// defaultScenario is a synthetic session touching every operation class:
// mapping, layers, fullscreen, workspace switches, a drag and a popup.
func defaultScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Outputs: []scenario.Output{{Name: "DP-1", Width: 2560, Height: 1440}},
		Events: []scenario.Event{
			{CreateWindow: &scenario.CreateWindowEvent{Surface: 1, Client: 1, Title: "IDE", AppID: "dev.editor"}},
			{MapWindow: &scenario.SurfaceEvent{Surface: 1}},
			{CreateWindow: &scenario.CreateWindowEvent{Surface: 2, Client: 1, Title: "Terminal", AppID: "dev.term"}},
			{MapWindow: &scenario.SurfaceEvent{Surface: 2}},
			{CreateWindow: &scenario.CreateWindowEvent{Surface: 3, Client: 2, Title: "Docs", AppID: "org.browser"}},
			{MapWindow: &scenario.SurfaceEvent{Surface: 3}},
			{LayerSurface: &scenario.LayerSurfaceEvent{Surface: 100, Client: 3, Output: "DP-1", Level: "top", Anchor: "top", Thickness: 32, Exclusive: true}},
			{Fullscreen: &scenario.FullscreenEvent{Surface: 1, Enable: true}},
			{Fullscreen: &scenario.FullscreenEvent{Surface: 1, Enable: false}},
			{SwitchWorkspace: &scenario.SwitchWorkspaceEvent{Index: 1}},
			{SwitchWorkspace: &scenario.SwitchWorkspaceEvent{Index: 0}},
			{PointerMotion: &scenario.PointerMotionEvent{X: 200, Y: 300}},
			{PointerButton: &scenario.PointerButtonEvent{Pressed: true, Serial: 1}},
			{MoveRequest: &scenario.MoveRequestEvent{Surface: 2, Serial: 1}},
			{PointerMotion: &scenario.PointerMotionEvent{X: 450, Y: 500}},
			{PointerButton: &scenario.PointerButtonEvent{Pressed: false, Serial: 2}},
			{Popup: &scenario.PopupEvent{Surface: 200, Client: 1, Parent: 1, X: 2400, Y: 1300, Width: 320, Height: 240}},
			{Raise: &scenario.SurfaceEvent{Surface: 3}},
			{CloseWindow: &scenario.SurfaceEvent{Surface: 2}},
		},
	}
}

func buildReport(name string, iterations, warmup, eventsPerIteration int, durations, iterationDurations []time.Duration, iterationConfigures []int, configures int, start, end runtime.MemStats) benchReport {
	totalEvents := eventsPerIteration * iterations
	latencyStats, totalEventDuration := buildLatencyStats(durations)
	iterationStats, _ := buildLatencyStats(iterationDurations)

	allocs := end.Mallocs - start.Mallocs
	bytesAllocated := end.TotalAlloc - start.TotalAlloc
	heapAllocDelta := int64(end.HeapAlloc) - int64(start.HeapAlloc)
	heapObjectsDelta := int64(end.HeapObjects) - int64(start.HeapObjects)

	perEvent := func(v float64) float64 {
		if totalEvents == 0 {
			return v
		}
		return v / float64(totalEvents)
	}

	durationsMs := make([]float64, len(durations))
	for i, d := range durations {
		durationsMs[i] = toMillis(d)
	}

	iterationsData := make([]benchIteration, 0, len(iterationDurations))
	for i, d := range iterationDurations {
		configureCount := 0
		if i < len(iterationConfigures) {
			configureCount = iterationConfigures[i]
		}
		iterationsData = append(iterationsData, benchIteration{
			Index:      i + 1,
			DurationMs: toMillis(d),
			Configures: configureCount,
			Events:     eventsPerIteration,
		})
	}

	summary := benchSummary{
		Scenario:           name,
		Iterations:         iterations,
		WarmupIterations:   warmup,
		EventsPerIteration: eventsPerIteration,
		TotalEvents:        totalEvents,
		Configures: benchConfigureStats{
			Total:        configures,
			PerIteration: safeDivide(configures, iterations),
			PerEvent:     safeDivide(configures, totalEvents),
		},
		Latency:           latencyStats,
		IterationDuration: iterationStats,
		Allocations: benchAllocationStats{
			Total:             allocs,
			PerEvent:          perEvent(float64(allocs)),
			BytesTotal:        bytesAllocated,
			BytesPerEvent:     perEvent(float64(bytesAllocated)),
			MiBTotal:          float64(bytesAllocated) / (1024 * 1024),
			HeapAllocDelta:    heapAllocDelta,
			HeapAllocPerEvent: perEvent(float64(heapAllocDelta)),
			HeapObjectsDelta:  heapObjectsDelta,
		},
		TotalDurationMs: toMillis(totalEventDuration),
		EventsPerSecond: eventsPerSecond(totalEventDuration, totalEvents),
	}

	return benchReport{Summary: summary, DurationsMs: durationsMs, Iterations: iterationsData}
}

func buildLatencyStats(durations []time.Duration) (benchLatencyStats, time.Duration) {
	stats := benchLatencyStats{}
	if len(durations) == 0 {
		return stats, 0
	}
	total := time.Duration(0)
	for _, d := range durations {
		total += d
	}
	mean := total / time.Duration(len(durations))
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	stats.Min = toMillis(sorted[0])
	stats.Mean = toMillis(mean)
	stats.Median = toMillis(percentile(sorted, 0.50))
	stats.P95 = toMillis(percentile(sorted, 0.95))
	stats.Max = toMillis(sorted[len(sorted)-1])
	return stats, total
}

func safeDivide(total int, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func writeReport(report benchReport, outputPath string) error {
	var (
		w   io.Writer
		out *os.File
		err error
	)
	switch strings.TrimSpace(outputPath) {
	case "", "-":
		w = os.Stdout
	default:
		dir := filepath.Dir(outputPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create report dir: %w", err)
			}
		}
		out, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printHumanSummary(summary benchSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []string{
		fmt.Sprintf("Scenario:\t%s\n", summary.Scenario),
		fmt.Sprintf("Iterations:\t%d\n", summary.Iterations),
		fmt.Sprintf("Warmup iterations:\t%d\n", summary.WarmupIterations),
		fmt.Sprintf("Events/iteration:\t%d\n", summary.EventsPerIteration),
		fmt.Sprintf("Total events:\t%d\n", summary.TotalEvents),
		fmt.Sprintf("Configures:\t%d (%.2f / iter, %.2f / event)\n", summary.Configures.Total, summary.Configures.PerIteration, summary.Configures.PerEvent),
		fmt.Sprintf("Latency (ms):\tmin %.2f | mean %.2f | median %.2f | p95 %.2f | max %.2f\n", summary.Latency.Min, summary.Latency.Mean, summary.Latency.Median, summary.Latency.P95, summary.Latency.Max),
		fmt.Sprintf("Iteration duration (ms):\tmin %.2f | mean %.2f | median %.2f | p95 %.2f | max %.2f\n", summary.IterationDuration.Min, summary.IterationDuration.Mean, summary.IterationDuration.Median, summary.IterationDuration.P95, summary.IterationDuration.Max),
		fmt.Sprintf("Allocations:\t%d total (%.2f / event)\n", summary.Allocations.Total, summary.Allocations.PerEvent),
		fmt.Sprintf("Bytes allocated:\t%s (%.2f / event)\n", formatBytesUnsigned(summary.Allocations.BytesTotal), summary.Allocations.BytesPerEvent),
		fmt.Sprintf("Heap delta:\t%s change, %d objects\n", formatBytesSigned(summary.Allocations.HeapAllocDelta), summary.Allocations.HeapObjectsDelta),
		fmt.Sprintf("Events/sec:\t%.2f\n", summary.EventsPerSecond),
	}
	for _, row := range rows {
		if _, err := fmt.Fprint(tw, row); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func formatBytesUnsigned(bytes uint64) string {
	const miB = 1024 * 1024
	if bytes == 0 {
		return "0 B (0.00 MiB)"
	}
	return fmt.Sprintf("%d B (%.2f MiB)", bytes, float64(bytes)/float64(miB))
}

func formatBytesSigned(delta int64) string {
	if delta == 0 {
		return "0 B (0.00 MiB)"
	}
	sign := ""
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	return fmt.Sprintf("%s%s", sign, formatBytesUnsigned(uint64(delta)))
}

func eventsPerSecond(total time.Duration, events int) float64 {
	if total <= 0 || events == 0 {
		return 0
	}
	seconds := total.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(events) / seconds
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(p*float64(len(sorted)-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
