// Package scan runs the pick pipeline end to end. One scan resolves the
// time window, collects fixtures from every source, reconciles them,
// qualifies candidates, builds the slate and asks for rationale text.
//
// A scan never fails: a bad timezone or an empty qualified set yields the
// bundled fallback slate with Fallback set.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
	"github.com/moisenya/pronoai/pkg/metrics"
	"github.com/moisenya/pronoai/pkg/model"
	"github.com/moisenya/pronoai/pkg/rationale"
	"github.com/moisenya/pronoai/pkg/slate"
	"github.com/moisenya/pronoai/pkg/sources"
)

// Stage represents a stage of the scan.
type Stage string

const (
	StageWindow    Stage = "window"
	StageCollect   Stage = "collect"
	StageReconcile Stage = "reconcile"
	StageQualify   Stage = "qualify"
	StageBuild     Stage = "build"
	StageRationale Stage = "rationale"
)

const (
	ModeLive     = "live"
	ModeFallback = "fallback"
)

// StageResult holds the result of a stage execution.
type StageResult struct {
	Stage     Stage          `json:"stage"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
}

// Config configures a scanner.
type Config struct {
	Timezone     string
	WindowBuffer time.Duration
	DayOffsets   []int
	FetchTimeout time.Duration
	KickoffGrace time.Duration
	Leagues      []fixtures.League
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:     "Europe/Paris",
		WindowBuffer: fixtures.DefaultWindowBuffer,
		DayOffsets:   []int{-1, 0, 1},
		FetchTimeout: 5 * time.Second,
		KickoffGrace: 5 * time.Minute,
		Leagues:      fixtures.DefaultLeagues(),
	}
}

// Meta describes the window a scan covered.
type Meta struct {
	DateISO     string    `json:"dateISO"`
	DateLabel   string    `json:"dateLabel"`
	WindowLabel string    `json:"windowLabel"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
}

// Result is the output of one scan. Summary is nil when the scan aborted
// before any fixture was examined.
type Result struct {
	ScanID      string                                 `json:"scanId"`
	GeneratedAt time.Time                              `json:"generatedAt"`
	Picks       []slate.Pick                           `json:"picks"`
	Summary     map[fixtures.Sport]*slate.SportSummary `json:"summary"`
	Meta        Meta                                   `json:"meta"`
	Fallback    bool                                   `json:"fallback"`
}

// Mode labels the result for metrics.
func (r *Result) Mode() string {
	if r.Fallback {
		return ModeFallback
	}
	return ModeLive
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithGate replaces the default qualification gate.
func WithGate(g *gate.Gate) Option {
	return func(s *Scanner) { s.gate = g }
}

// WithBuilder replaces the default slate builder.
func WithBuilder(b *slate.Builder) Option {
	return func(s *Scanner) { s.builder = b }
}

// WithReconciler replaces the default reconciler.
func WithReconciler(r *fixtures.Reconciler) Option {
	return func(s *Scanner) { s.reconciler = r }
}

// WithModel replaces the default probability model.
func WithModel(m *model.Model) Option {
	return func(s *Scanner) { s.model = m }
}

// WithGenerator sets the rationale generator.
func WithGenerator(g *rationale.Generator) Option {
	return func(s *Scanner) { s.generator = g }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.ScanMetrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// Scanner runs scans. It is safe for concurrent use.
type Scanner struct {
	config     *Config
	collector  *Collector
	reconciler *fixtures.Reconciler
	model      *model.Model
	gate       *gate.Gate
	builder    *slate.Builder
	generator  *rationale.Generator
	metrics    *metrics.ScanMetrics
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.RWMutex
	latest  *Result
	running bool
	stopCh  chan struct{}

	// Callbacks
	onStageComplete func(*StageResult)
	onResult        func(*Result)
}

// New creates a scanner over the given sources.
func New(config *Config, srcs []sources.Source, opts ...Option) *Scanner {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config
	if len(cfg.DayOffsets) == 0 {
		cfg.DayOffsets = defaults.DayOffsets
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.Leagues == nil {
		cfg.Leagues = defaults.Leagues
	}

	s := &Scanner{
		config: &cfg,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewScanMetrics()
	}
	if s.reconciler == nil {
		s.reconciler = fixtures.NewReconciler(nil)
	}
	if s.model == nil {
		s.model = model.New(nil)
	}
	if s.gate == nil {
		s.gate = gate.New(nil)
	}
	if s.builder == nil {
		s.builder = slate.NewBuilder(nil, nil)
	}
	if s.generator == nil {
		s.generator = rationale.NewGenerator(nil, s.logger)
	}
	s.collector = newCollector(srcs, &cfg, s.metrics, s.logger)
	return s
}

// OnStageComplete sets a callback for stage completions.
func (s *Scanner) OnStageComplete(fn func(*StageResult)) {
	s.onStageComplete = fn
}

// OnResult sets a callback invoked after every scan.
func (s *Scanner) OnResult(fn func(*Result)) {
	s.onResult = fn
}

// Latest returns the most recent result, or nil before the first scan.
func (s *Scanner) Latest() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Scan runs the whole pipeline once.
func (s *Scanner) Scan(ctx context.Context) *Result {
	began := time.Now()
	now := s.now().UTC()
	res := &Result{ScanID: uuid.NewString(), GeneratedAt: now}
	log := s.logger.With(zap.String("scan_id", res.ScanID))

	var w fixtures.Window
	err := s.runStage(StageWindow, func() (map[string]any, error) {
		var err error
		w, err = fixtures.ResolveWindow(now, s.config.Timezone, s.config.WindowBuffer)
		if err != nil {
			return nil, err
		}
		return map[string]any{"date": w.DateISO, "window": w.Label}, nil
	})
	if err != nil {
		log.Error("window resolution failed, serving fallback slate", zap.Error(err))
		w, _ = fixtures.ResolveWindow(now, "UTC", s.config.WindowBuffer)
		res.Fallback = true
		s.build(w, nil, nil, res)
		return s.finish(ctx, log, w, res, began)
	}

	var listed []fixtures.Fixture
	var col Collection
	s.runStage(StageCollect, func() (map[string]any, error) {
		col = s.collector.Collect(ctx, w)
		listed = eligible(col.Fixtures, w, now, s.config.KickoffGrace)
		return map[string]any{
			"calls":     col.Calls,
			"failures":  col.Failures,
			"fixtures":  len(col.Fixtures),
			"eligible":  len(listed),
			"secondary": len(col.Secondary),
		}, nil
	})

	summaries := make(map[fixtures.Sport]*slate.SportSummary)
	for _, sport := range fixtures.Sports() {
		summaries[sport] = slate.NewSportSummary()
	}
	for _, f := range listed {
		summaries[f.Sport].TotalListed++
	}

	var rec fixtures.Reconciliation
	s.runStage(StageReconcile, func() (map[string]any, error) {
		rec = s.reconciler.Reconcile(listed, col.Secondary)
		for _, c := range rec.Confirmed {
			summaries[c.Fixture.Sport].Confirmed++
		}
		return map[string]any{"confirmed": len(rec.Confirmed), "excluded": len(rec.Excluded)}, nil
	})

	var qualified []gate.Candidate
	s.runStage(StageQualify, func() (map[string]any, error) {
		candidates := make([]gate.Candidate, 0, len(listed))
		for _, c := range rec.Confirmed {
			candidates = append(candidates, gate.Analyse(c.Fixture, true, "", s.model))
		}
		for _, e := range rec.Excluded {
			candidates = append(candidates, gate.Analyse(e.Fixture, false, e.Reason, s.model))
		}

		accepted, rejected := s.gate.Run(candidates)
		qualified = accepted
		s.summarise(log, summaries, accepted, rejected)
		return map[string]any{"qualified": len(accepted), "rejected": len(rejected)}, nil
	})

	if len(qualified) == 0 {
		log.Warn("no qualified candidates, serving fallback slate", zap.Int("eligible", len(listed)))
		res.Fallback = true
	}
	res.Summary = summaries
	s.build(w, qualified, summaries, res)
	return s.finish(ctx, log, w, res, began)
}

func (s *Scanner) build(w fixtures.Window, qualified []gate.Candidate, summaries map[fixtures.Sport]*slate.SportSummary, res *Result) {
	s.runStage(StageBuild, func() (map[string]any, error) {
		res.Picks = s.builder.Build(w, qualified, summaries)
		var live int
		for _, p := range res.Picks {
			if p.Source == slate.SourceLive {
				live++
			}
		}
		return map[string]any{"picks": len(res.Picks), "live": live}, nil
	})
}

// summarise records per-sport counters, exclusions and coverage.
// Candidates that cleared confirmation and market sufficiency count as analysed.
// Only reconciliation exclusions feed highProfileExcluded.
func (s *Scanner) summarise(log *zap.Logger, summaries map[fixtures.Sport]*slate.SportSummary, accepted []gate.Candidate, rejected []gate.Rejection) {
	excluded := make(map[fixtures.Sport][]fixtures.Exclusion)
	for _, r := range rejected {
		f := r.Candidate.Fixture
		sum := summaries[f.Sport]
		sum.Exclude(f, string(r.Reason.Stage), r.Reason.Message)
		if r.Reason.Stage != gate.StageConfirmation && r.Reason.Stage != gate.StageMarket {
			sum.Analysed++
		}
		if r.Reason.Stage == gate.StageConfirmation {
			excluded[f.Sport] = append(excluded[f.Sport], fixtures.Exclusion{Fixture: f, Reason: r.Reason.Message})
		}

		s.metrics.RecordExclusion(string(f.Sport), string(r.Reason.Stage))
		log.Debug("fixture excluded",
			zap.String("sport", string(f.Sport)),
			zap.String("match", f.Match()),
			zap.String("stage", string(r.Reason.Stage)),
			zap.String("reason", r.Reason.Message),
		)
	}
	for _, c := range accepted {
		sum := summaries[c.Fixture.Sport]
		sum.Analysed++
		sum.Candidates++
	}

	for sport, sum := range summaries {
		if hp := s.reconciler.HighProfile(excluded[sport]); len(hp) > 0 {
			sum.HighProfileExcluded = hp
		}
		sum.UpdateCoverage()
		s.metrics.UpdateCoverage(string(sport), sum.CoverageRatio)
	}
}

func (s *Scanner) finish(ctx context.Context, log *zap.Logger, w fixtures.Window, res *Result, began time.Time) *Result {
	s.runStage(StageRationale, func() (map[string]any, error) {
		picks, err := s.generator.Enrich(ctx, res.Picks, res.Summary, res.Fallback)
		res.Picks = picks
		switch {
		case errors.Is(err, rationale.ErrDisabled):
			s.metrics.RecordRationale("disabled")
			return map[string]any{"status": "disabled"}, nil
		case err != nil:
			s.metrics.RecordRationale("error")
			log.Warn("rationale generation failed, keeping templates", zap.Error(err))
			return nil, err
		}
		s.metrics.RecordRationale("ok")
		return map[string]any{"status": "ok"}, nil
	})

	if res.Picks == nil {
		res.Picks = []slate.Pick{}
	}
	res.Meta = Meta{
		DateISO:     w.DateISO,
		DateLabel:   w.DateLabel,
		WindowLabel: w.Label,
		WindowStart: w.Start.UTC(),
		WindowEnd:   w.End.UTC(),
	}

	for _, p := range res.Picks {
		s.metrics.RecordPick(string(p.Sport), p.Source)
		if p.Edge != nil {
			s.metrics.RecordEdge(string(p.Sport), decimal.NewFromFloat(*p.Edge).Shift(4))
		}
	}
	elapsed := time.Since(began)
	s.metrics.RecordScan(res.Mode(), elapsed.Seconds())
	log.Info("scan complete",
		zap.String("mode", res.Mode()),
		zap.String("date", res.Meta.DateISO),
		zap.Int("picks", len(res.Picks)),
		zap.Duration("duration", elapsed),
	)

	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()
	if s.onResult != nil {
		s.onResult(res)
	}
	return res
}

func (s *Scanner) runStage(stage Stage, fn func() (map[string]any, error)) error {
	start := time.Now()
	data, err := fn()

	result := &StageResult{
		Stage:     stage,
		Success:   err == nil,
		Data:      data,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	s.metrics.RecordStage(string(stage), result.Duration.Seconds())

	if s.onStageComplete != nil {
		s.onStageComplete(result)
	}
	return err
}

// Start runs a scan immediately and then every interval until ctx is
// done or Stop is called.
func (s *Scanner) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid scan interval %v", interval)
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scanner already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.loop(ctx, interval, stopCh)
	return nil
}

// Stop stops the scan loop.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		close(s.stopCh)
		s.running = false
	}
}

// IsRunning returns true if the scan loop is running.
func (s *Scanner) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scanner) loop(ctx context.Context, interval time.Duration, stopCh chan struct{}) {
	defer func() {
		s.mu.Lock()
		// A later Start owns the flag once stopCh has been replaced.
		if s.stopCh == stopCh {
			s.running = false
		}
		s.mu.Unlock()
	}()

	s.Scan(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Status summarises the scanner state.
type Status struct {
	Running    bool      `json:"running"`
	LastScanID string    `json:"last_scan_id,omitempty"`
	LastScanAt time.Time `json:"last_scan_at,omitempty"`
	Picks      int       `json:"picks"`
	Fallback   bool      `json:"fallback"`
}

// GetStatus returns the current status.
func (s *Scanner) GetStatus() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &Status{Running: s.running}
	if s.latest != nil {
		status.LastScanID = s.latest.ScanID
		status.LastScanAt = s.latest.GeneratedAt
		status.Picks = len(s.latest.Picks)
		status.Fallback = s.latest.Fallback
	}
	return status
}
