package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/metrics"
	"github.com/moisenya/pronoai/pkg/sources"
)

// Collection is the merged output of every source call of one scan.
type Collection struct {
	Fixtures  []fixtures.Fixture
	Secondary []fixtures.SecondaryFixture
	Calls     int
	Failures  int
}

type call struct {
	source sources.Source
	req    sources.Request
}

// Collector fans requests out over sources, leagues and days.
type Collector struct {
	sources []sources.Source
	leagues []fixtures.League
	offsets []int
	timeout time.Duration
	metrics *metrics.ScanMetrics
	logger  *zap.Logger
}

func newCollector(srcs []sources.Source, cfg *Config, m *metrics.ScanMetrics, logger *zap.Logger) *Collector {
	return &Collector{
		sources: srcs,
		leagues: cfg.Leagues,
		offsets: cfg.DayOffsets,
		timeout: cfg.FetchTimeout,
		metrics: m,
		logger:  logger,
	}
}

func (c *Collector) plan(w fixtures.Window) []call {
	days := w.Days(c.offsets)
	var calls []call
	for _, src := range c.sources {
		switch src.Role() {
		case sources.RolePrimary:
			for _, league := range c.leagues {
				for _, day := range days {
					calls = append(calls, call{src, sources.Request{Sport: league.Sport, League: league, Date: day}})
				}
			}
		case sources.RoleSecondary:
			for _, sport := range fixtures.Sports() {
				for _, day := range days {
					calls = append(calls, call{src, sources.Request{Sport: sport, Date: day}})
				}
			}
		}
	}
	return calls
}

// Collect runs every call concurrently. A failed call contributes nothing
// and never fails the collection. Results are merged in plan order, so
// the output does not depend on completion order.
func (c *Collector) Collect(ctx context.Context, w fixtures.Window) Collection {
	calls := c.plan(w)
	batches := make([]sources.Batch, len(calls))
	failed := make([]bool, len(calls))

	var wg sync.WaitGroup
	for i, cl := range calls {
		wg.Add(1)
		go func(i int, cl call) {
			defer wg.Done()
			batch, err := c.fetch(ctx, cl)
			if err != nil {
				failed[i] = true
				return
			}
			batches[i] = batch
		}(i, cl)
	}
	wg.Wait()

	out := Collection{Calls: len(calls)}
	seenPrimary := make(map[string]bool)
	seenSecondary := make(map[string]bool)
	for i, b := range batches {
		if failed[i] {
			out.Failures++
			continue
		}
		for _, f := range b.Fixtures {
			if seenPrimary[f.ID] {
				continue
			}
			seenPrimary[f.ID] = true
			out.Fixtures = append(out.Fixtures, f)
		}
		for _, s := range b.Secondary {
			key := fmt.Sprintf("%s|%s|%s|%d", s.Sport,
				fixtures.NormalizeName(s.HomeName), fixtures.NormalizeName(s.AwayName), s.Start.Unix())
			if seenSecondary[key] {
				continue
			}
			seenSecondary[key] = true
			out.Secondary = append(out.Secondary, s)
		}
	}
	return out
}

func (c *Collector) fetch(ctx context.Context, cl call) (sources.Batch, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	batch, err := cl.source.FetchFixtures(ctx, cl.req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		c.metrics.RecordFetch(cl.source.Name(), "error", elapsed)
		c.logger.Warn("source fetch failed",
			zap.String("source", cl.source.Name()),
			zap.String("key", requestKey(cl.req)),
			zap.String("date", cl.req.Date.Format("2006-01-02")),
			zap.Error(err),
		)
		return sources.Batch{}, err
	}
	c.metrics.RecordFetch(cl.source.Name(), "ok", elapsed)
	return batch, nil
}

func requestKey(req sources.Request) string {
	if req.League.Key != "" {
		return req.League.Key
	}
	return string(req.Sport)
}

// eligible keeps fixtures that have not started (within grace) and kick
// off inside the window, ordered by kickoff then ID.
func eligible(all []fixtures.Fixture, w fixtures.Window, now time.Time, grace time.Duration) []fixtures.Fixture {
	var out []fixtures.Fixture
	for _, f := range all {
		if !f.Sport.Valid() || !f.Eligible(now, grace) || !w.Contains(f.Kickoff) {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Kickoff.Equal(out[j].Kickoff) {
			return out[i].Kickoff.Before(out[j].Kickoff)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
