// Package pipeline orchestrates one day of reconciliation: fetch request
// records, mirror the event logs, normalize, join, snapshot, and publish.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/awsclient"
	"github.com/automail/analytics-pipeline/internal/config"
	"github.com/automail/analytics-pipeline/internal/events"
	"github.com/automail/analytics-pipeline/internal/join"
	"github.com/automail/analytics-pipeline/internal/jptime"
	"github.com/automail/analytics-pipeline/internal/request"
	"github.com/automail/analytics-pipeline/internal/sheets"
	"github.com/automail/analytics-pipeline/internal/snapshot"
)

// Deps groups the collaborators a Pipeline needs. Metrics and Notifier are
// optional; nil disables them.
type Deps struct {
	Config       *config.Config
	Log          *logrus.Logger
	Fetcher      *request.Fetcher
	Downloader   *events.Downloader
	Materializer *events.Materializer
	Engine       *join.Engine
	Publisher    *sheets.Publisher
	Metrics      *Reporter
	Notifier     *awsclient.Notifier
}

// Pipeline processes days sequentially, run-to-completion, one at a time.
type Pipeline struct {
	deps  Deps
	runID string
}

// New returns a Pipeline with a fresh correlation id for this invocation.
func New(deps Deps) *Pipeline {
	return &Pipeline{
		deps:  deps,
		runID: uuid.NewString(),
	}
}

// RunID is the correlation id attached to logs, metrics and notifications.
func (p *Pipeline) RunID() string { return p.runID }

// RunDay executes the full pipeline for one civil day against the given
// spreadsheet. In dry-run mode nothing is read or written; the day is only
// announced. Recoverable source failures degrade to empty data inside the
// stages; an error return means the day failed.
func (p *Pipeline) RunDay(ctx context.Context, day jptime.CivilDate, spreadsheetID string, dryRun bool) error {
	log := p.deps.Log
	log.Infof("=== processing %s (run %s) ===", day, p.runID)

	if dryRun {
		log.Infof("[DRY-RUN] would process %s into sheet %s tab %s", day, spreadsheetID, day.DayTab())
		return nil
	}

	started := time.Now()
	stats := DayStats{}
	err := p.runDay(ctx, day, spreadsheetID, &stats)
	stats.Success = err == nil
	stats.Duration = time.Since(started)

	p.report(ctx, day, stats)
	if err == nil {
		p.notify(ctx, day, spreadsheetID, stats.Aggregated)
	}
	return err
}

func (p *Pipeline) runDay(ctx context.Context, day jptime.CivilDate, spreadsheetID string, stats *DayStats) error {
	cfg := p.deps.Config
	log := p.deps.Log
	key := day.MonthKey()
	stamp := key + day.DayTab() // YYYYMMDD

	// Stage 1: fetch the 3-day window of request records.
	fetched := p.deps.Fetcher.FetchWindow(ctx, day)
	if fetched.Degraded {
		log.Warnf("[WARNING] proceeding with empty request set for %s: %s", day, fetched.Reason)
	}
	log.Infof("fetched %d request records", len(fetched.Records))
	stats.Fetched = len(fetched.Records)

	rawPath := filepath.Join(cfg.DataDir, "items.csv")
	if err := snapshot.WriteRaw(rawPath, fetched.Records); err != nil {
		return fmt.Errorf("write raw snapshot: %w", err)
	}

	// Stage 2: mirror the day's event-log partition locally.
	localDir := filepath.Join(cfg.EventsPrefix,
		fmt.Sprintf("year=%04d", day.Year),
		fmt.Sprintf("month=%02d", int(day.Month)),
		fmt.Sprintf("day=%02d", day.Day))
	if p.deps.Downloader.DownloadDay(ctx, day, localDir) {
		log.Warnf("[WARNING] event download degraded for %s; missing columns fall back to empty", day)
	}

	// Stage 3: normalize to JST and keep the target day's records.
	normalized := request.NormalizeAll(fetched.Records, day)
	if len(normalized) == 0 {
		log.Warnf("[WARNING] no items to process for %s", day)
	}
	normalizedPath := filepath.Join(cfg.DataDir, key, fmt.Sprintf("items_with_japan_time_%s.csv", stamp))
	if err := snapshot.WriteNormalized(normalizedPath, normalized); err != nil {
		return fmt.Errorf("write normalized snapshot: %w", err)
	}

	// Stage 4: join the snapshot against the materialized event relation.
	reread := snapshot.ReadNormalized(normalizedPath, log)
	selected := request.SelectForAssessmentDay(reread, day)
	stats.Selected = len(selected)

	relation := p.deps.Materializer.MergeDir(localDir)
	mergedPath := filepath.Join(cfg.EventsDir, fmt.Sprintf("merged_events_%s.csv", stamp))
	if err := events.WriteMergedCSV(relation, mergedPath); err != nil {
		return fmt.Errorf("write merged events snapshot: %w", err)
	}
	log.Infof("merged events saved to %s", mergedPath)

	rows := p.deps.Engine.Aggregate(selected, relation)
	stats.Aggregated = len(rows)

	requestsPath := filepath.Join(cfg.RequestsDir, key, fmt.Sprintf("requests_%s.csv", stamp))
	if err := snapshot.WriteAggregated(requestsPath, rows); err != nil {
		return fmt.Errorf("write aggregated snapshot: %w", err)
	}
	log.Infof("writing %d aggregated rows to %s", len(rows), requestsPath)

	// Stage 5: publish into the day's tab.
	if err := p.deps.Publisher.Publish(ctx, spreadsheetID, day.DayTab(), rows); err != nil {
		return fmt.Errorf("publish day %s: %w", day, err)
	}
	log.Infof("updated sheet %s tab %s for %s", spreadsheetID, day.DayTab(), day)
	return nil
}

// MonthResult summarizes a month fan-out.
type MonthResult struct {
	Completed int
	Total     int
}

// RunMonth processes every day of the month in order, halting on the first
// failed day. The result carries the completion count either way.
func (p *Pipeline) RunMonth(ctx context.Context, year, month int, spreadsheetID string, dryRun bool) (MonthResult, error) {
	total := jptime.DaysInMonth(year, month)
	res := MonthResult{Total: total}
	for d := 1; d <= total; d++ {
		day := jptime.NewCivilDate(year, month, d)
		if err := p.RunDay(ctx, day, spreadsheetID, dryRun); err != nil {
			return res, fmt.Errorf("day %s failed, halting remaining days: %w", day, err)
		}
		res.Completed++
	}
	return res, nil
}

// RunDays processes an explicit list of days with the same halt-on-first-
// failure contract as RunMonth.
func (p *Pipeline) RunDays(ctx context.Context, days []jptime.CivilDate, spreadsheetID string, dryRun bool) (MonthResult, error) {
	res := MonthResult{Total: len(days)}
	for _, day := range days {
		if err := p.RunDay(ctx, day, spreadsheetID, dryRun); err != nil {
			return res, fmt.Errorf("day %s failed, halting remaining days: %w", day, err)
		}
		res.Completed++
	}
	return res, nil
}

func (p *Pipeline) report(ctx context.Context, day jptime.CivilDate, stats DayStats) {
	if p.deps.Metrics == nil {
		return
	}
	if err := p.deps.Metrics.ReportDay(ctx, day, stats); err != nil {
		p.deps.Log.Warnf("[WARNING] failed to report metrics for %s: %v", day, err)
	}
}

func (p *Pipeline) notify(ctx context.Context, day jptime.CivilDate, spreadsheetID string, rows int) {
	if p.deps.Notifier == nil {
		return
	}
	msg := awsclient.DayCompletedMessage{
		Day:           day.String(),
		SpreadsheetID: spreadsheetID,
		Rows:          rows,
		RunID:         p.runID,
	}
	if err := p.deps.Notifier.NotifyDayCompleted(ctx, msg, map[string]string{"day": day.String()}); err != nil {
		p.deps.Log.Warnf("[WARNING] failed to notify completion for %s: %v", day, err)
	}
}
