package collect

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"watchmarket/extract"
	"watchmarket/models"
)

// ListingWriter persists normalized listings. UpsertListing reports whether a
// new row was created; an existing (source, external_id) pair is a silent skip.
type ListingWriter interface {
	UpsertListing(ctx context.Context, l *models.NormalizedListing) (bool, error)
}

// RunRecorder tracks collection run bookkeeping. Recording failures are
// logged, never propagated; bookkeeping must not take down a collection.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *models.CollectionRun) (int64, error)
	UpdateRun(ctx context.Context, run *models.CollectionRun) error
	Log(ctx context.Context, runID int64, level models.LogLevel, message string) error
}

// Normalize turns a raw listing into its persisted form. Listings without an
// external id are rejected: they cannot participate in dedup.
func Normalize(raw *models.RawListing) (*models.NormalizedListing, error) {
	if strings.TrimSpace(raw.ExternalID) == "" {
		return nil, fmt.Errorf("listing from %s has empty external id", raw.Source)
	}

	ref := strings.TrimSpace(raw.ReferenceNumber)
	if ref == "" {
		ref = extract.ExtractReference(raw.Title)
	}

	price := raw.Price
	if price == 0 && raw.RawPrice != "" {
		price = extract.ParsePrice(raw.RawPrice)
	}

	l := &models.NormalizedListing{
		Source:     raw.Source,
		ExternalID: strings.TrimSpace(raw.ExternalID),
		Name:       strings.TrimSpace(raw.Title),
		Brand:      extract.GuessBrand(raw.Title),
		Price:      price,
		ScrapedAt:  time.Now().UTC(),
	}
	// The API source has no structured references; matching against it goes
	// through the listing name instead.
	if ref != "" && raw.Source != models.SourceAPI {
		l.ReferenceNumber = &ref
	}
	if raw.Condition != "" {
		c := raw.Condition
		l.Condition = &c
	}
	if raw.ImageURL != "" {
		u := raw.ImageURL
		l.ImageURL = &u
	}
	if raw.ListingURL != "" {
		u := raw.ListingURL
		l.ListingURL = &u
	}
	return l, nil
}

// CollectStats summarizes one source's run for callers and logs.
type CollectStats struct {
	Source    string
	Found     int
	Created   int
	Skipped   int
	Malformed int
	Status    models.RunStatus
}

// Orchestrator runs collectors and funnels their output through
// normalization into the listing store, recording a run row per source.
type Orchestrator struct {
	collectors []Collector
	store      ListingWriter
	runs       RunRecorder
	maxItems   int
}

func NewOrchestrator(collectors []Collector, store ListingWriter, runs RunRecorder, maxItems int) *Orchestrator {
	return &Orchestrator{
		collectors: collectors,
		store:      store,
		runs:       runs,
		maxItems:   maxItems,
	}
}

// RunAll collects every source concurrently. Sources are independent; one
// failing does not stop the others. The store's unique constraint keeps
// concurrent writers from double-inserting.
func (o *Orchestrator) RunAll(ctx context.Context) []CollectStats {
	stats := make([]CollectStats, len(o.collectors))
	var wg sync.WaitGroup

	for i, c := range o.collectors {
		wg.Add(1)
		go func(i int, c Collector) {
			defer wg.Done()
			stats[i] = o.RunSource(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return stats
}

// RunSource collects a single source end to end and records the run. The run
// status distinguishes a failed collection (error, nothing gathered) from a
// partial one (error after some listings landed).
func (o *Orchestrator) RunSource(ctx context.Context, c Collector) CollectStats {
	stats := CollectStats{Source: c.ID(), Status: models.RunStatusCompleted}

	now := time.Now().UTC()
	run := &models.CollectionRun{
		Source:    c.ID(),
		StartedAt: now,
		Status:    models.RunStatusRunning,
	}
	runID, err := o.runs.CreateRun(ctx, run)
	if err != nil {
		log.Printf("warning: could not record run for %s: %v", c.ID(), err)
	}
	run.ID = runID

	items, malformed, collectErr := c.Collect(ctx, o.maxItems)
	stats.Found = len(items)
	stats.Malformed = malformed

	for i := range items {
		normalized, err := Normalize(&items[i])
		if err != nil {
			stats.Malformed++
			o.logRun(ctx, runID, models.LogLevelWarn, err.Error())
			continue
		}
		created, err := o.store.UpsertListing(ctx, normalized)
		if err != nil {
			stats.Status = models.RunStatusPartial
			run.ErrorsCount++
			o.logRun(ctx, runID, models.LogLevelError, fmt.Sprintf("upsert %s/%s: %v", normalized.Source, normalized.ExternalID, err))
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Skipped++
		}
	}

	if collectErr != nil {
		if stats.Found == 0 {
			stats.Status = models.RunStatusFailed
		} else {
			stats.Status = models.RunStatusPartial
		}
		run.ErrorMessage = collectErr.Error()
		log.Printf("warning: collect %s: %v", c.ID(), collectErr)
	}

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Status = stats.Status
	run.ListingsFound = stats.Found
	run.ListingsCreated = stats.Created
	run.DuplicateSkips = stats.Skipped
	run.MalformedSkips = stats.Malformed
	if err := o.runs.UpdateRun(ctx, run); err != nil {
		log.Printf("warning: could not finalize run for %s: %v", c.ID(), err)
	}

	log.Printf("%s: run %s, found=%d created=%d duplicates=%d malformed=%d",
		c.ID(), stats.Status, stats.Found, stats.Created, stats.Skipped, stats.Malformed)
	return stats
}

func (o *Orchestrator) logRun(ctx context.Context, runID int64, level models.LogLevel, message string) {
	if err := o.runs.Log(ctx, runID, level, message); err != nil {
		log.Printf("warning: run log: %v", err)
	}
}
