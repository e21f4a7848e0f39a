package collect

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"watchmarket/models"
)

type memoryWriter struct {
	mu   sync.Mutex
	rows map[string]*models.NormalizedListing
	errs int
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{rows: make(map[string]*models.NormalizedListing)}
}

func (m *memoryWriter) UpsertListing(ctx context.Context, l *models.NormalizedListing) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs > 0 {
		m.errs--
		return false, fmt.Errorf("store unavailable")
	}
	key := l.Source + "/" + l.ExternalID
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	m.rows[key] = l
	return true, nil
}

type memoryRuns struct {
	mu      sync.Mutex
	created []*models.CollectionRun
	updated []*models.CollectionRun
	logs    []string
}

func (m *memoryRuns) CreateRun(ctx context.Context, run *models.CollectionRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, run)
	return int64(len(m.created)), nil
}

func (m *memoryRuns) UpdateRun(ctx context.Context, run *models.CollectionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *run
	m.updated = append(m.updated, &copied)
	return nil
}

func (m *memoryRuns) Log(ctx context.Context, runID int64, level models.LogLevel, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, message)
	return nil
}

type staticCollector struct {
	id        string
	items     []models.RawListing
	malformed int
	err       error
}

func (s *staticCollector) ID() string { return s.id }
func (s *staticCollector) Collect(ctx context.Context, maxItems int) ([]models.RawListing, int, error) {
	return s.items, s.malformed, s.err
}

func TestNormalizeRecoversReferenceAndPrice(t *testing.T) {
	raw := &models.RawListing{
		Source:     models.SourceMarketplaceB,
		ExternalID: "B-88",
		Title:      "Tudor Black Bay 58 M79030N-0001",
		RawPrice:   "3,250.00",
		Condition:  "Good",
	}

	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.ReferenceNumber == nil || *got.ReferenceNumber != "M79030N-0001" {
		t.Errorf("wrong reference %v", got.ReferenceNumber)
	}
	if got.Brand != "Tudor" {
		t.Errorf("wrong brand %q", got.Brand)
	}
	if got.Price != 3250 {
		t.Errorf("wrong price %v", got.Price)
	}
	if got.Condition == nil || *got.Condition != "Good" {
		t.Errorf("wrong condition %v", got.Condition)
	}
}

func TestNormalizeRejectsEmptyExternalID(t *testing.T) {
	_, err := Normalize(&models.RawListing{
		Source: models.SourceMarketplaceA,
		Title:  "Rolex Submariner 126610LN",
	})
	if err == nil {
		t.Fatal("expected error for empty external id")
	}
}

func TestNormalizeAPISourceHasNoReference(t *testing.T) {
	got, err := Normalize(&models.RawListing{
		Source:     models.SourceAPI,
		ExternalID: "42",
		Title:      "Rolex GMT-Master II 126710BLRO",
		Price:      18500,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.ReferenceNumber != nil {
		t.Errorf("api source listings must not carry a reference, got %q", *got.ReferenceNumber)
	}
}

func TestRunSourceDeduplicatesByExternalID(t *testing.T) {
	// The same external id seen twice in one batch lands once; the second
	// occurrence counts as a duplicate skip, not an error.
	items := []models.RawListing{
		{Source: models.SourceMarketplaceA, ExternalID: "a-1", Title: "Rolex Submariner 126610LN", Price: 14500},
		{Source: models.SourceMarketplaceA, ExternalID: "a-1", Title: "Rolex Submariner 126610LN", Price: 14500},
		{Source: models.SourceMarketplaceA, ExternalID: "a-2", Title: "Omega Speedmaster 310.30.42.50.01.001", Price: 6900},
	}
	writer := newMemoryWriter()
	runs := &memoryRuns{}
	o := NewOrchestrator(nil, writer, runs, 0)

	stats := o.RunSource(context.Background(), &staticCollector{id: models.SourceMarketplaceA, items: items})

	if stats.Created != 2 || stats.Skipped != 1 {
		t.Errorf("expected 2 created 1 skipped, got %+v", stats)
	}
	if stats.Status != models.RunStatusCompleted {
		t.Errorf("expected completed run, got %s", stats.Status)
	}
	if len(writer.rows) != 2 {
		t.Errorf("expected 2 stored rows, got %d", len(writer.rows))
	}
}

func TestRunSourceCountsMalformedFromCollectorAndNormalize(t *testing.T) {
	// Malformed items skipped inside the collector and items Normalize
	// rejects both land in the same counter.
	items := []models.RawListing{
		{Source: models.SourceMarketplaceA, ExternalID: "a-1", Title: "Rolex Submariner 126610LN", Price: 14500},
		{Source: models.SourceMarketplaceA, Title: "Omega Speedmaster 310.30.42.50.01.001", Price: 6900}, // no external id
	}
	writer := newMemoryWriter()
	runs := &memoryRuns{}
	o := NewOrchestrator(nil, writer, runs, 0)

	stats := o.RunSource(context.Background(), &staticCollector{
		id:        models.SourceMarketplaceA,
		items:     items,
		malformed: 2,
	})

	if stats.Malformed != 3 {
		t.Errorf("expected 3 malformed items counted, got %d", stats.Malformed)
	}
	if stats.Created != 1 {
		t.Errorf("expected 1 created, got %d", stats.Created)
	}
	if stats.Status != models.RunStatusCompleted {
		t.Errorf("expected completed run, got %s", stats.Status)
	}
}

func TestRunSourceStatusTransitions(t *testing.T) {
	tests := []struct {
		name      string
		collector *staticCollector
		storeErrs int
		want      models.RunStatus
	}{
		{
			name:      "failed when nothing gathered",
			collector: &staticCollector{id: "s", err: fmt.Errorf("browser launch failed")},
			want:      models.RunStatusFailed,
		},
		{
			name: "partial when error after items",
			collector: &staticCollector{
				id:    "s",
				items: []models.RawListing{{Source: "s", ExternalID: "1", Title: "Omega Seamaster 210.30.42.20.03.001"}},
				err:   fmt.Errorf("page 2 gone"),
			},
			want: models.RunStatusPartial,
		},
		{
			name: "partial on store errors",
			collector: &staticCollector{
				id:    "s",
				items: []models.RawListing{{Source: "s", ExternalID: "1", Title: "Omega Seamaster 210.30.42.20.03.001"}},
			},
			storeErrs: 1,
			want:      models.RunStatusPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := newMemoryWriter()
			writer.errs = tt.storeErrs
			runs := &memoryRuns{}
			o := NewOrchestrator(nil, writer, runs, 0)

			stats := o.RunSource(context.Background(), tt.collector)
			if stats.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, stats.Status)
			}
			if len(runs.updated) != 1 {
				t.Fatalf("expected one finalized run, got %d", len(runs.updated))
			}
			if runs.updated[0].FinishedAt == nil {
				t.Error("finalized run missing finish time")
			}
		})
	}
}

func TestRunAllRunsEverySource(t *testing.T) {
	writer := newMemoryWriter()
	runs := &memoryRuns{}
	collectors := []Collector{
		&staticCollector{id: "a", items: []models.RawListing{{Source: "a", ExternalID: "1", Title: "Rolex Datejust 126234"}}},
		&staticCollector{id: "b", items: []models.RawListing{{Source: "b", ExternalID: "1", Title: "Cartier Santos WSSA0018"}}},
		&staticCollector{id: "c", err: fmt.Errorf("down")},
	}
	o := NewOrchestrator(collectors, writer, runs, 0)

	stats := o.RunAll(context.Background())

	if len(stats) != 3 {
		t.Fatalf("expected stats for 3 sources, got %d", len(stats))
	}
	if len(writer.rows) != 2 {
		t.Errorf("expected 2 stored rows, got %d", len(writer.rows))
	}
	var failed int
	for _, s := range stats {
		if s.Status == models.RunStatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly one failed source, got %d", failed)
	}
}
