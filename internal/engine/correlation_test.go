package engine

import (
	"testing"
	"time"

	"github.com/graphsight/graphsight/internal/graph"
	"github.com/graphsight/graphsight/internal/models"
)

func twoTierSnapshot() *graph.Snapshot {
	items := []models.ConfigurationItem{
		{ID: "app1", Name: "Checkout App", Type: models.CITypeApplication, Status: models.CIStatusOperational},
		{ID: "db1", Name: "Orders DB", Type: models.CITypeDatabase, Status: models.CIStatusOperational},
		{ID: "island", Name: "Orphan", Type: models.CITypeServer, Status: models.CIStatusOperational},
	}
	rels := []models.Relationship{
		{FromID: "app1", ToID: "db1", Type: models.RelDependsOn},
	}
	return graph.NewSnapshot(items, rels)
}

func TestAnalyzeDirectDependencyPair(t *testing.T) {
	snap := twoTierSnapshot()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityHigh, EventType: "cpu", Timestamp: base, CIID: "app1"},
		{ID: "e2", Severity: models.SeverityHigh, EventType: "disk", Timestamp: base.Add(time.Minute), CIID: "db1"},
	}

	resp := NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow:    time.Hour,
		MaxHops:       3,
		MinConfidence: 0.5,
	})

	if len(resp.Correlations) != 1 {
		t.Fatalf("expected one correlation, got %d", len(resp.Correlations))
	}
	corr := resp.Correlations[0]
	if corr.HopDistance != 1 {
		t.Fatalf("expected hop distance 1, got %d", corr.HopDistance)
	}
	if corr.Score <= 0.7 {
		t.Fatalf("expected score above 0.7 for near-simultaneous direct dependency, got %f", corr.Score)
	}
	if corr.Score < 0 || corr.Score > 1 {
		t.Fatalf("score out of range: %f", corr.Score)
	}
	if len(corr.Path) != 2 || corr.Path[0] != "app1" || corr.Path[1] != "db1" {
		t.Fatalf("unexpected path %v", corr.Path)
	}
	if resp.Summary.Total != 1 || resp.Summary.HighConfidence != 1 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
}

func TestAnalyzeSymmetry(t *testing.T) {
	snap := twoTierSnapshot()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	e1 := models.Event{ID: "e1", Severity: models.SeverityHigh, Timestamp: base, CIID: "app1"}
	e2 := models.Event{ID: "e2", Severity: models.SeverityMedium, Timestamp: base.Add(time.Minute), CIID: "db1"}
	req := models.CorrelationRequest{TimeWindow: time.Hour, MaxHops: 3, MinConfidence: 0.1}

	correlator := NewCorrelator(nil)
	forward := correlator.Analyze(snap, []models.Event{e1, e2}, req)
	reversed := correlator.Analyze(snap, []models.Event{e2, e1}, req)

	if len(forward.Correlations) != 1 || len(reversed.Correlations) != 1 {
		t.Fatalf("expected exactly one correlation in each order")
	}
	if forward.Correlations[0].Score != reversed.Correlations[0].Score {
		t.Fatalf("score not symmetric: %f vs %f",
			forward.Correlations[0].Score, reversed.Correlations[0].Score)
	}
}

func TestAnalyzeFindsPairBehindDeadEndBranch(t *testing.T) {
	// a connects to t via a->c->v->t (3 hops); the longer a->b->x->v branch
	// must not mask the connection.
	items := []models.ConfigurationItem{
		{ID: "a", Type: models.CITypeServer}, {ID: "b", Type: models.CITypeServer},
		{ID: "x", Type: models.CITypeServer}, {ID: "c", Type: models.CITypeServer},
		{ID: "v", Type: models.CITypeServer}, {ID: "t", Type: models.CITypeServer},
	}
	rels := []models.Relationship{
		{FromID: "a", ToID: "b", Type: models.RelConnectsTo},
		{FromID: "b", ToID: "x", Type: models.RelConnectsTo},
		{FromID: "x", ToID: "v", Type: models.RelConnectsTo},
		{FromID: "a", ToID: "c", Type: models.RelConnectsTo},
		{FromID: "c", ToID: "v", Type: models.RelConnectsTo},
		{FromID: "v", ToID: "t", Type: models.RelConnectsTo},
	}
	snap := graph.NewSnapshot(items, rels)

	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityHigh, Timestamp: base, CIID: "a"},
		{ID: "e2", Severity: models.SeverityHigh, Timestamp: base.Add(time.Minute), CIID: "t"},
	}

	resp := NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow:    time.Hour,
		MaxHops:       3,
		MinConfidence: 0,
	})

	if len(resp.Correlations) != 1 {
		t.Fatalf("expected the connected pair to correlate, got %d results", len(resp.Correlations))
	}
	if resp.Correlations[0].HopDistance != 3 {
		t.Fatalf("expected 3-hop path, got %d", resp.Correlations[0].HopDistance)
	}
}

func TestAnalyzeSkipsDisconnectedPair(t *testing.T) {
	snap := twoTierSnapshot()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityHigh, Timestamp: base, CIID: "app1"},
		{ID: "e2", Severity: models.SeverityHigh, Timestamp: base, CIID: "island"},
	}

	resp := NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow: time.Hour, MaxHops: 5, MinConfidence: 0,
	})
	if len(resp.Correlations) != 0 {
		t.Fatalf("disconnected pair must be excluded entirely, got %d results", len(resp.Correlations))
	}
}

func TestAnalyzeExcludesUnlinkedEvents(t *testing.T) {
	snap := twoTierSnapshot()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityHigh, Timestamp: base, CIID: "app1"},
		{ID: "e2", Severity: models.SeverityHigh, Timestamp: base, CIID: "ghost"},
		{ID: "e3", Severity: models.SeverityHigh, Timestamp: base, CIID: ""},
	}

	resp := NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow: time.Hour, MaxHops: 3, MinConfidence: 0,
	})
	if len(resp.Correlations) != 0 {
		t.Fatalf("unlinked events must not correlate, got %d results", len(resp.Correlations))
	}
}

func TestAnalyzeRespectsMinConfidence(t *testing.T) {
	snap := twoTierSnapshot()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	// Far apart in time: the time score collapses to zero.
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityCritical, Timestamp: base, CIID: "app1"},
		{ID: "e2", Severity: models.SeverityInfo, Timestamp: base.Add(2 * time.Hour), CIID: "db1"},
	}

	resp := NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow: time.Hour, MaxHops: 3, MinConfidence: 0.6,
	})
	if len(resp.Correlations) != 0 {
		t.Fatalf("expected pair below confidence floor to be discarded")
	}

	resp = NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow: time.Hour, MaxHops: 3, MinConfidence: 0.1,
	})
	for _, corr := range resp.Correlations {
		if corr.Score < 0.1 {
			t.Fatalf("result below requested confidence floor: %f", corr.Score)
		}
	}
}

func TestAnalyzeRankingDeterministic(t *testing.T) {
	items := []models.ConfigurationItem{
		{ID: "a", Type: models.CITypeServer}, {ID: "b", Type: models.CITypeServer},
		{ID: "c", Type: models.CITypeServer},
	}
	rels := []models.Relationship{
		{FromID: "a", ToID: "b", Type: models.RelConnectsTo},
		{FromID: "b", ToID: "c", Type: models.RelConnectsTo},
	}
	snap := graph.NewSnapshot(items, rels)
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityHigh, Timestamp: base, CIID: "a"},
		{ID: "e2", Severity: models.SeverityHigh, Timestamp: base, CIID: "b"},
		{ID: "e3", Severity: models.SeverityHigh, Timestamp: base, CIID: "c"},
	}
	req := models.CorrelationRequest{TimeWindow: time.Hour, MaxHops: 3, MinConfidence: 0}

	first := NewCorrelator(nil).Analyze(snap, events, req)
	second := NewCorrelator(nil).Analyze(snap, events, req)

	if len(first.Correlations) != len(second.Correlations) {
		t.Fatalf("result counts differ across runs")
	}
	for i := range first.Correlations {
		if first.Correlations[i].Event1ID != second.Correlations[i].Event1ID ||
			first.Correlations[i].Event2ID != second.Correlations[i].Event2ID {
			t.Fatalf("ranking order differs across runs at index %d", i)
		}
	}
	for i := 1; i < len(first.Correlations); i++ {
		if first.Correlations[i].Score > first.Correlations[i-1].Score {
			t.Fatalf("results not sorted descending by score")
		}
	}
}

func TestAnalyzeClampsParameters(t *testing.T) {
	snap := twoTierSnapshot()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "e1", Severity: models.SeverityHigh, Timestamp: base, CIID: "app1"},
		{ID: "e2", Severity: models.SeverityHigh, Timestamp: base, CIID: "db1"},
	}

	// Negative hops and window, out-of-range confidence: clamped, not rejected.
	resp := NewCorrelator(nil).Analyze(snap, events, models.CorrelationRequest{
		TimeWindow: -time.Minute, MaxHops: -4, MinConfidence: 7,
	})
	if len(resp.Correlations) != 0 {
		// minConfidence clamps to 1.0; a perfect-score pair would still pass.
		for _, corr := range resp.Correlations {
			if corr.Score < 1 {
				t.Fatalf("clamped confidence floor violated: %f", corr.Score)
			}
		}
	}
}
