package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/graphsight/graphsight/internal/graph"
	"github.com/graphsight/graphsight/internal/models"
)

const (
	defaultTimeWindow    = time.Hour
	defaultMaxHops       = 3
	maxHopsCeiling       = 5
	defaultMinConfidence = 0.5

	timeWeight     = 0.4
	distanceWeight = 0.3
	severityWeight = 0.2
	typeWeight     = 0.1
)

// Correlator scores event pairs by topological and temporal proximity.
type Correlator struct {
	logger *slog.Logger
}

// NewCorrelator constructs a Correlator.
func NewCorrelator(logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Correlator{logger: logger}
}

// Analyze scores every unordered pair of distinct linked events and returns
// the pairs meeting the confidence floor, ranked deterministically. Events
// whose component is absent from the snapshot are excluded; pairs with no
// connecting path within the hop bound are skipped entirely.
func (c *Correlator) Analyze(snap *graph.Snapshot, events []models.Event, req models.CorrelationRequest) models.CorrelationResponse {
	window := req.TimeWindow
	if window <= 0 {
		window = defaultTimeWindow
	}
	maxHops := req.MaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}
	if maxHops > maxHopsCeiling {
		maxHops = maxHopsCeiling
	}
	minConfidence := clamp(req.MinConfidence, 0, 1)

	linked := make([]models.Event, 0, len(events))
	for _, event := range events {
		if event.CIID != "" && snap != nil && snap.Contains(event.CIID) {
			linked = append(linked, event)
		}
	}
	c.logger.Debug("correlation analysis",
		slog.Int("events", len(events)),
		slog.Int("linked", len(linked)),
		slog.Int("max_hops", maxHops),
	)

	windowMs := float64(window.Milliseconds())
	seen := make(map[string]bool)
	var results []models.CorrelationResult

	for i := 0; i < len(linked); i++ {
		for j := i + 1; j < len(linked); j++ {
			e1, e2 := linked[i], linked[j]
			if e1.ID == e2.ID {
				continue
			}
			key := pairKey(e1.ID, e2.ID)
			if seen[key] {
				continue
			}
			seen[key] = true

			path, ok := graph.FindPath(snap, e1.CIID, e2.CIID, maxHops)
			if !ok {
				continue
			}

			deltaMs := float64(absDuration(e1.Timestamp.Sub(e2.Timestamp)).Milliseconds())
			timeScore := 0.0
			if windowMs > 0 {
				timeScore = clamp((windowMs-deltaMs)/windowMs, 0, 1)
			}
			distanceScore := clamp(1-float64(path.Hops()-1)*0.2, 0, 1)
			severityScore := 1 - absFloat(e1.Severity.Weight()-e2.Severity.Weight())
			typeScore := 0.6
			if e1.EventType != "" && e1.EventType == e2.EventType {
				typeScore = 0.8
			}

			score := timeWeight*timeScore + distanceWeight*distanceScore +
				severityWeight*severityScore + typeWeight*typeScore
			if score < minConfidence {
				continue
			}

			results = append(results, models.CorrelationResult{
				Event1ID:          e1.ID,
				Event2ID:          e2.ID,
				Score:             score,
				HopDistance:       path.Hops(),
				Path:              path.Nodes,
				RelationshipChain: path.Relationships,
				TimeScore:         timeScore,
				DistanceScore:     distanceScore,
				SeverityScore:     severityScore,
				TypeScore:         typeScore,
			})
		}
	}

	combined := make(map[string]int64, len(results))
	byID := make(map[string]models.Event, len(linked))
	for _, event := range linked {
		byID[event.ID] = event
	}
	for _, r := range results {
		combined[pairKey(r.Event1ID, r.Event2ID)] = byID[r.Event1ID].Timestamp.UnixMilli() + byID[r.Event2ID].Timestamp.UnixMilli()
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.HopDistance != b.HopDistance {
			return a.HopDistance < b.HopDistance
		}
		ca, cb := combined[pairKey(a.Event1ID, a.Event2ID)], combined[pairKey(b.Event1ID, b.Event2ID)]
		if ca != cb {
			return ca < cb
		}
		if a.Event1ID != b.Event1ID {
			return a.Event1ID < b.Event1ID
		}
		return a.Event2ID < b.Event2ID
	})

	return models.CorrelationResponse{
		Correlations: results,
		Summary:      summarizeCorrelations(results),
	}
}

func summarizeCorrelations(results []models.CorrelationResult) models.CorrelationSummary {
	summary := models.CorrelationSummary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Score >= 0.8:
			summary.HighConfidence++
		case r.Score >= 0.6:
			summary.MediumConfidence++
		default:
			summary.LowConfidence++
		}
	}
	return summary
}

func pairKey(id1, id2 string) string {
	if id1 < id2 {
		return id1 + "|" + id2
	}
	return id2 + "|" + id1
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
