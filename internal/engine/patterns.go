package engine

import (
	"log/slog"
	"sort"

	"github.com/graphsight/graphsight/internal/models"
)

// defaultObservationWindowDays is the fixed frequency window. The window is a
// configuration constant rather than being derived from the observed event
// span.
const defaultObservationWindowDays = 7

// PatternDetector flags components with recurring incidents.
type PatternDetector struct {
	logger     *slog.Logger
	windowDays int
}

// NewPatternDetector constructs a PatternDetector using windowDays as the
// frequency denominator; non-positive values fall back to the default.
func NewPatternDetector(logger *slog.Logger, windowDays int) *PatternDetector {
	if logger == nil {
		logger = slog.Default()
	}
	if windowDays <= 0 {
		windowDays = defaultObservationWindowDays
	}
	return &PatternDetector{logger: logger, windowDays: windowDays}
}

// Detect groups events by component and reports components with at least two
// events. Three or more events escalate the recommendation to a systematic
// investigation. Events without a component reference are ignored.
func (d *PatternDetector) Detect(events []models.Event) []models.Pattern {
	type group struct {
		count      int
		severities map[models.Severity]struct{}
	}
	groups := make(map[string]*group)
	for _, event := range events {
		if event.CIID == "" {
			continue
		}
		g, ok := groups[event.CIID]
		if !ok {
			g = &group{severities: make(map[models.Severity]struct{})}
			groups[event.CIID] = g
		}
		g.count++
		g.severities[event.Severity] = struct{}{}
	}

	patterns := make([]models.Pattern, 0, len(groups))
	for ciID, g := range groups {
		if g.count < 2 {
			continue
		}
		recommendation := models.RecommendMonitor
		if g.count >= 3 {
			recommendation = models.RecommendInvestigate
		}
		patterns = append(patterns, models.Pattern{
			ComponentID:        ciID,
			EventCount:         g.count,
			DistinctSeverities: sortedSeverities(g.severities),
			Frequency:          float64(g.count) / float64(d.windowDays),
			Recommendation:     recommendation,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].EventCount != patterns[j].EventCount {
			return patterns[i].EventCount > patterns[j].EventCount
		}
		return patterns[i].ComponentID < patterns[j].ComponentID
	})
	return patterns
}

func sortedSeverities(set map[models.Severity]struct{}) []models.Severity {
	out := make([]models.Severity, 0, len(set))
	for severity := range set {
		out = append(out, severity)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight() != out[j].Weight() {
			return out[i].Weight() > out[j].Weight()
		}
		return out[i] < out[j]
	})
	return out
}
