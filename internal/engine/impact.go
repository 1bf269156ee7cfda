package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/graphsight/graphsight/internal/graph"
	"github.com/graphsight/graphsight/internal/models"
)

// businessServiceSearchDepth bounds the outward search for the nearest
// business service.
const businessServiceSearchDepth = 3

// RevenueTable maps business service names onto hourly revenue figures.
type RevenueTable map[string]float64

// ImpactAssessor maps events through the topology onto business services and
// estimates revenue at risk.
type ImpactAssessor struct {
	logger      *slog.Logger
	revenue     RevenueTable
	recommender *Recommender
	now         func() time.Time
}

// NewImpactAssessor constructs an ImpactAssessor. The recommender may be nil,
// in which case only the deterministic base recommendations are emitted.
func NewImpactAssessor(logger *slog.Logger, revenue RevenueTable, recommender *Recommender) *ImpactAssessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImpactAssessor{
		logger:      logger,
		revenue:     revenue,
		recommender: recommender,
		now:         time.Now,
	}
}

// AssessImpact scores every linked event in the window and returns the ranked
// impacts plus an aggregate summary. Unlinked events are excluded from impact
// scoring but still counted in the summary totals.
func (a *ImpactAssessor) AssessImpact(snap *graph.Snapshot, events []models.Event, req models.ImpactRequest) models.ImpactResponse {
	window := req.TimeWindow
	if window <= 0 {
		window = defaultTimeWindow
	}
	cutoff := a.now().Add(-window)

	var inWindow []models.Event
	for _, event := range events {
		if event.Timestamp.Before(cutoff) {
			continue
		}
		inWindow = append(inWindow, event)
	}

	revenueByService := make(map[string]float64)
	impacts := make([]models.BusinessImpactResult, 0, len(inWindow))
	for _, event := range inWindow {
		item, ok := lookupItem(snap, event.CIID)
		if !ok {
			continue
		}
		impacts = append(impacts, a.assessOne(snap, event, item, revenueByService))
	}

	sort.Slice(impacts, func(i, j int) bool {
		// Blended rank so high-revenue events can surface above slightly
		// higher scores.
		ri := impacts[i].ImpactScore + impacts[i].HourlyRevenueAtRisk/100000
		rj := impacts[j].ImpactScore + impacts[j].HourlyRevenueAtRisk/100000
		if ri != rj {
			return ri > rj
		}
		return impacts[i].EventID < impacts[j].EventID
	})

	return models.ImpactResponse{
		Impacts: impacts,
		Summary: summarizeImpacts(inWindow, impacts, revenueByService),
	}
}

func (a *ImpactAssessor) assessOne(snap *graph.Snapshot, event models.Event, item models.ConfigurationItem, revenueByService map[string]float64) models.BusinessImpactResult {
	base := baseImpactScore(event.Severity)

	service, found := a.primaryBusinessService(snap, item)
	revenueAtRisk := 0.0
	serviceName := ""
	if found {
		serviceName = service.Name
		revenueAtRisk = a.revenue[service.Name] * criticalityMultiplier(service.Criticality) * base
	}

	impact := clamp(base*componentTypeMultiplier(item.Type), 0, 1)
	risk := riskLevelFor(impact)

	if serviceName != "" {
		revenueByService[serviceName] += revenueAtRisk
	}

	return models.BusinessImpactResult{
		EventID:                event.ID,
		AffectedComponent:      item.ID,
		AffectedComponentName:  item.Name,
		PrimaryBusinessService: serviceName,
		ImpactScore:            impact,
		HourlyRevenueAtRisk:    revenueAtRisk,
		RiskLevel:              risk,
		Recommendations:        a.recommender.For(risk, revenueAtRisk, item.Type),
	}
}

// primaryBusinessService finds the nearest business service in breadth order.
// A business-service component is its own primary service; otherwise the
// search follows reverse DEPENDS_ON edges plus forward SUPPORTS/ENABLES edges
// up to a fixed depth.
func (a *ImpactAssessor) primaryBusinessService(snap *graph.Snapshot, item models.ConfigurationItem) (models.ConfigurationItem, bool) {
	if item.Type == models.CITypeBusinessService {
		return item, true
	}

	type queued struct {
		id  string
		hop int
	}
	visited := map[string]bool{item.ID: true}
	queue := []queued{{id: item.ID, hop: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.hop >= businessServiceSearchDepth {
			continue
		}
		for _, next := range serviceSearchSteps(snap, current.id) {
			if visited[next] {
				continue
			}
			visited[next] = true
			candidate, ok := snap.Item(next)
			if !ok {
				continue
			}
			if candidate.Type == models.CITypeBusinessService {
				return candidate, true
			}
			queue = append(queue, queued{id: next, hop: current.hop + 1})
		}
	}
	return models.ConfigurationItem{}, false
}

func serviceSearchSteps(snap *graph.Snapshot, id string) []string {
	var next []string
	for _, e := range snap.Incoming(id) {
		if e.Type == models.RelDependsOn {
			next = append(next, e.From)
		}
	}
	for _, e := range snap.Outgoing(id) {
		if e.Type == models.RelSupports || e.Type == models.RelEnables {
			next = append(next, e.To)
		}
	}
	return next
}

func summarizeImpacts(inWindow []models.Event, impacts []models.BusinessImpactResult, revenueByService map[string]float64) models.ImpactSummary {
	summary := models.ImpactSummary{TotalEvents: len(inWindow)}
	for _, impact := range impacts {
		switch impact.RiskLevel {
		case models.RiskCritical:
			summary.CriticalCount++
		case models.RiskHigh:
			summary.HighCount++
		}
		summary.TotalRevenueAtRisk += impact.HourlyRevenueAtRisk
	}

	names := make([]string, 0, len(revenueByService))
	for name := range revenueByService {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if revenueByService[names[i]] != revenueByService[names[j]] {
			return revenueByService[names[i]] > revenueByService[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 3 {
		names = names[:3]
	}
	summary.TopServices = names
	return summary
}

func baseImpactScore(severity models.Severity) float64 {
	switch severity {
	case models.SeverityCritical:
		return 1.0
	case models.SeverityHigh:
		return 0.8
	case models.SeverityMedium:
		return 0.5
	case models.SeverityLow:
		return 0.3
	default:
		return 0.3
	}
}

func componentTypeMultiplier(t models.CIType) float64 {
	switch t {
	case models.CITypeBusinessService:
		return 1.25
	case models.CITypeDatabase:
		return 1.2
	case models.CITypeApplication, models.CITypeAPIService:
		return 1.1
	default:
		return 1.0
	}
}

func criticalityMultiplier(c models.Criticality) float64 {
	switch c {
	case models.CriticalityCritical:
		return 2.0
	case models.CriticalityHigh:
		return 1.5
	case models.CriticalityMedium:
		return 1.0
	case models.CriticalityLow:
		return 0.5
	default:
		return 1.0
	}
}

func riskLevelFor(impact float64) models.RiskLevel {
	switch {
	case impact >= 0.8:
		return models.RiskCritical
	case impact >= 0.6:
		return models.RiskHigh
	case impact >= 0.4:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func lookupItem(snap *graph.Snapshot, id string) (models.ConfigurationItem, bool) {
	if snap == nil || id == "" {
		return models.ConfigurationItem{}, false
	}
	return snap.Item(id)
}
