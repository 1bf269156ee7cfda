package models

import "time"

// CorrelationResult scores the relatedness of two events across the topology.
type CorrelationResult struct {
	Event1ID          string             `json:"event1Id"`
	Event2ID          string             `json:"event2Id"`
	Score             float64            `json:"score"`
	HopDistance       int                `json:"hopDistance"`
	Path              []string           `json:"path"`
	RelationshipChain []RelationshipKind `json:"relationshipChain"`
	TimeScore         float64            `json:"timeScore"`
	DistanceScore     float64            `json:"distanceScore"`
	SeverityScore     float64            `json:"severityScore"`
	TypeScore         float64            `json:"typeScore"`
}

// RiskLevel buckets a business impact score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// BusinessImpactResult estimates how severely one event hits the business.
type BusinessImpactResult struct {
	EventID                string    `json:"eventId"`
	AffectedComponent      string    `json:"affectedComponent"`
	AffectedComponentName  string    `json:"affectedComponentName,omitempty"`
	PrimaryBusinessService string    `json:"primaryBusinessService,omitempty"`
	ImpactScore            float64   `json:"impactScore"`
	HourlyRevenueAtRisk    float64   `json:"hourlyRevenueAtRisk"`
	RiskLevel              RiskLevel `json:"riskLevel"`
	Recommendations        []string  `json:"recommendations,omitempty"`
}

// PatternRecommendation advises how to react to a recurring incident signal.
type PatternRecommendation string

const (
	RecommendInvestigate PatternRecommendation = "INVESTIGATE_SYSTEMATIC_ISSUE"
	RecommendMonitor     PatternRecommendation = "MONITOR_CLOSELY"
)

// Pattern flags a component with repeated incidents.
type Pattern struct {
	ComponentID        string                `json:"componentId"`
	ComponentName      string                `json:"componentName,omitempty"`
	EventCount         int                   `json:"eventCount"`
	DistinctSeverities []Severity            `json:"distinctSeverities"`
	Frequency          float64               `json:"frequency"`
	Recommendation     PatternRecommendation `json:"recommendation"`
}

// CascadeResult carries the synthetic events of one simulated failure cascade.
type CascadeResult struct {
	CascadeID string    `json:"cascadeId"`
	RootID    string    `json:"rootComponentId"`
	Events    []Event   `json:"events"`
	StartedAt time.Time `json:"startedAt"`
}
