package models

import "time"

// CorrelationRequest parameterises one correlation analysis call.
type CorrelationRequest struct {
	TimeWindow    time.Duration `json:"-"`
	MaxHops       int           `json:"maxHops"`
	MinConfidence float64       `json:"minConfidence"`
}

// CorrelationSummary counts results per confidence band.
type CorrelationSummary struct {
	Total            int `json:"total"`
	HighConfidence   int `json:"highConfidence"`
	MediumConfidence int `json:"mediumConfidence"`
	LowConfidence    int `json:"lowConfidence"`
}

// CorrelationResponse bundles ranked correlations with their summary.
type CorrelationResponse struct {
	Correlations []CorrelationResult `json:"correlations"`
	Summary      CorrelationSummary  `json:"summary"`
}

// ImpactRequest parameterises a business impact assessment.
type ImpactRequest struct {
	TimeWindow time.Duration `json:"-"`
}

// ImpactSummary aggregates an impact assessment batch.
type ImpactSummary struct {
	TotalEvents        int      `json:"totalEvents"`
	CriticalCount      int      `json:"criticalCount"`
	HighCount          int      `json:"highCount"`
	TotalRevenueAtRisk float64  `json:"totalRevenueAtRisk"`
	TopServices        []string `json:"topServices"`
}

// ImpactResponse bundles ranked impacts with their aggregate summary.
type ImpactResponse struct {
	Impacts []BusinessImpactResult `json:"impacts"`
	Summary ImpactSummary          `json:"summary"`
}

// CascadeRequest parameterises a cascade simulation. RootID may be empty, in
// which case the engine picks a Database (falling back to Server) component.
type CascadeRequest struct {
	RootID      string        `json:"rootComponentId,omitempty"`
	Depth       int           `json:"cascadeDepth"`
	MaxAffected int           `json:"maxAffected"`
	TimeDelay   time.Duration `json:"-"`
}
