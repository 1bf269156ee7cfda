package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/graphsight/graphsight/internal/models"
)

// revenueAlertFloor is the hourly revenue above which business stakeholders
// are pulled in regardless of risk level.
const revenueAlertFloor = 10000

// Recommender derives remediation guidance from risk level and revenue
// exposure, optionally extended by a YAML rule pack.
type Recommender struct {
	rules  []RecommendationRule
	logger *slog.Logger
}

// RecommendationRule matches impact attributes onto extra recommendations.
type RecommendationRule struct {
	ID              string             `yaml:"id"`
	Match           RecommendationWhen `yaml:"match"`
	Recommendations []string           `yaml:"recommendations"`
}

// RecommendationWhen defines optional matching attributes; empty fields match
// everything.
type RecommendationWhen struct {
	RiskLevel     string  `yaml:"risk_level"`
	ComponentType string  `yaml:"component_type"`
	MinRevenue    float64 `yaml:"min_revenue"`
}

type rulePackFile struct {
	Rules []RecommendationRule `yaml:"rules"`
}

// NewRecommender loads an optional rule pack. An empty or missing path yields
// a recommender with base recommendations only.
func NewRecommender(path string, logger *slog.Logger) (*Recommender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recommender{logger: logger}
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("read rule pack: %w", err)
	}
	var file rulePackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule pack: %w", err)
	}
	r.rules = file.Rules
	return r, nil
}

// For returns deterministic recommendations for the given risk level, revenue
// exposure, and component type. Safe on a nil receiver.
func (r *Recommender) For(risk models.RiskLevel, revenueAtRisk float64, ciType models.CIType) []string {
	recs := baseRecommendations(risk)
	if revenueAtRisk >= revenueAlertFloor {
		recs = appendUnique(recs, "Notify business stakeholders of revenue exposure")
	}
	if r == nil {
		return recs
	}
	for _, rule := range r.rules {
		if rule.Match.RiskLevel != "" && !strings.EqualFold(rule.Match.RiskLevel, string(risk)) {
			continue
		}
		if rule.Match.ComponentType != "" && !strings.EqualFold(rule.Match.ComponentType, string(ciType)) {
			continue
		}
		if revenueAtRisk < rule.Match.MinRevenue {
			continue
		}
		recs = appendUnique(recs, rule.Recommendations...)
	}
	return recs
}

func baseRecommendations(risk models.RiskLevel) []string {
	switch risk {
	case models.RiskCritical:
		return []string{
			"Declare a major incident and engage the on-call commander",
			"Fail over to standby capacity if available",
		}
	case models.RiskHigh:
		return []string{"Escalate to the owning team and prepare mitigation"}
	case models.RiskMedium:
		return []string{"Monitor closely and review recent changes"}
	default:
		return []string{"Track in the incident backlog"}
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		exists := false
		for _, existing := range dst {
			if existing == v {
				exists = true
				break
			}
		}
		if !exists {
			dst = append(dst, v)
		}
	}
	return dst
}
