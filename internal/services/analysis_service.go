package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graphsight/graphsight/internal/cache"
	"github.com/graphsight/graphsight/internal/engine"
	"github.com/graphsight/graphsight/internal/metrics"
	"github.com/graphsight/graphsight/internal/models"
	"github.com/graphsight/graphsight/internal/store"
	"github.com/graphsight/graphsight/internal/utils"
)

// AnalysisService runs engine operations against store snapshots, with
// response caching and latency accounting.
type AnalysisService struct {
	logger          *slog.Logger
	store           *store.Memory
	correlator      *engine.Correlator
	assessor        *engine.ImpactAssessor
	detector        *engine.PatternDetector
	simulator       *engine.CascadeSimulator
	cache           cache.Provider
	correlationsTTL time.Duration
	impactTTL       time.Duration
	latencies       *utils.LatencyTracker
}

// NewAnalysisService constructs the analysis facade. A nil cache provider
// falls back to the noop cache.
func NewAnalysisService(
	logger *slog.Logger,
	mem *store.Memory,
	correlator *engine.Correlator,
	assessor *engine.ImpactAssessor,
	detector *engine.PatternDetector,
	simulator *engine.CascadeSimulator,
	cacheProvider cache.Provider,
	correlationsTTL, impactTTL time.Duration,
) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &AnalysisService{
		logger:          logger,
		store:           mem,
		correlator:      correlator,
		assessor:        assessor,
		detector:        detector,
		simulator:       simulator,
		cache:           cacheProvider,
		correlationsTTL: correlationsTTL,
		impactTTL:       impactTTL,
		latencies:       utils.NewLatencyTracker(1024),
	}
}

// AnalyzeCorrelations runs the correlation scorer over the current snapshot.
// Results are cached per parameter set and store generation.
func (s *AnalysisService) AnalyzeCorrelations(ctx context.Context, req models.CorrelationRequest) (models.CorrelationResponse, error) {
	snap, events, generation := s.store.Snapshot()

	key := fmt.Sprintf("correlations:%d:%d:%d:%.3f", generation, req.TimeWindow.Milliseconds(), req.MaxHops, req.MinConfidence)
	var cached models.CorrelationResponse
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	resp := s.correlator.Analyze(snap, events, req)
	s.observe(metrics.OpCorrelations, time.Since(start))

	s.cacheSet(ctx, key, resp, s.correlationsTTL)
	return resp, nil
}

// AssessImpact runs the business impact calculator over the current snapshot.
func (s *AnalysisService) AssessImpact(ctx context.Context, req models.ImpactRequest) (models.ImpactResponse, error) {
	snap, events, generation := s.store.Snapshot()

	key := fmt.Sprintf("impact:%d:%d", generation, req.TimeWindow.Milliseconds())
	var cached models.ImpactResponse
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	resp := s.assessor.AssessImpact(snap, events, req)
	s.observe(metrics.OpImpact, time.Since(start))

	s.cacheSet(ctx, key, resp, s.impactTTL)
	return resp, nil
}

// DetectPatterns groups events by component and reports recurring incidents,
// enriched with component names where the snapshot resolves them.
func (s *AnalysisService) DetectPatterns(ctx context.Context) ([]models.Pattern, error) {
	snap, events, _ := s.store.Snapshot()

	start := time.Now()
	patterns := s.detector.Detect(events)
	s.observe(metrics.OpPatterns, time.Since(start))

	for i := range patterns {
		if item, ok := snap.Item(patterns[i].ComponentID); ok {
			patterns[i].ComponentName = item.Name
		}
	}
	return patterns, nil
}

// SimulateCascade generates a synthetic failure cascade and ingests the
// generated events into the store so subsequent analyses observe them.
func (s *AnalysisService) SimulateCascade(ctx context.Context, req models.CascadeRequest) (models.CascadeResult, error) {
	snap, _, _ := s.store.Snapshot()

	start := time.Now()
	result, err := s.simulator.Simulate(snap, req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(metrics.OpCascade, duration, metrics.OutcomeError)
		if errors.Is(err, engine.ErrNotFound) {
			return models.CascadeResult{}, err
		}
		return models.CascadeResult{}, utils.NewAppError("SimulateCascade", "simulation failed", err)
	}
	s.observe(metrics.OpCascade, duration)

	s.store.AppendEvents(result.Events...)
	s.publishStoreSize()
	return result, nil
}

// ReplaceTopology swaps the store topology and reports the new sizes.
func (s *AnalysisService) ReplaceTopology(items []models.ConfigurationItem, rels []models.Relationship) {
	s.store.ReplaceTopology(items, rels)
	s.publishStoreSize()
}

// AppendEvents adds externally created events to the store.
func (s *AnalysisService) AppendEvents(events ...models.Event) {
	s.store.AppendEvents(events...)
	s.publishStoreSize()
}

func (s *AnalysisService) observe(operation string, duration time.Duration) {
	metrics.ObserveAnalysis(operation, duration, metrics.OutcomeSuccess)
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p95", s.latencies.Percentile(95)),
			slog.Int("samples", count),
		)
	}
}

func (s *AnalysisService) publishStoreSize() {
	items, rels, events := s.store.Counts()
	metrics.SetStoreSize(items, rels, events)
}

func (s *AnalysisService) cacheGet(ctx context.Context, key string, out any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("cache payload corrupt", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (s *AnalysisService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

// LatencyP95 returns the current p95 analysis latency.
func (s *AnalysisService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}
