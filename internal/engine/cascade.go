package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/graphsight/graphsight/internal/graph"
	"github.com/graphsight/graphsight/internal/models"
)

const (
	defaultCascadeDelay   = 5 * time.Minute
	defaultMaxAffected    = 10
	cascadeFanOutLevels   = 2
	cascadeEventType      = "CASCADE_FAILURE"
	cascadeEventTypeSynth = "CASCADE_IMPACT"
)

// CascadeSimulator emits time-staggered synthetic events modelling failure
// propagation from a root component to its dependents.
type CascadeSimulator struct {
	logger *slog.Logger
	rng    *rand.Rand
	now    func() time.Time
	newID  func() string
}

// NewCascadeSimulator constructs a simulator with time-seeded randomness.
// Tests replace rng, now, and newID for deterministic output.
func NewCascadeSimulator(logger *slog.Logger) *CascadeSimulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CascadeSimulator{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Simulate generates one CRITICAL root event plus synthetic dependent events
// across at most two upstream fan-out levels, capped at the affected budget.
// An explicit root id absent from the snapshot is a NotFound error; an empty
// root id selects a Database component, falling back to Server.
func (c *CascadeSimulator) Simulate(snap *graph.Snapshot, req models.CascadeRequest) (models.CascadeResult, error) {
	rootID := req.RootID
	if rootID == "" {
		picked, ok := pickCascadeRoot(snap)
		if !ok {
			return models.CascadeResult{}, fmt.Errorf("pick cascade root: %w", ErrNotFound)
		}
		rootID = picked
	}
	root, ok := lookupItem(snap, rootID)
	if !ok {
		return models.CascadeResult{}, fmt.Errorf("cascade root %q: %w", rootID, ErrNotFound)
	}

	levels := req.Depth
	if levels <= 0 {
		levels = cascadeFanOutLevels
	}
	if levels > cascadeFanOutLevels {
		levels = cascadeFanOutLevels
	}
	maxAffected := req.MaxAffected
	if maxAffected <= 0 {
		maxAffected = defaultMaxAffected
	}
	delay := req.TimeDelay
	if delay <= 0 {
		delay = defaultCascadeDelay
	}

	t0 := c.now().UTC()
	cascadeID := c.newID()
	events := []models.Event{{
		ID:        c.newID(),
		Message:   fmt.Sprintf("Simulated failure of %s", root.Name),
		Severity:  models.SeverityCritical,
		EventType: cascadeEventType,
		Timestamp: t0,
		Status:    models.EventOpen,
		CIID:      root.ID,
	}}

	for _, dependent := range graph.Reachable(snap, root.ID, levels, graph.DirectionUpstream) {
		if len(events) >= maxAffected {
			break
		}
		item, ok := snap.Item(dependent.ID)
		if !ok {
			continue
		}
		events = append(events, c.syntheticEvent(item, root, dependent.HopDistance, t0, delay))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	c.logger.Info("cascade simulated",
		slog.String("cascade_id", cascadeID),
		slog.String("root", root.ID),
		slog.Int("events", len(events)),
	)

	return models.CascadeResult{
		CascadeID: cascadeID,
		RootID:    root.ID,
		Events:    events,
		StartedAt: t0,
	}, nil
}

func (c *CascadeSimulator) syntheticEvent(item, root models.ConfigurationItem, distance int, t0 time.Time, delay time.Duration) models.Event {
	severity := models.SeverityMedium
	if distance == 1 || item.Type == models.CITypeBusinessService {
		severity = models.SeverityHigh
	}

	lag := time.Duration(distance) * (delay / 3)
	jitter := time.Duration((c.rng.Float64()*2 - 1) * float64(delay/8))

	return models.Event{
		ID:        c.newID(),
		Message:   fmt.Sprintf("%s degraded by failure of %s", item.Name, root.Name),
		Severity:  severity,
		EventType: cascadeEventTypeSynth,
		Timestamp: t0.Add(lag + jitter),
		Status:    models.EventOpen,
		CIID:      item.ID,
	}
}

// pickCascadeRoot selects a deterministic default root: the first Database by
// id, else the first Server.
func pickCascadeRoot(snap *graph.Snapshot) (string, bool) {
	if snap == nil {
		return "", false
	}
	server := ""
	for _, item := range snap.Items() {
		switch item.Type {
		case models.CITypeDatabase:
			return item.ID, true
		case models.CITypeServer:
			if server == "" {
				server = item.ID
			}
		}
	}
	if server != "" {
		return server, true
	}
	return "", false
}
