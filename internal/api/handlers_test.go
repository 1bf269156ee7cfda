package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/graphsight/graphsight/internal/config"
	"github.com/graphsight/graphsight/internal/engine"
	"github.com/graphsight/graphsight/internal/models"
	"github.com/graphsight/graphsight/internal/services"
	"github.com/graphsight/graphsight/internal/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	mem := store.NewMemory(nil)
	svc := services.NewAnalysisService(
		nil,
		mem,
		engine.NewCorrelator(nil),
		engine.NewImpactAssessor(nil, engine.RevenueTable{"Online Sales": 100000}, nil),
		engine.NewPatternDetector(nil, 7),
		engine.NewCascadeSimulator(nil),
		nil,
		time.Minute,
		time.Minute,
	)
	return NewHandler(nil, svc, config.EngineConfig{
		TimeWindow:    time.Hour,
		MaxHops:       3,
		MinConfidence: 0.5,
	})
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func seedTopology(t *testing.T, h *Handler) {
	t.Helper()
	body := `{
		"items": [
			{"id": "db1", "name": "Orders DB", "type": "Database", "status": "OPERATIONAL", "criticality": "HIGH"},
			{"id": "app1", "name": "Checkout", "type": "Application", "status": "OPERATIONAL"},
			{"id": "biz1", "name": "Online Sales", "type": "BusinessService", "status": "OPERATIONAL", "criticality": "CRITICAL"}
		],
		"relationships": [
			{"from": "app1", "to": "db1", "type": "DEPENDS_ON"},
			{"from": "app1", "to": "biz1", "type": "SUPPORTS"}
		]
	}`
	rec := doRequest(t, h, http.MethodPut, "/api/v1/topology", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed topology: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestReplaceTopologyAndCounts(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/topology", `{"items":[{"name":"no id"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for item without id, got %d", rec.Code)
	}
}

func TestAppendAndCorrelateEvents(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	now := time.Now().UTC().Format(time.RFC3339)
	later := time.Now().UTC().Add(2 * time.Minute).Format(time.RFC3339)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/events", `{"events":[
		{"id": "e1", "severity": "HIGH", "timestamp": "`+now+`", "ciId": "app1"},
		{"id": "e2", "severity": "CRITICAL", "timestamp": "`+later+`", "ciId": "db1"}
	]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("append events: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/analyze/correlations",
		`{"timeWindow": "1h", "maxHops": 3, "minConfidence": 0.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("correlations: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp models.CorrelationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Correlations) != 1 {
		t.Fatalf("expected one correlation, got %d", len(resp.Correlations))
	}
	if resp.Correlations[0].HopDistance != 1 {
		t.Fatalf("expected hop distance 1, got %d", resp.Correlations[0].HopDistance)
	}
	if resp.Summary.Total != 1 {
		t.Fatalf("summary total = %d", resp.Summary.Total)
	}
}

func TestCorrelationsExplicitZeroConfidence(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	// INFO vs CRITICAL 50 minutes apart scores below the 0.5 default floor.
	now := time.Now().UTC()
	doRequest(t, h, http.MethodPost, "/api/v1/events", `{"events":[
		{"id": "e1", "severity": "INFO", "timestamp": "`+now.Format(time.RFC3339)+`", "ciId": "app1"},
		{"id": "e2", "severity": "CRITICAL", "timestamp": "`+now.Add(50*time.Minute).Format(time.RFC3339)+`", "ciId": "db1"}
	]}`)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/analyze/correlations", `{"timeWindow": "1h"}`)
	var defaulted models.CorrelationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &defaulted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(defaulted.Correlations) != 0 {
		t.Fatalf("expected weak pair filtered at default confidence, got %d", len(defaulted.Correlations))
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/analyze/correlations",
		`{"timeWindow": "1h", "minConfidence": 0}`)
	var open models.CorrelationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &open); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(open.Correlations) != 1 {
		t.Fatalf("explicit minConfidence 0 must disable the floor, got %d results", len(open.Correlations))
	}
}

func TestAppendEventsValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/events", `{"events":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty events, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/events", `{"events":[{"severity":"HIGH"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for event without id, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/events", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestAnalyzeImpactDefaultsOnEmptyBody(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	now := time.Now().UTC().Format(time.RFC3339)
	doRequest(t, h, http.MethodPost, "/api/v1/events",
		`{"events":[{"id": "e1", "severity": "CRITICAL", "timestamp": "`+now+`", "ciId": "db1"}]}`)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/analyze/impact", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("impact: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp models.ImpactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Impacts) != 1 {
		t.Fatalf("expected one impact, got %d", len(resp.Impacts))
	}
	if resp.Impacts[0].RiskLevel != models.RiskCritical {
		t.Fatalf("expected CRITICAL risk, got %s", resp.Impacts[0].RiskLevel)
	}
}

func TestAnalyzePatterns(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	now := time.Now().UTC()
	payload := `{"events":[
		{"id": "e1", "severity": "HIGH", "timestamp": "` + now.Format(time.RFC3339) + `", "ciId": "db1"},
		{"id": "e2", "severity": "HIGH", "timestamp": "` + now.Add(time.Hour).Format(time.RFC3339) + `", "ciId": "db1"},
		{"id": "e3", "severity": "MEDIUM", "timestamp": "` + now.Add(2*time.Hour).Format(time.RFC3339) + `", "ciId": "db1"}
	]}`
	doRequest(t, h, http.MethodPost, "/api/v1/events", payload)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/analyze/patterns", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("patterns: status %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Patterns []models.Pattern `json:"patterns"`
		Total    int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected one pattern, got %d", resp.Total)
	}
	if resp.Patterns[0].Recommendation != models.RecommendInvestigate {
		t.Fatalf("expected systematic-issue recommendation, got %s", resp.Patterns[0].Recommendation)
	}
	if resp.Patterns[0].ComponentName != "Orders DB" {
		t.Fatalf("expected component name enrichment, got %q", resp.Patterns[0].ComponentName)
	}
}

func TestSimulateCascade(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/simulate/cascade",
		`{"rootComponentId": "db1", "timeDelayMinutes": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("cascade: status %d body %s", rec.Code, rec.Body.String())
	}

	var result models.CascadeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.RootID != "db1" {
		t.Fatalf("root id = %q", result.RootID)
	}
	if len(result.Events) < 2 {
		t.Fatalf("expected root plus downstream events, got %d", len(result.Events))
	}
	if result.Events[0].Severity != models.SeverityCritical {
		t.Fatalf("root event severity = %s", result.Events[0].Severity)
	}
}

func TestSimulateCascadeUnknownRoot(t *testing.T) {
	h := newTestHandler(t)
	seedTopology(t, h)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/simulate/cascade", `{"rootComponentId": "ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown root, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("status = %q", resp["status"])
	}
}
