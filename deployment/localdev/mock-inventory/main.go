package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Criticality string `json:"criticality,omitempty"`
}

type relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

type event struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	CIID      string    `json:"ciId"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/topology", func(w http.ResponseWriter, r *http.Request) {
		if !enforceGet(w, r) {
			return
		}
		writeJSON(w, map[string]any{
			"items": []item{
				{ID: "dc-east", Name: "East Datacenter", Type: "DataCenter", Status: "OPERATIONAL"},
				{ID: "srv-01", Name: "web-srv-01", Type: "Server", Status: "OPERATIONAL"},
				{ID: "srv-02", Name: "db-srv-02", Type: "Server", Status: "OPERATIONAL"},
				{ID: "db-orders", Name: "Orders DB", Type: "Database", Status: "OPERATIONAL", Criticality: "HIGH"},
				{ID: "app-checkout", Name: "Checkout", Type: "Application", Status: "OPERATIONAL"},
				{ID: "api-payments", Name: "Payments API", Type: "APIService", Status: "OPERATIONAL"},
				{ID: "biz-sales", Name: "Online Sales", Type: "BusinessService", Status: "OPERATIONAL", Criticality: "CRITICAL"},
			},
			"relationships": []relationship{
				{From: "srv-01", To: "dc-east", Type: "HOSTED_ON"},
				{From: "srv-02", To: "dc-east", Type: "HOSTED_ON"},
				{From: "app-checkout", To: "srv-01", Type: "RUNS_ON"},
				{From: "db-orders", To: "srv-02", Type: "RUNS_ON"},
				{From: "app-checkout", To: "db-orders", Type: "DEPENDS_ON"},
				{From: "api-payments", To: "db-orders", Type: "DEPENDS_ON"},
				{From: "app-checkout", To: "biz-sales", Type: "SUPPORTS"},
				{From: "api-payments", To: "biz-sales", Type: "ENABLES"},
			},
		})
	})

	mux.HandleFunc("/api/v1/events", func(w http.ResponseWriter, r *http.Request) {
		if !enforceGet(w, r) {
			return
		}
		writeJSON(w, map[string]any{
			"events": []event{
				{
					ID:        "evt-1001",
					Message:   "connection pool exhausted",
					Severity:  "HIGH",
					EventType: "DB_ALERT",
					Timestamp: time.Now().Add(-10 * time.Minute),
					Status:    "OPEN",
					CIID:      "db-orders",
				},
				{
					ID:        "evt-1002",
					Message:   "checkout latency above SLO",
					Severity:  "MEDIUM",
					EventType: "APM_ALERT",
					Timestamp: time.Now().Add(-7 * time.Minute),
					Status:    "OPEN",
					CIID:      "app-checkout",
				},
			},
		})
	})

	logger := log.New(log.Writer(), "inventory-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8080",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func enforceGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
