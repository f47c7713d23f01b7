package api

import (
	"ConnSpectra/internal/metrics"
	"ConnSpectra/internal/model"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// SummaryResponse is the body of GET /api/v1/summary.
type SummaryResponse struct {
	Source  string             `json:"source"`
	Capture model.CaptureStats `json:"capture"`
	Summary model.Summary      `json:"summary"`
}

// Handler serves a finished report over HTTP.
type Handler struct {
	mu        sync.RWMutex
	report    *model.Report
	collector *metrics.ReportCollector
	registry  *prometheus.Registry
}

// NewHandler creates a handler serving report. The report may be replaced later with SetReport.
func NewHandler(report *model.Report) *Handler {
	collector := metrics.NewReportCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	h := &Handler{collector: collector, registry: registry}
	h.SetReport(report)
	return h
}

// SetReport swaps the served report.
func (h *Handler) SetReport(report *model.Report) {
	h.mu.Lock()
	h.report = report
	h.mu.Unlock()
	h.collector.SetReport(report)
}

// Router returns the API routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/summary", h.summaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/connections", h.connectionsHandler).Methods("GET")
	r.HandleFunc("/api/v1/connections/{id:[0-9]+}", h.connectionHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

func (h *Handler) current() *model.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report
}

// summaryHandler returns the capture counters and the aggregate statistics.
func (h *Handler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	rep := h.current()
	if rep == nil {
		http.Error(w, "no report available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, SummaryResponse{Source: rep.Source, Capture: rep.Capture, Summary: rep.Summary})
}

// connectionsHandler lists connection records, optionally filtered by ?class=.
func (h *Handler) connectionsHandler(w http.ResponseWriter, r *http.Request) {
	rep := h.current()
	if rep == nil {
		http.Error(w, "no report available", http.StatusServiceUnavailable)
		return
	}

	class := model.Class(r.URL.Query().Get("class"))
	switch class {
	case "", model.ClassComplete, model.ClassReset, model.ClassOpen, model.ClassPreCapture:
	default:
		http.Error(w, fmt.Sprintf("unknown class '%s'", class), http.StatusBadRequest)
		return
	}

	records := make([]model.ConnectionRecord, 0, len(rep.Connections))
	for _, c := range rep.Connections {
		if class == "" || c.Class == class {
			records = append(records, c)
		}
	}
	writeJSON(w, records)
}

// connectionHandler returns a single connection record by its report id.
func (h *Handler) connectionHandler(w http.ResponseWriter, r *http.Request) {
	rep := h.current()
	if rep == nil {
		http.Error(w, "no report available", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid connection id: %v", err), http.StatusBadRequest)
		return
	}
	// Ids are assigned 1..n in report order.
	if id < 1 || id > len(rep.Connections) {
		http.Error(w, fmt.Sprintf("connection %d not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, rep.Connections[id-1])
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Debugf("Failed to write response: %v", err)
	}
}
