package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/logger"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/stats"
)

type HealthResponse struct {
	Status        string `json:"status"`
	DataAvailable bool   `json:"data_available"`
	Observations  int    `json:"observations"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ResultsResponse is the body of /api/results.
type ResultsResponse struct {
	Result         stats.ExportRecord `json:"result"`
	Recommendation string             `json:"recommendation"`
	Significant    bool               `json:"significant"`
	GroupA         string             `json:"group_a"`
	GroupB         string             `json:"group_b"`
}

// ExportResponse is the body of /api/export.
type ExportResponse struct {
	Path   string             `json:"path"`
	Result stats.ExportRecord `json:"result"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	// A missing dataset does not make the server unhealthy.
	if observations, err := s.source.Load(r.Context()); err == nil {
		response.DataAvailable = true
		response.Observations = len(observations)
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleResultsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, err := s.reportOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rep, err := s.buildReport(r.Context(), opts)
	if err != nil {
		s.writeErrorJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResultsResponse{
		Result:         rep.Result.Export(),
		Recommendation: rep.Result.Recommendation.String(),
		Significant:    rep.Result.Significant(),
		GroupA:         opts.GroupA,
		GroupB:         opts.GroupB,
	})
}

func (s *Server) handleExportAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, err := s.reportOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rep, err := s.buildReport(r.Context(), opts)
	if err != nil {
		s.writeErrorJSON(w, err)
		return
	}

	record := rep.Result.Export()
	if err := report.WriteExport(s.cfg.ExportPath, record); err != nil {
		logger.Error("export failed", "path", s.cfg.ExportPath, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	logger.Info("results exported", "path", s.cfg.ExportPath)

	writeJSON(w, http.StatusOK, ExportResponse{Path: s.cfg.ExportPath, Result: record})
}

// reportOptions starts from the configured options and applies the aov and
// confidence overrides of a request.
func (s *Server) reportOptions(r *http.Request) (report.Options, error) {
	opts := s.cfg.ReportOptions()

	if raw := r.FormValue("aov"); raw != "" {
		aov, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(aov > 0) || math.IsInf(aov, 0) {
			return opts, fmt.Errorf("invalid average order value %q", raw)
		}
		opts.Params.AverageOrderValue = aov
	}

	if raw := r.FormValue("confidence"); raw != "" {
		level, err := strconv.ParseFloat(raw, 64)
		if err != nil || !config.ValidConfidenceLevel(level) {
			return opts, fmt.Errorf("invalid confidence level %q", raw)
		}
		opts.Params.ConfidenceLevel = level
	}

	return opts, nil
}

func (s *Server) buildReport(ctx context.Context, opts report.Options) (*report.Report, error) {
	observations, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return report.Build(observations, opts)
}

func (s *Server) writeErrorJSON(w http.ResponseWriter, err error) {
	msg := report.Describe(err, s.cfg.SourcePath())
	status := http.StatusInternalServerError
	if msg.NotFound {
		status = http.StatusNotFound
	}
	logger.Warn("report unavailable", "error", err)
	writeJSON(w, status, errorResponse{Error: msg.Title, Detail: msg.Detail})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
