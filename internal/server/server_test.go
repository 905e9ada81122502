package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/server"
	"github.com/liftreport/liftreport/internal/testutil"
)

func setupTestServer(t *testing.T, observations []dataset.Observation) (*server.Server, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.DataPath = testutil.WriteCSV(t, observations)
	cfg.ExportPath = filepath.Join(t.TempDir(), "results", "test_results.json")

	source := dataset.CSVFile{Path: cfg.DataPath, Schema: cfg.Schema()}
	return server.New(source, cfg, ""), cfg
}

func setupMissingDataServer(t *testing.T) (*server.Server, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.DataPath = filepath.Join(t.TempDir(), "missing.csv")
	cfg.ExportPath = filepath.Join(t.TempDir(), "test_results.json")

	source := dataset.CSVFile{Path: cfg.DataPath, Schema: cfg.Schema()}
	return server.New(source, cfg, ""), cfg
}

func strongFixture() []dataset.Observation {
	return testutil.Groups("desktop", 1000, 80, "mobile", 3000, 150)
}

// authed sends req with a valid session cookie.
func authed(srv *server.Server, req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: "lr_token", Value: srv.Token()})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp server.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || !resp.DataAvailable || resp.Observations != 4000 {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHealth_MissingData(t *testing.T) {
	srv, _ := setupMissingDataServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp server.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DataAvailable {
		t.Error("expected data_available to be false")
	}
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestToken_Format(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	if len(srv.Token()) != 8 {
		t.Errorf("expected 8 character token, got %q", srv.Token())
	}
	if srv.StartTime().IsZero() {
		t.Error("expected start time to be set")
	}
}

func TestResultsAPI(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	w := authed(srv, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp server.ResultsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.GroupAN != 1000 || resp.Result.GroupBN != 3000 {
		t.Errorf("unexpected counts: %+v", resp.Result)
	}
	if resp.Recommendation != "strong" || !resp.Significant {
		t.Errorf("got recommendation %q significant %v", resp.Recommendation, resp.Significant)
	}
}

func TestResultsAPI_Overrides(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	base := authed(srv, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	wide := authed(srv, httptest.NewRequest(http.MethodGet, "/api/results?confidence=0.99&aov=100", nil))

	var baseResp, wideResp server.ResultsResponse
	json.NewDecoder(base.Body).Decode(&baseResp)
	json.NewDecoder(wide.Body).Decode(&wideResp)

	if wideResp.Result.CILower >= baseResp.Result.CILower {
		t.Errorf("expected wider interval at 99%%: %v vs %v", wideResp.Result.CILower, baseResp.Result.CILower)
	}
	if wideResp.Result.AnnualOpportunity != 2*baseResp.Result.AnnualOpportunity {
		t.Errorf("expected opportunity to double with aov: %v vs %v",
			wideResp.Result.AnnualOpportunity, baseResp.Result.AnnualOpportunity)
	}
}

func TestResultsAPI_BadParams(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	for _, query := range []string{"aov=0", "aov=abc", "confidence=0.5", "confidence=high"} {
		w := authed(srv, httptest.NewRequest(http.MethodGet, "/api/results?"+query, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", query, w.Code)
		}
	}
}

func TestResultsAPI_MissingData(t *testing.T) {
	srv, _ := setupMissingDataServer(t)

	w := authed(srv, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Data file not found!") {
		t.Errorf("expected not found message, got %s", w.Body.String())
	}
}

func TestResultsAPI_EmptyGroup(t *testing.T) {
	srv, _ := setupTestServer(t, testutil.Observations("desktop", 100, 5))

	w := authed(srv, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Please check your data file and try again.") {
		t.Errorf("expected generic message, got %s", w.Body.String())
	}
}

func TestResultsAPI_Unauthorized(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestExportAPI(t *testing.T) {
	srv, cfg := setupTestServer(t, strongFixture())

	w := authed(srv, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp server.ExportResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Path != cfg.ExportPath {
		t.Errorf("got path %q, want %q", resp.Path, cfg.ExportPath)
	}

	data, err := os.ReadFile(cfg.ExportPath)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !strings.Contains(string(data), `"annualOpportunity"`) {
		t.Errorf("unexpected export contents: %s", data)
	}
}

func TestExportAPI_MethodNotAllowed(t *testing.T) {
	srv, _ := setupTestServer(t, strongFixture())

	w := authed(srv, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestExportAPI_MissingDataWritesNothing(t *testing.T) {
	srv, cfg := setupMissingDataServer(t)

	w := authed(srv, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if _, err := os.Stat(cfg.ExportPath); !os.IsNotExist(err) {
		t.Errorf("expected no export file, got %v", err)
	}
}

func TestDashboardExport(t *testing.T) {
	srv, cfg := setupTestServer(t, strongFixture())

	form := url.Values{"aov": {"75"}, "confidence": {"0.99"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/export", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := authed(srv, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", w.Code)
	}

	location := w.Header().Get("Location")
	for _, want := range []string{"exported=1", "aov=75", "confidence=0.99"} {
		if !strings.Contains(location, want) {
			t.Errorf("redirect %q missing %q", location, want)
		}
	}

	if _, err := os.Stat(cfg.ExportPath); err != nil {
		t.Errorf("export file not written: %v", err)
	}
}
