package serving

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sepsiswatch/platform/pkg/clinical/alerts"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestRouter(svc *Service) *mux.Router {
	router := mux.NewRouter()
	NewHTTPHandler(svc, 1<<20).Register(router)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsDegradedWithoutModel(t *testing.T) {
	router := newTestRouter(NewService(nil, nil, "", alerts.DefaultRules()))
	rec := doRequest(t, router, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if resp.Status != "degraded" || resp.ModelLoaded {
		t.Fatalf("degraded service reported %+v", resp)
	}
}

func TestHealthReportsHealthyWithModel(t *testing.T) {
	router := newTestRouter(newTestService(0.1))
	rec := doRequest(t, router, http.MethodGet, "/health", "")

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if resp.Status != "healthy" || !resp.ModelLoaded || resp.ModelTag != "test-model" {
		t.Fatalf("healthy service reported %+v", resp)
	}
}

func TestPredictEndpointSuccess(t *testing.T) {
	router := newTestRouter(newTestService(0.85))
	body := `{"patient_id":"P-9","hr":125,"temp":39.2,"sbp":85,"lactate":4.5}`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/predict", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("predict returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.PredictionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad predict body: %v", err)
	}
	if resp.PatientID != "P-9" || resp.RiskLevel != RiskVeryHigh {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Alerts) == 0 {
		t.Fatal("septic request produced no alerts")
	}
}

func TestPredictEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		svc    *Service
		body   string
		status int
		code   string
	}{
		{
			name:   "malformed json",
			svc:    newTestService(0.5),
			body:   "{not json",
			status: http.StatusBadRequest,
			code:   "invalid_input",
		},
		{
			name:   "out of range vital",
			svc:    newTestService(0.5),
			body:   `{"hr":900}`,
			status: http.StatusBadRequest,
			code:   "invalid_input",
		},
		{
			name:   "no model loaded",
			svc:    NewService(nil, nil, "", alerts.DefaultRules()),
			body:   `{}`,
			status: http.StatusServiceUnavailable,
			code:   "model_unavailable",
		},
		{
			name:   "drifted bundle",
			svc:    NewService(stubClassifier{proba: 0.5}, failingScaler{}, "drifted", alerts.DefaultRules()),
			body:   `{}`,
			status: http.StatusInternalServerError,
			code:   "schema_mismatch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestRouter(tt.svc), http.MethodPost, "/api/v1/predict", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad error body: %v", err)
			}
			if resp["error"] != tt.code {
				t.Fatalf("error code %q, want %q", resp["error"], tt.code)
			}
		})
	}
}

func TestModelInfoUnavailableWithoutBundle(t *testing.T) {
	router := newTestRouter(NewService(nil, nil, "", alerts.DefaultRules()))
	rec := doRequest(t, router, http.MethodGet, "/api/v1/model", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("model info returned %d", rec.Code)
	}
}

func TestLatestWithoutCacheIsNotFound(t *testing.T) {
	router := newTestRouter(newTestService(0.5))
	rec := doRequest(t, router, http.MethodGet, "/api/v1/predictions/P-1/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("latest returned %d", rec.Code)
	}
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	router := newTestRouter(newTestService(0.1))
	doRequest(t, router, http.MethodPost, "/api/v1/predict", `{"patient_id":"P-5"}`)

	rec := doRequest(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sepsiswatch_predictions_served_total") {
		t.Fatalf("metrics output missing prediction counter:\n%s", rec.Body.String())
	}
}
