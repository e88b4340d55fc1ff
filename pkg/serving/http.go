package serving

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sepsiswatch/platform/pkg/clinical/features"
	"github.com/sepsiswatch/platform/pkg/clinical/schema"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/common/models"
	"github.com/sepsiswatch/platform/pkg/observability/metrics"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/predict", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/model", h.handleModelInfo).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/predictions/{patient_id}/latest", h.handleLatest).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.service.Available(),
		ModelTag:    h.service.ModelTag(),
	}
	if !resp.ModelLoaded {
		resp.Status = "degraded"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRejection()
		writeError(w, http.StatusBadRequest, "invalid_input", "request body is not valid JSON")
		return
	}

	result, err := h.service.Predict(r.Context(), req)
	if err != nil {
		metrics.ObserveRejection()
		switch {
		case errors.Is(err, ErrModelUnavailable):
			writeError(w, http.StatusServiceUnavailable, "model_unavailable", "no model loaded; run the trainer and restart")
		case features.IsValidationError(err):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		default:
			var mismatch schema.MismatchError
			if errors.As(err, &mismatch) {
				logger.Log.WithError(err).Error("schema mismatch while serving; predictions blocked for this bundle")
				writeError(w, http.StatusInternalServerError, "schema_mismatch", "model schema disagrees with this build")
				return
			}
			logger.Log.WithError(err).Error("prediction failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "prediction failed")
		}
		return
	}

	metrics.ObservePrediction(result.RiskLevel)
	logger.Log.WithFields(map[string]interface{}{
		"patient_id":  result.PatientID,
		"risk_level":  result.RiskLevel,
		"probability": result.Probability,
	}).Info("Prediction completed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result.ToResponse())
}

func (h *HTTPHandler) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if !h.service.Available() {
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", "no model loaded")
		return
	}
	info := map[string]interface{}{
		"model_tag":          h.service.ModelTag(),
		"feature_count":      schema.VectorSize,
		"schema_fingerprint": schema.Fingerprint(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (h *HTTPHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	if h.service.Cache == nil {
		writeError(w, http.StatusNotFound, "not_found", "result cache not configured")
		return
	}
	patientID := mux.Vars(r)["patient_id"]
	payload, err := h.service.Cache.Latest(r.Context(), patientID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to read result cache")
		writeError(w, http.StatusInternalServerError, "internal_error", "cache read failed")
		return
	}
	if payload == nil {
		writeError(w, http.StatusNotFound, "not_found", "no cached prediction for patient")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
