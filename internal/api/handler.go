package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/opensource-finance/retention/internal/cache"
	"github.com/opensource-finance/retention/internal/decision"
	"github.com/opensource-finance/retention/internal/domain"
	"github.com/opensource-finance/retention/internal/segment"
)

// ModelInfo describes the model the server was started with.
type ModelInfo struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Source   string   `json:"source"`
	Features []string `json:"features"`
	Clusters int      `json:"clusters"`
}

// Handler holds dependencies for API handlers.
type Handler struct {
	processor *decision.Processor
	model     ModelInfo
	repo      domain.ArtifactRepository
	cache     domain.Cache
	validator *Validator
	version   string
}

// NewHandler creates a new API handler. repo and cache may be nil.
func NewHandler(processor *decision.Processor, model ModelInfo, repo domain.ArtifactRepository, cacheImpl domain.Cache, version string) *Handler {
	return &Handler{
		processor: processor,
		model:     model,
		repo:      repo,
		cache:     cacheImpl,
		validator: NewValidator(),
		version:   version,
	}
}

// PredictRequest is the request body for POST /predict. Every field is
// required; pointers distinguish an explicit zero from a missing field.
type PredictRequest struct {
	Recency             *int     `json:"recency" validate:"required"`
	TotalSpending       *float64 `json:"totalSpending" validate:"required"`
	NumWebPurchases     *int     `json:"numWebPurchases" validate:"required"`
	NumStorePurchases   *int     `json:"numStorePurchases" validate:"required"`
	NumCatalogPurchases *int     `json:"numCatalogPurchases" validate:"required"`
	NumDealsPurchases   *int     `json:"numDealsPurchases" validate:"required"`
	NumWebVisitsMonth   *int     `json:"numWebVisitsMonth" validate:"required"`
	Income              *float64 `json:"income" validate:"required"`
	Age                 *int     `json:"age" validate:"required"`
}

// ToRecord converts a validated request into a customer record.
func (r *PredictRequest) ToRecord() domain.CustomerRecord {
	return domain.CustomerRecord{
		Recency:             *r.Recency,
		TotalSpending:       *r.TotalSpending,
		NumWebPurchases:     *r.NumWebPurchases,
		NumStorePurchases:   *r.NumStorePurchases,
		NumCatalogPurchases: *r.NumCatalogPurchases,
		NumDealsPurchases:   *r.NumDealsPurchases,
		NumWebVisitsMonth:   *r.NumWebVisitsMonth,
		Income:              *r.Income,
		Age:                 *r.Age,
	}
}

// PredictResponse is the response for POST /predict.
type PredictResponse struct {
	ID                    string                        `json:"id"`
	ClusterID             int                           `json:"clusterId"`
	SubScores             domain.SubScores              `json:"subScores"`
	RFMScore              int                           `json:"rfmScore"`
	RFMScoreDisplay       string                        `json:"rfmScoreDisplay"`
	RiskPercentage        float64                       `json:"riskPercentage"`
	RiskPercentageDisplay string                        `json:"riskPercentageDisplay"`
	RiskTier              domain.RiskTier               `json:"riskTier"`
	Segment               string                        `json:"segment"`
	Description           string                        `json:"description"`
	Action                string                        `json:"action"`
	Timestamp             time.Time                     `json:"timestamp"`
	Metadata              domain.RecommendationMetadata `json:"metadata"`
}

func newPredictResponse(rec *domain.Recommendation) PredictResponse {
	return PredictResponse{
		ID:                    rec.ID,
		ClusterID:             rec.ClusterID,
		SubScores:             rec.SubScores,
		RFMScore:              rec.RFMScore,
		RFMScoreDisplay:       rec.ScoreDisplay(),
		RiskPercentage:        rec.Risk.Percentage,
		RiskPercentageDisplay: rec.RiskDisplay(),
		RiskTier:              rec.Risk.Tier,
		Segment:               rec.Segment.Name(),
		Description:           rec.Segment.Description(),
		Action:                rec.Action,
		Timestamp:             rec.Timestamp,
		Metadata:              rec.Metadata,
	}
}

// Predict handles POST /predict requests.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if missing := h.validator.MissingFields(&req); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "missing required fields",
			"fields": missing,
		})
		return
	}

	rec, err := h.processor.Process(ctx, &decision.Input{
		TraceID:   GetTraceID(ctx),
		Record:    req.ToRecord(),
		StartTime: start,
	})
	if err != nil {
		writeProcessError(w, err)
		return
	}

	slog.Debug("prediction complete",
		"id", rec.ID,
		"cluster_id", rec.ClusterID,
		"rfm_score", rec.RFMScore,
		"risk_tier", rec.Risk.Tier,
	)

	writeJSON(w, http.StatusOK, newPredictResponse(rec))
}

// writeProcessError maps pipeline failures to HTTP statuses.
func writeProcessError(w http.ResponseWriter, err error) {
	var cerr *domain.ConstraintError
	switch {
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      domain.ErrInputConstraint.Error(),
			"violations": cerr.Violations,
		})
	case errors.Is(err, domain.ErrInvalidFeatureSet):
		slog.Error("model feature set mismatch", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": domain.ErrInvalidFeatureSet.Error(),
		})
	case errors.Is(err, domain.ErrUnknownCluster):
		slog.Error("model returned an unknown cluster", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": domain.ErrUnknownCluster.Error(),
		})
	default:
		slog.Error("prediction failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "prediction failed",
		})
	}
}

// ListSegments handles GET /segments.
func (h *Handler) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments := segment.Catalog()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"segments": segments,
		"count":    len(segments),
	})
}

// GetModel handles GET /model.
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.model)
}

// statsReporter is implemented by caches with an in-process tier.
type statsReporter interface {
	Stats() cache.Stats
}

// Health reports dependency status and, for in-process caches, the
// assignment cache occupancy and hit counters.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	resp := map[string]interface{}{
		"version": h.version,
	}

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			slog.Warn("repository ping failed", "error", err)
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			slog.Warn("cache ping failed", "error", err)
			status = "degraded"
		}
		if sr, ok := h.cache.(statsReporter); ok {
			resp["cache"] = sr.Stats()
		}
	}

	resp["status"] = status
	writeJSON(w, http.StatusOK, resp)
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.processor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"ready": "false",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
