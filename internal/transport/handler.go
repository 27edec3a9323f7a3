// Package transport exposes the HTTP API.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/plasticledger-backend/internal/upload"
)

const (
	maxRequestBytes   = 1 << 20
	defaultStatsDays  = 30
	maxStatsDays      = 366
	internalErrorText = "Internal Server Error"
)

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Material          model.Material           `json:"plastic_type"`
	Contamination     model.ContaminationLevel `json:"contamination"`
	CleanlinessFactor float64                  `json:"cleanliness_factor"`
	Score             float64                  `json:"recyclability_score"`
	Breakdown         model.ScoreBreakdown     `json:"score_breakdown"`
	Recommendation    model.Recommendation     `json:"recommendation"`
	BlockNumber       uint64                   `json:"block_number"`
	Hash              string                   `json:"hash"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the assessment API.
type Handler struct {
	assessor Assessor
	uploads  UploadStore
	stats    StatsReader
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler returns a Handler. stats may be nil when no analytics mirror is configured.
func NewHandler(assessor Assessor, uploads UploadStore, stats StatsReader, metrics Metrics, logger *zap.Logger) (*Handler, error) {
	if assessor == nil {
		return nil, errors.New("handler assessor is required")
	}
	if uploads == nil {
		return nil, errors.New("handler upload store is required")
	}
	if metrics == nil {
		return nil, errors.New("handler metrics is required")
	}
	return &Handler{
		assessor: assessor,
		uploads:  uploads,
		stats:    stats,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Routes registers the API on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /health", h.instrument("health", h.health))
	mux.Handle("POST /analyze", h.instrument("analyze", h.analyze))
	mux.Handle("GET /verify-chain", h.instrument("verify_chain", h.verifyChain))
	if h.stats != nil {
		mux.Handle("GET /stats/materials", h.instrument("material_stats", h.materialStats))
	}
	return mux
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Image == "" {
		h.writeError(w, http.StatusBadRequest, "Missing image field")
		return
	}

	data, err := upload.DecodeDataURL(req.Image)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := h.uploads.Save(data)
	if err != nil {
		h.logger.Error("save upload", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, internalErrorText)
		return
	}

	block, err := h.assessor.Assess(r.Context(), path)
	if err != nil {
		h.logger.Error("assess sample", zap.String("path", path), zap.Error(err))
		if rmErr := h.uploads.Remove(path); rmErr != nil {
			h.logger.Warn("remove orphaned upload", zap.String("path", path), zap.Error(rmErr))
		}
		h.writeError(w, http.StatusInternalServerError, internalErrorText)
		return
	}

	a := block.Assessment
	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Material:          a.Material,
		Contamination:     a.Contamination,
		CleanlinessFactor: a.CleanlinessFactor,
		Score:             a.Score,
		Breakdown:         a.Breakdown,
		Recommendation:    a.Recommendation,
		BlockNumber:       block.Number,
		Hash:              block.CurrentHash,
	})
}

func (h *Handler) verifyChain(w http.ResponseWriter, r *http.Request) {
	v, err := h.assessor.VerifyChain(r.Context())
	if err != nil {
		h.logger.Error("verify chain", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, internalErrorText)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *Handler) materialStats(w http.ResponseWriter, r *http.Request) {
	days := defaultStatsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := parseDays(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		days = n
	}

	since := h.now().UTC().AddDate(0, 0, -days)
	summary, err := h.stats.MaterialSummary(r.Context(), since)
	if err != nil {
		h.logger.Error("material summary", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, internalErrorText)
		return
	}
	if summary == nil {
		summary = []clickhouse.MaterialSummary{}
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, errorResponse{Error: msg})
}
