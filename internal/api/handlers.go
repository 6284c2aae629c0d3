package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/Veraticus/finnet/internal/storage"
	"github.com/go-chi/chi/v5"
)

type resultResponse struct {
	Review          *model.ReviewDecision `json:"review,omitempty"`
	BatchID         string                `json:"batch_id"`
	TransactionID   string                `json:"transaction_id"`
	AccountID       string                `json:"account_id"`
	Date            string                `json:"date"`
	Currency        string                `json:"currency"`
	Amount          string                `json:"amount"`
	ProductCode     string                `json:"product_code,omitempty"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	RegulatoryCode  string                `json:"regulatory_code"`
	RiskLevel       string                `json:"risk_level,omitempty"`
	ResolutionTier  string                `json:"resolution_tier"`
	ReviewStatus    string                `json:"review_status"`
	AdvisoryFailure string                `json:"advisory_failure,omitempty"`
	RiskFlag        bool                  `json:"risk_flag"`
}

type reviewRequest struct {
	Reviewer       string `json:"reviewer"`
	Category       string `json:"category"`
	RegulatoryCode string `json:"regulatory_code"`
	Note           string `json:"note"`
	Approved       bool   `json:"approved"`
}

func toResponse(r model.StoredResult) resultResponse {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format("2006-01-02")
	}
	return resultResponse{
		Review:          r.Review,
		BatchID:         r.BatchID,
		TransactionID:   r.TransactionID,
		AccountID:       r.AccountID,
		Date:            date,
		Currency:        r.Currency,
		Amount:          r.Amount.StringFixed(2),
		ProductCode:     r.ProductCode,
		Description:     r.OriginalDescription,
		Category:        r.Category,
		RegulatoryCode:  r.RegulatoryCode,
		RiskLevel:       string(r.RiskLevel),
		ResolutionTier:  string(r.ResolutionTier),
		ReviewStatus:    string(r.ReviewStatus),
		AdvisoryFailure: string(r.AdvisoryFailure),
		RiskFlag:        r.RiskFlag,
	}
}

func toResponses(results []model.StoredResult) []resultResponse {
	out := make([]resultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toResponse(r))
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	batches, err := s.store.ListBatches(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if batches == nil {
		batches = []model.Batch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (s *Server) handleBatchResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.GetBatchResults(r.Context(), chi.URLParam(r, "batchID"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(results))
}

func (s *Server) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.ListPendingReviews(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(results))
}

func (s *Server) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision := &model.ReviewDecision{
		BatchID:        chi.URLParam(r, "batchID"),
		TransactionID:  chi.URLParam(r, "txnID"),
		Reviewer:       strings.TrimSpace(req.Reviewer),
		Approved:       req.Approved,
		Category:       strings.TrimSpace(req.Category),
		RegulatoryCode: strings.TrimSpace(req.RegulatoryCode),
		Note:           strings.TrimSpace(req.Note),
		ReviewedAt:     s.now().UTC().Truncate(time.Second),
	}

	err := s.store.RecordReview(r.Context(), decision)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, decision)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "result not found")
	case errors.Is(err, storage.ErrReviewNotRequired):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrInvalidReview):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
