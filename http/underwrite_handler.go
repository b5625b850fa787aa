package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"loanlens/domain"
	"loanlens/llm"
	"loanlens/service"
)

// UnderwriteHandler exposes the session operations over HTTP JSON.
type UnderwriteHandler struct {
	session *service.SessionService
	logger  *slog.Logger
}

func NewUnderwriteHandler(session *service.SessionService, logger *slog.Logger) *UnderwriteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnderwriteHandler{session: session, logger: logger}
}

type analyzeRequest struct {
	Document string             `json:"document"` // base64-encoded bytes
	MimeType string             `json:"mimeType"`
	Loan     domain.LoanDetails `json:"loan"`
}

type letterRequest struct {
	ReportID string `json:"reportId"`
}

type letterResponse struct {
	ReportID string `json:"reportId"`
	Letter   string `json:"letter"`
}

// Analyze accepts a document plus loan parameters and returns the stored
// AssessmentReport.
func (h *UnderwriteHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Document == "" {
		http.Error(w, "document is required", http.StatusBadRequest)
		return
	}
	// Base64 inflates by 4/3, so this bounds the decoded document size.
	if len(req.Document) > service.MaxDocumentBytes*4/3 {
		http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !supportedMimeType(req.MimeType) {
		http.Error(w, "unsupported document type: expected an image or PDF", http.StatusBadRequest)
		return
	}
	if err := req.Loan.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Loan.Amount > service.MaxLoanAmount {
		http.Error(w, "loan amount exceeds the maximum", http.StatusBadRequest)
		return
	}

	report, err := h.session.Analyze(r.Context(), req.Document, req.MimeType, req.Loan)
	if err != nil {
		h.logger.Error("analysis request failed", slog.Any("error", err))
		http.Error(w, err.Error(), analyzeStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Letter returns the decision letter for a stored report. Generation failures
// still yield 200 with the fallback text.
func (h *UnderwriteHandler) Letter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req letterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	letter, err := h.session.Letter(r.Context(), req.ReportID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, letterResponse{ReportID: req.ReportID, Letter: letter})
}

// Reports lists the history, or one report when ?id= is given.
func (h *UnderwriteHandler) Reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		report, err := h.session.Report(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	writeJSON(w, http.StatusOK, h.session.History())
}

// Stats returns the portfolio statistics for the dashboard.
func (h *UnderwriteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.session.Stats())
}

// Config reads or replaces the lender configuration.
func (h *UnderwriteHandler) Config(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.session.LenderConfig())

	case http.MethodPut:
		var cfg domain.LenderConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.session.UpdateLenderConfig(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Health is a liveness probe.
func (h *UnderwriteHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrAnalysisInFlight):
		return http.StatusConflict
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func supportedMimeType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
