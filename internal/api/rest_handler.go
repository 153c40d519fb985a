package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"investment_manager/internal/domain"
	"investment_manager/internal/processor"
	"investment_manager/internal/repository"
	"investment_manager/pkg/crypto"
	"investment_manager/pkg/metrics"
	"investment_manager/pkg/validator"
)

type APIHandler struct {
	processor      *processor.InvestmentProcessor
	validator      *validator.AmountValidator
	metrics        *metrics.MetricsCollector
	signer         *crypto.Signer
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	processor *processor.InvestmentProcessor,
	metrics *metrics.MetricsCollector,
	signer *crypto.Signer,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		processor:      processor,
		validator:      validator.NewAmountValidator(),
		metrics:        metrics,
		signer:         signer,
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

type CreateInvestmentRequest struct {
	AccountID string          `json:"account_id"`
	Category  domain.Category `json:"category"`
	// Amount arrives as the raw user string ("150,000") and goes through the
	// amount validation rules server-side.
	Amount    string `json:"amount"`
	Signature string `json:"signature,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type InvestmentResponse struct {
	ID             string                  `json:"id"`
	Category       domain.Category         `json:"category"`
	Amount         decimal.Decimal         `json:"amount"`
	ReturnRate     decimal.Decimal         `json:"return_rate"`
	ExpectedReturn decimal.Decimal         `json:"expected_return"`
	Status         domain.InvestmentStatus `json:"status"`
	Message        string                  `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *APIHandler) CreateInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	if req.AccountID == "" {
		h.sendError(w, "account_id is required", http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	amount, err := h.validator.Parse(req.Amount)
	if err != nil {
		h.metrics.RecordRejection(rejectionReason(err), time.Since(startTime))
		h.sendError(w, err.Error(), http.StatusBadRequest, validationCode(err))
		return
	}

	if req.Signature != "" {
		if valid, err := h.signer.VerifyInvestment(
			req.AccountID,
			amount,
			string(req.Category),
			req.Timestamp,
			req.Signature,
		); !valid || err != nil {
			h.sendError(w, "Invalid signature", http.StatusUnauthorized, "INVALID_SIGNATURE")
			return
		}
	}

	inv, err := h.processor.Invest(ctx, req.AccountID, req.Category, amount)
	duration := time.Since(startTime)

	if err != nil {
		h.metrics.RecordRejection(rejectionReason(err), duration)
		h.logger.Error("Investment failed",
			slog.String("error", err.Error()),
			slog.String("account_id", req.AccountID))
		status, code := investErrorStatus(err)
		h.sendError(w, fmt.Sprintf("Investment failed: %v", err), status, code)
		return
	}

	h.metrics.RecordInvestment(duration, amount.InexactFloat64())
	if account, err := h.processor.GetAccount(ctx, req.AccountID); err == nil {
		h.metrics.UpdateAccountBalance(account.ID, account.Currency, account.Balance.InexactFloat64())
	}

	response := InvestmentResponse{
		ID:             inv.ID,
		Category:       inv.Category,
		Amount:         inv.Amount,
		ReturnRate:     inv.ReturnRate,
		ExpectedReturn: inv.ExpectedReturn,
		Status:         inv.Status,
		Message:        "Investment placed successfully",
	}

	h.sendJSON(w, response, http.StatusCreated)
	h.logger.Info("Investment placed",
		slog.String("investment_id", inv.ID),
		slog.String("account_id", req.AccountID),
		slog.String("amount", inv.Amount.String()))
}

func (h *APIHandler) GetInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		h.sendError(w, "owner_id is required", http.StatusBadRequest, "MISSING_OWNER_ID")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	investments, err := h.processor.RecentInvestments(ctx, ownerID, limit)
	if err != nil {
		h.sendError(w, "Failed to get investments", http.StatusInternalServerError, "SERVER_ERROR")
		return
	}
	if investments == nil {
		investments = []*domain.Investment{}
	}

	h.sendJSON(w, investments, http.StatusOK)
}

func (h *APIHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("id")
	if accountID == "" {
		h.sendError(w, "Account ID is required", http.StatusBadRequest, "MISSING_ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	summary, err := h.processor.PortfolioSummary(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.sendError(w, "Account not found", http.StatusNotFound, "NOT_FOUND")
		} else {
			h.sendError(w, "Failed to get account", http.StatusInternalServerError, "SERVER_ERROR")
		}
		return
	}

	h.sendJSON(w, summary, http.StatusOK)
}

func (h *APIHandler) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		h.sendError(w, "account_id is required", http.StatusBadRequest, "MISSING_ACCOUNT_ID")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	ledger, err := h.processor.LedgerHistory(ctx, accountID, limit, offset)
	if err != nil {
		h.sendError(w, "Failed to get ledger", http.StatusInternalServerError, "SERVER_ERROR")
		return
	}
	if ledger == nil {
		ledger = []*domain.LedgerTransaction{}
	}

	h.sendJSON(w, ledger, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}
	h.sendJSON(w, response, http.StatusOK)
}

func validationCode(err error) string {
	switch {
	case errors.Is(err, validator.ErrEmptyOrNotANumber):
		return "NOT_A_NUMBER"
	case errors.Is(err, validator.ErrNotPositive):
		return "NOT_POSITIVE"
	case errors.Is(err, validator.ErrBelowMinimum):
		return "BELOW_MINIMUM"
	case errors.Is(err, validator.ErrAboveMaximum):
		return "ABOVE_MAXIMUM"
	default:
		return "VALIDATION_ERROR"
	}
}

func investErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"
	case errors.Is(err, repository.ErrAccountSuspended):
		return http.StatusForbidden, "ACCOUNT_SUSPENDED"
	case errors.Is(err, repository.ErrTransactionConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, validator.ErrNotPositive):
		return http.StatusBadRequest, "NOT_POSITIVE"
	default:
		return http.StatusInternalServerError, "PROCESSING_ERROR"
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "account_not_found"
	case errors.Is(err, repository.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, repository.ErrAccountSuspended):
		return "account_suspended"
	case errors.Is(err, repository.ErrTransactionConflict):
		return "conflict"
	case errors.Is(err, validator.ErrEmptyOrNotANumber),
		errors.Is(err, validator.ErrNotPositive),
		errors.Is(err, validator.ErrBelowMinimum),
		errors.Is(err, validator.ErrAboveMaximum):
		return "invalid_amount"
	default:
		return "error"
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	errorResponse := ErrorResponse{
		Error: message,
		Code:  code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/investments", h.CreateInvestmentHandler)
	mux.HandleFunc("GET /api/v1/investments", h.GetInvestmentsHandler)
	mux.HandleFunc("GET /api/v1/accounts", h.GetAccountHandler)
	mux.HandleFunc("GET /api/v1/ledger", h.GetLedgerHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}
