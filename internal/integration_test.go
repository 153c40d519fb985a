package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"investment_manager/internal/api"
	"investment_manager/internal/domain"
	"investment_manager/internal/processor"
	"investment_manager/internal/repository/memory"
	"investment_manager/pkg/crypto"
	"investment_manager/pkg/metrics"
)

type testEnv struct {
	store          *memory.Store
	accountRepo    *memory.AccountRepository
	investmentRepo *memory.InvestmentRepository
	ledgerRepo     *memory.LedgerRepository

	processor *processor.InvestmentProcessor
	handler   *api.APIHandler
	signer    *crypto.Signer
	logger    *slog.Logger
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	accountRepo := memory.NewAccountRepository(store)
	investmentRepo := memory.NewInvestmentRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)

	proc := processor.NewInvestmentProcessor(store, accountRepo, investmentRepo, ledgerRepo, nil, nil)

	metricsCollector := metrics.NewMetricsCollector(nil)
	signer := crypto.NewSigner("test-secret", nil)
	logger := slog.Default()

	handler := api.NewAPIHandler(proc, metricsCollector, signer, logger)

	return &testEnv{
		store:          store,
		accountRepo:    accountRepo,
		investmentRepo: investmentRepo,
		ledgerRepo:     ledgerRepo,
		processor:      proc,
		handler:        handler,
		signer:         signer,
		logger:         logger,
	}
}

func mustCreateAccount(t *testing.T, env *testEnv, id string, balance int64) {
	t.Helper()
	acc := &domain.Account{
		ID:       id,
		UserID:   "user-" + id,
		Balance:  decimal.NewFromInt(balance),
		Currency: "IDR",
		Status:   domain.AccountActive,
	}
	if err := env.accountRepo.Save(context.Background(), acc); err != nil {
		t.Fatalf("save account failed: %v", err)
	}
}

func callCreateInvestment(t *testing.T, env *testEnv, req api.CreateInvestmentRequest) (*api.InvestmentResponse, int) {
	t.Helper()
	b, _ := json.Marshal(req)
	r := httptest.NewRequest("POST", "/api/v1/investments", bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.handler.CreateInvestmentHandler(w, r)
	respCode := w.Result().StatusCode

	if respCode >= 200 && respCode < 300 {
		var ir api.InvestmentResponse
		if err := json.NewDecoder(w.Body).Decode(&ir); err != nil {
			t.Fatalf("decode success response failed: %v", err)
		}
		return &ir, respCode
	}
	return nil, respCode
}

func TestIntegration_PlaceInvestmentSuccess(t *testing.T) {
	env := setup(t)

	mustCreateAccount(t, env, "A1", 500_000)

	req := api.CreateInvestmentRequest{
		AccountID: "A1",
		Category:  domain.CategoryBonds,
		Amount:    "200,000",
	}

	resp, code := callCreateInvestment(t, env, req)
	if code != 201 {
		t.Fatalf("expected 201, got %d", code)
	}
	if resp == nil {
		t.Fatalf("expected response body")
	}
	if !resp.ReturnRate.Equal(decimal.RequireFromString("0.07")) {
		t.Errorf("expected return rate 0.07, got %s", resp.ReturnRate)
	}
	if !resp.ExpectedReturn.Equal(decimal.NewFromInt(14_000)) {
		t.Errorf("expected expected return 14000, got %s", resp.ExpectedReturn)
	}

	acc, _ := env.accountRepo.GetByID(context.Background(), "A1")
	if !acc.Balance.Equal(decimal.NewFromInt(300_000)) {
		t.Errorf("expected balance 300000, got %s", acc.Balance)
	}

	investments, _ := env.investmentRepo.GetByOwner(context.Background(), "A1", 10)
	if len(investments) != 1 {
		t.Fatalf("expected one investment, got %d", len(investments))
	}
	ledger, _ := env.ledgerRepo.GetByAccount(context.Background(), "A1", 10, 0)
	if len(ledger) != 1 {
		t.Fatalf("expected one ledger record, got %d", len(ledger))
	}
}

func TestIntegration_InsufficientBalance(t *testing.T) {
	env := setup(t)

	mustCreateAccount(t, env, "A2", 150_000)

	req := api.CreateInvestmentRequest{
		AccountID: "A2",
		Category:  domain.CategoryStocks,
		Amount:    "200000",
	}

	_, code := callCreateInvestment(t, env, req)
	if code != 422 {
		t.Fatalf("expected 422 for insufficient balance, got %d", code)
	}

	acc, _ := env.accountRepo.GetByID(context.Background(), "A2")
	if !acc.Balance.Equal(decimal.NewFromInt(150_000)) {
		t.Errorf("balance changed on rejected investment: %s", acc.Balance)
	}
	investments, _ := env.investmentRepo.GetByOwner(context.Background(), "A2", 10)
	if len(investments) != 0 {
		t.Errorf("expected no investments, got %d", len(investments))
	}
}

func TestIntegration_AmountValidation(t *testing.T) {
	env := setup(t)
	mustCreateAccount(t, env, "A3", 1_000_000)

	cases := []struct {
		amount string
	}{
		{""},
		{"abc"},
		{"0"},
		{"50000"},
		{"2000000000"},
	}

	for _, c := range cases {
		req := api.CreateInvestmentRequest{
			AccountID: "A3",
			Category:  domain.CategoryBonds,
			Amount:    c.amount,
		}
		_, code := callCreateInvestment(t, env, req)
		if code != 400 {
			t.Errorf("amount %q: expected 400, got %d", c.amount, code)
		}
	}

	investments, _ := env.investmentRepo.GetByOwner(context.Background(), "A3", 10)
	if len(investments) != 0 {
		t.Errorf("invalid amounts must never reach the processor, got %d investments", len(investments))
	}
}

func TestIntegration_UnknownAccount(t *testing.T) {
	env := setup(t)

	req := api.CreateInvestmentRequest{
		AccountID: "nope",
		Category:  domain.CategoryBonds,
		Amount:    "200000",
	}

	_, code := callCreateInvestment(t, env, req)
	if code != 404 {
		t.Fatalf("expected 404 for unknown account, got %d", code)
	}
}

func TestIntegration_SignatureVerification(t *testing.T) {
	env := setup(t)
	mustCreateAccount(t, env, "A4", 500_000)

	ts := time.Now().Unix()
	amount := decimal.NewFromInt(200_000)

	valid := env.signer.SignInvestment("A4", amount, string(domain.CategoryBonds), ts)
	req := api.CreateInvestmentRequest{
		AccountID: "A4",
		Category:  domain.CategoryBonds,
		Amount:    "200000",
		Signature: valid,
		Timestamp: ts,
	}
	if _, code := callCreateInvestment(t, env, req); code != 201 {
		t.Fatalf("expected 201 with valid signature, got %d", code)
	}

	req.Signature = "deadbeef"
	if _, code := callCreateInvestment(t, env, req); code != 401 {
		t.Fatalf("expected 401 with bad signature, got %d", code)
	}
}

func TestIntegration_GetAccountSummary(t *testing.T) {
	env := setup(t)
	mustCreateAccount(t, env, "A5", 1_000_000)

	ctx := context.Background()
	if _, err := env.processor.Invest(ctx, "A5", domain.CategoryStocks, decimal.NewFromInt(400_000)); err != nil {
		t.Fatalf("invest failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/v1/accounts?id=A5", nil)
	w := httptest.NewRecorder()
	env.handler.GetAccountHandler(w, r)
	if w.Result().StatusCode != 200 {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode)
	}

	var summary processor.PortfolioSummary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(600_000)) {
		t.Errorf("expected balance 600000, got %s", summary.Balance)
	}
	if summary.ActiveInvestments != 1 {
		t.Errorf("expected 1 active investment, got %d", summary.ActiveInvestments)
	}
	// 400000 * 0.15
	if !summary.ExpectedReturn.Equal(decimal.NewFromInt(60_000)) {
		t.Errorf("expected expected return 60000, got %s", summary.ExpectedReturn)
	}
}

func TestIntegration_GetInvestmentHistory(t *testing.T) {
	env := setup(t)
	mustCreateAccount(t, env, "A6", 900_000)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := env.processor.Invest(ctx, "A6", domain.CategoryMutualFunds, decimal.NewFromInt(200_000)); err != nil {
			t.Fatalf("invest %d failed: %v", i, err)
		}
	}

	r := httptest.NewRequest("GET", "/api/v1/investments?owner_id=A6&limit=2", nil)
	w := httptest.NewRecorder()
	env.handler.GetInvestmentsHandler(w, r)
	if w.Result().StatusCode != 200 {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode)
	}

	var investments []domain.Investment
	if err := json.NewDecoder(w.Body).Decode(&investments); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(investments) != 2 {
		t.Fatalf("expected 2 investments, got %d", len(investments))
	}
}

func TestIntegration_GetLedger(t *testing.T) {
	env := setup(t)
	mustCreateAccount(t, env, "A7", 500_000)

	ctx := context.Background()
	if _, err := env.processor.Invest(ctx, "A7", domain.CategoryBonds, decimal.NewFromInt(200_000)); err != nil {
		t.Fatalf("invest failed: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/v1/ledger?account_id=A7", nil)
	w := httptest.NewRecorder()
	env.handler.GetLedgerHandler(w, r)
	if w.Result().StatusCode != 200 {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode)
	}

	var ledger []domain.LedgerTransaction
	if err := json.NewDecoder(w.Body).Decode(&ledger); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(ledger))
	}
	if !ledger[0].SignedAmount.Equal(decimal.NewFromInt(-200_000)) {
		t.Errorf("expected signed amount -200000, got %s", ledger[0].SignedAmount)
	}
}

func TestIntegration_ConcurrentInvestmentsNoOverdraft(t *testing.T) {
	env := setup(t)
	mustCreateAccount(t, env, "A8", 1_000_000)

	n := 10
	codes := make(chan int, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			req := api.CreateInvestmentRequest{
				AccountID: "A8",
				Category:  domain.CategoryStocks,
				Amount:    fmt.Sprintf("%d", 200_000),
			}
			_, code := callCreateInvestment(t, env, req)
			codes <- code
		}(i)
	}
	wg.Wait()
	close(codes)

	successes := 0
	for code := range codes {
		if code == 201 {
			successes++
		}
	}
	if successes != 5 {
		t.Errorf("expected exactly 5 successful investments, got %d", successes)
	}

	acc, _ := env.accountRepo.GetByID(context.Background(), "A8")
	if !acc.Balance.Equal(decimal.Zero) {
		t.Errorf("expected balance 0 after 5 investments of 200000, got %s", acc.Balance)
	}
	if acc.Balance.IsNegative() {
		t.Errorf("balance went negative: %s", acc.Balance)
	}
	ledger, _ := env.ledgerRepo.GetByAccount(context.Background(), "A8", 20, 0)
	if len(ledger) != 5 {
		t.Errorf("expected 5 ledger records, got %d", len(ledger))
	}
}

func TestIntegration_InvalidRequestBody(t *testing.T) {
	env := setup(t)

	r := httptest.NewRequest("POST", "/api/v1/investments", bytes.NewReader([]byte(`{not json`)))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.CreateInvestmentHandler(w, r)
	if w.Result().StatusCode != 400 {
		t.Fatalf("expected 400 for invalid request, got %d", w.Result().StatusCode)
	}
}
