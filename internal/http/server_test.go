package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pengluaran/internal/cache"
	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
	"pengluaran/internal/ledger/memory"
	applog "pengluaran/internal/log"
	"pengluaran/internal/report"
	"pengluaran/internal/services"
)

const testUser = "user-1"

var reportNow = time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Component: applog.ComponentApp, Output: io.Discard})
}

type testServer struct {
	*Server
	store *memory.Store
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	store := memory.New()
	snaps := services.NewSnapshots(store, cache.NewLRUCache[*ledger.Snapshot](16, time.Hour))
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.RateLimitPerMinute == 0 {
		opts.RateLimitPerMinute = 1000
	}
	srv := NewServer(":0",
		services.NewTransactionService(store, snaps, nil),
		services.NewCategoryService(store, snaps, 3),
		services.NewReportService(store, snaps, services.WithReportClock(func() time.Time { return reportNow })),
		opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{Server: srv, store: store}
}

// do sends body (a string or a value to encode) as user, or anonymously when
// user is empty.
func (ts *testServer) do(t *testing.T, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = strings.NewReader(string(raw))
	}
	r := httptest.NewRequest(method, target, rdr)
	if user != "" {
		r.Header.Set(HeaderUserID, user)
	}
	if rdr != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, r)
	return rr
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env.Data
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var env struct {
		Error errorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env.Error
}

func (ts *testServer) createCategory(t *testing.T, name string, typ core.TransactionType) core.Category {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/categories", testUser, map[string]string{"name": name, "type": string(typ)})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeData[core.Category](t, rr)
}

func (ts *testServer) createTransaction(t *testing.T, body map[string]any) core.Transaction {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/transactions", testUser, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeData[core.Transaction](t, rr)
}

func TestHealthAndReady(t *testing.T) {
	ready := errors.New("database down")
	var readyErr error
	ts := newTestServer(t, Options{Ready: func(context.Context) error { return readyErr }})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	readyErr = ready
	rr := ts.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, CodeUnavailable, decodeError(t, rr).Code)

	rr = ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "liveness ignores readiness")
}

func TestRequireUser(t *testing.T) {
	ts := newTestServer(t, Options{})

	for _, user := range []string{"", "   ", strings.Repeat("u", 129)} {
		r := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		if user != "" {
			r.Header.Set(HeaderUserID, user)
		}
		rr := httptest.NewRecorder()
		ts.Handler.ServeHTTP(rr, r)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "user %q", user)
		assert.Equal(t, CodeUnauthorized, decodeError(t, rr).Code)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodGet, "/api/transactions", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	rr = ts.do(t, http.MethodGet, "/nope", testUser, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rr).Code)

	rr = ts.do(t, http.MethodPatch, "/api/transactions", testUser, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{})
	food := ts.createCategory(t, "Makan", core.Expense)

	created := ts.createTransaction(t, map[string]any{
		"type":        "expense",
		"amount":      "12,5",
		"date":        "2025-01-15",
		"category_id": food.ID,
		"description": "  nasi goreng  ",
	})
	assert.True(t, decimal.RequireFromString("12.5").Equal(created.Amount))
	assert.Equal(t, "nasi goreng", created.Description)
	assert.Equal(t, testUser, created.UserID)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Makan", created.Category.Name)

	salary := ts.createTransaction(t, map[string]any{"type": "income", "amount": 5000000, "date": "2025-01-01"})
	assert.True(t, decimal.NewFromInt(5000000).Equal(salary.Amount))

	rr := ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decodeData[core.Transaction](t, rr).ID)

	rr = ts.do(t, http.MethodGet, "/api/transactions?type=expense", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeData[[]core.Transaction](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rr = ts.do(t, http.MethodGet, "/api/transactions?from=2025-01-10&to=2025-01-31", testUser, nil)
	require.Len(t, decodeData[[]core.Transaction](t, rr), 1)

	rr = ts.do(t, http.MethodGet, "/api/transactions?limit=1", testUser, nil)
	require.Len(t, decodeData[[]core.Transaction](t, rr), 1)

	rr = ts.do(t, http.MethodPut, "/api/transactions/"+created.ID, testUser, map[string]any{"amount": "20000", "category_id": ""})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeData[core.Transaction](t, rr)
	assert.True(t, decimal.NewFromInt(20000).Equal(updated.Amount))
	assert.Empty(t, updated.CategoryID)
	assert.Equal(t, "2025-01-15", updated.Date.String())

	rr = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, "someone-else", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "other users cannot read it")

	rr = ts.do(t, http.MethodDelete, "/api/transactions/"+created.ID, testUser, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, testUser, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, http.MethodDelete, "/api/transactions/"+created.ID, testUser, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/transactions", testUser, nil)
	list = decodeData[[]core.Transaction](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, salary.ID, list[0].ID)
}

func TestCreateTransactionRejects(t *testing.T) {
	ts := newTestServer(t, Options{})
	salaryCat := ts.createCategory(t, "Gaji", core.Income)

	tests := []struct {
		name string
		body any
		want int
		code string
	}{
		{"malformed json", `{"type":`, http.StatusBadRequest, CodeBadRequest},
		{"empty body", ``, http.StatusBadRequest, CodeBadRequest},
		{"unknown field", `{"type":"expense","amount":1,"date":"2025-01-01","extra":true}`, http.StatusBadRequest, CodeBadRequest},
		{"trailing data", `{"type":"expense","amount":1,"date":"2025-01-01"} {}`, http.StatusBadRequest, CodeBadRequest},
		{"missing amount", map[string]any{"type": "expense", "date": "2025-01-01"}, http.StatusBadRequest, CodeBadRequest},
		{"amount as bool", `{"type":"expense","amount":true,"date":"2025-01-01"}`, http.StatusBadRequest, CodeBadRequest},
		{"negative amount", map[string]any{"type": "expense", "amount": "-5", "date": "2025-01-01"}, http.StatusUnprocessableEntity, CodeValidation},
		{"zero amount", map[string]any{"type": "expense", "amount": 0, "date": "2025-01-01"}, http.StatusUnprocessableEntity, CodeValidation},
		{"sub-cent amount", map[string]any{"type": "expense", "amount": "0.001", "date": "2025-01-01"}, http.StatusUnprocessableEntity, CodeValidation},
		{"three decimals", map[string]any{"type": "expense", "amount": 1.005, "date": "2025-01-01"}, http.StatusUnprocessableEntity, CodeValidation},
		{"amount overflows", map[string]any{"type": "expense", "amount": "10000000000000", "date": "2025-01-01"}, http.StatusUnprocessableEntity, CodeValidation},
		{"bad type", map[string]any{"type": "transfer", "amount": 1, "date": "2025-01-01"}, http.StatusUnprocessableEntity, CodeValidation},
		{"bad date", map[string]any{"type": "expense", "amount": 1, "date": "2025-02-30"}, http.StatusUnprocessableEntity, CodeValidation},
		{"description too long", map[string]any{"type": "expense", "amount": 1, "date": "2025-01-01", "description": strings.Repeat("x", 501)}, http.StatusUnprocessableEntity, CodeValidation},
		{"category type mismatch", map[string]any{"type": "expense", "amount": 1, "date": "2025-01-01", "category_id": salaryCat.ID}, http.StatusUnprocessableEntity, CodeValidation},
		{"unknown category", map[string]any{"type": "expense", "amount": 1, "date": "2025-01-01", "category_id": "missing"}, http.StatusNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/api/transactions", testUser, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}

	rr := ts.do(t, http.MethodGet, "/api/transactions", testUser, nil)
	assert.Empty(t, decodeData[[]core.Transaction](t, rr), "nothing was stored")

	for _, target := range []string{"/api/transactions?from=yesterday", "/api/transactions?type=both", "/api/transactions?from=2025-02-01&to=2025-01-01", "/api/transactions?limit=0"} {
		rr := ts.do(t, http.MethodGet, target, testUser, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodPost, "/api/categories", testUser, map[string]string{"name": "Makan", "type": "expense", "icon": "utensils", "color": "#22c55e"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	food := decodeData[core.Category](t, rr)
	assert.Equal(t, core.IconUtensils, food.Icon)
	assert.Equal(t, "#22c55e", food.Color)

	salary := ts.createCategory(t, "Gaji", core.Income)
	assert.Equal(t, core.DefaultIcon, salary.Icon)
	assert.Equal(t, core.CategoryColors[0], salary.Color)

	rr = ts.do(t, http.MethodGet, "/api/categories?type=income", testUser, nil)
	cats := decodeData[[]core.Category](t, rr)
	require.Len(t, cats, 1)
	assert.Equal(t, salary.ID, cats[0].ID)

	rr = ts.do(t, http.MethodGet, "/api/categories", testUser, nil)
	assert.Len(t, decodeData[[]core.Category](t, rr), 2)

	rr = ts.do(t, http.MethodPut, "/api/categories/"+food.ID, testUser, map[string]string{"icon": "rocket"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, http.MethodPut, "/api/categories/"+food.ID, testUser, map[string]string{"name": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, http.MethodPut, "/api/categories/"+food.ID, testUser, map[string]string{"name": "Makanan", "color": "#000000"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Makanan", decodeData[core.Category](t, rr).Name)

	tx := ts.createTransaction(t, map[string]any{"type": "expense", "amount": 15000, "date": "2025-01-10", "category_id": food.ID})

	rr = ts.do(t, http.MethodGet, "/api/categories/usage", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	usage := decodeData[[]core.CategoryUsage](t, rr)
	require.Len(t, usage, 2)
	for _, u := range usage {
		if u.Category.ID == food.ID {
			assert.Equal(t, 1, u.TransactionCount)
			assert.True(t, decimal.NewFromInt(15000).Equal(u.TotalAmount))
		} else {
			assert.Zero(t, u.TransactionCount)
		}
	}

	rr = ts.do(t, http.MethodDelete, "/api/categories/"+food.ID, testUser, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/transactions/"+tx.ID, testUser, nil)
	assert.Empty(t, decodeData[core.Transaction](t, rr).CategoryID, "transactions are detached, not deleted")

	rr = ts.do(t, http.MethodDelete, "/api/categories/"+food.ID, testUser, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/categories", testUser, map[string]string{"name": "Gaji"})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "type is required")
}

func TestCategoryLimit(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, name := range []string{"A", "B", "C"} {
		ts.createCategory(t, name, core.Expense)
	}

	rr := ts.do(t, http.MethodPost, "/api/categories", testUser, map[string]string{"name": "D", "type": "expense"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeError(t, rr).Message, "category limit reached")
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})
	food := ts.createCategory(t, "Makan", core.Expense)
	ts.createTransaction(t, map[string]any{"type": "income", "amount": 1000000, "date": "2025-01-02"})
	ts.createTransaction(t, map[string]any{"type": "expense", "amount": 250000, "date": "2025-01-05", "category_id": food.ID, "description": "Belanja, mingguan"})
	ts.createTransaction(t, map[string]any{"type": "expense", "amount": 100000, "date": "2024-03-01"})

	rr := ts.do(t, http.MethodGet, "/api/reports?range=1m", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rep := decodeData[report.Report](t, rr)
	assert.Equal(t, report.Range1M, rep.Range)
	assert.Equal(t, "1 Bulan", rep.RangeLabel)
	assert.Equal(t, 2, rep.Summary.TransactionCount)
	assert.True(t, decimal.NewFromInt(750000).Equal(rep.Summary.Balance))
	require.Len(t, rep.ExpenseBreakdown, 1)
	assert.Equal(t, 100.0, rep.ExpenseBreakdown[0].Percentage)

	rr = ts.do(t, http.MethodGet, "/api/reports", testUser, nil)
	assert.Equal(t, report.DefaultRange, decodeData[report.Report](t, rr).Range)

	rr = ts.do(t, http.MethodGet, "/api/reports?range=ALL", testUser, nil)
	assert.Equal(t, 3, decodeData[report.Report](t, rr).Summary.TransactionCount)

	rr = ts.do(t, http.MethodGet, "/api/reports?range=2W", testUser, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/dashboard", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decodeData[report.Dashboard](t, rr)
	assert.Len(t, dash.Daily, 31)
	assert.Equal(t, 2, dash.Summary.TransactionCount)
	assert.Len(t, dash.Recent, 2)

	rr = ts.do(t, http.MethodGet, "/api/export?format=csv&range=1M", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=laporan-keuangan-2025-01-20.csv", rr.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Tanggal,Tipe,Kategori,Jumlah,Deskripsi", lines[0])
	assert.Contains(t, rr.Body.String(), `"Belanja, mingguan"`)

	rr = ts.do(t, http.MethodGet, "/api/export?format=xlsx", testUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=laporan-keuangan-2025-01-20.xlsx", rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "PK"), "xlsx is a zip archive")

	rr = ts.do(t, http.MethodGet, "/api/export?format=pdf", testUser, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMeta(t *testing.T) {
	ts := newTestServer(t, Options{Currency: "USD", Locale: "en-US"})

	rr := ts.do(t, http.MethodGet, "/api/meta", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, "meta needs no user")
	m := decodeData[meta](t, rr)
	assert.Equal(t, "USD", m.Currency)
	assert.Equal(t, "en-US", m.Locale)
	assert.Len(t, m.Icons, len(core.Icons))
	assert.Equal(t, core.CategoryColors, m.Colors)
	require.Len(t, m.Ranges, 5)
	assert.Equal(t, rangeOption{Code: report.RangeAll, Label: "Semua"}, m.Ranges[4])
	assert.Equal(t, report.Range6M, m.DefaultRange)
}

func TestRateLimitOnlyWrites(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		rr := ts.do(t, http.MethodPost, "/api/categories", testUser, map[string]string{"name": string(rune('A' + i)), "type": "expense"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.do(t, http.MethodPost, "/api/categories", testUser, map[string]string{"name": "C", "type": "expense"})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, CodeRateLimited, decodeError(t, rr).Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	for i := 0; i < 5; i++ {
		rr := ts.do(t, http.MethodGet, "/api/categories", testUser, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

type failingTransactions struct{ TransactionService }

func (failingTransactions) List(context.Context, string, ledger.Filter) ([]core.Transaction, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.transactions = failingTransactions{ts.transactions}

	rr := ts.do(t, http.MethodGet, "/api/transactions", testUser, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, CodeInternal, body.Code)
	assert.Equal(t, "Terjadi kesalahan", body.Message)
	assert.NotContains(t, rr.Body.String(), "disk on fire")
}
