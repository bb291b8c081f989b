package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/domain/audit"
	"ledgerio/internal/ledgertest"
	v1 "ledgerio/internal/infrastructure/http/v1"
	"ledgerio/internal/infrastructure/http/v1/middleware"
	"ledgerio/internal/infrastructure/storage/postgres"
	"ledgerio/pkg/logger"
)

type apiFixture struct {
	t      *testing.T
	books  *ledgertest.Books
	router http.Handler
	keys   *memoryKeys
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	b := ledgertest.New(t)
	keys := newMemoryKeys()
	router := v1.NewRouter(v1.RouterConfig{
		Services: v1.Services{
			Ledgers:  b.Ledgers,
			Accounts: b.Accounts,
			Journal:  b.Journal,
			Digest:   b.Digest,
			Closing:  b.Closing,
			Ingest:   b.Ingest,
		},
		Logger:           logger.Nop(),
		Idempotency:      keys,
		DigestPostedOnly: true,
		Version:          "test",
	})
	return &apiFixture{t: t, books: b, router: router, keys: keys}
}

func (f *apiFixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) commitPath() string {
	return "/api/v1/ledgers/" + f.books.Ledger.ID.String() + "/commit"
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type entryBody struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	Posted       bool   `json:"posted"`
	Locked       bool   `json:"locked"`
	Verified     bool   `json:"verified"`
	Activity     string `json:"activity"`
	Transactions []struct {
		AccountCode string          `json:"accountCode"`
		Amount      decimal.Decimal `json:"amount"`
	} `json:"transactions"`
}

func capitalContribution(amount string) map[string]any {
	return map[string]any{
		"date":        "2024-03-01",
		"posted":      true,
		"description": "owner contribution",
		"lines": []map[string]any{
			{"accountCode": "1010", "txType": "debit", "amount": amount},
			{"accountCode": "3010", "txType": "credit", "amount": amount},
		},
	}
}

func TestHealth(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestCommit_PostsEntryAndFeedsDigest(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodPost, f.commitPath(), capitalContribution("1000"), middleware.HeaderActor, "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	je := decode[entryBody](t, w)
	assert.True(t, je.Posted)
	assert.NotEmpty(t, je.Number)
	assert.Equal(t, "fin_equity", je.Activity)
	require.Len(t, je.Transactions, 2)

	w = f.do(http.MethodGet, "/api/v1/entities/"+f.books.Entity.ID.String()+"/digest?processRoles=true&balanceSheet=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var d struct {
		Roles struct {
			Balances map[string]decimal.Decimal `json:"balances"`
		} `json:"roles"`
		BalanceSheet struct {
			Assets struct {
				TotalBalance decimal.Decimal `json:"totalBalance"`
			} `json:"assets"`
		} `json:"balanceSheet"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.True(t, decimal.RequireFromString("1000").Equal(d.Roles.Balances["asset_ca_cash"]))
	assert.True(t, decimal.RequireFromString("1000").Equal(d.BalanceSheet.Assets.TotalBalance))

	var actors []string
	for _, e := range f.books.Audit.Entries() {
		if e.Action == audit.ActionPost {
			actors = append(actors, e.Actor)
		}
	}
	assert.Contains(t, actors, "alice")
}

func TestCommit_RejectsImbalance(t *testing.T) {
	f := newAPI(t)

	body := capitalContribution("100")
	body["lines"] = []map[string]any{
		{"accountCode": "1010", "txType": "debit", "amount": "100"},
		{"accountCode": "3010", "txType": "credit", "amount": "90"},
	}
	w := f.do(http.MethodPost, f.commitPath(), body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeNotInBalance, decode[errorBody](t, w).Code)
}

func TestCommit_UnknownAccountCode(t *testing.T) {
	f := newAPI(t)

	body := capitalContribution("100")
	body["lines"] = []map[string]any{
		{"accountCode": "9999", "txType": "debit", "amount": "100"},
		{"accountCode": "3010", "txType": "credit", "amount": "100"},
	}
	w := f.do(http.MethodPost, f.commitPath(), body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decode[errorBody](t, w)
	assert.Equal(t, apperror.CodeValidation, e.Code)
	assert.Equal(t, "9999", e.Details["value"])
}

func TestCommit_LockedLedger(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodPost, "/api/v1/ledgers/"+f.books.Ledger.ID.String()+"/lock", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodPost, f.commitPath(), capitalContribution("100"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeLedgerLocked, decode[errorBody](t, w).Code)
}

func TestCommit_IdempotentReplay(t *testing.T) {
	f := newAPI(t)

	first := f.do(http.MethodPost, f.commitPath(), capitalContribution("250"), middleware.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := f.do(http.MethodPost, f.commitPath(), capitalContribution("250"), middleware.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, decode[entryBody](t, first).ID, decode[entryBody](t, second).ID)

	// A different body under the same key is refused.
	third := f.do(http.MethodPost, f.commitPath(), capitalContribution("300"), middleware.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, third.Code)
}

func TestJournalEntry_Lifecycle(t *testing.T) {
	f := newAPI(t)
	je := f.books.Draft(ledgertest.Day(2024, 4, 2), nil,
		ledgertest.Dr("1010", "40"), ledgertest.Cr("4010", "40"))
	base := "/api/v1/journal-entries/" + je.ID.String()

	w := f.do(http.MethodPost, base+"/verify", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[entryBody](t, w).Verified)

	w = f.do(http.MethodPost, base+"/post", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[entryBody](t, w).Posted)

	w = f.do(http.MethodPost, base+"/lock", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[entryBody](t, w).Locked)

	// Locked entries cannot be unposted.
	w = f.do(http.MethodPost, base+"/unpost", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeJournalEntryInvalid, decode[errorBody](t, w).Code)

	w = f.do(http.MethodPost, base+"/unlock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodPost, base+"/unpost", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[entryBody](t, w).Posted)

	w = f.do(http.MethodGet, base+"/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestJournalEntry_BadID(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodGet, "/api/v1/journal-entries/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode[errorBody](t, w).Code)
}

func TestClosingEntry_CreateAndPost(t *testing.T) {
	f := newAPI(t)
	f.books.Posted(ledgertest.Day(2024, 1, 15), ledgertest.Dr("1010", "500"), ledgertest.Cr("4010", "500"))

	w := f.do(http.MethodPost, "/api/v1/entities/"+f.books.Entity.ID.String()+"/closing-entries",
		map[string]any{"closingDate": "2024-01-31", "post": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ce struct {
		ID     string `json:"id"`
		Posted bool   `json:"posted"`
		Lines  []any  `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ce))
	assert.True(t, ce.Posted)
	assert.NotEmpty(t, ce.Lines)

	// Commits into the closed period are refused.
	body := capitalContribution("10")
	body["date"] = "2024-01-20"
	w = f.do(http.MethodPost, f.commitPath(), body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodePeriodClosed, decode[errorBody](t, w).Code)

	// Closing in the future is a validation error.
	w = f.do(http.MethodPost, "/api/v1/entities/"+f.books.Entity.ID.String()+"/closing-entries",
		map[string]any{"closingDate": "2030-01-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDigest_InvalidRole(t *testing.T) {
	f := newAPI(t)

	w := f.do(http.MethodGet, "/api/v1/entities/"+f.books.Entity.ID.String()+"/digest?role=asset_nope", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode[errorBody](t, w).Code)
}

// memoryKeys is an in-process idempotency key store.
type memoryKeys struct {
	mu      sync.Mutex
	records map[string]*memoryKey
}

type memoryKey struct {
	hash   string
	done   bool
	replay postgres.IdempotencyReplay
}

func newMemoryKeys() *memoryKeys {
	return &memoryKeys{records: make(map[string]*memoryKey)}
}

func (m *memoryKeys) AcquireKey(_ context.Context, key, _, _, requestHash string) (*postgres.IdempotencyReplay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		m.records[key] = &memoryKey{hash: requestHash}
		return nil, nil
	}
	if r.hash != requestHash {
		return nil, apperror.NewConflict("idempotency key reused with a different request")
	}
	if !r.done {
		return nil, apperror.NewConflict("request with this idempotency key is in progress")
	}
	replay := r.replay
	return &replay, nil
}

func (m *memoryKeys) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return m.finish(key, statusCode, contentType, response)
}

func (m *memoryKeys) FailKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return m.finish(key, statusCode, contentType, response)
}

func (m *memoryKeys) finish(key string, statusCode int, contentType string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		return apperror.NewNotFound("idempotency_key", key)
	}
	r.done = true
	r.replay = postgres.IdempotencyReplay{StatusCode: statusCode, ContentType: contentType, Body: body}
	return nil
}
