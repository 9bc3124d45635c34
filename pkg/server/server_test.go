package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadedpez/zeuscoins/internal/policy"
	"github.com/fadedpez/zeuscoins/pkg/entities"
	coinRepo "github.com/fadedpez/zeuscoins/pkg/repositories/coin"
	mock_coin "github.com/fadedpez/zeuscoins/pkg/repositories/coin/mock"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
	"github.com/fadedpez/zeuscoins/pkg/services/redeem"
	"github.com/fadedpez/zeuscoins/pkg/services/spin"
	"github.com/fadedpez/zeuscoins/pkg/services/staff"
	"github.com/fadedpez/zeuscoins/pkg/services/tiers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testStack struct {
	repo    *coinRepo.MemoryRepository
	handler http.Handler
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	p := policy.Default()
	classifier, err := tiers.NewClassifier(p.Tiers)
	require.NoError(t, err)

	repo := coinRepo.NewMemoryRepository()
	coinService := coins.NewService(repo, classifier, nil)
	spinService := spin.NewService(repo, coinService, classifier, p, nil)
	redeemService := redeem.NewService(repo, coinService, p, nil, nil)
	staffService := staff.NewService(repo, coinService, staff.NewStaticAuthorizer([]string{"host1"}), nil)

	srv := NewServer(coinService, spinService, redeemService, staffService, classifier, nil)
	return &testStack{repo: repo, handler: srv.Handler()}
}

func (ts *testStack) request(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testStack) fund(t *testing.T, accountID string, coins int64) {
	t.Helper()
	_, err := ts.repo.ApplyDelta(context.Background(), accountID, coins, &entities.LedgerEntry{Reason: entities.ReasonDeposit})
	require.NoError(t, err)
}

func asUser(id string) map[string]string     { return map[string]string{"X-Account-ID": id} }
func asOperator(id string) map[string]string { return map[string]string{"X-Operator-ID": id} }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestStack(t)
	rec := ts.request(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlayerRoutesRequireAccountHeader(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.request(t, http.MethodGet, "/api/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/bonus/daily", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDailySpinFlow(t *testing.T) {
	ts := newTestStack(t)

	rec := ts.request(t, http.MethodPost, "/api/bonus/daily", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["label"])

	// Second attempt inside the window is rejected with the retry time
	rec = ts.request(t, http.MethodPost, "/api/bonus/daily", nil, asUser("user1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body = decode(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "COOLDOWN_ACTIVE", errObj["code"])
	assert.NotEmpty(t, errObj["cooldown_ends_at"])

	// Eligibility endpoint agrees
	rec = ts.request(t, http.MethodGet, "/api/bonus/daily", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["eligible"])

	// A different account is unaffected
	rec = ts.request(t, http.MethodPost, "/api/bonus/daily", nil, asUser("user2"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogAndRedeem(t *testing.T) {
	ts := newTestStack(t)
	ts.fund(t, "user1", 10000)

	rec := ts.request(t, http.MethodGet, "/api/rewards", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["rewards"], 6)

	rec = ts.request(t, http.MethodPost, "/api/rewards/redeem", map[string]string{"reward": "match_25"}, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(6000), body["new_balance"])

	rec = ts.request(t, http.MethodGet, "/api/rewards/history", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["redemptions"], 1)
}

func TestRedeemErrors(t *testing.T) {
	ts := newTestStack(t)
	ts.fund(t, "user1", 100)

	rec := ts.request(t, http.MethodPost, "/api/rewards/redeem", map[string]string{"reward": "no_such_reward"}, asUser("user1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/rewards/redeem", map[string]string{"reward": "match_25"}, asUser("user1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "INSUFFICIENT_FUNDS", errObj["code"])

	rec = ts.request(t, http.MethodPost, "/api/rewards/redeem", nil, asUser("user1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileAndLedger(t *testing.T) {
	ts := newTestStack(t)
	ts.fund(t, "user1", 30000)

	rec := ts.request(t, http.MethodGet, "/api/profile", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, float64(30000), profile["coins"])
	tier := profile["tier"].(map[string]interface{})
	assert.Equal(t, "GOLD", tier["current"].(map[string]interface{})["level"])
	assert.NotNil(t, body["daily_spin"])

	rec = ts.request(t, http.MethodGet, "/api/ledger", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["entries"], 1)

	rec = ts.request(t, http.MethodGet, "/api/tiers", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["tiers"], 4)
}

func TestHostAdjust(t *testing.T) {
	ts := newTestStack(t)

	adjust := map[string]interface{}{
		"account_id": "user1",
		"delta":      5000,
		"reason":     "DEPOSIT",
		"note":       "wire #42",
	}

	// No operator header
	rec := ts.request(t, http.MethodPost, "/api/host/adjust", adjust, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Operator without host privileges
	rec = ts.request(t, http.MethodPost, "/api/host/adjust", adjust, asOperator("intruder"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Authorized host
	rec = ts.request(t, http.MethodPost, "/api/host/adjust", adjust, asOperator("host1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["old_balance"])
	assert.Equal(t, float64(5000), body["new_balance"])

	rec = ts.request(t, http.MethodGet, "/api/host/users/user1", nil, asOperator("host1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(5000), body["coins"])

	rec = ts.request(t, http.MethodGet, "/api/host/users/user1/ledger", nil, asOperator("host1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["entries"], 1)
}

func TestSpinRejectionCounterCountsOnlyCooldowns(t *testing.T) {
	ts := newTestStack(t)

	before := testutil.ToFloat64(SpinsRejectedTotal)

	// A successful spin and a cooldown rejection
	rec := ts.request(t, http.MethodPost, "/api/bonus/daily", nil, asUser("user1"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(t, http.MethodPost, "/api/bonus/daily", nil, asUser("user1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(SpinsRejectedTotal))

	// A store failure is not a gate rejection and must not count
	ctrl := gomock.NewController(t)
	repo := mock_coin.NewMockRepository(ctrl)
	repo.EXPECT().GetBalance(gomock.Any(), "user1").Return(nil, errors.New("store down"))

	p := policy.Default()
	classifier, err := tiers.NewClassifier(p.Tiers)
	require.NoError(t, err)
	coinService := coins.NewService(repo, classifier, nil)
	spinService := spin.NewService(repo, coinService, classifier, p, nil)
	redeemService := redeem.NewService(repo, coinService, p, nil, nil)
	staffService := staff.NewService(repo, coinService, staff.NewStaticAuthorizer(nil), nil)
	srv := NewServer(coinService, spinService, redeemService, staffService, classifier, nil)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bonus/daily", nil)
	req.Header.Set("X-Account-ID", "user1")
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(SpinsRejectedTotal))
}

func TestMetricsEndpoint(t *testing.T) {
	p := policy.Default()
	classifier, err := tiers.NewClassifier(p.Tiers)
	require.NoError(t, err)

	repo := coinRepo.NewMemoryRepository()
	coinService := coins.NewService(repo, classifier, nil)
	spinService := spin.NewService(repo, coinService, classifier, p, nil)
	redeemService := redeem.NewService(repo, coinService, p, nil, nil)
	staffService := staff.NewService(repo, coinService, staff.NewStaticAuthorizer(nil), nil)

	srv := NewServer(coinService, spinService, redeemService, staffService, classifier, nil)
	srv.EnableMetrics()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
