package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgeteer/internal/auth"
	"budgeteer/internal/cache"
	"budgeteer/internal/core"
	"budgeteer/internal/services"
	"budgeteer/internal/sheets/memory"
	"budgeteer/internal/storage"
)

const testPassword = "Sup3r$ecret"

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func newTestServer(t *testing.T) (*apiClient, *memory.Store) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := memory.New()
	bundle := services.NewBundle(db, services.BundleConfig{
		LoginPolicy:    auth.DefaultLoginPolicy(),
		SessionTimeout: 15 * time.Minute,
		ReportCache:    cache.NewLRUCache[core.Report](16, time.Minute),
		ReportWriter:   store,
	})

	srv := NewServer("127.0.0.1:0", Deps{
		Auth:       bundle.Auth,
		Categories: bundle.Categories,
		Rules:      bundle.Rules,
		Txns:       bundle.Transactions,
		Budgets:    bundle.Budgets,
		Goals:      bundle.Goals,
		Reports:    bundle.Reports,
		Notifier:   bundle.Notifier,
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.rateLimiter.stop)

	return &apiClient{t: t, base: ts.URL}, store
}

// call sends a JSON request and decodes the envelope.
func (c *apiClient) call(method, path string, body any) (int, response) {
	c.t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, payload)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var envelope response
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func (c *apiClient) signup(username string) {
	c.t.Helper()
	status, _ := c.call(http.MethodPost, "/api/register", registerRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
	})
	require.Equal(c.t, http.StatusCreated, status)

	status, envelope := c.call(http.MethodPost, "/api/login", loginRequest{Username: username, Password: testPassword})
	require.Equal(c.t, http.StatusOK, status)
	session := envelope.Data.(map[string]any)
	c.token = session["token"].(string)
}

func (c *apiClient) categoryID(name string) int64 {
	c.t.Helper()
	status, envelope := c.call(http.MethodGet, "/api/categories", nil)
	require.Equal(c.t, http.StatusOK, status)
	for _, raw := range envelope.Data.([]any) {
		category := raw.(map[string]any)
		if category["name"] == name {
			return int64(category["id"].(float64))
		}
	}
	c.t.Fatalf("category %q not found", name)
	return 0
}

func TestAuthFlow(t *testing.T) {
	client, _ := newTestServer(t)

	status, envelope := client.call(http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, envelope.Success)

	client.signup("alice")

	status, envelope = client.call(http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope.Data.([]any), 10, "shared default categories")

	status, _ = client.call(http.MethodPost, "/api/register", registerRequest{
		Username: "alice", Email: "alice2@example.com", Password: testPassword,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = client.call(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = client.call(http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginLockoutStatus(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("bob")

	for i := 0; i < auth.DefaultAttemptLimit-1; i++ {
		status, envelope := client.call(http.MethodPost, "/api/login", loginRequest{Username: "bob", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, envelope.Message, "attempt(s) remaining")
	}

	status, envelope := client.call(http.MethodPost, "/api/login", loginRequest{Username: "bob", Password: "wrong"})
	assert.Equal(t, http.StatusLocked, status)
	assert.False(t, envelope.Success)

	status, envelope = client.call(http.MethodPost, "/api/login", loginRequest{Username: "bob", Password: testPassword})
	assert.Equal(t, http.StatusLocked, status)
	assert.Contains(t, envelope.Message, "minute")
}

func TestTransactionAndBudgetFlow(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("carol")
	foodID := client.categoryID("Food")

	status, _ := client.call(http.MethodPost, "/api/budgets", budgetRequest{
		CategoryID: foodID,
		LimitCents: 10000,
		Start:      core.NewDate(2026, 1, 1),
		End:        core.NewDate(2026, 1, 31),
	})
	require.Equal(t, http.StatusCreated, status)

	status, envelope := client.call(http.MethodPost, "/api/budgets", budgetRequest{
		CategoryID: foodID,
		LimitCents: 5000,
		Start:      core.NewDate(2026, 1, 15),
		End:        core.NewDate(2026, 2, 15),
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, envelope.Message, "already exists")

	status, _ = client.call(http.MethodPost, "/api/transactions", transactionRequest{
		CategoryID:  foodID,
		Date:        core.NewDate(2026, 1, 10),
		Description: "groceries",
		AmountCents: 9000,
		Type:        "expense",
	})
	require.Equal(t, http.StatusCreated, status)

	// Type mismatch against the category.
	status, _ = client.call(http.MethodPost, "/api/transactions", transactionRequest{
		CategoryID:  foodID,
		Date:        core.NewDate(2026, 1, 11),
		Description: "refund",
		AmountCents: 500,
		Type:        "income",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, envelope = client.call(http.MethodGet, "/api/budgets", nil)
	require.Equal(t, http.StatusOK, status)
	budgets := envelope.Data.([]any)
	require.Len(t, budgets, 1)
	assert.Equal(t, float64(9000), budgets[0].(map[string]any)["spent_cents"])
	assert.InDelta(t, 90.0, budgets[0].(map[string]any)["percentage"], 0.001)

	// The 75 and 90 thresholds fired and are visible as notifications.
	status, envelope = client.call(http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope.Data.([]any), 2)
}

func TestImportEndpoint(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("dora")

	csvBody := strings.Join([]string{
		"Date,Description,Amount,Category,Type",
		"2026-02-01,Lunch,12.00,Food,debit",
		"bad-date,Broken,5.00,Food,debit",
	}, "\n")

	req, err := http.NewRequest(http.MethodPost, client.base+"/api/transactions/import", strings.NewReader(csvBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+client.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	result := envelope.Data.(map[string]any)
	assert.Equal(t, float64(1), result["imported"])
	require.Len(t, result["errors"].([]any), 1)
	assert.Contains(t, result["errors"].([]any)[0], "Row 2")
}

func TestReportEndpoints(t *testing.T) {
	client, store := newTestServer(t)
	client.signup("erin")
	salaryID := client.categoryID("Salary")

	status, _ := client.call(http.MethodPost, "/api/transactions", transactionRequest{
		CategoryID:  salaryID,
		Date:        core.NewDate(2026, 3, 1),
		Description: "pay",
		AmountCents: 250000,
		Type:        "income",
	})
	require.Equal(t, http.StatusCreated, status)

	path := "/api/reports?period=custom&start=2026-03-01&end=2026-03-31"
	status, envelope := client.call(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	report := envelope.Data.(map[string]any)
	assert.Equal(t, float64(250000), report["income_cents"])
	assert.Equal(t, float64(250000), report["savings_cents"])

	status, envelope = client.call(http.MethodPost, "/api/reports/export?period=custom&start=2026-03-01&end=2026-03-31", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "mem:1", envelope.Data.(map[string]any)["ref"])
	require.Len(t, store.Reports(), 1)

	status, _ = client.call(http.MethodGet, "/api/reports?period=bogus", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestGoalEndpoints(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("fred")

	status, envelope := client.call(http.MethodPost, "/api/goals", goalRequest{
		Name:        "Holiday",
		Kind:        "savings",
		TargetCents: 100000,
		TargetDate:  core.NewDate(2026, 12, 31),
	})
	require.Equal(t, http.StatusCreated, status)
	goalID := int64(envelope.Data.(map[string]any)["id"].(float64))

	status, envelope = client.call(http.MethodPost, fmt.Sprintf("/api/goals/%d/contributions", goalID), contributionRequest{AmountCents: 50000})
	require.Equal(t, http.StatusOK, status)
	goal := envelope.Data.(map[string]any)
	assert.InDelta(t, 50.0, goal["progress"], 0.001)
	assert.Equal(t, "active", goal["status"])

	status, envelope = client.call(http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope.Data.([]any), 2, "25 and 50 milestones")

	rank := 1
	status, envelope = client.call(http.MethodPut, fmt.Sprintf("/api/goals/%d/rank", goalID), rankRequest{Rank: &rank})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), envelope.Data.(map[string]any)["rank"])

	status, _ = client.call(http.MethodDelete, fmt.Sprintf("/api/goals/%d", goalID), nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope = client.call(http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, envelope.Data, "milestone records cleared with the goal")
}
