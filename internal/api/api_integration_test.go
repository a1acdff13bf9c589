//go:build integration

// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "txledger/internal"
	"txledger/internal/api/types"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

func TestMain(m *testing.M) {
	// Point DB_NAME at a disposable database before running.
	setupEnvVars()

	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	testServer = httptest.NewServer(testApp.HTTPHandler)

	code := m.Run()

	testServer.Close()
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// setupEnvVars fills in defaults for anything CI did not provide.
func setupEnvVars() {
	defaults := map[string]string{
		"SERVER_PORT":         "8080",
		"DB_HOST":             "localhost",
		"DB_PORT":             "5432",
		"DB_USER":             "user",
		"DB_PASSWORD":         "password",
		"DB_NAME":             "ledgerdb_test",
		"DB_SSLMODE":          "disable",
		"DB_AUTO_MIGRATE":     "true",
		"JWT_SECRET":          "integration-secret-integration-secret",
		"RATE_LIMIT_REQUESTS": "0",
	}
	for k, v := range defaults {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
}

// clearDatabase truncates every table so each test starts empty.
func clearDatabase(t *testing.T) {
	// transactions references users, so it goes first.
	tables := []string{"transactions", "users"}
	for _, table := range tables {
		_, err := testApp.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE;", table))
		require.NoError(t, err, "Failed to truncate table %s", table)
	}
}

// makeRequest sends a request to the test server, optionally with a bearer token.
func makeRequest(t *testing.T, method, path, token string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

// registerAndLogin creates an account and returns its access token.
func registerAndLogin(t *testing.T, email string) string {
	creds := fmt.Sprintf(`{"email": %q, "password": "Sup3rSecret"}`, email)

	resp, body := makeRequest(t, http.MethodPost, "/auth/register", "", strings.NewReader(creds))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = makeRequest(t, http.MethodPost, "/auth/login", "", strings.NewReader(creds))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var tokens types.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(body), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)
	return tokens.AccessToken
}

func createTransaction(t *testing.T, token, amount, txType, timestamp string) types.TransactionResponse {
	payload := fmt.Sprintf(`{"amount": %s, "type": %q, "description": "it", "timestamp": %q}`, amount, txType, timestamp)
	resp, body := makeRequest(t, http.MethodPost, "/transactions", token, strings.NewReader(payload))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var tx types.TransactionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &tx))
	return tx
}

func TestAuthIntegration(t *testing.T) {
	clearDatabase(t)

	t.Run("RegisterAndMe", func(t *testing.T) {
		token := registerAndLogin(t, "Alice@Example.com")

		resp, body := makeRequest(t, http.MethodGet, "/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var me types.UserResponse
		require.NoError(t, json.Unmarshal([]byte(body), &me))
		assert.Equal(t, "alice@example.com", me.Email)
		assert.NotEqual(t, uuid.Nil, me.ID)
		assert.NotContains(t, body, "password")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/auth/register", "",
			strings.NewReader(`{"email": "alice@example.com", "password": "Sup3rSecret"}`))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, body, "email already registered")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodPost, "/auth/login", "",
			strings.NewReader(`{"email": "alice@example.com", "password": "Wr0ngSecret"}`))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("Refresh", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/auth/login", "",
			strings.NewReader(`{"email": "alice@example.com", "password": "Sup3rSecret"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var tokens types.TokenResponse
		require.NoError(t, json.Unmarshal([]byte(body), &tokens))

		resp, _ = makeRequest(t, http.MethodPost, "/auth/refresh", "",
			strings.NewReader(fmt.Sprintf(`{"refresh_token": %q}`, tokens.RefreshToken)))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// An access token is not a refresh token.
		resp, _ = makeRequest(t, http.MethodPost, "/auth/refresh", "",
			strings.NewReader(fmt.Sprintf(`{"refresh_token": %q}`, tokens.AccessToken)))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTransactionsIntegration(t *testing.T) {
	clearDatabase(t)
	token := registerAndLogin(t, "ledger@example.com")

	credit := createTransaction(t, token, `"100.01"`, "credit", "2024-01-10T09:00:00Z")
	debit := createTransaction(t, token, `40.5`, "debit", "2024-02-01T12:30:00Z")

	t.Run("AmountsRenderedWithTwoDecimals", func(t *testing.T) {
		assert.Equal(t, "100.01", credit.Amount)
		assert.Equal(t, "40.50", debit.Amount)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/transactions?page=1&limit=10", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page types.PaginatedResponse[types.TransactionResponse]
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		assert.EqualValues(t, 2, page.Total)
		assert.Equal(t, 1, page.Pages)
		require.Len(t, page.Items, 2)
		assert.Equal(t, debit.ID, page.Items[0].ID)
		assert.Equal(t, credit.ID, page.Items[1].ID)
	})

	t.Run("ListFiltered", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/transactions?type=credit&min_amount=50", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page types.PaginatedResponse[types.TransactionResponse]
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, credit.ID, page.Items[0].ID)
	})

	t.Run("Summary", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/transactions/summary", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summary types.SummaryResponse
		require.NoError(t, json.Unmarshal([]byte(body), &summary))
		assert.Equal(t, "100.01", summary.TotalCredits)
		assert.Equal(t, "40.50", summary.TotalDebits)
		assert.Equal(t, "59.51", summary.CurrentBalance)
		assert.EqualValues(t, 2, summary.TransactionCount)

		avg, err := decimal.NewFromString(summary.AvgTransaction)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("70.26").Equal(avg), "avg was %s", summary.AvgTransaction)
	})

	t.Run("OtherUserCannotSeeTransaction", func(t *testing.T) {
		other := registerAndLogin(t, "intruder@example.com")

		resp, _ := makeRequest(t, http.MethodGet, "/transactions/"+credit.ID.String(), other, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = makeRequest(t, http.MethodDelete, "/transactions/"+credit.ID.String(), other, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("GetAndDelete", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/transactions/"+credit.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, credit.ID.String())

		resp, _ = makeRequest(t, http.MethodDelete, "/transactions/"+credit.ID.String(), token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = makeRequest(t, http.MethodGet, "/transactions/"+credit.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/transactions", token,
			strings.NewReader(`{"amount": -1, "type": "credit"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, body, "amount")

		resp, body = makeRequest(t, http.MethodPost, "/transactions", token,
			strings.NewReader(`{"amount": "1.005", "type": "credit"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, body, "2 decimal places")
	})

	t.Run("RequiresToken", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodGet, "/transactions", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
