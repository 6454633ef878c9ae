package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vehicore/config"
	"github.com/example/vehicore/models"
	"github.com/example/vehicore/services"
	"github.com/example/vehicore/state"
	"github.com/example/vehicore/usage"
)

func newTestApp(t *testing.T, handler http.HandlerFunc) *state.App {
	t.Helper()
	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Prefix:           "/api",
		APIBaseURL:       backend.URL,
		DefaultRangeDays: 30,
		MaxRangeDays:     1830,
		DefaultLanguage:  "en",
		RequestTimeout:   time.Second,
	}
	config.AppConfig = cfg

	db, err := models.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	db.Exec("DELETE FROM stored_values")
	return state.NewApp(cfg, services.NewVehiCoreService(), models.NewStorage(db))
}

func TestServer_Wiring(t *testing.T) {
	e := newServer(newTestApp(t, func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/keys", http.StatusUnauthorized},
		{"/api/route", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.status, rec.Code, tt.path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), tt.path)
	}
}

func TestAcknowledgeWhenSaved(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"n","name":"ci","apiKey":"vk_live_secret"}`))
	})
	_, err := app.Keys.Create(context.Background(), "ci")
	require.NoError(t, err)

	var out bytes.Buffer
	for _, input := range []string{"", "\n", "yes\n"} {
		assert.False(t, acknowledgeWhenSaved(bufio.NewReader(strings.NewReader(input)), &out, app.Keys), "input %q", input)
		require.NotNil(t, app.Keys.Snapshot().NewlyCreated, "input %q", input)
	}

	assert.True(t, acknowledgeWhenSaved(bufio.NewReader(strings.NewReader("Saved\n")), &out, app.Keys))
	assert.Nil(t, app.Keys.Snapshot().NewlyCreated)
}

func TestCLIError(t *testing.T) {
	err := cliError(&services.APIError{StatusCode: http.StatusUnauthorized})
	assert.Contains(t, err.Error(), "vehicore login")

	other := &services.APIError{StatusCode: http.StatusBadGateway, Message: "down"}
	assert.Equal(t, error(other), cliError(other))
}

func TestPrintUsage(t *testing.T) {
	view := usage.View{
		From:          "2024-01-01",
		To:            "2024-01-03",
		SelectedKeyID: "a",
		KeyOptions:    []usage.KeyOption{{ID: "a", Label: "prod (vk_live_...)"}},
		Series: []usage.SeriesPoint{
			{Date: "2024-01-01", Credits: 0},
			{Date: "2024-01-02", Credits: 50},
		},
		TotalCreditsInRange: 50,
		ProductStats:        []usage.ProductCreditRow{{Product: "ocr", Remaining: 40, Purchased: 50, Used: 10, Total: 50}},
		Totals:              usage.Totals{TotalPurchasedCredits: 50, TotalRemainingCredits: 40, PurchasesCount: 1, KeysCount: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf, view))
	out := buf.String()
	assert.Contains(t, out, "2024-01-01 to 2024-01-03, prod (vk_live_...)")
	assert.Contains(t, out, "Purchased: 50  Remaining: 40  Purchases: 1  Keys: 1")
	assert.Contains(t, out, "ocr")
	assert.Contains(t, out, "2024-01-02")
	assert.Equal(t, 1, strings.Count(out, "2024-01-01"))
}
