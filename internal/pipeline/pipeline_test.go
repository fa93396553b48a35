package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deposit-radar/internal/config"
	"deposit-radar/internal/urlfile"
	"deposit-radar/pkg/models"
)

const bankPage = `<html><head><title>Demo Bank</title></head><body>
<h1>Demo Bank</h1>
<table>
<tr><th>Deposit</th><th>Currency</th><th>Annual rate</th></tr>
<tr><td>Premium</td><td>USD</td><td>16.5% — 12 months</td></tr>
</table>
</body></html>`

func testConfig(t *testing.T, urls ...string) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()

	input := filepath.Join(dir, "banks_urls.txt")
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(urls, "\n")), 0644))

	cfg := config.Default()
	cfg.IO.InputFile = input
	cfg.IO.ExcelFile = filepath.Join(dir, "result.xlsx")
	cfg.IO.CSVFile = filepath.Join(dir, "result.csv")
	cfg.IO.SitesFile = filepath.Join(dir, "sites_status.csv")
	return cfg
}

func TestRunMixedOutcomes(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(bankPage))
	}))
	defer okSrv.Close()

	brokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer brokenSrv.Close()

	cfg := testConfig(t, okSrv.URL, brokenSrv.URL)
	summary, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)

	// diagnostics: exactly one entry per configured URL, in order
	require.Len(t, summary.Statuses, 2)
	assert.Equal(t, okSrv.URL, summary.Statuses[0].InputURL)
	assert.True(t, summary.Statuses[0].Success())
	assert.Greater(t, summary.Statuses[0].RowsFound, 0)

	assert.False(t, summary.Statuses[1].Success())
	assert.Equal(t, models.ResultError, summary.Statuses[1].Result)
	assert.Equal(t, http.StatusInternalServerError, summary.Statuses[1].HTTPStatus)

	// the failed site still owns a row in the consolidated output
	require.NotEmpty(t, summary.Records)
	var available, placeholders int
	for _, r := range summary.Records {
		if r.RateAvailable {
			available++
			assert.GreaterOrEqual(t, r.Rate, 0.0)
		} else {
			placeholders++
		}
	}
	assert.Greater(t, available, 0)
	assert.Equal(t, 1, placeholders)

	var premium *models.DepositRecord
	for i := range summary.Records {
		if r := &summary.Records[i]; r.RateAvailable && r.Rate == 16.5 && r.TermMonths == 12 {
			premium = r
			break
		}
	}
	require.NotNil(t, premium, "expected a 16.5%%/12mo record, got %+v", summary.Records)

	for _, a := range summary.Artifacts {
		require.NoError(t, a.Err)
		_, statErr := os.Stat(a.Path)
		assert.NoError(t, statErr, a.Kind)
	}
}

func TestRunUnreachableSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := testConfig(t, url)
	summary, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Statuses, 1)
	assert.False(t, summary.Statuses[0].Success())
	assert.Equal(t, models.ResultError, summary.Statuses[0].Result)
	assert.NotEmpty(t, summary.Statuses[0].Note)
	assert.Zero(t, summary.Statuses[0].HTTPStatus)

	assert.Zero(t, summary.Offers())
	require.Len(t, summary.Records, 1)
	assert.False(t, summary.Records[0].RateAvailable)
}

func TestRunBlockedSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("access denied"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	summary, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Statuses, 1)
	assert.Equal(t, models.ResultBlocked, summary.Statuses[0].Result)
	assert.Contains(t, summary.Statuses[0].Signals, "status=403")
}

func TestRunEmptyInputFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.IO.InputFile = filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(cfg.IO.InputFile, nil, 0644))

	_, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.ErrorIs(t, err, urlfile.ErrEmpty)
}

func TestRunMissingInputFile(t *testing.T) {
	cfg := testConfig(t, "https://never-fetched.uz")
	cfg.IO.InputFile = filepath.Join(t.TempDir(), "nope.txt")

	_, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunNoMatchClassification(t *testing.T) {
	big := strings.Repeat("<p>nothing about deposits here</p>", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>" + big + "</body></html>"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	summary, err := New(cfg, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Statuses, 1)
	assert.Equal(t, models.ResultNoUSDMatch, summary.Statuses[0].Result)
}

func TestRunIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(bankPage))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	p := New(cfg, zaptest.NewLogger(t))

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.IO.CSVFile)
	require.NoError(t, err)
	firstSites, err := os.ReadFile(cfg.IO.SitesFile)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.IO.CSVFile)
	require.NoError(t, err)
	secondSites, err := os.ReadFile(cfg.IO.SitesFile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSites, secondSites)
}
