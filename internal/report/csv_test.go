package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deposit-radar/pkg/models"
)

func sampleRecords() []models.DepositRecord {
	return []models.DepositRecord{
		{Bank: "Demo Bank", Site: "demo-bank.uz", Name: "Premium", Rate: 16.5, RateAvailable: true,
			TermMonths: 12, Currency: "USD", SourceURL: "https://demo-bank.uz/deposits"},
		{Bank: "Demo Bank", Site: "demo-bank.uz", Name: "Saver", Rate: 7, RateAvailable: true,
			TermMonths: 6, Currency: "USD", Conditions: "min 100 USD"},
		{Bank: "offline-bank.uz", Site: "offline-bank.uz", Name: "-", Currency: "USD"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteDepositsCSVRoundTrip(t *testing.T) {
	records := sampleRecords()
	path := filepath.Join(t.TempDir(), "result.csv")

	written, err := WriteDepositsCSV(records, path)
	require.NoError(t, err)
	require.Equal(t, path, written)

	rows := readCSV(t, path)
	require.Len(t, rows, len(records)+1)
	require.Equal(t, depositHeaders, rows[0])

	type tuple struct {
		bank, rate, term string
	}
	var got []tuple
	for _, row := range rows[1:] {
		got = append(got, tuple{bank: row[0], rate: row[3], term: row[4]})
	}

	var want []tuple
	for _, r := range records {
		term := ""
		if r.TermMonths > 0 {
			term = strconv.Itoa(r.TermMonths)
		}
		want = append(want, tuple{bank: r.Bank, rate: FormatRate(r), term: term})
	}
	assert.Equal(t, want, got)

	assert.Equal(t, "16.5%", rows[1][3])
	assert.Equal(t, "N/A", rows[3][3])
}

func TestWriteSitesCSVOneRowPerURL(t *testing.T) {
	statuses := []models.SiteStatus{
		{InputURL: "https://a.uz", Domain: "a.uz", HTTPStatus: 200, Result: models.ResultOK,
			RowsFound: 3, Timestamp: time.Now()},
		{InputURL: "https://b.uz", Domain: "b.uz", HTTPStatus: 403, Signals: "status=403",
			Result: models.ResultBlocked, Note: "status=403", Timestamp: time.Now()},
		{InputURL: "https://c.uz", Domain: "c.uz", Result: models.ResultError,
			Note: "dial tcp: connection refused", Timestamp: time.Now()},
	}

	path := filepath.Join(t.TempDir(), "sites_status.csv")
	_, err := WriteSitesCSV(statuses, path)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, len(statuses)+1)
	require.Equal(t, siteHeaders, rows[0])

	assert.Equal(t, []string{"https://a.uz", "a.uz", "true", "200", "", "OK", "", "3"}, rows[1])
	assert.Equal(t, "false", rows[2][2])
	assert.Equal(t, "false", rows[3][2])
	assert.Equal(t, "", rows[3][3], "no HTTP status when the request never completed")
}

func TestCSVIdempotent(t *testing.T) {
	dir := t.TempDir()
	records := sampleRecords()

	p1, err := WriteDepositsCSV(records, filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	p2, err := WriteDepositsCSV(records, filepath.Join(dir, "b.csv"))
	require.NoError(t, err)

	d1, err := os.ReadFile(p1)
	require.NoError(t, err)
	d2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestNextFreePath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "result.csv")

	require.NoError(t, os.WriteFile(base, []byte("x"), 0644))
	require.Equal(t, filepath.Join(dir, "result_1.csv"), nextFreePath(base))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "result_1.csv"), []byte("x"), 0644))
	require.Equal(t, filepath.Join(dir, "result_2.csv"), nextFreePath(base))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "16.5%", FormatRate(models.DepositRecord{Rate: 16.5, RateAvailable: true}))
	assert.Equal(t, "7%", FormatRate(models.DepositRecord{Rate: 7, RateAvailable: true}))
	assert.Equal(t, "N/A", FormatRate(models.DepositRecord{}))
}

func TestWriteCSVFileEmptyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	_, err := WriteDepositsCSV(nil, path)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 1, "header only")
	assert.True(t, strings.HasPrefix(strings.Join(rows[0], ","), "Bank,"))
}
