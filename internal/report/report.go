// Package report renders the normalized records and per-site statuses
// into the three run artifacts: a styled Excel workbook, a plain deposits
// CSV and a diagnostics CSV. Artifacts are written independently; one
// failing does not block the others.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deposit-radar/internal/config"
	"deposit-radar/pkg/models"
)

// Columns shared by the deposits sheet and the deposits CSV.
var depositHeaders = []string{"Bank", "Site", "Deposit", "AnnualRate", "TermMonths", "Currency", "Conditions", "SourceURL"}

// Columns of the site status sheet and the diagnostics CSV.
var siteHeaders = []string{"InputURL", "Domain", "Success", "HTTPStatus", "Signals", "Result", "Note", "RowsFound"}

// Artifact records the outcome of writing one output file.
type Artifact struct {
	Kind string
	Path string
	Err  error
}

// Writer renders all run artifacts
type Writer struct {
	Config *config.IOConfig
}

// NewWriter creates a new report writer
func NewWriter(cfg *config.IOConfig) *Writer {
	return &Writer{
		Config: cfg,
	}
}

// WriteAll writes every artifact and reports each outcome. Paths in the
// result may differ from the configured ones when a target file was busy
// and a numbered sibling was used instead.
func (w *Writer) WriteAll(records []models.DepositRecord, statuses []models.SiteStatus) []Artifact {
	excelPath, excelErr := WriteExcel(records, statuses, w.Config.ExcelFile)
	csvPath, csvErr := WriteDepositsCSV(records, w.Config.CSVFile)
	sitesPath, sitesErr := WriteSitesCSV(statuses, w.Config.SitesFile)

	return []Artifact{
		{Kind: "excel", Path: excelPath, Err: excelErr},
		{Kind: "deposits_csv", Path: csvPath, Err: csvErr},
		{Kind: "sites_csv", Path: sitesPath, Err: sitesErr},
	}
}

// nextFreePath picks a sibling path that does not exist yet, for targets
// that are locked by another program (typically the workbook left open
// in Excel).
func nextFreePath(filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 1; i <= 100; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}

	return fmt.Sprintf("%s_%d%s", stem, time.Now().Unix(), ext)
}
