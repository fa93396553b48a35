package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"deposit-radar/pkg/models"
)

// utf8BOM makes Excel open the CSVs with the right encoding; several
// deposit names are Cyrillic.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatRate renders a rate for the CSV, "16.5%" or "N/A" when the rate
// is unavailable.
func FormatRate(r models.DepositRecord) string {
	if !r.RateAvailable {
		return "N/A"
	}
	return strconv.FormatFloat(r.Rate, 'g', -1, 64) + "%"
}

// WriteDepositsCSV writes the plain table export, one row per record.
func WriteDepositsCSV(records []models.DepositRecord, filename string) (string, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, depositHeaders)

	for _, r := range records {
		term := ""
		if r.TermMonths > 0 {
			term = strconv.Itoa(r.TermMonths)
		}
		rows = append(rows, []string{
			r.Bank, r.Site, r.Name, FormatRate(r), term, r.Currency, r.Conditions, r.SourceURL,
		})
	}

	return writeCSVFile(filename, rows)
}

// WriteSitesCSV writes the diagnostics export, one row per configured
// URL regardless of outcome.
func WriteSitesCSV(statuses []models.SiteStatus, filename string) (string, error) {
	rows := make([][]string, 0, len(statuses)+1)
	rows = append(rows, siteHeaders)

	for _, s := range statuses {
		status := ""
		if s.HTTPStatus != 0 {
			status = strconv.Itoa(s.HTTPStatus)
		}
		rows = append(rows, []string{
			s.InputURL, s.Domain, strconv.FormatBool(s.Success()), status,
			s.Signals, s.Result, s.Note, strconv.Itoa(s.RowsFound),
		})
	}

	return writeCSVFile(filename, rows)
}

// writeCSVFile writes rows to filename, falling back to a free sibling
// path when the target cannot be created.
func writeCSVFile(filename string, rows [][]string) (string, error) {
	path := filename
	file, err := os.Create(path)
	if err != nil {
		path = nextFreePath(filename)
		file, err = os.Create(path)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", filename, err)
		}
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}
