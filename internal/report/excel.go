package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"deposit-radar/pkg/models"
)

const (
	depositsSheet = "USD Deposits"
	sitesSheet    = "Site Status"
)

// Rate tier fills, percent points. The top tier marks the highest USD
// offers, the mid tier everything still above the market baseline.
const (
	topTierRate = 10.0
	midTierRate = 5.0
)

// WriteExcel renders the workbook: a deposits sheet with rate tier
// highlighting and a site status sheet mirroring the diagnostics CSV.
func WriteExcel(records []models.DepositRecord, statuses []models.SiteStatus, filename string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", depositsSheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(sitesSheet); err != nil {
		return "", err
	}

	if err := writeDepositsSheet(f, records); err != nil {
		return "", fmt.Errorf("deposits sheet: %w", err)
	}
	if err := writeSitesSheet(f, statuses); err != nil {
		return "", fmt.Errorf("status sheet: %w", err)
	}

	path := filename
	if err := f.SaveAs(path); err != nil {
		path = nextFreePath(filename)
		if err := f.SaveAs(path); err != nil {
			return "", fmt.Errorf("save %s: %w", filename, err)
		}
	}
	return path, nil
}

func writeDepositsSheet(f *excelize.File, records []models.DepositRecord) error {
	if len(records) == 0 {
		return writeEmptyNote(f, depositsSheet, "No USD deposits found")
	}

	if err := f.SetSheetRow(depositsSheet, "A1", &depositHeaders); err != nil {
		return err
	}

	widths := newColumnWidths(depositHeaders)
	for i, r := range records {
		row := i + 2
		term := any("")
		if r.TermMonths > 0 {
			term = r.TermMonths
		}
		rate := any("N/A")
		if r.RateAvailable {
			// fraction so the 0.0% number format renders it
			rate = r.Rate / 100
		}
		cells := []any{r.Bank, r.Site, r.Name, rate, term, r.Currency, r.Conditions, r.SourceURL}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(depositsSheet, cell, &cells); err != nil {
			return err
		}
		widths.observe([]string{r.Bank, r.Site, r.Name, FormatRate(r), fmt.Sprint(term), r.Currency, r.Conditions, "Open"})

		rateCell, _ := excelize.CoordinatesToCellName(4, row)
		style, err := rateStyle(f, r)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(depositsSheet, rateCell, rateCell, style); err != nil {
			return err
		}

		if strings.HasPrefix(r.SourceURL, "http://") || strings.HasPrefix(r.SourceURL, "https://") {
			urlCell, _ := excelize.CoordinatesToCellName(8, row)
			if err := f.SetCellHyperLink(depositsSheet, urlCell, r.SourceURL, "External"); err != nil {
				return err
			}
			if err := f.SetCellValue(depositsSheet, urlCell, "Open"); err != nil {
				return err
			}
			linkStyle, err := f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Color: "0563C1", Underline: "single"},
			})
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(depositsSheet, urlCell, urlCell, linkStyle); err != nil {
				return err
			}
		}
	}

	if err := styleHeader(f, depositsSheet, len(depositHeaders)); err != nil {
		return err
	}
	if err := addTable(f, depositsSheet, "DepositsUSD", len(depositHeaders), len(records)+1); err != nil {
		return err
	}
	return widths.apply(f, depositsSheet, nil)
}

func writeSitesSheet(f *excelize.File, statuses []models.SiteStatus) error {
	if len(statuses) == 0 {
		return writeEmptyNote(f, sitesSheet, "No sites processed")
	}

	if err := f.SetSheetRow(sitesSheet, "A1", &siteHeaders); err != nil {
		return err
	}

	widths := newColumnWidths(siteHeaders)
	for i, s := range statuses {
		row := i + 2
		status := any("")
		if s.HTTPStatus != 0 {
			status = s.HTTPStatus
		}
		cells := []any{s.InputURL, s.Domain, s.Success(), status, s.Signals, s.Result, s.Note, s.RowsFound}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sitesSheet, cell, &cells); err != nil {
			return err
		}
		widths.observe([]string{
			s.InputURL, s.Domain, fmt.Sprint(s.Success()), fmt.Sprint(status),
			s.Signals, s.Result, s.Note, fmt.Sprint(s.RowsFound),
		})

		resultCell, _ := excelize.CoordinatesToCellName(6, row)
		style, err := resultStyle(f, s.Result)
		if err != nil {
			return err
		}
		if style != 0 {
			if err := f.SetCellStyle(sitesSheet, resultCell, resultCell, style); err != nil {
				return err
			}
		}
	}

	if err := styleHeader(f, sitesSheet, len(siteHeaders)); err != nil {
		return err
	}
	if err := addTable(f, sitesSheet, "SiteStatus", len(siteHeaders), len(statuses)+1); err != nil {
		return err
	}
	// HTTPStatus and RowsFound stay narrow
	return widths.apply(f, sitesSheet, map[int]bool{4: true, 8: true})
}

func writeEmptyNote(f *excelize.File, sheet, note string) error {
	if err := f.SetCellValue(sheet, "A1", note); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "808080"},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", "A1", style)
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(columns, 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// rateStyle returns the cell style for a rate value: percent format with
// a background fill keyed to the rate tier, gray for unavailable.
func rateStyle(f *excelize.File, r models.DepositRecord) (int, error) {
	if !r.RateAvailable {
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		})
	}

	numFmt := "0.0%"
	style := &excelize.Style{
		CustomNumFmt: &numFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
	}
	switch {
	case r.Rate > topTierRate:
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1}
		style.Font = &excelize.Font{Bold: true}
	case r.Rate > midTierRate:
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{"FFEB9C"}, Pattern: 1}
	}
	return f.NewStyle(style)
}

func resultStyle(f *excelize.File, result string) (int, error) {
	switch {
	case strings.Contains(result, "OK"):
		return f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "27AE60"}})
	case strings.Contains(result, "ERROR"), strings.Contains(result, "BLOCKED"):
		return f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "E74C3C"}})
	case strings.Contains(result, "NO_"), strings.Contains(result, "JS_"):
		return f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "F39C12"}})
	}
	return 0, nil
}

func addTable(f *excelize.File, sheet, name string, columns, rows int) error {
	last, _ := excelize.CoordinatesToCellName(columns, rows)
	stripes := true
	return f.AddTable(sheet, &excelize.Table{
		Range:          "A1:" + last,
		Name:           name,
		StyleName:      "TableStyleMedium9",
		ShowRowStripes: &stripes,
	})
}

// columnWidths sizes columns to their widest content, within limits.
type columnWidths struct {
	max []int
}

func newColumnWidths(headers []string) *columnWidths {
	w := &columnWidths{max: make([]int, len(headers))}
	w.observe(headers)
	return w
}

func (w *columnWidths) observe(values []string) {
	for i, v := range values {
		if i >= len(w.max) {
			break
		}
		if n := len([]rune(v)); n > w.max[i] {
			w.max[i] = n
		}
	}
}

func (w *columnWidths) apply(f *excelize.File, sheet string, compact map[int]bool) error {
	for i, n := range w.max {
		col := i + 1
		limit := 60
		if compact[col] {
			limit = 22
		}
		width := n + 2
		if width > limit {
			width = limit
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}
