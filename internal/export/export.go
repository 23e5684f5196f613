package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/xuri/excelize/v2"
)

// Format is a supported export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for anything other than csv or xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

const sheetName = "Transactions"

var header = []string{"type", "category", "amount", "date", "description"}

// ParseFormat resolves the format query parameter; empty means csv
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the attachment name for an export taken at now
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("transactions-%s.%s", now.Format("20060102-150405"), f)
}

func row(tx *models.Transaction) []string {
	return []string{
		string(tx.Type),
		tx.Category,
		strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		tx.Date.Format(time.RFC3339),
		tx.Description,
	}
}

// Write encodes transactions in format to w
func Write(w io.Writer, format Format, txs []models.Transaction) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, txs)
	case FormatXLSX:
		return WriteXLSX(w, txs)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteCSV writes a header line and one line per transaction
func WriteCSV(w io.Writer, txs []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range txs {
		if err := writer.Write(row(&txs[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single sheet workbook with numeric amount cells
func WriteXLSX(w io.Writer, txs []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range txs {
		tx := &txs[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{string(tx.Type), tx.Category, tx.Amount, tx.Date.Format("2006-01-02"), tx.Description}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
