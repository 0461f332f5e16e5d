package intake

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/codelie14/zillasec/internal/interfaces"
)

// Supported file types
const (
	TypeCSV  = "csv"
	TypeXLSX = "xlsx"
	TypeXLSM = "xlsm"
	TypeXLS  = "xls"
)

// ParseWarning is a non-fatal problem found while reading a row
type ParseWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Table is a decoded spreadsheet: a header and its rows in input order
type Table struct {
	Name     string
	Type     string
	Encoding string
	Columns  []string
	Rows     []map[string]string
	Warnings []ParseWarning
}

// FileType returns the lowercase extension of name without the dot
func FileType(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ReadTable decodes a CSV or Excel workbook.
// Legacy .xls workbooks and unknown extensions return ErrUnsupportedFileType.
func ReadTable(name string, data []byte) (*Table, error) {
	fileType := FileType(name)

	var (
		table *Table
		err   error
	)
	switch fileType {
	case TypeCSV:
		table, err = readCSV(data)
	case TypeXLSX, TypeXLSM:
		table, err = readWorkbook(data)
	case TypeXLS:
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", interfaces.ErrUnsupportedFileType)
	default:
		return nil, fmt.Errorf("%w: %q", interfaces.ErrUnsupportedFileType, fileType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	table.Name = name
	table.Type = fileType
	return table, nil
}

func readCSV(data []byte) (*Table, error) {
	decoded, encoding, err := DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	table := &Table{Encoding: encoding, Columns: trimHeader(header)}

	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			table.Warnings = append(table.Warnings, ParseWarning{Row: rowNum, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		table.addRow(rowNum, row, true)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("file contains no data rows")
	}
	return table, nil
}

func readWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		table := &Table{Encoding: "xlsx", Columns: trimHeader(rows[0])}
		for i, row := range rows[1:] {
			if isBlank(row) {
				continue
			}
			// excelize drops trailing empty cells, so short rows are expected here
			table.addRow(i+2, row, false)
		}
		if len(table.Rows) == 0 {
			return nil, fmt.Errorf("file contains no data rows")
		}
		return table, nil
	}

	return nil, fmt.Errorf("empty file: no header row found")
}

func (t *Table) addRow(rowNum int, row []string, warnShort bool) {
	width := len(t.Columns)
	switch {
	case len(row) < width:
		if warnShort {
			t.Warnings = append(t.Warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), width),
			})
		}
		padded := make([]string, width)
		copy(padded, row)
		row = padded
	case len(row) > width:
		t.Warnings = append(t.Warnings, ParseWarning{
			Row:     rowNum,
			Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), width),
		})
		row = row[:width]
	}

	record := make(map[string]string, width)
	for i, column := range t.Columns {
		if _, dup := record[column]; dup {
			continue
		}
		record[column] = row[i]
	}
	t.Rows = append(t.Rows, record)
}

func trimHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
