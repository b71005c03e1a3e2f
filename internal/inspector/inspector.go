// Package inspector parses an uploaded spreadsheet, discovers its sheets and
// builds a bounded preview. It degrades gracefully on data-quality issues
// (empty sheets, missing headers become warnings) and fails hard only on
// structurally unreadable input.
package inspector

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for file extensions outside csv/xlsx/xls.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrCorruptFile is returned when the file cannot be parsed at all.
	ErrCorruptFile = errors.New("corrupt file")
)

// PreviewRowLimit caps preview.rows regardless of file size.
const PreviewRowLimit = 10

// SheetDescriptor describes one sheet's structure. For CSV input there is
// exactly one synthetic sheet named "Sheet1".
type SheetDescriptor struct {
	Name     string   `json:"name"`
	Index    int      `json:"index"`
	RowCount int      `json:"n_rows"`
	ColCount int      `json:"n_cols"`
	Columns  []string `json:"columns"`
}

// Preview is a bounded sample of the default sheet.
type Preview struct {
	SheetName string     `json:"sheet_name"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"n_rows_total"`
}

// InspectionResult is the full structural report for an upload.
type InspectionResult struct {
	FileType     string            `json:"file_type"`
	FileName     string            `json:"filename"`
	Sheets       []SheetDescriptor `json:"sheets"`
	DefaultSheet string            `json:"default_sheet"`
	Preview      Preview           `json:"preview"`
	Warnings     []string          `json:"warnings"`
}

// sheetSample holds what the streaming pass retained per sheet: structure
// plus at most PreviewRowLimit data rows.
type sheetSample struct {
	desc    SheetDescriptor
	preview [][]string
}

// Inspect parses file content and returns sheet structure, a capped preview
// and advisory warnings.
func Inspect(data []byte, filename string) (*InspectionResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return inspectCSV(data, filename)
	case ".xlsx", ".xls":
		return inspectExcel(data, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DetectDelimiter sniffs the CSV delimiter from the first KB of content.
func DetectDelimiter(data []byte) rune {
	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	if bytes.ContainsRune(sample, '\t') && !bytes.ContainsRune(sample, ',') {
		return '\t'
	}
	if bytes.ContainsRune(sample, ';') && !bytes.ContainsRune(sample, ',') {
		return ';'
	}
	return ','
}

func inspectCSV(data []byte, filename string) (*InspectionResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.Comma = DetectDelimiter(data)

	var warnings []string
	sample, err := sampleRows(func() ([]string, error) { return reader.Read() }, &warnings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	sample.desc.Name = "Sheet1"
	if sample.desc.RowCount == 0 {
		warnings = append(warnings, "Sheet 'Sheet1' has no data rows")
	}

	return &InspectionResult{
		FileType:     "csv",
		FileName:     filename,
		Sheets:       []SheetDescriptor{sample.desc},
		DefaultSheet: "Sheet1",
		Preview: Preview{
			SheetName: "Sheet1",
			Columns:   sample.desc.Columns,
			Rows:      sample.preview,
			TotalRows: sample.desc.RowCount,
		},
		Warnings: warnings,
	}, nil
}

func inspectExcel(data []byte, filename string) (*InspectionResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer f.Close()

	var (
		warnings []string
		samples  []sheetSample
	)

	for idx, name := range f.GetSheetList() {
		rows, err := f.Rows(name)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Error reading sheet '%s': %v", name, err))
			continue
		}

		next := func() ([]string, error) {
			if !rows.Next() {
				if err := rows.Error(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			return rows.Columns()
		}

		sample, err := sampleRows(next, &warnings)
		rows.Close()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Error reading sheet '%s': %v", name, err))
			continue
		}

		sample.desc.Name = name
		sample.desc.Index = idx
		if sample.desc.RowCount == 0 {
			warnings = append(warnings, fmt.Sprintf("Sheet '%s' has no data rows", name))
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no readable sheets", ErrCorruptFile)
	}

	// Default sheet: first one with data rows; if every sheet is empty, fall
	// back to the first and keep the warning.
	def := samples[0]
	for _, s := range samples {
		if s.desc.RowCount > 0 {
			def = s
			break
		}
	}

	descs := make([]SheetDescriptor, len(samples))
	for i, s := range samples {
		descs[i] = s.desc
	}

	return &InspectionResult{
		FileType:     "xlsx",
		FileName:     filename,
		Sheets:       descs,
		DefaultSheet: def.desc.Name,
		Preview: Preview{
			SheetName: def.desc.Name,
			Columns:   def.desc.Columns,
			Rows:      def.preview,
			TotalRows: def.desc.RowCount,
		},
		Warnings: warnings,
	}, nil
}

// sampleRows streams rows from next until EOF, keeping the header, counts and
// at most PreviewRowLimit data rows. The full sheet is never materialized.
func sampleRows(next func() ([]string, error), warnings *[]string) (sheetSample, error) {
	var s sheetSample

	// Header: first non-empty row.
	for {
		row, err := next()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return s, err
		}
		if isBlankRow(row) {
			continue
		}
		s.desc.Columns = normalizeHeader(row, warnings)
		s.desc.ColCount = len(s.desc.Columns)
		break
	}

	for {
		row, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s, err
		}
		if isBlankRow(row) {
			continue
		}
		if s.desc.RowCount < PreviewRowLimit {
			s.preview = append(s.preview, padRow(row, s.desc.ColCount))
		}
		s.desc.RowCount++
	}

	return s, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader trims header cells and synthesizes Col_N names for blanks.
func normalizeHeader(row []string, warnings *[]string) []string {
	cols := make([]string, len(row))
	synthesized := false
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			cell = fmt.Sprintf("Col_%d", i+1)
			synthesized = true
		}
		cols[i] = cell
	}
	if synthesized {
		*warnings = append(*warnings, "Column headers missing, synthesized as Col_N")
	}
	return cols
}

// padRow makes every preview row the same width as the header.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
