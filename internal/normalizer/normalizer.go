// Package normalizer flattens an uploaded spreadsheet into the ordered
// sequence of classification inputs, one per usable GL row.
package normalizer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tax-classifier-backend/internal/inspector"
)

// ErrNoUsableColumn is returned when no account-name column can be resolved.
var ErrNoUsableColumn = errors.New("no usable description column")

// DirectTextLimit caps synchronous direct-analysis batches. Inputs past the
// cap are truncated, not rejected.
const DirectTextLimit = 100

// Input is one normalized transaction row. RowIndex runs over the emitted
// sequence and is the index predictions are matched back against.
type Input struct {
	RowIndex    int    `json:"row_index"`
	SheetName   string `json:"sheet_name"`
	AccountName string `json:"account_name"`
}

// Options selects which sheet(s) to normalize.
type Options struct {
	// Sheet is the chosen sheet name. Empty means the file's default sheet.
	Sheet string
	// CombineAll concatenates every sheet in sheet order instead.
	CombineAll bool
}

// columnAliases are the recognized account/description header names, matched
// case-insensitively.
var columnAliases = []string{
	"account_name",
	"description",
	"account_description",
	"nama_akun",
	"deskripsi",
	"keterangan",
	"uraian",
}

// Normalize reads the file and returns classification inputs in sheet order,
// then row order. Rows with a blank description are skipped and do not count.
func Normalize(data []byte, filename string, opts Options) ([]Input, error) {
	sheets, err := readSheets(data, filename)
	if err != nil {
		return nil, err
	}

	selected := sheets
	if !opts.CombineAll {
		name := opts.Sheet
		if name == "" {
			name = defaultSheet(sheets)
		}
		found := false
		for _, s := range sheets {
			if s.name == name {
				selected = []rawSheet{s}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found", opts.Sheet)
		}
	}

	var inputs []Input
	usable := false
	for _, sheet := range selected {
		col, ok := resolveColumn(sheet)
		if !ok {
			continue
		}
		usable = true
		for _, row := range sheet.rows {
			if col >= len(row) {
				continue
			}
			name := strings.TrimSpace(row[col])
			if name == "" {
				continue
			}
			inputs = append(inputs, Input{
				RowIndex:    len(inputs),
				SheetName:   sheet.name,
				AccountName: name,
			})
		}
	}

	if !usable {
		return nil, ErrNoUsableColumn
	}
	return inputs, nil
}

// CapTexts truncates a direct-analysis batch to the policy limit.
func CapTexts(texts []string) []string {
	if len(texts) > DirectTextLimit {
		return texts[:DirectTextLimit]
	}
	return texts
}

type rawSheet struct {
	name    string
	columns []string
	rows    [][]string
}

func defaultSheet(sheets []rawSheet) string {
	for _, s := range sheets {
		if len(s.rows) > 0 {
			return s.name
		}
	}
	if len(sheets) > 0 {
		return sheets[0].name
	}
	return ""
}

// resolveColumn picks the description column: alias match first, then the
// first text-typed column judged from the data cells.
func resolveColumn(s rawSheet) (int, bool) {
	for _, alias := range columnAliases {
		for i, col := range s.columns {
			if strings.EqualFold(strings.TrimSpace(col), alias) {
				return i, true
			}
		}
	}

	for i := range s.columns {
		if isTextColumn(s.rows, i) {
			return i, true
		}
	}
	return 0, false
}

// isTextColumn reports whether most non-blank cells in the column fail to
// parse as numbers.
func isTextColumn(rows [][]string, col int) bool {
	text, total := 0, 0
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		total++
		if _, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err != nil {
			text++
		}
	}
	return total > 0 && text*2 > total
}

func readSheets(data []byte, filename string) ([]rawSheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(data)
	case ".xlsx", ".xls":
		return readExcel(data)
	default:
		return nil, fmt.Errorf("%w: %s", inspector.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func readCSV(data []byte) ([]rawSheet, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.Comma = inspector.DetectDelimiter(data)

	sheet := rawSheet{name: "Sheet1"}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", inspector.ErrCorruptFile, err)
		}
		if blank(row) {
			continue
		}
		if sheet.columns == nil {
			sheet.columns = row
			continue
		}
		sheet.rows = append(sheet.rows, row)
	}
	return []rawSheet{sheet}, nil
}

func readExcel(data []byte) ([]rawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", inspector.ErrCorruptFile, err)
	}
	defer f.Close()

	var sheets []rawSheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sheet := rawSheet{name: name}
		for _, row := range rows {
			if blank(row) {
				continue
			}
			if sheet.columns == nil {
				sheet.columns = row
				continue
			}
			sheet.rows = append(sheet.rows, row)
		}
		sheets = append(sheets, sheet)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no readable sheets", inspector.ErrCorruptFile)
	}
	return sheets, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
