// Package parser decodes the two run inputs: the viewer-question sheet
// (CSV or XLSX) and the archive Q&A transcript text.
package parser

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/streamqa/reconcile/internal/model"
)

// ErrUnsupportedFormat reports an input file with an extension the tool
// cannot decode.
var ErrUnsupportedFormat = eris.New("parser: unsupported input format")

// The input sheet carries two leading rows (title and column header) before
// the data, and exactly eight data columns.
const (
	inputSkipRows = 2
	inputColumns  = 8
)

// ParseInput decodes the viewer-question sheet, dispatching on the file
// extension. Returns the accepted rows, per-row warnings, and a terminal
// error for undecodable input.
func ParseInput(filename string, data []byte) ([]model.InputQuestion, []string, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return ParseInputCSV(bytes.NewReader(data))
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		return ParseInputXLSX(data)
	default:
		return nil, nil, eris.Wrapf(ErrUnsupportedFormat, "parser: %s", filename)
	}
}

// ParseInputCSV decodes viewer-question rows from CSV. The first two rows
// are skipped; a data row is accepted only when it has all eight columns and
// both the time and question cells are non-empty after trimming.
func ParseInputCSV(r io.Reader) ([]model.InputQuestion, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "parser: read csv")
		}
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
	}

	return questionsFromRows(rows)
}

// ParseInputXLSX decodes viewer-question rows from the first sheet of an
// XLSX workbook, applying the same row rules as the CSV path.
func ParseInputXLSX(data []byte) ([]model.InputQuestion, []string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, eris.Wrap(err, "parser: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("parser: workbook has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		if isBlankRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}

	return questionsFromRows(rows)
}

// questionsFromRows applies the shared row-acceptance rules to raw rows.
func questionsFromRows(rows [][]string) ([]model.InputQuestion, []string, error) {
	var warnings []string

	if len(rows) < inputSkipRows+1 {
		return nil, nil, eris.New("parser: input needs at least 3 rows (title, header, data)")
	}

	var questions []model.InputQuestion
	for i, row := range rows[inputSkipRows:] {
		if len(row) < inputColumns {
			warnings = append(warnings, eris.Errorf("row %d: expected %d columns, got %d", i+inputSkipRows+1, inputColumns, len(row)).Error())
			continue
		}

		q := model.InputQuestion{
			Answered:     strings.TrimSpace(row[0]),
			Time:         strings.TrimSpace(row[1]),
			User:         strings.TrimSpace(row[2]),
			Question:     strings.TrimSpace(row[3]),
			AnswerMethod: strings.TrimSpace(row[4]),
			CommentNote:  strings.TrimSpace(row[5]),
			Answer:       strings.TrimSpace(row[6]),
			Memo:         strings.TrimSpace(row[7]),
		}

		// A row without both a timestamp and question text is noise
		// (section separators, stray cells) and is dropped silently.
		if q.Time == "" || q.Question == "" {
			continue
		}

		questions = append(questions, q)
	}

	return questions, warnings, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
