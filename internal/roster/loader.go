package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported roster format")
	ErrEmptyTable        = errors.New("roster has no header row")
)

// Load reads a roster from path. The format is picked from the extension:
// .xlsx/.xlsm/.xltx via excelize, .csv via encoding/csv. For workbooks an
// empty sheet selects the first sheet.
func Load(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return loadWorkbook(path, sheet)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func loadWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
		if sheet == "" {
			if names := f.GetSheetList(); len(names) > 0 {
				sheet = names[0]
			}
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	// GetRows keeps interior empty rows, so record i is sheet row i+1.
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return fromRecords(rows, lines, path)
}

func loadCSV(path string) (*Table, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	var (
		rows  [][]string
		lines []int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		// the reader skips empty lines, so ask it where the record began
		line, _ := r.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
	return fromRecords(rows, lines, path)
}

// fromRecords turns header + data records into a Table. Short records leave
// trailing columns null, empty cells are null, and fully blank records are
// dropped. lines[i] is the 1-based source row of rows[i].
func fromRecords(rows [][]string, lines []int, path string) (*Table, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &Table{Headers: header}
	for n, rec := range rows[1:] {
		row := Row{}
		blank := true
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			if strings.TrimSpace(rec[i]) == "" {
				row[h] = nil
				continue
			}
			row[h] = rec[i]
			blank = false
		}
		if blank {
			continue
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, lines[n+1])
	}
	return t, nil
}
