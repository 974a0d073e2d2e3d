package pipeline

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"certmail/internal"
)

// Workbook holds the first sheet of a participant spreadsheet. Headers is
// indexed by column; a blank header cell stays as "" so every column keeps its
// position. Records has one entry per sheet row below the header, blank rows
// included, so record i always sits on sheet row i+2.
type Workbook struct {
	Sheet   string
	Headers []string
	Records []internal.ParticipantRecord

	width  int
	loaded []internal.ParticipantRecord
}

func LoadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	wb := &Workbook{Sheet: sheet, Headers: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		wb.Headers[i] = strings.TrimSpace(h)
	}

	for _, row := range rows {
		wb.width = max(wb.width, len(row))
	}
	for _, row := range rows[1:] {
		rec := internal.ParticipantRecord{}
		for i, h := range wb.Headers {
			if h == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = row[i]
			}
			rec[h] = value
		}
		wb.Records = append(wb.Records, rec)
		wb.loaded = append(wb.loaded, maps.Clone(rec))
	}

	return wb, nil
}

// AssignSequentialIDs numbers records 1..N in row order, replacing any
// existing ID values. A sheet without an ID column gets one after the last
// used column.
func (w *Workbook) AssignSequentialIDs() {
	if w.column(internal.HeaderID) < 0 {
		for len(w.Headers) < w.width {
			w.Headers = append(w.Headers, "")
		}
		w.Headers = append(w.Headers, internal.HeaderID)
	}
	for i, rec := range w.Records {
		rec[internal.HeaderID] = strconv.Itoa(i + 1)
	}
}

// SaveFirstSheet writes changed cells back over the first sheet of the
// workbook at path. Cells whose value is the same as when the sheet was
// loaded are not touched, so numbers, dates and formulas keep their type.
// Other sheets are left as they are. With atomic set the workbook goes to a
// temp file next to path which is then renamed over it; otherwise the file
// is rewritten in place.
func (w *Workbook) SaveFirstSheet(path string, atomic bool) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	for c, h := range w.Headers {
		if h == "" || w.column(h) != c {
			continue
		}
		if c >= w.width {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
		}
		for i, rec := range w.Records {
			value := rec[h]
			if c < w.width && i < len(w.loaded) && w.loaded[i][h] == value {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			if err := f.SetCellValue(sheet, cell, cellValue(h, value)); err != nil {
				return err
			}
		}
	}

	if !atomic {
		return f.Save()
	}
	return replaceAtomically(f, path)
}

func replaceAtomically(f *excelize.File, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return cause
	}

	if _, err := f.WriteTo(tmp); err != nil {
		return cleanup(fmt.Errorf("write workbook: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// column returns the index of the column backing header name, or -1. With
// duplicate headers the rightmost column wins, same as in the records.
func (w *Workbook) column(name string) int {
	for c := len(w.Headers) - 1; c >= 0; c-- {
		if w.Headers[c] == name {
			return c
		}
	}
	return -1
}

// cellValue keeps IDs numeric so the rewritten sheet sorts and filters like the original.
func cellValue(header, value string) any {
	if header == internal.HeaderID {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return value
}
