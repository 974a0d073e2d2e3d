package pipeline

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"certmail/internal"
)

func TestLoadWorkbookTrimsHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nd.xlsx")
	mkXLSX(t, path, [][]any{
		{" Name ", "Mail", "", "Team"},
		{"Ann Lee", "ann@example.com", "ignored", "Red"},
		{},
		{"Bo Yu"},
	})

	wb, err := LoadWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(wb.Headers, []string{"Name", "Mail", "", "Team"}) {
		t.Fatalf("headers=%q", wb.Headers)
	}
	if len(wb.Records) != 3 {
		t.Fatalf("len=%d", len(wb.Records))
	}
	if wb.Records[0]["Name"] != "Ann Lee" || wb.Records[0]["Team"] != "Red" {
		t.Fatalf("record=%v", wb.Records[0])
	}
	if _, ok := wb.Records[0][""]; ok {
		t.Fatal("blank header should not become a key")
	}
	if wb.Records[1].Field(internal.NameHeaders...) != "" {
		t.Fatalf("blank row should load as an empty record: %v", wb.Records[1])
	}
	if wb.Records[2]["Name"] != "Bo Yu" || wb.Records[2].Field(internal.MailHeaders...) != "" {
		t.Fatalf("short row should have empty mail: %v", wb.Records[2])
	}
}

func TestLoadWorkbookEmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	mkXLSX(t, path, nil)
	if _, err := LoadWorkbook(path); err == nil {
		t.Fatal("expected error for sheet without header row")
	}
}

func TestAssignSequentialIDs(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		path := filepath.Join(t.TempDir(), "nd.xlsx")
		mkXLSX(t, path, [][]any{
			{"Name", "ID", "Mail"},
			{"Ann Lee", 7, "ann@example.com"},
			{"Bo Yu", "", "bo@example.com"},
			{"Cy Ho", 7, ""},
		}, "Notes")

		cfg := testConfig(path, "")
		cfg.AtomicWrite = atomic
		svc := NewAssignService(cfg, discardLogger())

		for run := 0; run < 2; run++ {
			report, err := svc.Run()
			if err != nil {
				t.Fatal(err)
			}
			if report.Done != 3 {
				t.Fatalf("done=%d", report.Done)
			}

			wb, err := LoadWorkbook(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(wb.Records) != 3 {
				t.Fatalf("run %d: rows=%d", run, len(wb.Records))
			}
			for i, want := range []string{"1", "2", "3"} {
				if got := wb.Records[i]["ID"]; got != want {
					t.Fatalf("run %d row %d: id=%q want %q", run, i, got, want)
				}
			}
			if wb.Records[2]["Name"] != "Cy Ho" || wb.Headers[1] != "ID" {
				t.Fatalf("row order or column position changed: %v %v", wb.Headers, wb.Records[2])
			}
		}

		f, err := excelize.OpenFile(path)
		if err != nil {
			t.Fatal(err)
		}
		v, _ := f.GetCellValue("Notes", "A1")
		_ = f.Close()
		if v != "keep me" {
			t.Fatalf("other sheet changed: %q", v)
		}
	}
}

func TestAssignAppendsIDColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nd.xlsx")
	mkXLSX(t, path, [][]any{
		{"Name", "Mail"},
		{"Ann Lee", "ann@example.com"},
		{"Bo Yu", "bo@example.com"},
	})

	if _, err := NewAssignService(testConfig(path, ""), discardLogger()).Run(); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][2] != "ID" || rows[1][2] != "1" || rows[2][2] != "2" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestSaveFirstSheetKeepsColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nd.xlsx")
	mkXLSX(t, path, [][]any{
		{"Name", "", "Stray"},
		{"Ann Lee", "orphan", "x"},
		{"", "", ""},
		{"Bo Yu"},
	})

	wb, err := LoadWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	wb.AssignSequentialIDs()
	if err := wb.SaveFirstSheet(path, true); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(f.GetSheetName(0))
	want := [][]string{
		{"Name", "", "Stray", "ID"},
		{"Ann Lee", "orphan", "x", "1"},
		{"", "", "", "2"},
		{"Bo Yu", "", "", "3"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows=%q", rows)
	}
}

func TestAssignKeepsCellTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nd.xlsx")
	mkXLSX(t, path, [][]any{
		{"Name", "Score", "Mail"},
		{"Ann Lee", 95.5, "ann@example.com"},
		{"Bo Yu", 71, "bo@example.com"},
	})

	snapshot := func() (types []excelize.CellType, raws []string) {
		t.Helper()
		f, err := excelize.OpenFile(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		for _, cell := range []string{"B2", "B3"} {
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				t.Fatal(err)
			}
			raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				t.Fatal(err)
			}
			types = append(types, typ)
			raws = append(raws, raw)
		}
		return types, raws
	}

	typesBefore, rawBefore := snapshot()
	if _, err := NewAssignService(testConfig(path, ""), discardLogger()).Run(); err != nil {
		t.Fatal(err)
	}
	typesAfter, rawAfter := snapshot()

	if !reflect.DeepEqual(typesBefore, typesAfter) || !reflect.DeepEqual(rawBefore, rawAfter) {
		t.Fatalf("score cells changed: %v %q -> %v %q", typesBefore, rawBefore, typesAfter, rawAfter)
	}
}
