package recon

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reconciliation-service/internal/domain"
)

// buildWorkbook assembles an .xlsx with a stale leadsheet and an
// authoritative reference sheet, including a bold subtotal row that must be
// filtered out.
func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()

	require.NoError(t, f.SetSheetName("Sheet1", "Leadsheet"))
	_, err := f.NewSheet("Reference")
	require.NoError(t, err)

	boldID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)

	set := func(sheet, cell string, v interface{}) {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}

	set("Leadsheet", "A1", "Account")
	set("Leadsheet", "B1", "Current Year")
	set("Leadsheet", "C1", "Prior Year")
	set("Leadsheet", "A2", "Current Assets")
	require.NoError(t, f.SetCellStyle("Leadsheet", "A2", "A2", boldID))
	set("Leadsheet", "A3", "Cash and Cash Equivalents")
	set("Leadsheet", "B3", 100)
	set("Leadsheet", "C3", 90)
	set("Leadsheet", "A4", "Accounts Receivable")
	set("Leadsheet", "B4", 70)
	set("Leadsheet", "C4", 60)

	set("Reference", "A1", "Account")
	set("Reference", "B1", "Current Year")
	set("Reference", "C1", "Prior Year")
	set("Reference", "A2", "Cash & Cash Equivalents")
	set("Reference", "B2", 125000)
	set("Reference", "C2", 98000)
	set("Reference", "A3", "Receivables, Accounts")
	set("Reference", "B3", 75500)
	set("Reference", "C3", 61000)
	set("Reference", "A4", "Inventory")
	set("Reference", "B4", 500)
	set("Reference", "C4", 400)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func testParams() Params {
	return Params{
		ToUpdateSheet:    "Leadsheet",
		ReferenceSheet:   "Reference",
		ToUpdateColumns:  ColumnSet{Name: "A", CurrentYear: "B", PriorYear: "C"},
		ReferenceColumns: ColumnSet{Name: "A", CurrentYear: "B", PriorYear: "C"},
		Threshold:        80,
		StartRow:         2,
	}
}

func TestService_Plan(t *testing.T) {
	svc := NewService()

	report, err := svc.Plan(bytes.NewReader(buildWorkbook(t)), testParams())
	require.NoError(t, err)

	require.Equal(t, 2, report.ToUpdateCount, "bold subtotal row must not be extracted")
	require.Equal(t, 3, report.ReferenceCount)
	require.Equal(t, 2, report.MatchCount)
	require.False(t, report.Degenerate)

	require.Len(t, report.Plan.Updates, 2)
	require.Equal(t, 3, report.Plan.Updates[0].TargetRow)
	require.Equal(t, 125000.0, *report.Plan.Updates[0].CurrentYear)
	require.Equal(t, 98000.0, *report.Plan.Updates[0].PriorYear)

	require.Len(t, report.Plan.Inserts, 1)
	require.Equal(t, "Inventory", report.Plan.Inserts[0].Name)
}

func TestService_Plan_Degenerate(t *testing.T) {
	svc := NewService()

	p := testParams()
	p.Threshold = 100
	report, err := svc.Plan(bytes.NewReader(buildWorkbook(t)), p)
	require.NoError(t, err, "zero matches is a result, not an error")
	require.Equal(t, 0, report.MatchCount)
	require.True(t, report.Degenerate)
}

func TestService_Plan_InvalidParams(t *testing.T) {
	svc := NewService()

	for _, mutate := range []func(*Params){
		func(p *Params) { p.Threshold = 101 },
		func(p *Params) { p.Threshold = -1 },
		func(p *Params) { p.StartRow = 0 },
		func(p *Params) { p.ToUpdateSheet = "" },
	} {
		p := testParams()
		mutate(&p)
		_, err := svc.Plan(bytes.NewReader(buildWorkbook(t)), p)
		var confErr *domain.ConfigurationError
		require.True(t, errors.As(err, &confErr), "want ConfigurationError, got %v", err)
	}
}

func TestService_Plan_MissingSheet(t *testing.T) {
	svc := NewService()

	p := testParams()
	p.ReferenceSheet = "Nope"
	_, err := svc.Plan(bytes.NewReader(buildWorkbook(t)), p)
	require.Error(t, err)
}

func TestService_Apply(t *testing.T) {
	svc := NewService()

	report, updated, err := svc.Apply(bytes.NewReader(buildWorkbook(t)), testParams())
	require.NoError(t, err)
	require.NotNil(t, report.Apply)
	require.Equal(t, 2, report.Apply.UpdatesApplied)
	require.Equal(t, 1, report.Apply.InsertsApplied)
	require.True(t, report.Apply.Verification.Verified)

	f, err := excelize.OpenReader(bytes.NewReader(updated))
	require.NoError(t, err)
	defer f.Close()

	b3, _ := f.GetCellValue("Leadsheet", "B3")
	require.Equal(t, "125000", b3)
	a5, _ := f.GetCellValue("Leadsheet", "A5")
	require.Equal(t, "Inventory", a5)

	// the reference sheet is never touched
	b2, _ := f.GetCellValue("Reference", "B2")
	require.Equal(t, "125000", b2)
}

func TestService_Apply_UpdateIdempotenceAndInsertDuplication(t *testing.T) {
	svc := NewService()

	p := testParams()
	_, firstPass, err := svc.Apply(bytes.NewReader(buildWorkbook(t)), p)
	require.NoError(t, err)

	report, secondPass, err := svc.Apply(bytes.NewReader(firstPass), p)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(secondPass))
	require.NoError(t, err)
	defer f.Close()

	// update entries are a no-op on an already-updated sheet
	b3, _ := f.GetCellValue("Leadsheet", "B3")
	c3, _ := f.GetCellValue("Leadsheet", "C3")
	require.Equal(t, "125000", b3)
	require.Equal(t, "98000", c3)

	// inserts are not idempotent: the appended row was highlighted bold, so
	// re-running extracts past it and appends a duplicate — the documented
	// reason plans must not be replayed against an already-appended sheet
	require.Equal(t, 1, report.Apply.InsertsApplied)
	a6, _ := f.GetCellValue("Leadsheet", "A6")
	require.Equal(t, "Inventory", a6)
}

func TestService_Inspect(t *testing.T) {
	svc := NewService()

	structure, err := svc.Inspect(bytes.NewReader(buildWorkbook(t)), 20)
	require.NoError(t, err)
	require.Len(t, structure.Sheets, 2)
	require.Equal(t, "Leadsheet", structure.Sheets[0].Name)
	require.NotEmpty(t, structure.Sheets[0].Suggestions)
}

func TestService_Inspect_InvalidMaxColumns(t *testing.T) {
	svc := NewService()

	_, err := svc.Inspect(bytes.NewReader(buildWorkbook(t)), 0)
	var confErr *domain.ConfigurationError
	require.True(t, errors.As(err, &confErr))
}

func TestService_Plan_ExtractionError(t *testing.T) {
	svc := NewService()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Leadsheet"))
	_, err := f.NewSheet("Reference")
	require.NoError(t, err)
	// headers only: nothing at or after the start row
	require.NoError(t, f.SetCellValue("Leadsheet", "A1", "Account"))
	require.NoError(t, f.SetCellValue("Reference", "A1", "Account"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = svc.Plan(bytes.NewReader(buf.Bytes()), testParams())
	var extErr *domain.ExtractionError
	require.True(t, errors.As(err, &extErr), "want ExtractionError, got %v", err)
	require.Equal(t, "Leadsheet", extErr.Sheet)
}
