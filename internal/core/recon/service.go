package recon

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"reconciliation-service/internal/domain"
)

// Params fixes one reconciliation pass: which sheets play the to-update and
// reference roles, where their columns sit, and the matching knobs. All
// interactivity (sheet pickers, column previews) lives outside the engine;
// by the time Params exists the selection is done.
type Params struct {
	ToUpdateSheet    string
	ReferenceSheet   string
	ToUpdateColumns  ColumnSet
	ReferenceColumns ColumnSet
	Threshold        int
	StartRow         int
}

// Service defines the reconciliation operations exposed to the API layer.
type Service interface {
	Plan(workbook io.Reader, p Params) (*domain.ReconciliationReport, error)
	Apply(workbook io.Reader, p Params) (*domain.ReconciliationReport, []byte, error)
	Inspect(workbook io.Reader, maxColumns int) (*domain.WorkbookStructure, error)
}

type service struct{}

// NewService creates a new reconciliation service.
func NewService() Service {
	return &service{}
}

func (svc *service) validate(p Params) error {
	if p.Threshold < 0 || p.Threshold > 100 {
		return &domain.ConfigurationError{
			Field:  "fuzzy_match_threshold",
			Value:  strconv.Itoa(p.Threshold),
			Reason: "must be between 0 and 100",
		}
	}
	if p.StartRow < 1 {
		return &domain.ConfigurationError{
			Field:  "start_row",
			Value:  strconv.Itoa(p.StartRow),
			Reason: "must be at least 1",
		}
	}
	if p.ToUpdateSheet == "" || p.ReferenceSheet == "" {
		return &domain.ConfigurationError{
			Field:  "sheets",
			Value:  fmt.Sprintf("%q/%q", p.ToUpdateSheet, p.ReferenceSheet),
			Reason: "both sheet names are required",
		}
	}
	return nil
}

// reconcile runs the synchronous extract -> match -> plan pipeline over two
// regions. No partial report is ever returned: any stage error aborts the
// pass before a plan exists.
func (svc *service) reconcile(toUpdateRegion, referenceRegion CellRegion, p Params) (*domain.ReconciliationReport, error) {
	toUpdate, err := extractWithColumns(toUpdateRegion, p.ToUpdateColumns, p.StartRow)
	if err != nil {
		return nil, err
	}
	reference, err := extractWithColumns(referenceRegion, p.ReferenceColumns, p.StartRow)
	if err != nil {
		return nil, err
	}

	matches, err := Match(toUpdate, reference, p.Threshold)
	if err != nil {
		return nil, err
	}
	plan := BuildPlan(matches)

	return &domain.ReconciliationReport{
		ToUpdateSheet:  p.ToUpdateSheet,
		ReferenceSheet: p.ReferenceSheet,
		Threshold:      p.Threshold,
		ToUpdateCount:  len(toUpdate),
		ReferenceCount: len(reference),
		MatchCount:     len(matches.Matches),
		Degenerate:     len(matches.Matches) == 0 && len(toUpdate) > 0 && len(reference) > 0,
		Matches:        matches.Matches,
		NewAccounts:    matches.UnmatchedReference,
		Plan:           plan,
	}, nil
}

// Plan reconciles the two sheets and returns the mutation plan without
// touching the workbook. Accepts .xlsx and legacy .xls input.
func (svc *service) Plan(workbook io.Reader, p Params) (*domain.ReconciliationReport, error) {
	if err := svc.validate(p); err != nil {
		return nil, err
	}
	data, err := readAll(workbook)
	if err != nil {
		return nil, err
	}

	toUpdateRegion, err := openRegion(data, p.ToUpdateSheet)
	if err != nil {
		return nil, err
	}
	referenceRegion, err := openRegion(data, p.ReferenceSheet)
	if err != nil {
		return nil, err
	}
	return svc.reconcile(toUpdateRegion, referenceRegion, p)
}

// Apply reconciles the two sheets and replays the plan against the
// to-update sheet, returning the report (with apply and verification
// results) and the updated workbook bytes. Only .xlsx workbooks can be
// written back.
func (svc *service) Apply(workbook io.Reader, p Params) (*domain.ReconciliationReport, []byte, error) {
	if err := svc.validate(p); err != nil {
		return nil, nil, err
	}
	data, err := readAll(workbook)
	if err != nil {
		return nil, nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("only .xlsx workbooks can be updated in place: %w", err)
	}
	defer f.Close()

	for _, sheet := range []string{p.ToUpdateSheet, p.ReferenceSheet} {
		if !sheetExists(f, sheet) {
			return nil, nil, fmt.Errorf("sheet %q not found in workbook", sheet)
		}
	}

	toUpdateRegion, err := NewSheetRegion(f, p.ToUpdateSheet)
	if err != nil {
		return nil, nil, err
	}
	referenceRegion, err := NewSheetRegion(f, p.ReferenceSheet)
	if err != nil {
		return nil, nil, err
	}

	report, err := svc.reconcile(toUpdateRegion, referenceRegion, p)
	if err != nil {
		return nil, nil, err
	}

	applied, err := ApplyPlan(f, p.ToUpdateSheet, p.ToUpdateColumns, report.Plan)
	if err != nil {
		return nil, nil, err
	}
	report.Apply = applied

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize updated workbook: %w", err)
	}
	return report, buf.Bytes(), nil
}

// Inspect previews every sheet of a workbook with suggested column roles,
// for callers assembling Params.
func (svc *service) Inspect(workbook io.Reader, maxColumns int) (*domain.WorkbookStructure, error) {
	if maxColumns < 1 {
		return nil, &domain.ConfigurationError{
			Field:  "max_columns_to_check",
			Value:  strconv.Itoa(maxColumns),
			Reason: "must be at least 1",
		}
	}
	data, err := readAll(workbook)
	if err != nil {
		return nil, err
	}

	regions, err := loadAllRegions(data)
	if err != nil {
		return nil, err
	}

	structure := &domain.WorkbookStructure{}
	for _, region := range regions {
		structure.Sheets = append(structure.Sheets, InspectSheet(region, maxColumns))
	}
	return structure, nil
}

func extractWithColumns(region CellRegion, cols ColumnSet, startRow int) ([]domain.AccountRecord, error) {
	nameCol, currentCol, priorCol, err := cols.numbers()
	if err != nil {
		return nil, err
	}
	return Extract(region, nameCol, currentCol, priorCol, startRow)
}

// loadAllRegions opens every sheet of a workbook, trying .xlsx first and
// falling back to .xls.
func loadAllRegions(data []byte) ([]CellRegion, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err == nil {
		var regions []CellRegion
		for _, name := range f.GetSheetList() {
			region, rerr := NewSheetRegion(f, name)
			if rerr != nil {
				return nil, rerr
			}
			regions = append(regions, region)
		}
		return regions, nil
	}

	workbook, xerr := xls.OpenReader(bytes.NewReader(data))
	if xerr != nil {
		return nil, fmt.Errorf("unsupported workbook file format")
	}
	var regions []CellRegion
	for i := range workbook.GetSheets() {
		sh, serr := workbook.GetSheet(i)
		if serr != nil {
			continue
		}
		var rows [][]MemoryCell
		for _, row := range sh.GetRows() {
			var cells []MemoryCell
			for _, cell := range row.GetCols() {
				cells = append(cells, MemoryCell{Text: cell.GetString()})
			}
			rows = append(rows, cells)
		}
		regions = append(regions, NewMemoryRegion(strings.TrimSpace(sh.GetName()), rows))
	}
	return regions, nil
}
