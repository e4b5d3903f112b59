package recon

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"reconciliation-service/internal/domain"
)

// EPSILON is the tolerance used when verifying written amounts against the
// plan; workbook round-trips may reformat but must not change value.
const EPSILON = 0.01

// ColumnSet names the three columns of interest on one sheet, as letters.
type ColumnSet struct {
	Name        string
	CurrentYear string
	PriorYear   string
}

func (c ColumnSet) numbers() (nameCol, currentCol, priorCol int, err error) {
	nameCol, err = excelize.ColumnNameToNumber(c.Name)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid name column %q: %w", c.Name, err)
	}
	currentCol, err = excelize.ColumnNameToNumber(c.CurrentYear)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid current-year column %q: %w", c.CurrentYear, err)
	}
	priorCol, err = excelize.ColumnNameToNumber(c.PriorYear)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid prior-year column %q: %w", c.PriorYear, err)
	}
	return nameCol, currentCol, priorCol, nil
}

// ApplyPlan replays a reconciliation plan against the to-update sheet of an
// open workbook, then verifies every written cell by reading it back.
//
// Updates write in place and are idempotent. Inserts append after the last
// used row of the sheet and are highlighted bold on a yellow fill so a
// reviewer can spot the new accounts; re-applying a plan duplicates them,
// which is why callers must not replay a plan against an already-appended
// sheet.
func ApplyPlan(f *excelize.File, sheet string, cols ColumnSet, plan domain.ReconciliationPlan) (*domain.ApplyResult, error) {
	nameCol, currentCol, priorCol, err := cols.numbers()
	if err != nil {
		return nil, err
	}

	result := &domain.ApplyResult{}

	for _, u := range plan.Updates {
		if u.CurrentYear != nil {
			if err := setAmount(f, sheet, currentCol, u.TargetRow, *u.CurrentYear); err != nil {
				return nil, err
			}
		}
		if u.PriorYear != nil {
			if err := setAmount(f, sheet, priorCol, u.TargetRow, *u.PriorYear); err != nil {
				return nil, err
			}
		}
		result.UpdatesApplied++
	}

	if len(plan.Inserts) > 0 {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		nextRow := len(rows) + 1
		result.FirstInsertRow = nextRow

		styleID, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create highlight style: %w", err)
		}

		for _, ins := range plan.Inserts {
			if err := setText(f, sheet, nameCol, nextRow, ins.Name); err != nil {
				return nil, err
			}
			if ins.CurrentYear != nil {
				if err := setAmount(f, sheet, currentCol, nextRow, *ins.CurrentYear); err != nil {
					return nil, err
				}
			}
			if ins.PriorYear != nil {
				if err := setAmount(f, sheet, priorCol, nextRow, *ins.PriorYear); err != nil {
					return nil, err
				}
			}
			for _, col := range []int{nameCol, currentCol, priorCol} {
				cell, cerr := excelize.CoordinatesToCellName(col, nextRow)
				if cerr != nil {
					return nil, cerr
				}
				if serr := f.SetCellStyle(sheet, cell, cell, styleID); serr != nil {
					return nil, fmt.Errorf("failed to highlight inserted row %d: %w", nextRow, serr)
				}
			}
			result.InsertsApplied++
			nextRow++
		}
	}

	result.Verification = verify(f, sheet, currentCol, priorCol, nameCol, plan, result.FirstInsertRow)
	return result, nil
}

// verify reads every written cell back and compares it with the plan. It
// reports mismatches instead of failing, so a partially verified apply is
// still visible to the caller.
func verify(f *excelize.File, sheet string, currentCol, priorCol, nameCol int, plan domain.ReconciliationPlan, firstInsertRow int) domain.VerificationResult {
	v := domain.VerificationResult{Verified: true}

	checkAmount := func(col, row int, expected float64, label string) {
		v.CheckedCells++
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return
		}
		raw, _ := f.GetCellValue(sheet, cell)
		actual, ok := parseAmount(raw)
		if !ok || math.Abs(actual-expected) > EPSILON {
			v.Verified = false
			v.Failures = append(v.Failures, domain.VerificationFailure{
				Row:      row,
				Column:   label,
				Expected: strconv.FormatFloat(expected, 'f', -1, 64),
				Actual:   raw,
			})
		}
	}

	for _, u := range plan.Updates {
		if u.CurrentYear != nil {
			checkAmount(currentCol, u.TargetRow, *u.CurrentYear, "current_year")
		}
		if u.PriorYear != nil {
			checkAmount(priorCol, u.TargetRow, *u.PriorYear, "prior_year")
		}
	}

	for i, ins := range plan.Inserts {
		row := firstInsertRow + i
		v.CheckedCells++
		cell, err := excelize.CoordinatesToCellName(nameCol, row)
		if err != nil {
			continue
		}
		raw, _ := f.GetCellValue(sheet, cell)
		if normalizeName(raw) != normalizeName(ins.Name) {
			v.Verified = false
			v.MissingInsert = append(v.MissingInsert, ins.Name)
			continue
		}
		if ins.CurrentYear != nil {
			checkAmount(currentCol, row, *ins.CurrentYear, "current_year")
		}
		if ins.PriorYear != nil {
			checkAmount(priorCol, row, *ins.PriorYear, "prior_year")
		}
	}
	return v
}

func setAmount(f *excelize.File, sheet string, col, row int, value float64) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return nil
}

func setText(f *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return nil
}
