package recon

import (
	"reconciliation-service/internal/domain"
)

// Extract scans a sheet region from startRow to the last populated row of
// the name column and returns one AccountRecord per postable account row.
//
// A row is excluded when its name cell is blank after trimming or rendered
// bold — bold names mark subtotals and headings, not postable accounts.
// Amount cells that are empty or non-numeric stay absent on the record.
//
// Extract is a pure function of its inputs: calling it twice with the same
// region yields identical output.
func Extract(region CellRegion, nameCol, currentCol, priorCol, startRow int) ([]domain.AccountRecord, error) {
	lastRow := region.LastRow(nameCol)

	populated := 0
	var records []domain.AccountRecord
	for row := startRow; row <= lastRow; row++ {
		name := region.Text(row, nameCol)
		if name == "" {
			continue
		}
		populated++
		if region.IsBold(row, nameCol) {
			continue
		}

		record := domain.AccountRecord{Name: name, SourceRow: row}
		if v, ok := region.Number(row, currentCol); ok {
			record.CurrentYear = &v
		}
		if v, ok := region.Number(row, priorCol); ok {
			record.PriorYear = &v
		}
		records = append(records, record)
	}

	if populated == 0 {
		return nil, &domain.ExtractionError{
			Sheet:    region.Name(),
			Column:   columnName(nameCol),
			StartRow: startRow,
		}
	}
	return records, nil
}

// columnName converts a 1-based column number to its letter form for error
// messages ("A", "B", ..., "AA").
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
