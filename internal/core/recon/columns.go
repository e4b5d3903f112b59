package recon

import (
	"strings"

	"github.com/schollz/closestmatch"

	"reconciliation-service/internal/domain"
)

// Keyword sets used to recognize trial balance columns by header text.
// Containment is tried in listed order, so the more specific keywords come
// first.
var (
	accountKeywords = []string{"ACCOUNT", "NAME", "DESCRIPTION", "GL CODE"}
	currentKeywords = []string{"CURRENT YEAR", "CURRENT", "CY", "THIS YEAR", "BALANCE"}
	priorKeywords   = []string{"PRIOR YEAR", "PRIOR", "PY", "LAST YEAR", "PREVIOUS"}
)

const maxHeaderSearchRows = 40

// InspectSheet previews one sheet's structure: where the header row sits,
// which columns look like the account name and amount columns, how many
// candidate account rows follow and a short sample of names. maxColumns
// bounds how many columns are considered.
func InspectSheet(region CellRegion, maxColumns int) domain.SheetStructure {
	structure := domain.SheetStructure{Name: region.Name()}

	headerRow, headers := findHeaderRow(region, maxColumns)
	structure.HeaderRow = headerRow

	if col, header := pickColumn(headers, accountKeywords); col > 0 {
		structure.Suggestions = append(structure.Suggestions, domain.ColumnSuggestion{
			Role: "account", Column: columnName(col), Header: header,
		})
		structure.TotalRows = region.LastRow(col)
		for row := headerRow + 1; row <= structure.TotalRows; row++ {
			name := region.Text(row, col)
			if name == "" || region.IsBold(row, col) {
				continue
			}
			structure.AccountCount++
			if len(structure.SampleNames) < 10 {
				structure.SampleNames = append(structure.SampleNames, name)
			}
		}
	}
	if col, header := pickColumn(headers, currentKeywords); col > 0 {
		structure.Suggestions = append(structure.Suggestions, domain.ColumnSuggestion{
			Role: "current_year", Column: columnName(col), Header: header,
		})
	}
	if col, header := pickColumn(headers, priorKeywords); col > 0 {
		structure.Suggestions = append(structure.Suggestions, domain.ColumnSuggestion{
			Role: "prior_year", Column: columnName(col), Header: header,
		})
	}
	return structure
}

// findHeaderRow scans the first rows of the sheet for one that contains a
// recognizable account-column header, and returns that row with its cell
// texts. Falls back to row 1 when nothing matches.
func findHeaderRow(region CellRegion, maxColumns int) (int, []string) {
	readRow := func(row int) []string {
		cells := make([]string, maxColumns)
		for col := 1; col <= maxColumns; col++ {
			cells[col-1] = region.Text(row, col)
		}
		return cells
	}

	for row := 1; row <= maxHeaderSearchRows; row++ {
		cells := readRow(row)
		for _, cell := range cells {
			norm := normalizeName(cell)
			if norm == "" {
				continue
			}
			for _, kw := range accountKeywords {
				if strings.Contains(norm, kw) {
					return row, cells
				}
			}
		}
	}
	return 1, readRow(1)
}

// pickColumn finds the column whose header best matches one of the
// keywords: containment first in keyword priority order, then a fuzzy
// closest-match pass over the normalized headers. Returns 0 when no header
// resembles any keyword.
func pickColumn(headers []string, keywords []string) (int, string) {
	normHeaders := make([]string, len(headers))
	for i, h := range headers {
		normHeaders[i] = normalizeName(h)
	}

	for _, kw := range keywords {
		for i, nh := range normHeaders {
			if nh != "" && strings.Contains(nh, kw) {
				return i + 1, headers[i]
			}
		}
	}

	var nonEmpty []string
	for _, nh := range normHeaders {
		if nh != "" {
			nonEmpty = append(nonEmpty, nh)
		}
	}
	if len(nonEmpty) == 0 {
		return 0, ""
	}

	cm := closestmatch.New(nonEmpty, []int{2, 3, 4})
	for _, kw := range keywords {
		match := cm.Closest(kw)
		if match == "" {
			continue
		}
		// accept the fuzzy pick only when it actually resembles the keyword
		if similarity(match, kw) < 60 {
			continue
		}
		for i, nh := range normHeaders {
			if nh == match {
				return i + 1, headers[i]
			}
		}
	}
	return 0, ""
}
