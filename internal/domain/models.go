// package domain/models.go
package domain

// AccountRecord is one extracted row from a trial balance sheet.
// Nil amounts mean the cell was empty or non-numeric; callers must not
// confuse "no amount" with a zero amount.
type AccountRecord struct {
	Name        string   `json:"name"`
	CurrentYear *float64 `json:"current_year_amount,omitempty"`
	PriorYear   *float64 `json:"prior_year_amount,omitempty"`
	SourceRow   int      `json:"source_row"`
}

// MatchResult pairs one to-update record with one reference record.
// Score is the similarity in [0,100] and is always >= the threshold the
// match was produced under.
type MatchResult struct {
	ToUpdate  AccountRecord `json:"to_update_record"`
	Reference AccountRecord `json:"reference_record"`
	Score     int           `json:"similarity_score"`
}

// MatchSet is the full outcome of one matching pass: the one-to-one match
// results plus the residual unmatched records on each side, both residuals
// in their original extraction order.
type MatchSet struct {
	Matches            []MatchResult   `json:"matches"`
	UnmatchedToUpdate  []AccountRecord `json:"unmatched_to_update"`
	UnmatchedReference []AccountRecord `json:"unmatched_reference"`
}

// UpdateEntry overwrites amounts on an existing row of the to-update sheet.
// A nil amount means the reference side had no value for that field and the
// target cell must be left untouched.
type UpdateEntry struct {
	TargetRow   int      `json:"target_row"`
	CurrentYear *float64 `json:"current_year_amount,omitempty"`
	PriorYear   *float64 `json:"prior_year_amount,omitempty"`
}

// InsertEntry appends an account that exists only on the reference sheet.
type InsertEntry struct {
	Name        string   `json:"name"`
	CurrentYear *float64 `json:"current_year_amount,omitempty"`
	PriorYear   *float64 `json:"prior_year_amount,omitempty"`
}

// ReconciliationPlan is the ordered set of mutations derived from one
// matching pass. It is built once and never modified afterwards. Applying
// the update entries is idempotent; applying the insert entries twice
// produces duplicate rows, which is the caller's responsibility to avoid.
type ReconciliationPlan struct {
	Updates []UpdateEntry `json:"updates"`
	Inserts []InsertEntry `json:"inserts"`
}

// ReconciliationReport is the serializable result of one reconciliation
// pass. Degenerate flags the zero-matches-despite-non-empty-inputs outcome,
// which is legitimate for dissimilar sheets and deliberately not an error.
type ReconciliationReport struct {
	ToUpdateSheet  string             `json:"to_update_sheet"`
	ReferenceSheet string             `json:"reference_sheet"`
	Threshold      int                `json:"threshold"`
	ToUpdateCount  int                `json:"to_update_count"`
	ReferenceCount int                `json:"reference_count"`
	MatchCount     int                `json:"match_count"`
	Degenerate     bool               `json:"degenerate"`
	Matches        []MatchResult      `json:"matches"`
	NewAccounts    []AccountRecord    `json:"new_accounts"`
	Plan           ReconciliationPlan `json:"plan"`
	Apply          *ApplyResult       `json:"apply,omitempty"`
}

// ApplyResult reports what the executor actually wrote.
type ApplyResult struct {
	UpdatesApplied int                `json:"updates_applied"`
	InsertsApplied int                `json:"inserts_applied"`
	FirstInsertRow int                `json:"first_insert_row,omitempty"`
	Verification   VerificationResult `json:"verification"`
}

// VerificationResult is the outcome of the post-apply read-back check.
type VerificationResult struct {
	Verified      bool                  `json:"verified"`
	CheckedCells  int                   `json:"checked_cells"`
	Failures      []VerificationFailure `json:"failures,omitempty"`
	MissingInsert []string              `json:"missing_inserts,omitempty"`
}

// VerificationFailure identifies one cell whose read-back value did not
// match the plan.
type VerificationFailure struct {
	Row      int    `json:"row"`
	Column   string `json:"column"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ColumnSuggestion maps a semantic role to a sheet column.
type ColumnSuggestion struct {
	Role   string `json:"role"` // "account", "current_year", "prior_year"
	Column string `json:"column"`
	Header string `json:"header,omitempty"`
}

// SheetStructure is a preview of one sheet used for column selection.
type SheetStructure struct {
	Name         string             `json:"name"`
	TotalRows    int                `json:"total_rows"`
	HeaderRow    int                `json:"header_row"`
	AccountCount int                `json:"account_count"`
	Suggestions  []ColumnSuggestion `json:"suggestions,omitempty"`
	SampleNames  []string           `json:"sample_names,omitempty"`
}

// WorkbookStructure is the inspect response for a whole workbook.
type WorkbookStructure struct {
	Sheets []SheetStructure `json:"sheets"`
}
