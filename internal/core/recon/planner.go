package recon

import (
	"sort"

	"reconciliation-service/internal/domain"
)

// BuildPlan turns one matching pass into an ordered mutation plan.
//
// Each match becomes an update keyed by the to-update record's source row,
// carrying only the reference amounts that are present — an absent
// reference amount must never erase a value the target already holds. Each
// unmatched reference record becomes an append-only insert.
//
// Updates follow the to-update collection's original row order; inserts
// follow the reference collection's original order. The returned plan is
// self-contained: amounts are copied, not aliased.
func BuildPlan(matches domain.MatchSet) domain.ReconciliationPlan {
	plan := domain.ReconciliationPlan{}

	for _, m := range matches.Matches {
		plan.Updates = append(plan.Updates, domain.UpdateEntry{
			TargetRow:   m.ToUpdate.SourceRow,
			CurrentYear: copyAmount(m.Reference.CurrentYear),
			PriorYear:   copyAmount(m.Reference.PriorYear),
		})
	}
	sort.Slice(plan.Updates, func(i, j int) bool {
		return plan.Updates[i].TargetRow < plan.Updates[j].TargetRow
	})

	for _, r := range matches.UnmatchedReference {
		plan.Inserts = append(plan.Inserts, domain.InsertEntry{
			Name:        r.Name,
			CurrentYear: copyAmount(r.CurrentYear),
			PriorYear:   copyAmount(r.PriorYear),
		})
	}
	return plan
}

func copyAmount(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
