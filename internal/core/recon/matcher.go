package recon

import (
	"sort"
	"strconv"

	"reconciliation-service/internal/domain"
)

type candidate struct {
	score    int
	toUpdate int // index into the to-update collection
	ref      int // index into the reference collection
}

// Match pairs to-update records with reference records one-to-one.
//
// Every pair is scored with the name similarity measure; pairs below the
// threshold are discarded and the rest are committed greedily, highest
// score first. Ties break on the earlier to-update source row, then the
// earlier reference source row, so the result is reproducible across runs.
// Greedy best-first is an accepted approximation of optimal bipartite
// matching; account lists are tens to low hundreds of rows.
//
// Empty inputs yield an empty match set without error. A threshold outside
// [0,100] is a configuration error detected before any scoring.
func Match(toUpdate, reference []domain.AccountRecord, threshold int) (domain.MatchSet, error) {
	if threshold < 0 || threshold > 100 {
		return domain.MatchSet{}, &domain.ConfigurationError{
			Field:  "fuzzy_match_threshold",
			Value:  strconv.Itoa(threshold),
			Reason: "must be between 0 and 100",
		}
	}

	var candidates []candidate
	for i, u := range toUpdate {
		for j, r := range reference {
			if score := similarity(u.Name, r.Name); score >= threshold {
				candidates = append(candidates, candidate{score: score, toUpdate: i, ref: j})
			}
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.score != cb.score {
			return ca.score > cb.score
		}
		if toUpdate[ca.toUpdate].SourceRow != toUpdate[cb.toUpdate].SourceRow {
			return toUpdate[ca.toUpdate].SourceRow < toUpdate[cb.toUpdate].SourceRow
		}
		return reference[ca.ref].SourceRow < reference[cb.ref].SourceRow
	})

	usedToUpdate := make(map[int]bool, len(toUpdate))
	usedReference := make(map[int]bool, len(reference))

	set := domain.MatchSet{}
	for _, c := range candidates {
		if usedToUpdate[c.toUpdate] || usedReference[c.ref] {
			continue
		}
		usedToUpdate[c.toUpdate] = true
		usedReference[c.ref] = true
		set.Matches = append(set.Matches, domain.MatchResult{
			ToUpdate:  toUpdate[c.toUpdate],
			Reference: reference[c.ref],
			Score:     c.score,
		})
	}

	for i, u := range toUpdate {
		if !usedToUpdate[i] {
			set.UnmatchedToUpdate = append(set.UnmatchedToUpdate, u)
		}
	}
	for j, r := range reference {
		if !usedReference[j] {
			set.UnmatchedReference = append(set.UnmatchedReference, r)
		}
	}
	return set, nil
}
