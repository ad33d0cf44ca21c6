package suggestion

import (
	"sort"

	"github.com/rahabenico/core/internal/models"
)

// ArtistCount is one aggregated artist name with its summed vote count.
type ArtistCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// aggregateArtists groups rows by exact name and sums their counts,
// reading nil counts as 1. The upsert keeps names unique at write time,
// so this normally just re-shapes the rows, but rows written before the
// counter existed can carry duplicates and those are merged here.
// Results are sorted by count descending; order among equal counts
// follows first appearance and is not part of the contract.
func aggregateArtists(rows []models.ArtistSuggestionModel) []ArtistCount {
	totals := make(map[string]int, len(rows))
	order := make([]string, 0, len(rows))
	for i := range rows {
		name := rows[i].Name
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += rows[i].CountOr1()
	}

	out := make([]ArtistCount, len(order))
	for i, name := range order {
		out[i] = ArtistCount{Name: name, Count: totals[name]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
