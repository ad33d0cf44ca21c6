package suggestion

import (
	"testing"

	"github.com/rahabenico/core/internal/models"
	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func artist(name string, count *int) models.ArtistSuggestionModel {
	return models.ArtistSuggestionModel{Name: name, Count: count}
}

func TestAggregateArtistsEmpty(t *testing.T) {
	assert.Empty(t, aggregateArtists(nil))
}

func TestAggregateArtistsSortsByCountDesc(t *testing.T) {
	got := aggregateArtists([]models.ArtistSuggestionModel{
		artist("Mia", intp(2)),
		artist("Nova", intp(7)),
		artist("Okka", intp(4)),
	})

	assert.Equal(t, []ArtistCount{
		{Name: "Nova", Count: 7},
		{Name: "Okka", Count: 4},
		{Name: "Mia", Count: 2},
	}, got)
}

func TestAggregateArtistsNilCountReadsAsOne(t *testing.T) {
	got := aggregateArtists([]models.ArtistSuggestionModel{
		artist("Legacy", nil),
		artist("Counted", intp(3)),
	})

	assert.Equal(t, []ArtistCount{
		{Name: "Counted", Count: 3},
		{Name: "Legacy", Count: 1},
	}, got)
}

func TestAggregateArtistsMergesDuplicateRows(t *testing.T) {
	// Rows written before the counter existed can repeat a name.
	got := aggregateArtists([]models.ArtistSuggestionModel{
		artist("Nova", intp(2)),
		artist("Nova", nil),
		artist("Nova", intp(1)),
		artist("Mia", intp(5)),
	})

	assert.Equal(t, []ArtistCount{
		{Name: "Mia", Count: 5},
		{Name: "Nova", Count: 4},
	}, got)
}

func TestAggregateArtistsIsCaseSensitive(t *testing.T) {
	got := aggregateArtists([]models.ArtistSuggestionModel{
		artist("nova", intp(1)),
		artist("Nova", intp(1)),
	})

	assert.Len(t, got, 2)
}

func TestAggregateArtistsStableForEqualCounts(t *testing.T) {
	got := aggregateArtists([]models.ArtistSuggestionModel{
		artist("First", intp(2)),
		artist("Second", intp(2)),
		artist("Third", intp(2)),
	})

	assert.Equal(t, []ArtistCount{
		{Name: "First", Count: 2},
		{Name: "Second", Count: 2},
		{Name: "Third", Count: 2},
	}, got)
}
