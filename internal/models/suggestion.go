package models

// ArtistSuggestionModel is the global per-name vote counter. At most one
// row exists per exact name; CardEntryID points at the most recent entry
// that mentioned the name, not at every contributor.
//
// Count is nullable: rows written before the counter existed have no
// value and every reader must treat nil as 1.
type ArtistSuggestionModel struct {
	Base
	Name        string `json:"name"          gorm:"not null;index"`
	Count       *int   `json:"count"`
	CardEntryID string `json:"card_entry_id" gorm:"not null;index"`
}

func (ArtistSuggestionModel) TableName() string { return "artist_suggestions" }

// CountOr1 reads the counter with the legacy nil-means-1 default.
func (a *ArtistSuggestionModel) CountOr1() int {
	if a.Count == nil {
		return 1
	}
	return *a.Count
}

// TaskSuggestionModel is a free-text task idea attached to the entry that
// submitted it. Unlike artist suggestions there is no dedup and no counting.
type TaskSuggestionModel struct {
	Base
	Description string `json:"description"   gorm:"type:text;not null"`
	CardEntryID string `json:"card_entry_id" gorm:"not null;index"`
}

func (TaskSuggestionModel) TableName() string { return "task_suggestions" }
