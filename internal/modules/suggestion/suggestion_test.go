package suggestion

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rahabenico/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ArtistSuggestionModel{},
		&models.TaskSuggestionModel{},
	))
	return db
}

func TestUpsertArtistSequentialBumps(t *testing.T) {
	svc := NewService(newTestDB(t))

	require.NoError(t, svc.UpsertArtist("Kraftwerk", "entry-1"))
	require.NoError(t, svc.UpsertArtist("Kraftwerk", "entry-2"))
	require.NoError(t, svc.UpsertArtist("Kraftwerk", "entry-3"))

	var rows []models.ArtistSuggestionModel
	require.NoError(t, svc.db.Find(&rows).Error)
	require.Len(t, rows, 1, "repeat submissions share one row")
	assert.Equal(t, 3, rows[0].CountOr1())
	assert.Equal(t, "entry-3", rows[0].CardEntryID, "back-reference follows the latest entry")
}

func TestUpsertArtistNamesAreCaseSensitive(t *testing.T) {
	svc := NewService(newTestDB(t))

	require.NoError(t, svc.UpsertArtist("Daft Punk", "entry-1"))
	require.NoError(t, svc.UpsertArtist("daft punk", "entry-2"))

	var rows []models.ArtistSuggestionModel
	require.NoError(t, svc.db.Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].CountOr1())
	assert.Equal(t, 1, rows[1].CountOr1())
}

func TestUpsertArtistNilCountReadsAsOne(t *testing.T) {
	svc := NewService(newTestDB(t))

	// Rows written before the counter existed have no count column value.
	require.NoError(t, svc.db.Create(&models.ArtistSuggestionModel{
		Name:        "Autechre",
		CardEntryID: "entry-old",
	}).Error)

	require.NoError(t, svc.UpsertArtist("Autechre", "entry-new"))

	var row models.ArtistSuggestionModel
	require.NoError(t, svc.db.Where("name = ?", "Autechre").First(&row).Error)
	assert.Equal(t, 2, row.CountOr1())
	assert.Equal(t, "entry-new", row.CardEntryID)
}

func TestUpsertArtistBlankNameIsNoOp(t *testing.T) {
	svc := NewService(newTestDB(t))

	require.NoError(t, svc.UpsertArtist("   ", "entry-1"))

	var count int64
	svc.db.Model(&models.ArtistSuggestionModel{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestUpsertArtistTrimsName(t *testing.T) {
	svc := NewService(newTestDB(t))

	require.NoError(t, svc.UpsertArtist("  Boards of Canada ", "entry-1"))
	require.NoError(t, svc.UpsertArtist("Boards of Canada", "entry-2"))

	var rows []models.ArtistSuggestionModel
	require.NoError(t, svc.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Boards of Canada", rows[0].Name)
	assert.Equal(t, 2, rows[0].CountOr1())
}

func TestAllArtistsOrdersByCount(t *testing.T) {
	svc := NewService(newTestDB(t))

	require.NoError(t, svc.UpsertArtist("Kraftwerk", "entry-1"))
	require.NoError(t, svc.UpsertArtist("Kraftwerk", "entry-2"))
	require.NoError(t, svc.UpsertArtist("Autechre", "entry-3"))

	artists, err := svc.AllArtists()
	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, ArtistCount{Name: "Kraftwerk", Count: 2}, artists[0])
	assert.Equal(t, ArtistCount{Name: "Autechre", Count: 1}, artists[1])
}

func TestAddTaskSkipsBlankDescription(t *testing.T) {
	svc := NewService(newTestDB(t))

	require.NoError(t, svc.AddTask("", "entry-1"))
	require.NoError(t, svc.AddTask("draw your week as a map", "entry-1"))

	tasks, err := svc.TaskDescriptionsByEntry([]string{"entry-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"draw your week as a map"}, tasks["entry-1"])
}
