package suggestion

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/models"
	"github.com/rahabenico/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// UpsertArtist bumps the global counter for an exact artist name, or
// creates the row with count 1. The back-reference always moves to the
// latest entry that mentioned the name. Lookup and write are separate
// statements; concurrent submissions of the same name can lose a bump,
// which is acceptable for a popularity hint.
func (s *Service) UpsertArtist(name, entryID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var existing models.ArtistSuggestionModel
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		next := existing.CountOr1() + 1
		return s.db.Model(&existing).Updates(map[string]interface{}{
			"count":         next,
			"card_entry_id": entryID,
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	one := 1
	return s.db.Create(&models.ArtistSuggestionModel{
		Name:        name,
		Count:       &one,
		CardEntryID: entryID,
	}).Error
}

// AddTask records a free-text task idea. No dedup, no counting.
func (s *Service) AddTask(description, entryID string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil
	}
	return s.db.Create(&models.TaskSuggestionModel{
		Description: description,
		CardEntryID: entryID,
	}).Error
}

// AllArtists returns every artist name with its total count, highest
// first.
func (s *Service) AllArtists() ([]ArtistCount, error) {
	var rows []models.ArtistSuggestionModel
	if err := s.db.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return aggregateArtists(rows), nil
}

// ArtistNamesByEntry returns the artist names whose back-reference
// points at the given entries, keyed by entry id.
func (s *Service) ArtistNamesByEntry(entryIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(entryIDs) == 0 {
		return out, nil
	}
	var rows []models.ArtistSuggestionModel
	if err := s.db.Where("card_entry_id IN ?", entryIDs).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].CardEntryID] = append(out[rows[i].CardEntryID], rows[i].Name)
	}
	return out, nil
}

// TaskDescriptionsByEntry returns task suggestion texts keyed by entry id.
func (s *Service) TaskDescriptionsByEntry(entryIDs []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(entryIDs) == 0 {
		return out, nil
	}
	var rows []models.TaskSuggestionModel
	if err := s.db.Where("card_entry_id IN ?", entryIDs).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].CardEntryID] = append(out[rows[i].CardEntryID], rows[i].Description)
	}
	return out, nil
}

type taskSuggestionView struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CardEntryID string    `json:"card_entry_id"`
	Created     time.Time `json:"created"`
}

// ListTasks returns all task suggestions newest-first for the admin view.
func (s *Service) ListTasks() ([]taskSuggestionView, error) {
	var rows []models.TaskSuggestionModel
	if err := s.db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]taskSuggestionView, len(rows))
	for i := range rows {
		out[i] = taskSuggestionView{
			ID:          rows[i].ID,
			Description: rows[i].Description,
			CardEntryID: rows[i].CardEntryID,
			Created:     rows[i].CreatedAt,
		}
	}
	return out, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/suggestions")

	g.GET("/artists", h.listArtists)

	a := g.Group("", authMW)
	a.GET("/tasks", h.listTasks)
}

// GET /suggestions/artists — public aggregated artist counts.
func (h *Handler) listArtists(c *gin.Context) {
	artists, err := h.svc.AllArtists()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, artists)
}

// GET /suggestions/tasks — admin list of submitted task ideas.
func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, tasks)
}
