package entry

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/models"
	"github.com/rahabenico/core/internal/modules/notify"
	"github.com/rahabenico/core/internal/modules/subscriber"
	"github.com/rahabenico/core/internal/modules/suggestion"
	"github.com/rahabenico/core/internal/pkg/accesskey"
	"github.com/rahabenico/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateEntryDTO struct {
	Username           string              `json:"username" binding:"required"`
	Date               int64               `json:"date"     binding:"required"`
	GPSPosition        *models.GPSPosition `json:"gps_position"`
	Location           string              `json:"location"`
	City               string              `json:"city"`
	Comment            string              `json:"comment"`
	Instagram          string              `json:"instagram"`
	InterestedInBuying *bool               `json:"interested_in_buying"`
	Email              string              `json:"email"`
	ArtistSuggestions  []string            `json:"artist_suggestions"`
	TaskSuggestions    []string            `json:"task_suggestions"`
}

type entryView struct {
	ID                 string              `json:"id"`
	Username           string              `json:"username"`
	Date               int64               `json:"date"`
	GPSPosition        *models.GPSPosition `json:"gps_position,omitempty"`
	Location           string              `json:"location,omitempty"`
	City               string              `json:"city,omitempty"`
	Comment            string              `json:"comment,omitempty"`
	Instagram          string              `json:"instagram,omitempty"`
	InterestedInBuying *bool               `json:"interested_in_buying,omitempty"`
	ArtistSuggestions  []string            `json:"artist_suggestions,omitempty"`
	TaskSuggestions    []string            `json:"task_suggestions,omitempty"`
	Created            time.Time           `json:"created"`
}

var ErrCardNotFound = errors.New("card not found")

type Service struct {
	db          *gorm.DB
	suggestions *suggestion.Service
	subs        *subscriber.Service
	notify      *notify.Service
	log         *zap.Logger
}

func NewService(db *gorm.DB, suggestions *suggestion.Service, subs *subscriber.Service, n *notify.Service, log *zap.Logger) *Service {
	return &Service{db: db, suggestions: suggestions, subs: subs, notify: n, log: log}
}

// Create runs the submission pipeline for one visitor entry. The card
// lookup and optional subscribe happen before the insert and may fail
// the request; everything after the insert (suggestion upserts,
// notification dispatch) is best effort, because the entry is already
// committed and the visitor must not see an error for it.
func (s *Service) Create(cardCustomID string, dto *CreateEntryDTO) (*models.CardEntryModel, *models.CardModel, error) {
	var card models.CardModel
	if err := s.db.First(&card, "custom_id = ?", cardCustomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCardNotFound
		}
		return nil, nil, err
	}

	if email := strings.TrimSpace(dto.Email); email != "" {
		if _, err := s.subs.Subscribe(card.ID, email); err != nil {
			return nil, nil, err
		}
	}

	e := models.CardEntryModel{
		CardID:             card.ID,
		Username:           strings.TrimSpace(dto.Username),
		Date:               dto.Date,
		GPSPosition:        dto.GPSPosition,
		Location:           strings.TrimSpace(dto.Location),
		City:               strings.TrimSpace(dto.City),
		Comment:            strings.TrimSpace(dto.Comment),
		Instagram:          strings.TrimSpace(dto.Instagram),
		InterestedInBuying: dto.InterestedInBuying,
	}
	if err := s.db.Create(&e).Error; err != nil {
		return nil, nil, err
	}

	// Upserts run one by one in submission order so repeated names
	// within one entry each count.
	for _, name := range dto.ArtistSuggestions {
		if err := s.suggestions.UpsertArtist(name, e.ID); err != nil {
			s.log.Warn("artist suggestion upsert",
				zap.String("entry", e.ID), zap.String("name", name), zap.Error(err))
		}
	}
	for _, desc := range dto.TaskSuggestions {
		if err := s.suggestions.AddTask(desc, e.ID); err != nil {
			s.log.Warn("task suggestion insert",
				zap.String("entry", e.ID), zap.Error(err))
		}
	}

	s.notify.Dispatch(card.ID, card.CustomID, e.Username)

	return &e, &card, nil
}

// ListByCard returns a card's entries newest event first, with the
// suggestion texts each entry contributed.
func (s *Service) ListByCard(cardID string) ([]entryView, error) {
	var rows []models.CardEntryModel
	if err := s.db.Where("card_id = ?", cardID).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	artists, err := s.suggestions.ArtistNamesByEntry(ids)
	if err != nil {
		return nil, err
	}
	tasks, err := s.suggestions.TaskDescriptionsByEntry(ids)
	if err != nil {
		return nil, err
	}

	out := make([]entryView, len(rows))
	for i := range rows {
		out[i] = entryView{
			ID:                 rows[i].ID,
			Username:           rows[i].Username,
			Date:               rows[i].Date,
			GPSPosition:        rows[i].GPSPosition,
			Location:           rows[i].Location,
			City:               rows[i].City,
			Comment:            rows[i].Comment,
			Instagram:          rows[i].Instagram,
			InterestedInBuying: rows[i].InterestedInBuying,
			ArtistSuggestions:  artists[rows[i].ID],
			TaskSuggestions:    tasks[rows[i].ID],
			Created:            rows[i].CreatedAt,
		}
	}
	return out, nil
}

type cardResolver interface {
	GetByCustomID(customID string) (*models.CardModel, error)
}

type Handler struct {
	svc   *Service
	cards cardResolver
}

func NewHandler(svc *Service, cards cardResolver) *Handler {
	return &Handler{svc: svc, cards: cards}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	g := rg.Group("/cards/:customId/entries")
	g.POST("", h.create)
	g.GET("", h.list)
}

// POST /cards/:customId/entries — visitor submission. On success the
// edit-key gate is closed on this client: the form was for one entry.
func (h *Handler) create(c *gin.Context) {
	var dto CreateEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	e, card, err := h.svc.Create(c.Param("customId"), &dto)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			response.NotFoundMsg(c, "card not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	gate := accesskey.New(accesskey.NewCookieStore(c))
	gate.Close(card.ID)

	response.Created(c, gin.H{"id": e.ID})
}

// GET /cards/:customId/entries — entries shown on the public card page.
func (h *Handler) list(c *gin.Context) {
	card, err := h.cards.GetByCustomID(c.Param("customId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}
	entries, err := h.svc.ListByCard(card.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, entries)
}
