package card

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/models"
	"github.com/rahabenico/core/internal/pkg/accesskey"
	"github.com/rahabenico/core/internal/pkg/markdown"
	"github.com/rahabenico/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateCardDTO struct {
	CustomID string `json:"custom_id" binding:"required"`
	Task     string `json:"task"      binding:"required"`
}

type cardView struct {
	ID           string    `json:"id"`
	CustomID     string    `json:"custom_id"`
	Task         string    `json:"task"`
	TaskHTML     string    `json:"task_html"`
	FrontImageID *string   `json:"front_image_id,omitempty"`
	BackImageID  *string   `json:"back_image_id,omitempty"`
	Created      time.Time `json:"created"`
	State        string    `json:"state"`
	Editable     bool      `json:"editable"`
	StripKey     bool      `json:"strip_key"`
}

type adminCardView struct {
	ID         string    `json:"id"`
	CustomID   string    `json:"custom_id"`
	Task       string    `json:"task"`
	EditKey    string    `json:"edit_key"`
	EntryCount int64     `json:"entry_count"`
	Created    time.Time `json:"created"`
}

var ErrCardExists = errors.New("card already exists")

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Create inserts a new card with a freshly generated edit key. The
// customID conflict check runs before the insert so a duplicate never
// burns a key.
func (s *Service) Create(dto *CreateCardDTO) (*models.CardModel, error) {
	customID := strings.TrimSpace(dto.CustomID)

	var count int64
	if err := s.db.Model(&models.CardModel{}).Where("custom_id = ?", customID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCardExists
	}

	editKey, err := NewEditKey()
	if err != nil {
		return nil, err
	}

	card := models.CardModel{
		CustomID: customID,
		Task:     strings.TrimSpace(dto.Task),
		EditKey:  editKey,
	}
	return &card, s.db.Create(&card).Error
}

// GetByCustomID returns the card or (nil, nil) when it does not exist.
func (s *Service) GetByCustomID(customID string) (*models.CardModel, error) {
	var card models.CardModel
	if err := s.db.First(&card, "custom_id = ?", customID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (s *Service) GetByID(id string) (*models.CardModel, error) {
	var card models.CardModel
	if err := s.db.First(&card, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// List returns all cards newest-first with their entry counts, for the
// admin overview.
func (s *Service) List() ([]adminCardView, error) {
	var cards []models.CardModel
	if err := s.db.Order("created_at DESC").Find(&cards).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		CardID string
		N      int64
	}
	var counts []countRow
	if err := s.db.Model(&models.CardEntryModel{}).
		Select("card_id, COUNT(*) as n").
		Group("card_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byCard := make(map[string]int64, len(counts))
	for _, r := range counts {
		byCard[r.CardID] = r.N
	}

	out := make([]adminCardView, len(cards))
	for i, card := range cards {
		out[i] = adminCardView{
			ID:         card.ID,
			CustomID:   card.CustomID,
			Task:       card.Task,
			EditKey:    card.EditKey,
			EntryCount: byCard[card.ID],
			Created:    card.CreatedAt,
		}
	}
	return out, nil
}

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/cards")

	g.GET("/:customId", h.get)
	g.POST("/:customId/close", h.close)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.POST("", h.create)
}

// GET /cards/:customId?key=K — public card page. Evaluates the edit-key
// gate against the visitor's cookies; strip_key tells the client to
// remove the key parameter from the visible URL.
func (h *Handler) get(c *gin.Context) {
	card, err := h.svc.GetByCustomID(c.Param("customId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}

	gate := accesskey.New(accesskey.NewCookieStore(c))
	state, stripKey := gate.Resolve(card.ID, c.Query("key"), card.EditKey)

	taskHTML, err := markdown.Render(card.Task)
	if err != nil {
		h.log.Warn("render card task", zap.String("card", card.CustomID), zap.Error(err))
		taskHTML = ""
	}

	response.OK(c, cardView{
		ID:           card.ID,
		CustomID:     card.CustomID,
		Task:         card.Task,
		TaskHTML:     taskHTML,
		FrontImageID: card.FrontImageID,
		BackImageID:  card.BackImageID,
		Created:      card.CreatedAt,
		State:        state.String(),
		Editable:     state == accesskey.Unlocked,
		StripKey:     stripKey,
	})
}

// POST /cards/:customId/close — the visitor dismissed the entry form.
// The gate is closed for good on this client; no auth needed because
// the effect is scoped to the caller's own cookies.
func (h *Handler) close(c *gin.Context) {
	card, err := h.svc.GetByCustomID(c.Param("customId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}

	gate := accesskey.New(accesskey.NewCookieStore(c))
	gate.Close(card.ID)
	response.OK(c, gin.H{"state": accesskey.PermanentlyClosed.String()})
}

// GET /cards — admin overview with entry counts.
func (h *Handler) list(c *gin.Context) {
	cards, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cards)
}

// POST /cards — admin create. The edit key is returned once here; it is
// never exposed on the public card endpoint.
func (h *Handler) create(c *gin.Context) {
	var dto CreateCardDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrCardExists) {
			response.Conflict(c, "custom id already exists")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{
		"id":        card.ID,
		"custom_id": card.CustomID,
		"task":      card.Task,
		"edit_key":  card.EditKey,
		"created":   card.CreatedAt,
	})
}
