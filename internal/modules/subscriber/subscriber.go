package subscriber

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

// Subscribe registers an email for new-entry notifications on a card.
/// Idempotent: re-subscribing returns the existing row's id without
// touching SubscribedAt.
func (s *Service) Subscribe(cardID, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", errors.New("email is required")
	}

	var existing models.CardSubscriberModel
	err := s.db.Where("card_id = ? AND email = ?", cardID, email).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	sub := models.CardSubscriberModel{
		CardID:       cardID,
		Email:        email,
		SubscribedAt: time.Now().UnixMilli(),
	}
	if err := s.db.Create(&sub).Error; err != nil {
		// A concurrent subscribe can win the race to the unique index;
		// re-read instead of failing.
		var won models.CardSubscriberModel
		if lookupErr := s.db.Where("card_id = ? AND email = ?", cardID, email).First(&won).Error; lookupErr == nil {
			return won.ID, nil
		}
		return "", err
	}
	return sub.ID, nil
}

// Unsubscribe removes the (card, email) subscription. The found flag is
// false when no such subscription existed; that is not an error.
// The delete is physical: a soft-deleted row would keep occupying the
// unique index and block the same pair from ever re-subscribing.
func (s *Service) Unsubscribe(cardID, email string) (bool, error) {
	email = normalizeEmail(email)
	res := s.db.Unscoped().
		Where("card_id = ? AND email = ?", cardID, email).
		Delete(&models.CardSubscriberModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EmailsForCard returns every subscribed email for one card.
func (s *Service) EmailsForCard(cardID string) ([]string, error) {
	var emails []string
	err := s.db.Model(&models.CardSubscriberModel{}).
		Where("card_id = ?", cardID).
		Order("subscribed_at ASC").
		Pluck("email", &emails).Error
	return emails, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// cardResolver looks up a card id from its public custom id.
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/subscriptions")
	g.POST("", h.subscribe)
	g.POST("/unsubscribe", h.unsubscribe)

	rg.GET("/cards/:customId/subscribers", authMW, h.listForCard)
}

type subscribeDTO struct {
	CardID string `json:"card_id" binding:"required"`
	Email  string `json:"email"   binding:"required,email"`
}

// POST /subscriptions — subscribe an email to a card by its custom id.
func (h *Handler) subscribe(c *gin.Context) {
	var dto subscribeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.cards.GetByCustomID(dto.CardID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFoundMsg(c, "card not found")
		return
	}
	id, err := h.svc.Subscribe(card.ID, dto.Email)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "id": id})
}

// POST /subscriptions/unsubscribe?email=E&cardId=C — remove a
// subscription. Reached from the one-click link in notification mails,
// so a missing subscription still answers 200 with success false; the
// visitor's goal (no more mail) is met either way.
func (h *Handler) unsubscribe(c *gin.Context) {
	email := c.Query("email")
	customID := c.Query("cardId")
	if email == "" || customID == "" {
		response.BadRequest(c, "email and cardId are required")
		return
	}
	card, err := h.cards.GetByCustomID(customID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.OK(c, gin.H{"success": false, "message": "Subscription not found"})
		return
	}
	found, err := h.svc.Unsubscribe(card.ID, email)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !found {
		response.OK(c, gin.H{"success": false, "message": "Subscription not found"})
		return
	}
	response.OK(c, gin.H{"success": true})
}

// GET /cards/:customId/subscribers — admin list.
func (h *Handler) listForCard(c *gin.Context) {
	card, err := h.cards.GetByCustomID(c.Param("customId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}
	emails, err := h.svc.EmailsForCard(card.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, emails)
}
