package contact

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/pkg/mail"
	"github.com/rahabenico/core/internal/pkg/response"
	"go.uber.org/zap"
)

var errNotConfigured = errors.New("contact form is not configured")

type ContactDTO struct {
	Name    string `json:"name"    binding:"required"`
	Email   string `json:"email"   binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

type Service struct {
	sender    *mail.Sender
	recipient string
	log       *zap.Logger
}

func NewService(sender *mail.Sender, recipient string, log *zap.Logger) *Service {
	return &Service{sender: sender, recipient: strings.TrimSpace(recipient), log: log}
}

// Submit forwards the contact form to the site owner. Unlike entry
// notifications this is not best effort: the visitor expects the mail
// to arrive, so a broken configuration must surface as an error.
func (s *Service) Submit(c *gin.Context, dto *ContactDTO) error {
	if !s.sender.Configured() || s.recipient == "" {
		return errNotConfigured
	}
	subject := strings.TrimSpace(dto.Subject)
	if subject == "" {
		subject = "Contact form message"
	}
	return s.sender.SendContact(c.Request.Context(), s.recipient, mail.ContactData{
		Name:    strings.TrimSpace(dto.Name),
		Email:   strings.TrimSpace(dto.Email),
		Subject: subject,
		Message: dto.Message,
	})
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	rg.POST("/contact", h.submit)
}

// POST /contact
func (h *Handler) submit(c *gin.Context) {
	var dto ContactDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Submit(c, &dto); err != nil {
		if errors.Is(err, errNotConfigured) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		h.svc.log.Error("contact form delivery", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}
