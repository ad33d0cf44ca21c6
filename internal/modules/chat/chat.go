package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/models"
	"github.com/rahabenico/core/internal/pkg/pagination"
	"github.com/rahabenico/core/internal/pkg/response"
	"gorm.io/gorm"
)

const maxContentLength = 2000

var (
	errEmptyMessage   = errors.New("message is empty")
	errMessageTooLong = errors.New("message too long")
)

type messageView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func toView(m *models.MessageModel) messageView {
	return messageView{
		ID:        m.ID,
		Username:  m.Username,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Send persists one chat message. Anonymous senders get a fallback name.
func (s *Service) Send(username, content string) (*models.MessageModel, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = "anonymous"
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errEmptyMessage
	}
	if len(content) > maxContentLength {
		return nil, errMessageTooLong
	}

	m := models.MessageModel{
		Username:  username,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
	return &m, s.db.Create(&m).Error
}

// List returns messages oldest first, the order a chat log reads in.
func (s *Service) List(q pagination.Query) ([]messageView, response.Pagination, error) {
	tx := s.db.Model(&models.MessageModel{}).Order("timestamp ASC")
	var rows []models.MessageModel
	pag, err := pagination.Paginate(tx, q, &rows)
	if err != nil {
		return nil, pag, err
	}
	out := make([]messageView, len(rows))
	for i := range rows {
		out[i] = toView(&rows[i])
	}
	return out, pag, nil
}

type Handler struct {
	svc *Service
	hub *Hub
}

func NewHandler(svc *Service, hub *Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	g := rg.Group("/chat")
	g.GET("/messages", h.list)
	g.POST("/messages", h.create)
}

// GET /chat/messages
func (h *Handler) list(c *gin.Context) {
	msgs, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, msgs, pag)
}

type sendMessageDTO struct {
	Username string `json:"username"`
	Content  string `json:"content" binding:"required"`
}

// POST /chat/messages — HTTP fallback for clients without a socket.
// Delivered to connected clients the same way socket submissions are.
func (h *Handler) create(c *gin.Context) {
	var dto sendMessageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Send(dto.Username, dto.Content)
	if err != nil {
		if errors.Is(err, errEmptyMessage) || errors.Is(err, errMessageTooLong) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(EventNewMessage, toView(m))
	}
	response.Created(c, toView(m))
}
