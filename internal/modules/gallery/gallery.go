package gallery

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rahabenico/core/internal/models"
	"github.com/rahabenico/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// objectStore is the subset of ObjectStorage the service needs.
type objectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Exists(ctx context.Context, key string) bool
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrStorageNotConfigured = errors.New("gallery storage not configured")
	ErrObjectMissing        = errors.New("object not found in storage")
	ErrImageExists          = errors.New("image already registered")
)

type AddImageDTO struct {
	StorageKey  string `json:"storage_key" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       *int   `json:"order"`
}

type imageView struct {
	ID          string `json:"id"`
	StorageKey  string `json:"storage_key"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Order       *int   `json:"order,omitempty"`
	UploadedAt  int64  `json:"uploaded_at"`
	URL         string `json:"url"`
}

type Service struct {
	db      *gorm.DB
	storage objectStore
	log     *zap.Logger
}

// NewService wires the gallery. storage may be nil when S3 is not
// configured; write operations then fail with ErrStorageNotConfigured.
func NewService(db *gorm.DB, storage objectStore, log *zap.Logger) *Service {
	return &Service{db: db, storage: storage, log: log}
}

// Upload stores the file in the bucket under a fresh key and registers
// it in one step.
func (s *Service) Upload(ctx context.Context, file multipart.File, filename, contentType string, title, description string) (*models.GalleryImageModel, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	key := "gallery/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := s.storage.Put(ctx, key, file, contentType); err != nil {
		return nil, err
	}
	img := models.GalleryImageModel{
		StorageKey:  key,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		UploadedAt:  time.Now().UnixMilli(),
	}
	return &img, s.db.Create(&img).Error
}

// Add registers an object that already exists in the bucket.
func (s *Service) Add(ctx context.Context, dto *AddImageDTO) (*models.GalleryImageModel, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	key := strings.TrimSpace(dto.StorageKey)

	var count int64
	if err := s.db.Model(&models.GalleryImageModel{}).Where("storage_key = ?", key).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrImageExists
	}
	if !s.storage.Exists(ctx, key) {
		return nil, ErrObjectMissing
	}

	img := models.GalleryImageModel{
		StorageKey:  key,
		Title:       strings.TrimSpace(dto.Title),
		Description: strings.TrimSpace(dto.Description),
		Order:       dto.Order,
		UploadedAt:  time.Now().UnixMilli(),
	}
	return &img, s.db.Create(&img).Error
}

// BulkAddResult reports the outcome per storage key.
type BulkAddResult struct {
	Added   []string          `json:"added"`
	Skipped []string          `json:"skipped,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// BulkAdd registers many existing objects at once. Keys already
// registered are skipped, bad keys are collected; one bad key never
// aborts the batch.
func (s *Service) BulkAdd(ctx context.Context, dtos []AddImageDTO) (*BulkAddResult, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	res := &BulkAddResult{Errors: make(map[string]string)}
	for i := range dtos {
		key := strings.TrimSpace(dtos[i].StorageKey)
		_, err := s.Add(ctx, &dtos[i])
		switch {
		case err == nil:
			res.Added = append(res.Added, key)
		case errors.Is(err, ErrImageExists):
			res.Skipped = append(res.Skipped, key)
		default:
			res.Errors[key] = err.Error()
		}
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// List returns gallery images with presigned URLs. Explicitly ordered
// images come first by their order value; the rest follow newest first.
// Rows whose object has vanished from the bucket are dropped from the
// listing, not deleted.
func (s *Service) List(ctx context.Context) ([]imageView, error) {
	var rows []models.GalleryImageModel
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		oi, oj := rows[i].Order, rows[j].Order
		switch {
		case oi != nil && oj != nil:
			return *oi < *oj
		case oi != nil:
			return true
		case oj != nil:
			return false
		default:
			return rows[i].UploadedAt > rows[j].UploadedAt
		}
	})

	out := make([]imageView, 0, len(rows))
	for i := range rows {
		if s.storage == nil {
			out = append(out, toImageView(&rows[i], ""))
			continue
		}
		url, err := s.storage.URL(ctx, rows[i].StorageKey)
		if err != nil {
			s.log.Warn("presign gallery image",
				zap.String("key", rows[i].StorageKey), zap.Error(err))
			continue
		}
		out = append(out, toImageView(&rows[i], url))
	}
	return out, nil
}

// Remove deletes the registration and, best effort, the object.
func (s *Service) Remove(ctx context.Context, id string) error {
	var img models.GalleryImageModel
	if err := s.db.First(&img, "id = ?", id).Error; err != nil {
		return err
	}
	// Physical delete: a soft-deleted row would hold the storage_key
	// unique index and block re-registering the same object later.
	if err := s.db.Unscoped().Delete(&img).Error; err != nil {
		return err
	}
	if s.storage != nil {
		if err := s.storage.Delete(ctx, img.StorageKey); err != nil {
			s.log.Warn("delete gallery object",
				zap.String("key", img.StorageKey), zap.Error(err))
		}
	}
	return nil
}

func toImageView(m *models.GalleryImageModel, url string) imageView {
	return imageView{
		ID:          m.ID,
		StorageKey:  m.StorageKey,
		Title:       m.Title,
		Description: m.Description,
		Order:       m.Order,
		UploadedAt:  m.UploadedAt,
		URL:         url,
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/gallery")

	g.GET("", h.list)

	a := g.Group("", authMW)
	a.POST("/upload", h.upload)
	a.POST("", h.add)
	a.POST("/bulk", h.bulkAdd)
	a.DELETE("/:id", h.remove)
}

// GET /gallery
func (h *Handler) list(c *gin.Context) {
	images, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, images)
}

// POST /gallery/upload — multipart image upload (admin).
func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer file.Close()

	img, err := h.svc.Upload(c.Request.Context(), file, fh.Filename,
		fh.Header.Get("Content-Type"), c.PostForm("title"), c.PostForm("description"))
	if err != nil {
		if errors.Is(err, ErrStorageNotConfigured) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toImageView(img, ""))
}

// POST /gallery — register an existing bucket object (admin).
func (h *Handler) add(c *gin.Context) {
	var dto AddImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	img, err := h.svc.Add(c.Request.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrImageExists):
			response.Conflict(c, err.Error())
		case errors.Is(err, ErrObjectMissing):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, ErrStorageNotConfigured):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, toImageView(img, ""))
}

// POST /gallery/bulk — register many existing objects (admin).
func (h *Handler) bulkAdd(c *gin.Context) {
	var dtos []AddImageDTO
	if err := c.ShouldBindJSON(&dtos); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.BulkAdd(c.Request.Context(), dtos)
	if err != nil {
		if errors.Is(err, ErrStorageNotConfigured) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, res)
}

// DELETE /gallery/:id (admin).
func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
