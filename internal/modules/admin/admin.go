package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/middleware"
	"github.com/rahabenico/core/internal/pkg/jwt"
	"github.com/rahabenico/core/internal/pkg/pagination"
	"github.com/rahabenico/core/internal/pkg/response"
	"github.com/rahabenico/core/internal/pkg/taskqueue"
)

const tokenTTL = 24 * time.Hour

type Handler struct {
	adminPassword string
	tasks         *taskqueue.Service
}

func NewHandler(adminPassword string, tasks *taskqueue.Service) *Handler {
	return &Handler{adminPassword: adminPassword, tasks: tasks}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/admin")

	g.POST("/login", h.login)

	a := g.Group("", authMW)
	a.GET("/tasks", h.listTasks)
	a.GET("/tasks/:id", h.getTask)
}

type loginDTO struct {
	Password string `json:"password" binding:"required"`
}

// POST /admin/login — exchange the shared password for a short-lived
// token so the password does not ride along on every admin request.
func (h *Handler) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !middleware.CheckPassword(h.adminPassword, dto.Password) {
		response.Unauthorized(c)
		return
	}
	token, err := jwt.SignAdmin(tokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "expires_in": int(tokenTTL.Seconds())})
}

// GET /admin/tasks?type=T&status=S — background task records.
func (h *Handler) listTasks(c *gin.Context) {
	if h.tasks == nil {
		response.OK(c, []struct{}{})
		return
	}
	q := pagination.FromContext(c)

	var taskType *string
	if t := c.Query("type"); t != "" {
		taskType = &t
	}
	var status *taskqueue.TaskStatus
	if s := c.Query("status"); s != "" {
		st := taskqueue.TaskStatus(s)
		status = &st
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), q.Page, q.Size, taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	})
}

// GET /admin/tasks/:id
func (h *Handler) getTask(c *gin.Context) {
	if h.tasks == nil {
		response.NotFound(c)
		return
	}
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}
