package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/middleware"
	"github.com/rahabenico/core/internal/modules/admin"
	"github.com/rahabenico/core/internal/modules/card"
	"github.com/rahabenico/core/internal/modules/chat"
	"github.com/rahabenico/core/internal/modules/contact"
	"github.com/rahabenico/core/internal/modules/entry"
	"github.com/rahabenico/core/internal/modules/gallery"
	"github.com/rahabenico/core/internal/modules/notify"
	"github.com/rahabenico/core/internal/modules/subscriber"
	"github.com/rahabenico/core/internal/modules/suggestion"
	"github.com/rahabenico/core/internal/pkg/mail"
	pkgredis "github.com/rahabenico/core/internal/pkg/redis"
	"github.com/rahabenico/core/internal/pkg/response"
	"github.com/rahabenico/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.AdminAuth(cfg.AdminPassword)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	var taskSvc *taskqueue.Service
	if rc != nil {
		taskSvc = taskqueue.NewService(rc)
	}

	sender := mail.New(mail.Config{
		Enable:    cfg.Mail.Enabled(),
		APIKey:    cfg.Mail.APIKey,
		APISecret: cfg.Mail.APISecret,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
	})

	cardSvc := card.NewService(db)
	suggestionSvc := suggestion.NewService(db)
	subscriberSvc := subscriber.NewService(db)
	notifySvc := notify.NewService(subscriberSvc, sender, taskSvc, cfg.BaseURL, a.logger)
	entrySvc := entry.NewService(db, suggestionSvc, subscriberSvc, notifySvc, a.logger)
	chatSvc := chat.NewService(db)
	contactSvc := contact.NewService(sender, cfg.Mail.ContactRecipient, a.logger)

	var store *gallery.ObjectStorage
	if cfg.S3.Bucket != "" {
		var err error
		store, err = gallery.NewObjectStorage(cfg.S3)
		if err != nil {
			a.logger.Warn("gallery storage disabled", zap.Error(err))
		}
	}
	// The nil check happens on the concrete pointer: a typed-nil stuffed
	// into the interface would defeat the service's storage guard.
	gallerySvc := gallery.NewService(db, nil, a.logger)
	if store != nil {
		gallerySvc = gallery.NewService(db, store, a.logger)
	}

	a.hub = chat.NewHub(chatSvc, rc, a.logger)

	api := r.Group("/api/v2")

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	card.NewHandler(cardSvc, a.logger).RegisterRoutes(api, authMW)
	entry.NewHandler(entrySvc, cardSvc).RegisterRoutes(api, authMW)
	suggestion.NewHandler(suggestionSvc).RegisterRoutes(api, authMW)
	subscriber.NewHandler(subscriberSvc, cardSvc).RegisterRoutes(api, authMW)
	chat.NewHandler(chatSvc, a.hub).RegisterRoutes(api, authMW)
	gallery.NewHandler(gallerySvc).RegisterRoutes(api, authMW)
	contact.NewHandler(contactSvc).RegisterRoutes(api, authMW)
	admin.NewHandler(cfg.AdminPassword, taskSvc).RegisterRoutes(api, authMW)

	chat.RegisterSocketRoutes(r.Group(""), a.hub)
}
