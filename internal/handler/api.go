package handler

import (
	"github.com/cmsdash/internal/cache"
	"github.com/cmsdash/internal/logger"
	"github.com/cmsdash/internal/service"
	"github.com/cmsdash/internal/upload"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db     *gorm.DB
	posts  *service.PostService
	pages  *service.PageService
	store  *upload.Store
	parser upload.Parser
}

// NewAPI constructs a handler set with shared services. A nil cache disables caching.
func NewAPI(gdb *gorm.DB, c cache.Cache, store *upload.Store) *API {
	return &API{
		db:     gdb,
		posts:  service.NewPostService(gdb, c),
		pages:  service.NewPageService(gdb, c),
		store:  store,
		parser: upload.Parser{},
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Store exposes the upload store used for page photos.
func (a *API) Store() *upload.Store {
	return a.store
}

// renderHTML 渲染模板前取出会话中的提示消息。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["flashes"]; !exists {
		payload["flashes"] = popFlashes(c)
	}
	c.HTML(status, template, payload)
}

func addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		logger.Warnw("session_save_failed", "error", err)
	}
}

func popFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		logger.Warnw("session_save_failed", "error", err)
	}
	messages := make([]string, 0, len(raw))
	for _, item := range raw {
		if message, ok := item.(string); ok {
			messages = append(messages, message)
		}
	}
	return messages
}
