package router

import (
	"github.com/cmsdash/internal/handler"
	"github.com/cmsdash/internal/logger"
	"github.com/cmsdash/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "cmsdash_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(logger.L()))

	// 配置会话中间件，仅用于面板的提示消息
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 3600})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(view.MustTemplates())

	// 上传文件
	if uploads := api.Store(); uploads != nil {
		r.Static(uploads.URLPath(), uploads.Dir())
	}

	r.GET("/healthz", api.Health)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/posts", api.ListPosts)
		apiGroup.POST("/posts", api.CreatePost)
		apiGroup.GET("/posts/:id", api.GetPost)
		apiGroup.PUT("/posts/:id", api.UpdatePost)
		apiGroup.DELETE("/posts/:id", api.DeletePost)

		apiGroup.GET("/pages", api.ListPages)
		apiGroup.POST("/pages", api.CreatePage)
		apiGroup.POST("/pages/new", api.CreatePageUpload)
		apiGroup.GET("/pages/:slug", api.GetPage)
		apiGroup.PUT("/pages/:slug", api.UpdatePage)
		apiGroup.DELETE("/pages/:slug", api.DeletePage)
	}

	// 后台面板
	r.GET("/", api.ShowDashboard)
	r.GET("/posts/new", api.ShowPostNew)
	r.POST("/posts", api.CreatePostForm)
	r.GET("/posts/:id/edit", api.ShowPostEdit)
	r.POST("/posts/:id", api.UpdatePostForm)
	r.POST("/posts/:id/delete", api.DeletePostForm)

	r.GET("/pages/new", api.ShowPageNew)
	r.POST("/pages", api.CreatePageForm)
	r.GET("/pages/:slug", api.ShowPage)
	r.POST("/pages/:slug/delete", api.DeletePageForm)

	return r
}
