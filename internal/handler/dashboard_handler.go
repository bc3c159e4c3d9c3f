package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cmsdash/internal/service"
	"github.com/cmsdash/internal/view"
	"github.com/gin-gonic/gin"
)

// ShowDashboard 渲染后台主面板，列出全部文章与页面
func (a *API) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := a.posts.ListAll(ctx)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "dashboard.html", gin.H{
			"title": "Dashboard",
			"error": "Failed to load posts",
		})
		return
	}

	pages, err := a.pages.ListAll(ctx)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "dashboard.html", gin.H{
			"title": "Dashboard",
			"posts": posts,
			"error": "Failed to load pages",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title": "Dashboard",
		"posts": posts,
		"pages": pages,
	})
}

// ShowPostNew renders an empty post form.
func (a *API) ShowPostNew(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "post_form.html", gin.H{
		"title":  "New post",
		"action": "/posts",
		"form":   service.PostInput{},
	})
}

// CreatePostForm 处理新建文章表单
func (a *API) CreatePostForm(c *gin.Context) {
	input := postFormInput(c)
	if _, err := a.posts.Create(c.Request.Context(), input); err != nil {
		a.renderPostFormError(c, "New post", "/posts", input, err)
		return
	}
	addFlash(c, "Post created")
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowPostEdit renders the edit form of an existing post.
func (a *API) ShowPostEdit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "Post not found")
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "not_found.html", gin.H{
			"title":   "Error",
			"message": "Failed to load post",
		})
		return
	}

	preview, err := view.RenderMarkdown(post.Content)
	if err != nil {
		c.Error(err)
	}
	a.renderHTML(c, http.StatusOK, "post_form.html", gin.H{
		"title":   "Edit post",
		"action":  fmt.Sprintf("/posts/%d", post.ID),
		"form":    service.PostInput{Title: post.Title, Content: post.Content, Author: post.Author},
		"preview": preview,
	})
}

// UpdatePostForm 处理文章编辑表单
func (a *API) UpdatePostForm(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	input := postFormInput(c)
	action := fmt.Sprintf("/posts/%d", id)
	if _, err := a.posts.Update(c.Request.Context(), id, input); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "Post not found")
			return
		}
		a.renderPostFormError(c, "Edit post", action, input, err)
		return
	}
	addFlash(c, "Post updated")
	c.Redirect(http.StatusSeeOther, "/")
}

// DeletePostForm 删除文章后回到面板
func (a *API) DeletePostForm(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err == nil {
		if err := a.posts.Delete(c.Request.Context(), id); err != nil {
			c.Error(err)
			addFlash(c, "Failed to delete post")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
	}
	addFlash(c, "Post deleted")
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowPageNew renders the multipart page form.
func (a *API) ShowPageNew(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "page_new.html", gin.H{
		"title": "New page",
		"form":  service.PageInput{},
	})
}

// CreatePageForm 处理带图片的新建页面表单，与 API 共用上传流程
func (a *API) CreatePageForm(c *gin.Context) {
	page, form, failure := a.savePageUpload(c)
	if failure != nil {
		values := service.PageInput{}
		if form != nil {
			values = service.PageInput{Title: form.Value("title"), Slug: form.Value("slug"), Content: form.Raw("content")}
		}
		a.renderHTML(c, failure.status, "page_new.html", gin.H{
			"title": "New page",
			"form":  values,
			"error": failure.message,
		})
		return
	}
	addFlash(c, "Page created")
	c.Redirect(http.StatusSeeOther, "/pages/"+page.Slug)
}

// ShowPage 渲染页面内容
func (a *API) ShowPage(c *gin.Context) {
	page, err := a.pages.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.renderNotFound(c, "Page not found")
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "not_found.html", gin.H{
			"title":   "Error",
			"message": "Failed to load page",
		})
		return
	}

	content, err := view.RenderMarkdown(page.Content)
	if err != nil {
		c.Error(err)
		content = "<p>Content cannot be displayed right now.</p>"
	}

	a.renderHTML(c, http.StatusOK, "page_show.html", gin.H{
		"title":   page.Title,
		"page":    page,
		"content": content,
	})
}

// DeletePageForm 删除页面后回到面板
func (a *API) DeletePageForm(c *gin.Context) {
	if err := a.deletePage(c.Request.Context(), c.Param("slug")); err != nil {
		c.Error(err)
		addFlash(c, "Failed to delete page")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	addFlash(c, "Page deleted")
	c.Redirect(http.StatusSeeOther, "/")
}

func postFormInput(c *gin.Context) service.PostInput {
	return service.PostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Author:  c.PostForm("author"),
	}
}

func (a *API) renderPostFormError(c *gin.Context, title, action string, input service.PostInput, err error) {
	status := http.StatusBadRequest
	message := "Title, author and content are required"
	if !errors.Is(err, service.ErrPostFieldsMissing) {
		c.Error(err)
		status = http.StatusInternalServerError
		message = "Failed to save post"
	}
	a.renderHTML(c, status, "post_form.html", gin.H{
		"title":  title,
		"action": action,
		"form":   input,
		"error":  message,
	})
}

func (a *API) renderNotFound(c *gin.Context, message string) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title":   "Not found",
		"message": message,
	})
}
