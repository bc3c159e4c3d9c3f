package handler

import (
	"net/http"

	"github.com/cmsdash/internal/service"
	"github.com/gin-gonic/gin"
)

// ListPosts returns every post, newest first.
func (a *API) ListPosts(c *gin.Context) {
	posts, err := a.posts.ListAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost 创建文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := a.posts.Create(c.Request.Context(), req.input())
	if err != nil {
		a.respondPostError(c, err, "Failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidPostID)
		return
	}

	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		a.respondPostError(c, err, "Failed to fetch post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost 更新文章的标题、内容与作者
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidPostID)
		return
	}

	var req postRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := a.posts.Update(c.Request.Context(), id, req.input()); err != nil {
		a.respondPostError(c, err, "Failed to update post")
		return
	}
	respondSuccess(c)
}

// DeletePost 删除文章，目标不存在时同样返回成功
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidPostID)
		return
	}

	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	respondSuccess(c)
}

func (a *API) respondPostError(c *gin.Context, err error, fallback string) {
	switch service.KindOf(err) {
	case service.KindValidation:
		respondError(c, http.StatusBadRequest, msgMissingFields)
	case service.KindNotFound:
		respondError(c, http.StatusNotFound, msgNotFound)
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
