package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cmsdash/internal/logger"
	"github.com/cmsdash/internal/service"
	"github.com/gin-gonic/gin"
)

// ListPages returns every page, newest first.
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.ListAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch pages")
		return
	}
	c.JSON(http.StatusOK, pages)
}

// CreatePage accepts either a JSON body or a multipart form with an optional photo.
func (a *API) CreatePage(c *gin.Context) {
	if isMultipart(c) {
		a.CreatePageUpload(c)
		return
	}

	var req pageCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := a.pages.Create(c.Request.Context(), req.input())
	if err != nil {
		a.respondPageError(c, err, "Failed to create page")
		return
	}
	c.JSON(http.StatusCreated, page)
}

// GetPage 根据 slug 获取页面
func (a *API) GetPage(c *gin.Context) {
	page, err := a.pages.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.respondPageError(c, err, "Failed to fetch page")
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdatePage 替换页面的标题与内容，请求中带 photo 时一并替换图片
func (a *API) UpdatePage(c *gin.Context) {
	var req pageUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	slug := c.Param("slug")
	input := req.input()

	var previous string
	if input.Photo != nil {
		if page, err := a.pages.GetBySlug(ctx, slug); err == nil {
			previous = page.PhotoPath()
		}
	}

	updated, err := a.pages.Update(ctx, slug, input)
	if err != nil {
		a.respondPageError(c, err, "Failed to update page")
		return
	}
	if previous != updated.PhotoPath() {
		a.releasePhoto(ctx, slug, previous)
	}
	respondSuccess(c)
}

// DeletePage 删除页面，目标不存在时同样返回成功
func (a *API) DeletePage(c *gin.Context) {
	if err := a.deletePage(c.Request.Context(), c.Param("slug")); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to delete page")
		return
	}
	respondSuccess(c)
}

// deletePage removes the row and then, best effort, the photo stored for it.
func (a *API) deletePage(ctx context.Context, slug string) error {
	var photo string
	if page, err := a.pages.GetBySlug(ctx, slug); err == nil {
		photo = page.PhotoPath()
	}

	if err := a.pages.Delete(ctx, slug); err != nil {
		return err
	}
	a.releasePhoto(ctx, slug, photo)
	return nil
}

// releasePhoto removes a stored upload once no page references it any more.
// Paths outside the upload prefix are left alone.
func (a *API) releasePhoto(ctx context.Context, slug, photo string) {
	if photo == "" || a.store == nil || !strings.HasPrefix(photo, a.store.URLPath()+"/") {
		return
	}
	referenced, err := a.pages.PhotoReferenced(ctx, photo)
	if err != nil {
		logger.Warnw("page_photo_reference_check_failed", "slug", slug, "photo", photo, "error", err)
		return
	}
	if referenced {
		return
	}
	if err := a.store.Remove(photo); err != nil {
		logger.Warnw("page_photo_remove_failed", "slug", slug, "photo", photo, "error", err)
	}
}

func (a *API) respondPageError(c *gin.Context, err error, fallback string) {
	switch service.KindOf(err) {
	case service.KindValidation:
		if errors.Is(err, service.ErrPageSlugInvalid) {
			respondError(c, http.StatusBadRequest, msgInvalidSlug)
			return
		}
		respondError(c, http.StatusBadRequest, msgMissingFields)
	case service.KindConflict:
		respondError(c, http.StatusBadRequest, msgSlugNotUnique)
	case service.KindNotFound:
		respondError(c, http.StatusNotFound, msgNotFound)
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(strings.ToLower(c.GetHeader("Content-Type")), "multipart/")
}
