package handler

import (
	"errors"
	"net/http"

	"github.com/cmsdash/internal/db"
	"github.com/cmsdash/internal/logger"
	"github.com/cmsdash/internal/service"
	"github.com/cmsdash/internal/upload"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidContentType = "Missing or invalid Content-Type header"
	msgMissingPageFields  = "Missing required fields: title, slug, or content"
	msgFileProcessing     = "File processing error"
	msgFileUploadFailed   = "File upload failed"
	msgPageSaveFailed     = "Failed to save page to database"
)

// uploadFailure describes why a multipart page submission was rejected.
type uploadFailure struct {
	status  int
	message string
}

// CreatePageUpload 以流式方式解析 multipart 请求体，保存图片后创建页面。
func (a *API) CreatePageUpload(c *gin.Context) {
	page, _, failure := a.savePageUpload(c)
	if failure != nil {
		respondError(c, failure.status, failure.message)
		return
	}
	c.JSON(http.StatusCreated, page)
}

// savePageUpload parses the body, stores the first photo and creates the page.
// The stored photo is removed again whenever no page ends up referencing it.
func (a *API) savePageUpload(c *gin.Context) (*db.Page, *upload.Form, *uploadFailure) {
	boundary, err := upload.BoundaryFromContentType(c.GetHeader("Content-Type"))
	if err != nil {
		return nil, nil, &uploadFailure{http.StatusBadRequest, msgInvalidContentType}
	}

	form := upload.NewForm(a.store)
	if err := a.parser.Parse(c.Request.Body, boundary, form); err != nil {
		discardUpload(form)
		return nil, form, classifyUploadError(c, err)
	}

	input := service.PageInput{
		Title:   form.Value("title"),
		Slug:    form.Raw("slug"),
		Content: form.Raw("content"),
	}
	if input.Title == "" || form.Value("slug") == "" || form.Value("content") == "" {
		discardUpload(form)
		return nil, form, &uploadFailure{http.StatusBadRequest, msgMissingPageFields}
	}
	if stored := form.StoredFile(); stored != nil {
		input.Photo = stored.URL
	}

	page, err := a.pages.Create(c.Request.Context(), input)
	if err != nil {
		discardUpload(form)
		switch {
		case errors.Is(err, service.ErrSlugConflict):
			return nil, form, &uploadFailure{http.StatusBadRequest, msgSlugNotUnique}
		case errors.Is(err, service.ErrPageSlugInvalid):
			return nil, form, &uploadFailure{http.StatusBadRequest, msgInvalidSlug}
		case errors.Is(err, service.ErrPageFieldsMissing):
			return nil, form, &uploadFailure{http.StatusBadRequest, msgMissingPageFields}
		default:
			c.Error(err)
			return nil, form, &uploadFailure{http.StatusInternalServerError, msgPageSaveFailed}
		}
	}

	return page, form, nil
}

func classifyUploadError(c *gin.Context, err error) *uploadFailure {
	switch {
	case errors.Is(err, upload.ErrExtensionDenied):
		return &uploadFailure{http.StatusBadRequest, "Only image files can be uploaded"}
	case errors.Is(err, upload.ErrNotImage):
		return &uploadFailure{http.StatusBadRequest, "Uploaded file is not a valid image"}
	case errors.Is(err, upload.ErrImageTooLarge):
		return &uploadFailure{http.StatusBadRequest, "Image dimensions are too large"}
	case errors.Is(err, upload.ErrFileTooLarge):
		return &uploadFailure{http.StatusBadRequest, "Uploaded file is too large"}
	case errors.Is(err, upload.ErrFieldTooLarge), errors.Is(err, upload.ErrTooManyParts):
		return &uploadFailure{http.StatusBadRequest, "Form data is too large"}
	case errors.Is(err, upload.ErrMalformed):
		c.Error(err)
		return &uploadFailure{http.StatusInternalServerError, msgFileProcessing}
	default:
		c.Error(err)
		return &uploadFailure{http.StatusInternalServerError, msgFileUploadFailed}
	}
}

func discardUpload(form *upload.Form) {
	if err := form.Discard(); err != nil {
		logger.Warnw("upload_discard_failed", "error", err)
	}
}
