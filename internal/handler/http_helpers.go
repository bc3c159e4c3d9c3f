package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgMissingFields = "Missing fields"
	msgInvalidBody   = "Invalid request body"
	msgInvalidSlug   = "Slug must be lowercase, alphanumeric, and may include hyphens"
	msgSlugNotUnique = "Slug must be unique"
	msgNotFound      = "Not found"
	msgInvalidPostID = "Invalid post id"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// bindJSON 绑定请求体，校验失败与格式错误返回不同的提示。
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondError(c, http.StatusBadRequest, msgMissingFields)
		} else {
			respondError(c, http.StatusBadRequest, msgInvalidBody)
		}
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
