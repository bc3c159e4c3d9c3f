package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

const (
	defaultMaxFieldBytes = 1 << 20
	defaultMaxParts      = 100
)

var (
	ErrNotMultipart    = errors.New("content type is not multipart/form-data")
	ErrMalformed       = errors.New("malformed multipart body")
	ErrFieldTooLarge   = errors.New("form field is too large")
	ErrTooManyParts    = errors.New("too many form parts")
	ErrFileTooLarge    = errors.New("uploaded file is too large")
	ErrExtensionDenied = errors.New("file extension is not allowed")
	ErrNotImage        = errors.New("uploaded file is not a supported image")
	ErrImageTooLarge   = errors.New("image dimensions exceed the limit")
)

// IsClientError reports whether err was caused by the submitted body rather than the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotMultipart) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrFieldTooLarge) ||
		errors.Is(err, ErrTooManyParts) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrExtensionDenied) ||
		errors.Is(err, ErrNotImage) ||
		errors.Is(err, ErrImageTooLarge)
}

// Visitor receives parse events in body order. The reader passed to File is
// only valid for the duration of the call; unread bytes are discarded.
type Visitor interface {
	Field(name, value string) error
	File(field, filename string, r io.Reader) error
}

// Parser streams a multipart/form-data body part by part without buffering file contents.
type Parser struct {
	MaxFieldBytes int64
	MaxParts      int
}

// BoundaryFromContentType extracts the multipart boundary from a Content-Type header value.
func BoundaryFromContentType(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return "", ErrNotMultipart
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return "", ErrNotMultipart
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", ErrNotMultipart
	}
	return boundary, nil
}

// Parse reads every part from r and dispatches it to v. It returns the first
// visitor error, or ErrMalformed wrapped around a framing error.
func (p Parser) Parse(r io.Reader, boundary string, v Visitor) error {
	maxField := p.MaxFieldBytes
	if maxField <= 0 {
		maxField = defaultMaxFieldBytes
	}
	maxParts := p.MaxParts
	if maxParts <= 0 {
		maxParts = defaultMaxParts
	}

	mr := multipart.NewReader(r, boundary)
	for count := 0; ; count++ {
		part, err := mr.NextPart()
		// 只有读到结束边界时才会返回裸 io.EOF，截断的请求体会被包装
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if count >= maxParts {
			part.Close()
			return ErrTooManyParts
		}

		err = p.dispatch(part, maxField, v)
		part.Close()
		if err != nil {
			return err
		}
	}
}

func (p Parser) dispatch(part *multipart.Part, maxField int64, v Visitor) error {
	name := part.FormName()
	if name == "" {
		return nil
	}

	filename, isFile := partFilename(part)
	if isFile {
		// 浏览器在未选择文件时会发送空文件名的 part
		if filename == "" {
			return nil
		}
		return v.File(name, filename, part)
	}

	data, err := io.ReadAll(io.LimitReader(part, maxField+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if int64(len(data)) > maxField {
		return ErrFieldTooLarge
	}
	return v.Field(name, string(data))
}

// partFilename distinguishes a file part with an empty filename from a plain field.
func partFilename(part *multipart.Part) (string, bool) {
	disposition := part.Header.Get("Content-Disposition")
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", false
	}
	if _, ok := params["filename"]; !ok {
		return "", false
	}
	return part.FileName(), true
}
