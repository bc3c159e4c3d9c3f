package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmsdash/internal/db"
)

func TestCreatePageUploadStoresPhoto(t *testing.T) {
	api, r := setupTestAPI(t)
	photo := testPNG(t, 16, 9)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "About",
		"slug":    "about",
		"content": "<p>Hi</p>",
	}, multipartFile{field: "photo", filename: "cover.png", data: photo})

	rr := performMultipart(r, "/api/pages/new", body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var page db.Page
	decodeBody(t, rr, &page)
	if !strings.HasPrefix(page.PhotoPath(), "/uploads/") || !strings.HasSuffix(page.PhotoPath(), "-cover.png") {
		t.Fatalf("unexpected photo path %q", page.PhotoPath())
	}

	onDisk, err := os.ReadFile(filepath.Join(api.Store().Dir(), filepath.Base(page.PhotoPath())))
	if err != nil {
		t.Fatalf("failed to read stored photo: %v", err)
	}
	if !bytes.Equal(onDisk, photo) {
		t.Fatal("stored photo differs from upload")
	}
}

func TestCreatePageUploadWithoutPhoto(t *testing.T) {
	_, r := setupTestAPI(t)

	body, contentType := multipartBody(t, map[string]string{"title": "T", "slug": "t", "content": "c"},
		multipartFile{field: "photo", filename: "", data: nil})

	rr := performMultipart(r, "/api/pages", body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var page db.Page
	decodeBody(t, rr, &page)
	if page.Photo != nil {
		t.Fatalf("expected no photo, got %q", *page.Photo)
	}
}

func TestCreatePageUploadRejectsNonMultipart(t *testing.T) {
	_, r := setupTestAPI(t)

	rr := performJSON(t, r, http.MethodPost, "/api/pages/new", map[string]string{"title": "T"})
	assertError(t, rr, http.StatusBadRequest, msgInvalidContentType)

	rr = performRequest(r, httptest.NewRequest(http.MethodPost, "/api/pages/new", strings.NewReader("x")))
	assertError(t, rr, http.StatusBadRequest, msgInvalidContentType)
}

func TestCreatePageUploadFailuresLeaveNothing(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		file    multipartFile
		status  int
		message string
	}{
		{
			name:    "missing content",
			fields:  map[string]string{"title": "T", "slug": "t"},
			file:    multipartFile{field: "photo", filename: "a.png"},
			status:  http.StatusBadRequest,
			message: msgMissingPageFields,
		},
		{
			name:    "invalid slug",
			fields:  map[string]string{"title": "T", "slug": "Bad Slug", "content": "c"},
			file:    multipartFile{field: "photo", filename: "a.png"},
			status:  http.StatusBadRequest,
			message: msgInvalidSlug,
		},
		{
			name:    "disallowed extension",
			fields:  map[string]string{"title": "T", "slug": "t", "content": "c"},
			file:    multipartFile{field: "photo", filename: "run.sh", data: []byte("#!/bin/sh")},
			status:  http.StatusBadRequest,
			message: "Only image files can be uploaded",
		},
		{
			name:    "not an image",
			fields:  map[string]string{"title": "T", "slug": "t", "content": "c"},
			file:    multipartFile{field: "photo", filename: "fake.png", data: []byte("plain text")},
			status:  http.StatusBadRequest,
			message: "Uploaded file is not a valid image",
		},
		{
			name:    "image too large",
			fields:  map[string]string{"title": "T", "slug": "t", "content": "c"},
			file:    multipartFile{field: "photo", filename: "big.png"},
			status:  http.StatusBadRequest,
			message: "Image dimensions are too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, r := setupTestAPI(t)
			file := tt.file
			if file.data == nil {
				size := 4
				if tt.name == "image too large" {
					size = 300
				}
				file.data = testPNG(t, size, size)
			}

			body, contentType := multipartBody(t, tt.fields, file)
			rr := performMultipart(r, "/api/pages/new", body, contentType)
			assertError(t, rr, tt.status, tt.message)

			if count := countRows(t, api, &db.Page{}); count != 0 {
				t.Fatalf("expected no pages, found %d", count)
			}
			if files := uploadedFiles(t, api); len(files) != 0 {
				t.Fatalf("expected no stored files, found %d", len(files))
			}
		})
	}
}

func TestCreatePageUploadDuplicateSlugRemovesFile(t *testing.T) {
	api, r := setupTestAPI(t)
	performJSON(t, r, http.MethodPost, "/api/pages", map[string]string{"title": "First", "slug": "dup", "content": "one"})

	body, contentType := multipartBody(t, map[string]string{"title": "Second", "slug": "dup", "content": "two"},
		multipartFile{field: "photo", filename: "b.png", data: testPNG(t, 4, 4)})

	rr := performMultipart(r, "/api/pages/new", body, contentType)
	assertError(t, rr, http.StatusBadRequest, msgSlugNotUnique)

	if files := uploadedFiles(t, api); len(files) != 0 {
		t.Fatalf("expected orphan photo to be removed, found %d", len(files))
	}
	var page db.Page
	decodeBody(t, performJSON(t, r, http.MethodGet, "/api/pages/dup", nil), &page)
	if page.Title != "First" || page.Photo != nil {
		t.Fatalf("first page modified: %+v", page)
	}
}

func TestCreatePageUploadMalformedBody(t *testing.T) {
	api, r := setupTestAPI(t)

	body := bytes.NewBufferString("--xyz\r\nContent-Disposition: form-data; name=\"title\"\r\n\r\nT\r\n--xyz\r\nContent-Disposition: form-data; name=\"photo\"; filename=\"a.png\"\r\n\r\nPNG")
	rr := performMultipart(r, "/api/pages/new", body, "multipart/form-data; boundary=xyz")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rr.Code, rr.Body.String())
	}
	if files := uploadedFiles(t, api); len(files) != 0 {
		t.Fatalf("expected partial file to be removed, found %d", len(files))
	}
}
