package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cmsdash/internal/config"
	"github.com/cmsdash/internal/db"
	"github.com/cmsdash/internal/handler"
	"github.com/cmsdash/internal/router"
	"github.com/cmsdash/internal/upload"
	"github.com/gin-gonic/gin"
)

const baseURL = "http://cmsdash.test"

type e2eSuite struct {
	handler   http.Handler
	client    *localClient
	uploadDir string
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp, nil
}

func newSuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name())
	gdb, err := db.Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"}, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })

	uploadDir := t.TempDir()
	store := upload.NewStore(config.UploadConfig{
		Dir:               uploadDir,
		URLPath:           "/uploads",
		MaxSize:           1 << 20,
		AllowedExtensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"},
		MaxWidth:          512,
		MaxHeight:         512,
	})

	r := router.SetupRouter(handler.NewAPI(gdb, nil, store), "e2e-secret")
	return &e2eSuite{handler: r, client: newLocalClient(r), uploadDir: uploadDir}
}

func (s *e2eSuite) do(t *testing.T, method, path, contentType string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, data
}

func (s *e2eSuite) doJSON(t *testing.T, method, path string, payload any, dst any) int {
	t.Helper()
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	resp, data := s.do(t, method, path, "application/json", body)
	if dst != nil {
		if err := json.Unmarshal(data, dst); err != nil {
			t.Fatalf("failed to decode %s %s response %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for x := 0; x < 32; x++ {
		img.Set(x, 8, color.RGBA{R: 30, G: 120, B: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func pageForm(t *testing.T, fields map[string]string, filename string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("photo", filename)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestPostLifecycle(t *testing.T) {
	s := newSuite(t)

	var created db.Post
	if status := s.doJSON(t, http.MethodPost, "/api/posts", map[string]string{"title": "First", "content": "Hello", "author": "Ann"}, &created); status != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d", status)
	}
	s.doJSON(t, http.MethodPost, "/api/posts", map[string]string{"title": "Second", "content": "World", "author": "Ann"}, nil)

	var posts []db.Post
	s.doJSON(t, http.MethodGet, "/api/posts", nil, &posts)
	if len(posts) != 2 || posts[0].Title != "Second" {
		t.Fatalf("unexpected post list %+v", posts)
	}

	path := fmt.Sprintf("/api/posts/%d", created.ID)
	var result map[string]any
	if status := s.doJSON(t, http.MethodPut, path, map[string]string{"title": "First!", "content": "Hello again", "author": "Ann"}, &result); status != http.StatusOK || result["success"] != true {
		t.Fatalf("update post: %d %v", status, result)
	}

	var fetched db.Post
	s.doJSON(t, http.MethodGet, path, nil, &fetched)
	if fetched.Title != "First!" || fetched.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("unexpected post after update %+v", fetched)
	}

	if status := s.doJSON(t, http.MethodDelete, path, nil, &result); status != http.StatusOK {
		t.Fatalf("delete post: expected 200, got %d", status)
	}
	var errResp map[string]string
	if status := s.doJSON(t, http.MethodGet, path, nil, &errResp); status != http.StatusNotFound || errResp["error"] != "Not found" {
		t.Fatalf("expected 404 after delete, got %d %v", status, errResp)
	}
}

func TestPageUploadLifecycle(t *testing.T) {
	s := newSuite(t)
	photo := samplePNG(t)

	body, contentType := pageForm(t, map[string]string{
		"title":   "About us",
		"slug":    "about-us",
		"content": "## Who we are\n\nA small team.",
	}, "Team Photo.png", photo)

	resp, data := s.do(t, http.MethodPost, "/api/pages/new", contentType, body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload page: expected 201, got %d: %s", resp.StatusCode, data)
	}
	var page db.Page
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}

	resp, served := s.do(t, http.MethodGet, page.PhotoPath(), "", nil)
	if resp.StatusCode != http.StatusOK || !bytes.Equal(served, photo) {
		t.Fatalf("photo not served unchanged: status %d, %d bytes", resp.StatusCode, len(served))
	}

	body, contentType = pageForm(t, map[string]string{"title": "Dup", "slug": "about-us", "content": "x"}, "", nil)
	resp, data = s.do(t, http.MethodPost, "/api/pages/new", contentType, body)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(data), "Slug must be unique") {
		t.Fatalf("duplicate slug: %d %s", resp.StatusCode, data)
	}

	var pages []db.Page
	s.doJSON(t, http.MethodGet, "/api/pages", nil, &pages)
	if len(pages) != 1 || pages[0].Title != "About us" {
		t.Fatalf("unexpected pages %+v", pages)
	}

	resp, html := s.do(t, http.MethodGet, "/pages/about-us", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(html), "Who we are</h2>") {
		t.Fatalf("page view: %d %s", resp.StatusCode, html)
	}

	var result map[string]any
	if status := s.doJSON(t, http.MethodDelete, "/api/pages/about-us", nil, &result); status != http.StatusOK {
		t.Fatalf("delete page: expected 200, got %d", status)
	}
	resp, _ = s.do(t, http.MethodGet, page.PhotoPath(), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected photo to be gone, got %d", resp.StatusCode)
	}
}

func TestDashboardFlashAcrossRedirect(t *testing.T) {
	s := newSuite(t)

	form := url.Values{"title": {"From the form"}, "content": {"Body"}, "author": {"Ann"}}
	resp, _ := s.do(t, http.MethodPost, "/posts", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	resp, html := s.do(t, http.MethodGet, "/", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(html), "Post created") || !strings.Contains(string(html), "From the form") {
		t.Fatalf("dashboard: %d %s", resp.StatusCode, html)
	}

	_, html = s.do(t, http.MethodGet, "/", "", nil)
	if strings.Contains(string(html), "Post created") {
		t.Fatal("flash message should only be shown once")
	}
}
