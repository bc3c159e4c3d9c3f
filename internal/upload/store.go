package upload

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmsdash/internal/config"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxBaseNameRunes = 80

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// StoredFile describes a file written by Store.
type StoredFile struct {
	Name   string // file name inside the upload directory
	Path   string // absolute or relative path on disk
	URL    string // public-relative path, e.g. /uploads/<name>
	Size   int64
	Width  int
	Height int
	Format string
}

// Store writes uploaded files into a single directory under collision-resistant names.
type Store struct {
	dir       string
	urlPath   string
	maxSize   int64
	maxWidth  int
	maxHeight int
	allowed   map[string]bool
	now       func() time.Time
}

// NewStore builds a Store from upload configuration.
func NewStore(cfg config.UploadConfig) *Store {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "public/uploads"
	}
	return &Store{
		dir:       dir,
		urlPath:   strings.TrimRight(cfg.URLPath, "/"),
		maxSize:   cfg.MaxSize,
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		allowed:   allowed,
		now:       time.Now,
	}
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// URLPath returns the public prefix under which stored files are served.
func (s *Store) URLPath() string {
	return s.urlPath
}

// Save streams r to disk. Bytes are copied as they arrive; nothing is held
// in memory beyond the copy buffer. On any failure the partial file is removed.
func (s *Store) Save(filename string, r io.Reader) (*StoredFile, error) {
	base, ext := sanitizeFilename(filename)
	if len(s.allowed) > 0 && !s.allowed[ext] {
		return nil, ErrExtensionDenied
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], base, ext)
	diskPath := filepath.Join(s.dir, name)

	file, err := os.OpenFile(diskPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	written, copyErr := io.Copy(file, src)
	closeErr := file.Close()

	stored := &StoredFile{
		Name: name,
		Path: diskPath,
		URL:  s.urlPath + "/" + name,
		Size: written,
	}

	switch {
	case copyErr != nil:
		os.Remove(diskPath)
		return nil, fmt.Errorf("write upload file: %w", copyErr)
	case closeErr != nil:
		os.Remove(diskPath)
		return nil, fmt.Errorf("close upload file: %w", closeErr)
	case s.maxSize > 0 && written > s.maxSize:
		os.Remove(diskPath)
		return nil, ErrFileTooLarge
	}

	if imageExtensions[ext] {
		if err := s.inspectImage(stored); err != nil {
			os.Remove(diskPath)
			return nil, err
		}
	}

	return stored, nil
}

// Remove deletes a previously stored file given its public URL. Missing files are ignored.
func (s *Store) Remove(publicURL string) error {
	name := path.Base(strings.TrimPrefix(publicURL, s.urlPath+"/"))
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) inspectImage(stored *StoredFile) error {
	f, err := os.Open(stored.Path)
	if err != nil {
		return fmt.Errorf("open stored file: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ErrNotImage
	}
	if (s.maxWidth > 0 && cfg.Width > s.maxWidth) || (s.maxHeight > 0 && cfg.Height > s.maxHeight) {
		return ErrImageTooLarge
	}
	stored.Width = cfg.Width
	stored.Height = cfg.Height
	stored.Format = format
	return nil
}

// sanitizeFilename reduces a client-supplied name to a safe base and a lowercased extension.
func sanitizeFilename(filename string) (string, string) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	lastDash := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	cleaned := strings.Trim(b.String(), "-.")
	if cleaned == "" {
		cleaned = "upload"
	}
	if runes := []rune(cleaned); len(runes) > maxBaseNameRunes {
		cleaned = string(runes[:maxBaseNameRunes])
	}

	for _, r := range ext[min(1, len(ext)):] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return cleaned, ""
		}
	}
	return cleaned, ext
}
