package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmsdash/internal/cache"
	"github.com/cmsdash/internal/db"
	"github.com/cmsdash/internal/logger"
	"gorm.io/gorm"
)

// PageService provides access to slug-addressed static pages.
type PageService struct {
	db    *gorm.DB
	cache cache.Cache
	guard fillGuard
}

// PageInput holds the fields accepted when creating a page. Photo is an
// optional public-relative path of an already stored upload.
type PageInput struct {
	Title   string
	Slug    string
	Content string
	Photo   string
}

// PageUpdateInput holds the editable fields of a page. A nil Photo keeps the
// current one; a blank Photo clears it.
type PageUpdateInput struct {
	Title   string
	Content string
	Photo   *string
}

// NewPageService returns a new PageService instance. A nil cache disables caching.
func NewPageService(gdb *gorm.DB, c cache.Cache) *PageService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PageService{db: gdb, cache: c}
}

// ListAll returns every page, newest first.
func (s *PageService) ListAll(ctx context.Context) ([]db.Page, error) {
	pages := make([]db.Page, 0)
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// GetBySlug fetches a page for a given slug.
func (s *PageService) GetBySlug(ctx context.Context, slug string) (*db.Page, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPageNotFound
	}

	if cached, err := s.cache.GetPage(ctx, slug); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warnw("page_cache_get_failed", "slug", slug, "error", err)
	}

	gen := s.guard.generation()
	var page db.Page
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("get page %q: %w", slug, err)
	}

	s.guard.fill(gen, func() {
		if err := s.cache.SetPage(ctx, &page); err != nil {
			logger.Warnw("page_cache_set_failed", "slug", slug, "error", err)
		}
	})
	return &page, nil
}

// Create validates and persists a page. A duplicate slug yields ErrSlugConflict
// and leaves the existing page untouched.
func (s *PageService) Create(ctx context.Context, input PageInput) (*db.Page, error) {
	title := strings.TrimSpace(input.Title)
	slug := input.Slug
	if title == "" || strings.TrimSpace(slug) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, ErrPageFieldsMissing
	}
	// slug 按原样校验，首尾空白同样视为非法
	if !ValidSlug(slug) {
		return nil, ErrPageSlugInvalid
	}

	page := db.Page{
		Title:   title,
		Slug:    slug,
		Content: input.Content,
		Photo:   optionalString(input.Photo),
	}
	if err := s.db.WithContext(ctx).Create(&page).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("create page %q: %w", slug, err)
	}
	return &page, nil
}

// Update replaces title and content of the page identified by slug, and the
// photo when input.Photo is set. Updating an unknown slug returns ErrPageNotFound.
func (s *PageService) Update(ctx context.Context, slug string, input PageUpdateInput) (*db.Page, error) {
	slug = strings.TrimSpace(slug)
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Content) == "" {
		return nil, ErrPageFieldsMissing
	}

	fields := map[string]interface{}{
		"title":      title,
		"content":    input.Content,
		"updated_at": time.Now(),
	}
	if input.Photo != nil {
		var photo interface{}
		if p := optionalString(*input.Photo); p != nil {
			photo = *p
		}
		fields["photo"] = photo
	}

	result := s.db.WithContext(ctx).
		Model(&db.Page{}).
		Where("slug = ?", slug).
		Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("update page %q: %w", slug, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrPageNotFound
	}

	s.invalidatePage(ctx, slug)

	var page db.Page
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("reload page %q: %w", slug, err)
	}
	return &page, nil
}

// Delete removes a page by slug. Deleting an absent page is not an error.
func (s *PageService) Delete(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).Delete(&db.Page{}).Error; err != nil {
		return fmt.Errorf("delete page %q: %w", slug, err)
	}
	s.invalidatePage(ctx, slug)
	return nil
}

// PhotoReferenced reports whether any page still points at photo.
func (s *PageService) PhotoReferenced(ctx context.Context, photo string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&db.Page{}).
		Where("photo = ?", photo).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count pages with photo %q: %w", photo, err)
	}
	return count > 0, nil
}

func (s *PageService) invalidatePage(ctx context.Context, slug string) {
	s.guard.written(func() {
		if err := s.cache.InvalidatePage(ctx, slug); err != nil {
			logger.Warnw("page_cache_invalidate_failed", "slug", slug, "error", err)
		}
	})
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
