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

// PostService wraps post related database operations.
type PostService struct {
	db    *gorm.DB
	cache cache.Cache
	guard fillGuard
}

// PostInput represents the editable fields of a post. Updates replace all of them.
type PostInput struct {
	Title   string
	Content string
	Author  string
}

func (in PostInput) normalize() (PostInput, error) {
	out := PostInput{
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Author:  strings.TrimSpace(in.Author),
	}
	if out.Title == "" || out.Author == "" || strings.TrimSpace(out.Content) == "" {
		return PostInput{}, ErrPostFieldsMissing
	}
	return out, nil
}

// NewPostService creates a PostService instance. A nil cache disables caching.
func NewPostService(gdb *gorm.DB, c cache.Cache) *PostService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PostService{db: gdb, cache: c}
}

// ListAll returns all posts, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]db.Post, error) {
	posts := make([]db.Post, 0)
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get fetches a post by id.
func (s *PostService) Get(ctx context.Context, id uint) (*db.Post, error) {
	if cached, err := s.cache.GetPost(ctx, id); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warnw("post_cache_get_failed", "id", id, "error", err)
	}

	gen := s.guard.generation()
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}

	s.guard.fill(gen, func() {
		if err := s.cache.SetPost(ctx, &post); err != nil {
			logger.Warnw("post_cache_set_failed", "id", id, "error", err)
		}
	})
	return &post, nil
}

// Create persists a new post. id and timestamps are assigned by the store.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	normalized, err := input.normalize()
	if err != nil {
		return nil, err
	}

	post := db.Post{
		Title:   normalized.Title,
		Content: normalized.Content,
		Author:  normalized.Author,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// Update replaces title, content and author and refreshes updated_at.
// Updating an unknown id returns ErrPostNotFound.
func (s *PostService) Update(ctx context.Context, id uint, input PostInput) (*db.Post, error) {
	normalized, err := input.normalize()
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      normalized.Title,
			"content":    normalized.Content,
			"author":     normalized.Author,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update post %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}

	s.invalidatePost(ctx, id)

	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("reload post %d: %w", id, err)
	}
	return &post, nil
}

// Delete removes a post by id. Deleting an absent post is not an error.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&db.Post{}, id).Error; err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	s.invalidatePost(ctx, id)
	return nil
}

func (s *PostService) invalidatePost(ctx context.Context, id uint) {
	s.guard.written(func() {
		if err := s.cache.InvalidatePost(ctx, id); err != nil {
			logger.Warnw("post_cache_invalidate_failed", "id", id, "error", err)
		}
	})
}
