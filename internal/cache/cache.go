package cache

import (
	"context"
	"errors"

	"github.com/cmsdash/internal/db"
)

// ErrMiss is returned when the requested entry is not cached.
var ErrMiss = errors.New("cache miss")

// Cache 为单条记录读取提供可选的读穿缓存。列表查询从不缓存。
type Cache interface {
	GetPost(ctx context.Context, id uint) (*db.Post, error)
	SetPost(ctx context.Context, post *db.Post) error
	InvalidatePost(ctx context.Context, id uint) error

	GetPage(ctx context.Context, slug string) (*db.Page, error)
	SetPage(ctx context.Context, page *db.Page) error
	InvalidatePage(ctx context.Context, slug string) error

	Close() error
}

// Noop 是默认实现：所有读取均未命中，写入与失效直接忽略。
type Noop struct{}

func (Noop) GetPost(context.Context, uint) (*db.Post, error)   { return nil, ErrMiss }
func (Noop) SetPost(context.Context, *db.Post) error           { return nil }
func (Noop) InvalidatePost(context.Context, uint) error        { return nil }
func (Noop) GetPage(context.Context, string) (*db.Page, error) { return nil, ErrMiss }
func (Noop) SetPage(context.Context, *db.Page) error           { return nil }
func (Noop) InvalidatePage(context.Context, string) error      { return nil }
func (Noop) Close() error                                      { return nil }
