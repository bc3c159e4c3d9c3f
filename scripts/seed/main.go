package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/cmsdash/internal/config"
	"github.com/cmsdash/internal/db"
	"github.com/cmsdash/internal/logger"
	"github.com/cmsdash/internal/service"
)

type seedPage struct {
	Title   string
	Slug    string
	Content string
}

var samplePosts = []service.PostInput{
	{
		Title:   "Welcome to the dashboard",
		Author:  "Admin",
		Content: "This is the first post.\n\n- Create posts from the dashboard\n- Edit or delete them at any time",
	},
	{
		Title:   "Writing with markdown",
		Author:  "Admin",
		Content: "Posts support **markdown** and a safe subset of HTML.\n\n| Syntax | Result |\n|---|---|\n| `**bold**` | **bold** |",
	},
	{
		Title:   "Release notes",
		Author:  "Editor",
		Content: "<p>Pages can now carry an optional photo.</p>",
	},
}

var samplePages = []seedPage{
	{Title: "About", Slug: "about", Content: "# About\n\nA small content management dashboard."},
	{Title: "Contact", Slug: "contact", Content: "Reach us at hello@example.com."},
}

// 测试数据生成器
func main() {
	posts := flag.Int("posts", len(samplePosts), "number of sample posts to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.StdLogger().Fatalf("加载配置失败: %v", err)
	}
	logger.Init(cfg.Server.Mode, cfg.Log)
	defer logger.Sync()
	stdLog := logger.StdLogger()

	gdb, err := db.Open(cfg.Database, logger.GormLogger(cfg.Server.Mode))
	if err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	ctx := context.Background()
	postService := service.NewPostService(gdb, nil)
	pageService := service.NewPageService(gdb, nil)

	fmt.Println("开始生成测试数据...")

	created := 0
	for i := 0; i < *posts; i++ {
		input := samplePosts[i%len(samplePosts)]
		if i >= len(samplePosts) {
			input.Title = fmt.Sprintf("%s #%d", input.Title, i+1)
		}
		if _, err := postService.Create(ctx, input); err != nil {
			stdLog.Printf("创建文章失败 %q: %v", input.Title, err)
			continue
		}
		created++
	}

	pagesCreated := 0
	for _, page := range samplePages {
		_, err := pageService.Create(ctx, service.PageInput{Title: page.Title, Slug: page.Slug, Content: page.Content})
		switch {
		case err == nil:
			pagesCreated++
		case errors.Is(err, service.ErrSlugConflict):
			fmt.Printf("页面 %s 已存在，跳过\n", page.Slug)
		default:
			stdLog.Printf("创建页面失败 %q: %v", page.Slug, err)
		}
	}

	fmt.Printf("测试数据生成完成！文章: %d 篇，页面: %d 个\n", created, pagesCreated)
}
