package main

import (
	"fmt"
	"time"

	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/logging"
	"gorm.io/gorm"
)

// 演示数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	if err := db.Init(cfg.Database.Path); err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("数据库初始化失败")
	}

	fmt.Println("开始生成演示数据...")

	tags, err := createTags(db.DB)
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("创建标签失败")
	}

	posts, err := createPosts(db.DB, tags, time.Now().UTC())
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("创建文章失败")
	}

	if err := createComments(db.DB, posts); err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("创建评论失败")
	}

	fmt.Println("演示数据生成完成！")
	fmt.Printf("文章: %d 篇, 标签: %d 个\n", len(posts), len(tags))
}

var seedTags = []struct {
	name string
	slug string
}{
	{"Go", "go"},
	{"Web", "web"},
	{"Databases", "databases"},
	{"Testing", "testing"},
	{"Writing", "writing"},
}

// createTags 创建演示标签，已存在的标签直接复用。
func createTags(gdb *gorm.DB) (map[string]db.Tag, error) {
	out := make(map[string]db.Tag, len(seedTags))
	for _, item := range seedTags {
		tag := db.Tag{Name: item.name, Slug: item.slug}
		if err := gdb.Where(db.Tag{Slug: item.slug}).FirstOrCreate(&tag).Error; err != nil {
			return nil, fmt.Errorf("tag %s: %w", item.slug, err)
		}
		out[item.slug] = tag
	}
	return out, nil
}

var seedPosts = []struct {
	title  string
	slug   string
	body   string
	tags   []string
	status string
}{
	{
		title:  "Building web services in Go",
		slug:   "building-web-services-in-go",
		body:   "Go's standard library and a thin router such as **gin** go a long way.\n\nThis post walks through handlers, middleware and graceful shutdown.",
		tags:   []string{"go", "web"},
		status: db.StatusPublished,
	},
	{
		title:  "Getting more out of SQLite",
		slug:   "getting-more-out-of-sqlite",
		body:   "SQLite is a great default for small sites. Indexes, `WAL` mode and short transactions keep it fast.",
		tags:   []string{"databases"},
		status: db.StatusPublished,
	},
	{
		title:  "GORM tips",
		slug:   "gorm-tips",
		body:   "Preload what you render, select what you need, and keep an eye on the generated SQL.",
		tags:   []string{"go", "databases"},
		status: db.StatusPublished,
	},
	{
		title:  "Table driven tests",
		slug:   "table-driven-tests",
		body:   "A slice of cases and a loop with `t.Run` cover most unit tests in Go.",
		tags:   []string{"go", "testing"},
		status: db.StatusPublished,
	},
	{
		title:  "Testing HTTP handlers",
		slug:   "testing-http-handlers",
		body:   "`httptest.NewRecorder` plus a real router gives fast end-to-end coverage of a web app.",
		tags:   []string{"go", "web", "testing"},
		status: db.StatusPublished,
	},
	{
		title:  "Writing for engineers",
		slug:   "writing-for-engineers",
		body:   "Lead with the conclusion. Cut the rest in half.",
		tags:   []string{"writing"},
		status: db.StatusPublished,
	},
	{
		title:  "Notes on schema migrations",
		slug:   "notes-on-schema-migrations",
		body:   "Still drafting this one.",
		tags:   []string{"databases"},
		status: db.StatusDraft,
	},
}

// createPosts 重建演示文章，发布时间从 now 起每篇向前推 12 小时。
func createPosts(gdb *gorm.DB, tags map[string]db.Tag, now time.Time) ([]db.Post, error) {
	// 清理旧文章及关联
	if err := gdb.Exec("DELETE FROM post_tags").Error; err != nil {
		return nil, err
	}
	if err := gdb.Exec("DELETE FROM comments").Error; err != nil {
		return nil, err
	}
	if err := gdb.Exec("DELETE FROM posts").Error; err != nil {
		return nil, err
	}

	posts := make([]db.Post, 0, len(seedPosts))
	for idx, data := range seedPosts {
		var postTags []db.Tag
		for _, slug := range data.tags {
			if tag, ok := tags[slug]; ok {
				postTags = append(postTags, tag)
			}
		}

		post := db.Post{
			Title:   data.title,
			Slug:    data.slug,
			Body:    data.body,
			Author:  "admin",
			Publish: now.Add(-time.Duration(idx) * 12 * time.Hour),
			Status:  data.status,
			Tags:    postTags,
		}
		if err := gdb.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("post %s: %w", data.slug, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// createComments 给前两篇已发布文章各加两条评论，其中一条为隐藏评论。
func createComments(gdb *gorm.DB, posts []db.Post) error {
	seeded := 0
	for _, post := range posts {
		if !post.IsPublished() || seeded == 2 {
			continue
		}
		seeded++

		visible := db.Comment{PostID: post.ID, Name: "Reader", Email: "reader@example.com", Body: "Thanks, this was useful."}
		if err := gdb.Create(&visible).Error; err != nil {
			return err
		}

		hidden := db.Comment{PostID: post.ID, Name: "Spammer", Email: "spam@example.com", Body: "Buy now!"}
		if err := gdb.Create(&hidden).Error; err != nil {
			return err
		}
		if err := gdb.Model(&hidden).Update("active", false).Error; err != nil {
			return err
		}
	}
	return nil
}
