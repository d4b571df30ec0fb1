package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedTag(t *testing.T, gdb *gorm.DB, name string) db.Tag {
	t.Helper()
	tag := db.Tag{Name: name, Slug: name}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatalf("seed tag %s: %v", name, err)
	}
	return tag
}

func seedPost(t *testing.T, gdb *gorm.DB, slug, status string, publish time.Time, tags ...db.Tag) db.Post {
	t.Helper()
	post := db.Post{
		Title:   "Title " + slug,
		Slug:    slug,
		Body:    "body of " + slug,
		Author:  "tester",
		Publish: publish,
		Status:  status,
		Tags:    tags,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post %s: %v", slug, err)
	}
	return post
}

func postSlugs(posts []db.Post) []string {
	slugs := make([]string, 0, len(posts))
	for _, post := range posts {
		slugs = append(slugs, post.Slug)
	}
	return slugs
}
