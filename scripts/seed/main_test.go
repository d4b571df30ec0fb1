package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano()), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSeedIsRepeatable(t *testing.T) {
	gdb := setupSeedTestDB(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for run := 0; run < 2; run++ {
		tags, err := createTags(gdb)
		if err != nil {
			t.Fatalf("run %d: createTags: %v", run, err)
		}
		posts, err := createPosts(gdb, tags, now)
		if err != nil {
			t.Fatalf("run %d: createPosts: %v", run, err)
		}
		if err := createComments(gdb, posts); err != nil {
			t.Fatalf("run %d: createComments: %v", run, err)
		}
	}

	var tagCount, postCount, publishedCount, activeComments, hiddenComments int64
	gdb.Model(&db.Tag{}).Count(&tagCount)
	gdb.Model(&db.Post{}).Count(&postCount)
	gdb.Model(&db.Post{}).Where("status = ?", db.StatusPublished).Count(&publishedCount)
	gdb.Model(&db.Comment{}).Where("active = ?", true).Count(&activeComments)
	gdb.Model(&db.Comment{}).Where("active = ?", false).Count(&hiddenComments)

	if tagCount != int64(len(seedTags)) {
		t.Fatalf("expected %d tags, got %d", len(seedTags), tagCount)
	}
	if postCount != int64(len(seedPosts)) {
		t.Fatalf("expected %d posts, got %d", len(seedPosts), postCount)
	}
	if publishedCount != int64(len(seedPosts)-1) {
		t.Fatalf("expected one draft, got %d published of %d", publishedCount, postCount)
	}
	if activeComments != 2 || hiddenComments != 2 {
		t.Fatalf("expected 2 active and 2 hidden comments, got %d and %d", activeComments, hiddenComments)
	}
}

func TestSeedPostsShareTags(t *testing.T) {
	gdb := setupSeedTestDB(t)

	tags, err := createTags(gdb)
	if err != nil {
		t.Fatalf("createTags: %v", err)
	}
	posts, err := createPosts(gdb, tags, time.Now().UTC())
	if err != nil {
		t.Fatalf("createPosts: %v", err)
	}

	var goPosts int64
	if err := gdb.Table("post_tags").Where("tag_id = ?", tags["go"].ID).Count(&goPosts).Error; err != nil {
		t.Fatalf("count go posts: %v", err)
	}
	if goPosts < 2 {
		t.Fatalf("expected several posts tagged go, got %d", goPosts)
	}

	for i := 1; i < len(posts); i++ {
		if !posts[i].Publish.Before(posts[i-1].Publish) {
			t.Fatalf("expected publish dates to step backwards")
		}
	}
}
