package db

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestPostAbsolutePath(t *testing.T) {
	tests := []struct {
		name    string
		publish time.Time
		slug    string
		want    string
	}{
		{
			name:    "single digit month and day",
			publish: time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC),
			slug:    "hello-world",
			want:    "/2024/3/7/hello-world/",
		},
		{
			name:    "converted to utc",
			publish: time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*60*60)),
			slug:    "new-year",
			want:    "/2025/1/1/new-year/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := Post{Slug: tt.slug, Publish: tt.publish}
			if got := post.AbsolutePath(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPostBeforeSaveNormalizes(t *testing.T) {
	local := time.Date(2024, 5, 1, 8, 0, 0, 0, time.FixedZone("UTC+8", 8*60*60))
	post := Post{Publish: local}

	if err := post.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}

	if post.Publish.Location() != time.UTC {
		t.Fatalf("expected publish in UTC, got %v", post.Publish.Location())
	}
	if !post.Publish.Equal(local) {
		t.Fatalf("expected same instant, got %v", post.Publish)
	}
	if post.Status != StatusDraft {
		t.Fatalf("expected default status draft, got %q", post.Status)
	}
}

func TestOpenMigratesSchema(t *testing.T) {
	gdb, err := Open("file:db-open-test?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for _, model := range Models() {
		if !gdb.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
	if !gdb.Migrator().HasTable("post_tags") {
		t.Fatal("expected post_tags join table")
	}
}
