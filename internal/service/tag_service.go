package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签在已发布文章中的使用次数
type TagUsage struct {
	ID    uint
	Name  string
	Slug  string
	Count int64
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// GetBySlug fetches a tag by its slug.
func (s *TagService) GetBySlug(ctx context.Context, slug string) (*db.Tag, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrTagNotFound
	}

	var tag db.Tag
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// PublishedUsage 返回已发布文章中标签的使用统计
func (s *TagService) PublishedUsage(ctx context.Context) ([]TagUsage, error) {
	var usages []TagUsage
	if err := s.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, tags.slug, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.status = ?", db.StatusPublished).
		Where("posts.deleted_at IS NULL AND tags.deleted_at IS NULL").
		Group("tags.id, tags.name, tags.slug").
		Order("count desc").
		Order("tags.name asc").
		Scan(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}
