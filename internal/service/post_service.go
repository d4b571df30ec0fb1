package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

// PostsPerPage is the fixed page size of the public post list.
const PostsPerPage = 3

// SimilarPostsLimit caps the related-posts block on a detail page.
const SimilarPostsLimit = 4

var ErrPostNotFound = errors.New("post not found")

// PostService wraps post related database operations.
// Every query is restricted to published posts.
type PostService struct {
	db *gorm.DB
}

// PostFilter describes filters for listing published posts.
type PostFilter struct {
	// TagID narrows the list to posts carrying the tag. Zero means no narrowing.
	TagID   uint
	Page    int
	PerPage int
}

// PostListResult aggregates one page of posts and pagination counters.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// HasPrevious reports whether a page precedes the current one.
func (r *PostListResult) HasPrevious() bool {
	return r.Page > 1
}

// HasNext reports whether a page follows the current one.
func (r *PostListResult) HasNext() bool {
	return r.Page < r.TotalPages
}

func (r *PostListResult) PreviousPage() int {
	return r.Page - 1
}

func (r *PostListResult) NextPage() int {
	return r.Page + 1
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

func (s *PostService) published(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&db.Post{}).Where("posts.status = ?", db.StatusPublished)
}

// ParsePage converts a raw page token into a page number.
// Missing, non-integer and non-positive tokens all mean page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ListPublished returns one page of published posts, newest first.
// A page beyond the last one is clamped to the last page.
func (s *PostService) ListPublished(ctx context.Context, filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = PostsPerPage
	}

	if err := s.applyFilters(s.published(ctx), filter).Count(&result.Total).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}
	if result.Page > result.TotalPages {
		result.Page = result.TotalPages
	}

	offset := (result.Page - 1) * result.PerPage

	var posts []db.Post
	if err := s.applyFilters(s.published(ctx), filter).
		Preload("Tags").
		Order("posts.publish desc, posts.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	result.Posts = posts
	return result, nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.TagID != 0 {
		subQuery := s.db.Table("post_tags").
			Select("post_tags.post_id").
			Where("post_tags.tag_id = ?", filter.TagID)
		query = query.Where("posts.id IN (?)", subQuery)
	}
	return query
}

// GetPublished fetches a published post by id with tags preloaded.
func (s *PostService) GetPublished(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.published(ctx).Preload("Tags").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPublishedByDate fetches the published post addressed by its slug and
// the UTC calendar day of its publish timestamp.
func (s *PostService) GetPublishedByDate(ctx context.Context, year, month, day int, slug string) (*db.Post, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, ErrPostNotFound
	}

	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 2024-02-31 into March; such dates address nothing.
	if start.Year() != year || int(start.Month()) != month || start.Day() != day {
		return nil, ErrPostNotFound
	}
	end := start.AddDate(0, 0, 1)

	var post db.Post
	if err := s.published(ctx).
		Preload("Tags").
		Where("posts.slug = ?", slug).
		Where("posts.publish >= ? AND posts.publish < ?", start, end).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Similar returns published posts sharing at least one tag with post,
// ranked by shared tag count then recency, at most limit entries.
func (s *PostService) Similar(ctx context.Context, post *db.Post, limit int) ([]db.Post, error) {
	if post == nil {
		return nil, ErrPostNotFound
	}
	if limit <= 0 {
		limit = SimilarPostsLimit
	}

	var tagIDs []uint
	if err := s.db.WithContext(ctx).
		Table("post_tags").
		Where("post_id = ?", post.ID).
		Pluck("tag_id", &tagIDs).Error; err != nil {
		return nil, err
	}
	if len(tagIDs) == 0 {
		return []db.Post{}, nil
	}

	var posts []db.Post
	if err := s.published(ctx).
		Select("posts.*, COUNT(post_tags.tag_id) AS shared_tags").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id IN ?", tagIDs).
		Where("posts.id <> ?", post.ID).
		Group("posts.id").
		Order("shared_tags desc").
		Order("posts.publish desc").
		Order("posts.id desc").
		Limit(limit).
		Preload("Tags").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
