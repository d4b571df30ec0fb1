package service

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell/internal/db"
	"gorm.io/gorm"
)

var ErrInvalidComment = errors.New("comment is missing required fields")

// CommentService reads and writes post comments.
type CommentService struct {
	db *gorm.DB
}

// CommentInput represents a validated comment submission.
type CommentInput struct {
	Name  string
	Email string
	Body  string
}

func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// ListActive returns active comments of a post, oldest first.
func (s *CommentService) ListActive(ctx context.Context, postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.WithContext(ctx).
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at asc, id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create attaches a new active comment to post and persists it.
func (s *CommentService) Create(ctx context.Context, post *db.Post, input CommentInput) (*db.Comment, error) {
	if post == nil || post.ID == 0 {
		return nil, ErrPostNotFound
	}

	comment := db.Comment{
		PostID: post.ID,
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Body:   strings.TrimSpace(input.Body),
		Active: true,
	}
	if comment.Name == "" || comment.Email == "" || comment.Body == "" {
		return nil, ErrInvalidComment
	}

	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
