package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	// StatusDraft marks a post that is not publicly visible.
	StatusDraft = "draft"
	// StatusPublished marks a post visible on the public site.
	StatusPublished = "published"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title    string    `gorm:"size:250;not null"`
	Slug     string    `gorm:"size:250;not null;uniqueIndex:idx_post_slug_publish"`
	Body     string    `gorm:"type:text"`
	Author   string    `gorm:"size:150"`
	Publish  time.Time `gorm:"not null;index;uniqueIndex:idx_post_slug_publish"`
	Status   string    `gorm:"size:10;not null;default:draft;index"`
	Tags     []Tag     `gorm:"many2many:post_tags;"`
	Comments []Comment

	// SharedTags is filled by similarity queries only.
	SharedTags int64 `gorm:"->;-:migration" json:"-"`
}

// BeforeSave keeps publish timestamps in UTC so day lookups compare consistently.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.Publish.IsZero() {
		p.Publish = time.Now()
	}
	p.Publish = p.Publish.UTC()
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

// IsPublished reports whether the post is publicly visible.
func (p Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// AbsolutePath returns the canonical detail path /<year>/<month>/<day>/<slug>/.
func (p Post) AbsolutePath() string {
	publish := p.Publish.UTC()
	return fmt.Sprintf("/%d/%d/%d/%s/", publish.Year(), int(publish.Month()), publish.Day(), p.Slug)
}

// SharePath returns the path of the recommend-by-email page.
func (p Post) SharePath() string {
	return fmt.Sprintf("/share/%d/", p.ID)
}
