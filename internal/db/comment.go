package db

import "gorm.io/gorm"

// Comment is a reader comment attached to exactly one post.
type Comment struct {
	gorm.Model
	PostID uint   `gorm:"not null;index"`
	Name   string `gorm:"size:80;not null"`
	Email  string `gorm:"size:254;not null"`
	Body   string `gorm:"type:text;not null"`
	Active bool   `gorm:"not null;default:true;index"`
}
