package models

import (
	"time"
)

// PostPreviewLength is the number of characters a post prints as.
const PostPreviewLength = 15

type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id"` // Nullable, posts survive their group
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image    string    `gorm:"size:100" json:"image"` // Relative to MEDIA_ROOT, e.g. posts/<uuid>.gif
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > PostPreviewLength {
		return string(runes[:PostPreviewLength])
	}
	return p.Text
}
