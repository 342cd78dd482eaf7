package models

import "time"

// Blog represents a published post owned by exactly one user.
type Blog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// BlogHashtag stores one normalized (lowercased) hashtag of a blog.
// The composite primary key gives the per-blog tag collection set semantics.
type BlogHashtag struct {
	BlogID uint   `gorm:"primaryKey;autoIncrement:false" json:"blog_id"`
	Tag    string `gorm:"primaryKey;size:64;index" json:"tag"`
}

// TableName keeps the table name aligned with the element-collection it models.
func (BlogHashtag) TableName() string {
	return "blog_hashtags"
}
