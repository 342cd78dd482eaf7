package models

import "time"

// Like marks that a user liked a blog. The composite unique index guarantees
// at most one row per (user, blog) pair even under concurrent requests.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_blog" json:"user_id"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_blog;index" json:"blog_id"`
	CreatedAt time.Time `json:"created_at"`
}
