package models

import "time"

// Follow is one directed edge of the social graph: follower -> followee.
// Followers and following of a user are both derived views over this table,
// which avoids cyclic ownership between users. Self-loops are never stored.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_edge;index" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follows_edge;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
