package models

import (
	"time"
)

// HelpfulVote marks a post as helpful. The row's existence is the vote
// state; toggling off deletes it. One row per (post, user) and per
// (post, fingerprint), with exactly one identity column set.
type HelpfulVote struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	PostID             string    `gorm:"size:36;not null;index;uniqueIndex:idx_helpful_votes_post_user,priority:1;uniqueIndex:idx_helpful_votes_post_fp,priority:1" json:"post_id"`
	Post               Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID             *string   `gorm:"size:64;uniqueIndex:idx_helpful_votes_post_user,priority:2;check:chk_helpful_votes_identity,(user_id IS NULL) <> (browser_fingerprint IS NULL)" json:"user_id"`
	BrowserFingerprint *string   `gorm:"size:128;uniqueIndex:idx_helpful_votes_post_fp,priority:2" json:"browser_fingerprint"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}
