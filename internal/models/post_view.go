package models

import (
	"time"
)

// PostView is one recorded view. Exactly one of UserID and
// BrowserFingerprint is set. Bucket is created_at divided by the dedup
// window; the unique indexes keep one row per viewer per bucket.
type PostView struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	PostID             string    `gorm:"size:36;not null;index;uniqueIndex:idx_post_views_user_bucket,priority:1;uniqueIndex:idx_post_views_fp_bucket,priority:1" json:"post_id"`
	Post               Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID             *string   `gorm:"size:64;uniqueIndex:idx_post_views_user_bucket,priority:2;check:chk_post_views_identity,(user_id IS NULL) <> (browser_fingerprint IS NULL)" json:"user_id"`
	BrowserFingerprint *string   `gorm:"size:128;uniqueIndex:idx_post_views_fp_bucket,priority:2" json:"browser_fingerprint"`
	Bucket             int64     `gorm:"not null;uniqueIndex:idx_post_views_user_bucket,priority:3;uniqueIndex:idx_post_views_fp_bucket,priority:3" json:"-"`
	CreatedAt          time.Time `gorm:"not null;index" json:"created_at"`
}
