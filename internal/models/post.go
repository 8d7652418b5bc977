package models

import (
	"time"
)

const (
	PostTypeEvent = "event"
	PostTypeFood  = "food"
	PostTypePlace = "place"
)

// Post is a city guide listing. Views, HelpfulVotes and VisitCount are
// read-side counters kept equal to the ledger rows in post_views and
// helpful_votes.
type Post struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Type         string    `gorm:"size:16;not null;index" json:"type"` // event, food, place
	Title        string    `gorm:"not null" json:"title"`
	Venue        string    `json:"venue"`
	Content      string    `gorm:"type:text" json:"content"`
	Location     string    `gorm:"not null" json:"location"`
	Tags         []string  `gorm:"serializer:json" json:"tags"`
	Views        int64     `gorm:"not null;default:0" json:"views"`
	HelpfulVotes int64     `gorm:"not null;default:0" json:"helpful_votes"`
	VisitCount   int64     `gorm:"not null;default:0" json:"visit_count"` // distinct viewers
	Score        int       `gorm:"not null;default:0;index" json:"score"`
	Trending     bool      `gorm:"not null;default:false" json:"trending"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
