package services

import (
	"context"
	"time"

	"cityguide/internal/identity"
	"cityguide/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counts are the engagement counters shown on a post.
type Counts struct {
	Views        int64 `json:"views"`
	HelpfulVotes int64 `json:"helpful_votes"`
	VisitCount   int64 `json:"visit_count"`
}

// Store persists engagement rows. Implementations flatten the identity
// token into the user_id / browser_fingerprint columns; nothing above the
// store sees that representation.
type Store interface {
	// InsertView appends a view unless the same identity already viewed the
	// post within window of at.
	InsertView(ctx context.Context, postID string, tok identity.Token, at time.Time, window time.Duration) error
	// ToggleVote flips the vote for (post, identity) and reports the new state.
	ToggleVote(ctx context.Context, postID string, tok identity.Token, at time.Time) (bool, error)
	HasVote(ctx context.Context, postID string, tok identity.Token) (bool, error)
	// Counts reads the denormalized counters on the post row.
	Counts(ctx context.Context, postID string) (Counts, error)
	// LedgerCounts counts the ledger rows directly.
	LedgerCounts(ctx context.Context, postID string) (Counts, error)
}

// GormStore is the gorm implementation of Store.
type GormStore struct {
	db    *gorm.DB
	newID func() string
}

func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb, newID: uuid.NewString}
}

func (s *GormStore) DB() *gorm.DB { return s.db }

func identityColumns(tok identity.Token) (userID, fingerprint *string, err error) {
	if id, ok := tok.UserID(); ok {
		return &id, nil, nil
	}
	if fp, ok := tok.Fingerprint(); ok {
		return nil, &fp, nil
	}
	return nil, nil, identity.ErrUnavailable
}

// whereIdentity scopes q to the identity column that tok occupies.
func whereIdentity(q *gorm.DB, tok identity.Token) *gorm.DB {
	if id, ok := tok.UserID(); ok {
		return q.Where("user_id = ?", id)
	}
	fp, _ := tok.Fingerprint()
	return q.Where("browser_fingerprint = ?", fp)
}

// viewBucket numbers the dedup window that at falls into.
func viewBucket(at time.Time, window time.Duration) int64 {
	if window <= 0 {
		return at.UnixNano()
	}
	return at.UnixNano() / int64(window)
}

func (s *GormStore) InsertView(ctx context.Context, postID string, tok identity.Token, at time.Time, window time.Duration) error {
	userID, fingerprint, err := identityColumns(tok)
	if err != nil {
		return err
	}
	at = at.UTC()
	view := models.PostView{
		ID:                 s.newID(),
		PostID:             postID,
		UserID:             userID,
		BrowserFingerprint: fingerprint,
		Bucket:             viewBucket(at, window),
		CreatedAt:          at,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Bumping the counter first takes the post row lock, so concurrent
		// views of the same post run the checks below one at a time.
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}

		var recent int64
		if err := whereIdentity(tx.Model(&models.PostView{}), tok).
			Where("post_id = ? AND created_at > ?", postID, at.Add(-window)).
			Count(&recent).Error; err != nil {
			return err
		}
		if recent > 0 {
			return ErrDuplicateEngagement
		}

		var prior int64
		if err := whereIdentity(tx.Model(&models.PostView{}), tok).
			Where("post_id = ?", postID).
			Count(&prior).Error; err != nil {
			return err
		}
		if prior == 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("visit_count", gorm.Expr("visit_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Omit(clause.Associations).Create(&view).Error
	})
	return translateError("insert view", err)
}

func (s *GormStore) ToggleVote(ctx context.Context, postID string, tok identity.Token, at time.Time) (bool, error) {
	userID, fingerprint, err := identityColumns(tok)
	if err != nil {
		return false, err
	}

	var voted bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := whereIdentity(tx, tok).Where("post_id = ?", postID).Delete(&models.HelpfulVote{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			voted = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("helpful_votes", gorm.Expr("helpful_votes - ?", del.RowsAffected)).Error
		}

		vote := models.HelpfulVote{
			ID:                 s.newID(),
			PostID:             postID,
			UserID:             userID,
			BrowserFingerprint: fingerprint,
			CreatedAt:          at.UTC(),
		}
		ins := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if ins.Error != nil {
			return ins.Error
		}
		voted = true
		if ins.RowsAffected == 0 {
			// Another toggle for the same pair inserted first; the pair is
			// voted and its counter was bumped by that transaction.
			return nil
		}

		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("helpful_votes", gorm.Expr("helpful_votes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		return false, translateError("toggle vote", err)
	}
	return voted, nil
}

func (s *GormStore) HasVote(ctx context.Context, postID string, tok identity.Token) (bool, error) {
	if !tok.Valid() {
		return false, identity.ErrUnavailable
	}
	var n int64
	err := whereIdentity(s.db.WithContext(ctx).Model(&models.HelpfulVote{}), tok).
		Where("post_id = ?", postID).
		Count(&n).Error
	if err != nil {
		return false, translateError("check vote", err)
	}
	return n > 0, nil
}

func (s *GormStore) Counts(ctx context.Context, postID string) (Counts, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Select("id", "views", "helpful_votes", "visit_count").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		return Counts{}, translateError("read counts", err)
	}
	return Counts{Views: post.Views, HelpfulVotes: post.HelpfulVotes, VisitCount: post.VisitCount}, nil
}

// Post loads a single post.
func (s *GormStore) Post(ctx context.Context, postID string) (models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return models.Post{}, translateError("load post", err)
	}
	return post, nil
}

func (s *GormStore) LedgerCounts(ctx context.Context, postID string) (Counts, error) {
	var c Counts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		c, err = ledgerCounts(tx, postID)
		return err
	})
	if err != nil {
		return Counts{}, translateError("count ledger", err)
	}
	return c, nil
}

func ledgerCounts(tx *gorm.DB, postID string) (Counts, error) {
	var c Counts
	if err := tx.Model(&models.PostView{}).Where("post_id = ?", postID).Count(&c.Views).Error; err != nil {
		return Counts{}, err
	}
	if err := tx.Model(&models.HelpfulVote{}).Where("post_id = ?", postID).Count(&c.HelpfulVotes).Error; err != nil {
		return Counts{}, err
	}
	err := tx.Raw(`SELECT COUNT(*) FROM (
		SELECT DISTINCT user_id, browser_fingerprint FROM post_views WHERE post_id = ?
	) viewers`, postID).Scan(&c.VisitCount).Error
	if err != nil {
		return Counts{}, err
	}
	return c, nil
}

// RankFunc derives a post's score and trending flag from its counters.
type RankFunc func(post models.Post, c Counts) (score int, trending bool)

// Reconcile rewrites the post's counters from its ledger rows and stores
// the rank computed from them. The post row is locked before counting so
// a concurrent view or toggle cannot be lost between the count and the
// write.
func (s *GormStore) Reconcile(ctx context.Context, postID string, rank RankFunc) (Counts, error) {
	var c Counts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("views", gorm.Expr("views"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}

		var post models.Post
		if err := tx.Where("id = ?", postID).First(&post).Error; err != nil {
			return err
		}
		var err error
		if c, err = ledgerCounts(tx, postID); err != nil {
			return err
		}
		score, trending := rank(post, c)
		return tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(map[string]any{
			"views":         c.Views,
			"helpful_votes": c.HelpfulVotes,
			"visit_count":   c.VisitCount,
			"score":         score,
			"trending":      trending,
		}).Error
	})
	if err != nil {
		return Counts{}, translateError("reconcile", err)
	}
	return c, nil
}
