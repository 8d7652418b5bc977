package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"cityguide/internal/logging"
	"cityguide/internal/models"
	"cityguide/internal/utils"

	"github.com/rs/zerolog"
)

const (
	rankingQueueSize     = 1000
	rankingBatchSize     = 50
	rankingFlushInterval = 500 * time.Millisecond
	defaultRefreshEvery  = time.Hour
	hotPostsLimit        = 30
)

type RankingConfig struct {
	Threshold    float64 // score at or above which a post is trending
	Clock        Clock
	RefreshEvery time.Duration
}

// RankingService 异步重算帖子的计数与 Score
type RankingService struct {
	store        *GormStore
	threshold    float64
	clock        Clock
	refreshEvery time.Duration
	queue        chan string // 待更新的帖子 ID 队列
	pending      map[string]bool
	mu           sync.Mutex
	log          zerolog.Logger
}

func NewRankingService(store *GormStore, cfg RankingConfig) *RankingService {
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.RefreshEvery <= 0 {
		cfg.RefreshEvery = defaultRefreshEvery
	}
	return &RankingService{
		store:        store,
		threshold:    cfg.Threshold,
		clock:        cfg.Clock,
		refreshEvery: cfg.RefreshEvery,
		queue:        make(chan string, rankingQueueSize),
		pending:      make(map[string]bool),
		log:          logging.Component("ranking"),
	}
}

// ScheduleUpdate 将帖子加入更新队列（异步），已在队列中的帖子会被跳过
func (s *RankingService) ScheduleUpdate(postID string) {
	s.mu.Lock()
	if s.pending[postID] {
		s.mu.Unlock()
		return
	}
	s.pending[postID] = true
	s.mu.Unlock()

	select {
	case s.queue <- postID:
	default:
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
		rankingDroppedTotal.Inc()
		s.log.Warn().Str("post_id", postID).Msg("ranking queue full, update dropped")
	}
}

// Run processes queued updates in batches and periodically refreshes hot
// posts so trending decays with age. It returns when ctx is done.
func (s *RankingService) Run(ctx context.Context) {
	batch := make([]string, 0, rankingBatchSize)
	flush := time.NewTicker(rankingFlushInterval)
	defer flush.Stop()
	refresh := time.NewTicker(s.refreshEvery)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case postID := <-s.queue:
			batch = append(batch, postID)
			if len(batch) >= rankingBatchSize {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-flush.C:
			if len(batch) > 0 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-refresh.C:
			s.RefreshHot(ctx)
		}
	}
}

func (s *RankingService) processBatch(ctx context.Context, postIDs []string) {
	for _, postID := range postIDs {
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()

		if err := s.UpdatePost(ctx, postID); err != nil && !errors.Is(err, ErrPostNotFound) {
			s.log.Error().Err(err).Str("post_id", postID).Msg("failed to update post ranking")
		}
	}
}

// UpdatePost reconciles the post's counters with its ledger rows and
// recomputes its score and trending flag.
func (s *RankingService) UpdatePost(ctx context.Context, postID string) error {
	now := s.clock.Now()
	_, err := s.store.Reconcile(ctx, postID, func(post models.Post, c Counts) (int, bool) {
		score := utils.CalculateScore(post.CreatedAt, now, c.HelpfulVotes, c.VisitCount, c.Views)
		return int(score), score >= s.threshold
	})
	return err
}

// RefreshHot 更新最近 7 天和分数最高的 30 篇帖子
func (s *RankingService) RefreshHot(ctx context.Context) int {
	gdb := s.store.DB().WithContext(ctx)
	processed := make(map[string]bool)

	var recent []models.Post
	since := s.clock.Now().AddDate(0, 0, -7)
	if err := gdb.Select("id").Where("created_at >= ?", since).Find(&recent).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to list recent posts")
	}
	var top []models.Post
	if err := gdb.Select("id").Order("score DESC").Limit(hotPostsLimit).Find(&top).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to list top posts")
	}

	for _, p := range append(recent, top...) {
		if processed[p.ID] {
			continue
		}
		processed[p.ID] = true
		if err := s.UpdatePost(ctx, p.ID); err != nil && !errors.Is(err, ErrPostNotFound) {
			s.log.Error().Err(err).Str("post_id", p.ID).Msg("failed to refresh post ranking")
		}
	}

	s.log.Info().Int("posts", len(processed)).Msg("refreshed hot post rankings")
	return len(processed)
}

// Trending lists trending posts, highest score first.
func (s *RankingService) Trending(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var posts []models.Post
	err := s.store.DB().WithContext(ctx).
		Where("trending = ?", true).
		Order("score DESC").Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, translateError("list trending", err)
	}
	return posts, nil
}
