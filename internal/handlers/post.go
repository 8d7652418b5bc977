package handlers

import (
	"errors"
	"net/http"

	"cityguide/internal/logging"
	"cityguide/internal/middleware"
	"cityguide/internal/services"
	"cityguide/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts   *services.GormStore
	ledger  *services.Ledger
	ranking *services.RankingService
}

func NewPostHandler(posts *services.GormStore, ledger *services.Ledger, ranking *services.RankingService) *PostHandler {
	return &PostHandler{posts: posts, ledger: ledger, ranking: ranking}
}

// Detail 帖子详情。浏览记录在后台完成，不阻塞页面
func (h *PostHandler) Detail(c *gin.Context) {
	postID, ok := bindPostID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	post, err := h.posts.Post(ctx, postID)
	if err != nil {
		RenderError(c, err)
		return
	}

	tok := middleware.CurrentIdentity(c)
	voted, _ := h.ledger.CheckIfVoted(ctx, postID, tok) // logged by the ledger
	h.ledger.TrackView(ctx, postID, tok)

	c.JSON(http.StatusOK, gin.H{"post": post, "voted": voted})
}

// Trending 热门帖子列表
func (h *PostHandler) Trending(c *gin.Context) {
	limit := utils.StringToInt(c.Query("limit"), 20)
	posts, err := h.ranking.Trending(c.Request.Context(), limit)
	if err != nil {
		log := logging.Component("http")
		log.Error().Err(err).Msg("failed to list trending posts")
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func isNotFound(err error) bool {
	return errors.Is(err, services.ErrPostNotFound)
}
