package handlers

import (
	"net/http"

	"cityguide/internal/middleware"
	"cityguide/internal/services"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	ledger *services.Ledger
}

func NewEngagementHandler(ledger *services.Ledger) *EngagementHandler {
	return &EngagementHandler{ledger: ledger}
}

// Counts 返回帖子的浏览、有用、访客计数
func (h *EngagementHandler) Counts(c *gin.Context) {
	postID, ok := bindPostID(c)
	if !ok {
		return
	}
	counts, err := h.ledger.GetEngagementCounts(c.Request.Context(), postID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// RecordView 记录一次浏览。去重、无身份和存储失败都不影响客户端
func (h *EngagementHandler) RecordView(c *gin.Context) {
	postID, ok := bindPostID(c)
	if !ok {
		return
	}
	tok := middleware.CurrentIdentity(c)
	outcome, err := h.ledger.RecordViewOutcome(c.Request.Context(), postID, tok)
	if isNotFound(err) {
		RenderError(c, err)
		return
	}
	// Other failures were logged by the ledger; a lost view is not the reader's problem.
	c.JSON(http.StatusAccepted, gin.H{
		"recorded":  outcome == services.ViewRecorded,
		"duplicate": outcome == services.ViewDuplicate,
	})
}

// CheckVoted 查询当前身份是否已标记“有用”
func (h *EngagementHandler) CheckVoted(c *gin.Context) {
	postID, ok := bindPostID(c)
	if !ok {
		return
	}
	voted, err := h.ledger.CheckIfVoted(c.Request.Context(), postID, middleware.CurrentIdentity(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voted": voted})
}

// ToggleHelpful 切换“有用”状态，返回最新状态和计数
func (h *EngagementHandler) ToggleHelpful(c *gin.Context) {
	postID, ok := bindPostID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	state, err := h.ledger.ToggleHelpfulVote(ctx, postID, middleware.CurrentIdentity(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	resp := gin.H{"voted": state.Voted}
	if counts, err := h.ledger.GetEngagementCounts(ctx, postID); err == nil {
		resp["helpful_votes"] = counts.HelpfulVotes
	}
	c.JSON(http.StatusOK, resp)
}
