package handlers

import (
	"net/http"

	"cityguide/internal/identity"
	"cityguide/internal/middleware"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	resolver *identity.Resolver
}

func NewSessionHandler(resolver *identity.Resolver) *SessionHandler {
	return &SessionHandler{resolver: resolver}
}

// End 结束会话并丢弃缓存的设备指纹
func (h *SessionHandler) End(c *gin.Context) {
	sid, err := middleware.EndSession(c)
	h.resolver.EndSession(sid)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
