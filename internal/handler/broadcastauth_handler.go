package handler

import (
	"context"
	"net/http"

	"gamehub/internal/pkg"
	"gamehub/internal/service"

	"github.com/gin-gonic/gin"
)

// ChannelAuthorizer 授权服务的最小面，便于替身
type ChannelAuthorizer interface {
	Authorize(ctx context.Context, userID uint64, channelName, socketID string) (*service.Grant, error)
}

type BroadcastAuthHandler struct {
	svc ChannelAuthorizer
}

func NewBroadcastAuthHandler(svc ChannelAuthorizer) *BroadcastAuthHandler {
	return &BroadcastAuthHandler{svc: svc}
}

// Authorize 订阅授权接口。传输层客户端发 form 编码的 socket_id 和
// channel_name，身份从登录态来，不信 body 里的任何身份字段
func (h *BroadcastAuthHandler) Authorize(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	socketID := c.PostForm("socket_id")
	channelName := c.PostForm("channel_name")

	grant, err := h.svc.Authorize(c.Request.Context(), userID, channelName, socketID)
	if err != nil {
		status := pkg.ErrStatus(err)
		// 拒绝时不带任何授权串
		c.JSON(status, gin.H{
			"error": pkg.ErrKindString(err),
			"msg":   pkg.ErrMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, grant)
}
