package handler

import (
	"net/http"
	"strconv"
	"time"

	"gamehub/internal/model"
	"gamehub/internal/pkg"
	"gamehub/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type SendMessageReq struct {
	Content     string             `json:"content"`
	ChannelID   string             `json:"channelId"`
	ServerID    string             `json:"serverId"`
	ReceiverID  uint64             `json:"receiverId"`
	ReplyToID   string             `json:"replyToId"`
	Mentions    []uint64           `json:"mentions"`
	Attachments []model.Attachment `json:"attachments"`
	GifURL      string             `json:"gifUrl"`

	ClientTempID string `json:"clientTempId"`
	SocketID     string `json:"socketId"`
}

func (r *SendMessageReq) toInput() *service.SendMessageInput {
	return &service.SendMessageInput{
		Content:      r.Content,
		ChannelID:    r.ChannelID,
		ServerID:     r.ServerID,
		ReceiverID:   r.ReceiverID,
		ReplyToID:    r.ReplyToID,
		Mentions:     r.Mentions,
		Attachments:  r.Attachments,
		GifURL:       r.GifURL,
		ClientTempID: r.ClientTempID,
		SocketID:     r.SocketID,
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(pkg.ErrStatus(err), gin.H{
		"error": pkg.ErrKindString(err),
		"msg":   pkg.ErrMessage(err),
	})
}

// Send 发送消息接口（频道消息或私聊，由字段决定）
func (h *MessageHandler) Send(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "msg": "invalid params"})
		return
	}

	result, err := h.svc.Send(c.Request.Context(), userID, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{
		"message":   "message sent",
		"data":      result.Message,
		"delivered": result.Delivered,
	}
	if result.ClientTempID != "" {
		resp["clientTempId"] = result.ClientTempID
	}
	c.JSON(http.StatusCreated, resp)
}

// Edit 编辑消息接口，仅作者本人
func (h *MessageHandler) Edit(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req struct {
		Content  string `json:"content" binding:"required"`
		SocketID string `json:"socketId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "msg": "invalid params"})
		return
	}

	view, delivered, err := h.svc.Edit(c.Request.Context(), userID, c.Param("id"), req.Content, req.SocketID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "message edited",
		"data":      view,
		"delivered": delivered,
	})
}

// Delete 删除消息接口，作者或持有消息管理权限的成员
func (h *MessageHandler) Delete(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	delivered, err := h.svc.Delete(c.Request.Context(), userID, c.Param("id"), c.Query("socketId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "message deleted",
		"delivered": delivered,
	})
}

// List 频道历史，返回旧到新
func (h *MessageHandler) List(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	serverID := c.Query("serverId")
	if serverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "msg": "serverId required"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	before := parseBefore(c.Query("before"))

	list, err := h.svc.List(c.Request.Context(), userID, serverID, c.Query("channelId"), limit, before)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "data": list})
}

// ListDirect 私聊历史
func (h *MessageHandler) ListDirect(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	otherID, err := strconv.ParseUint(c.Query("userId"), 10, 64)
	if err != nil || otherID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "msg": "userId required"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	before := parseBefore(c.Query("before"))

	list, err := h.svc.ListDirect(c.Request.Context(), userID, otherID, limit, before)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "data": list})
}

// Typing 输入中指示接口
func (h *MessageHandler) Typing(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "msg": "invalid params"})
		return
	}

	delivered, err := h.svc.Typing(c.Request.Context(), userID, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "delivered": delivered})
}

// Reaction 表情开关接口
func (h *MessageHandler) Reaction(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req struct {
		MessageID string `json:"messageId" binding:"required"`
		Emoji     string `json:"emoji" binding:"required"`
		SocketID  string `json:"socketId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_invalid", "msg": "invalid params"})
		return
	}

	reactions, delivered, err := h.svc.ToggleReaction(c.Request.Context(), userID, req.MessageID, req.Emoji, req.SocketID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "ok",
		"data":      reactions,
		"delivered": delivered,
	})
}

func parseBefore(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.UnixMilli(ts)
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
