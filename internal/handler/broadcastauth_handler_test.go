package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gamehub/internal/pkg"
	"gamehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthorizer struct {
	grant *service.Grant
	err   error

	gotUserID  uint64
	gotChannel string
	gotSocket  string
}

func (s *stubAuthorizer) Authorize(_ context.Context, userID uint64, channelName, socketID string) (*service.Grant, error) {
	s.gotUserID = userID
	s.gotChannel = channelName
	s.gotSocket = socketID
	if s.err != nil {
		return nil, s.err
	}
	return s.grant, nil
}

func authRouter(svc ChannelAuthorizer, userID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// 登录中间件的替身，只注入身份
	r.POST("/api/broadcast/auth", func(c *gin.Context) {
		c.Set("user_id", userID)
	}, NewBroadcastAuthHandler(svc).Authorize)
	return r
}

func postAuthForm(r *gin.Engine, socketID, channelName string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("socket_id", socketID)
	form.Set("channel_name", channelName)

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBroadcastAuthGrant(t *testing.T) {
	svc := &stubAuthorizer{grant: &service.Grant{Auth: "key:deadbeef", ChannelData: `{"user_id":"7"}`}}
	r := authRouter(svc, 7)

	w := postAuthForm(r, "socket-1", "presence-lobby")
	require.Equal(t, http.StatusOK, w.Code)

	// 身份来自登录态，form 里的字段只传 socket 和频道
	assert.Equal(t, uint64(7), svc.gotUserID)
	assert.Equal(t, "presence-lobby", svc.gotChannel)
	assert.Equal(t, "socket-1", svc.gotSocket)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "key:deadbeef", body["auth"])
	assert.Equal(t, `{"user_id":"7"}`, body["channel_data"])
}

func TestBroadcastAuthGrantOmitsEmptyChannelData(t *testing.T) {
	svc := &stubAuthorizer{grant: &service.Grant{Auth: "key:deadbeef"}}
	r := authRouter(svc, 7)

	w := postAuthForm(r, "socket-1", "private-dm-7-9")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, hasData := body["channel_data"]
	assert.False(t, hasData)
}

func TestBroadcastAuthDenied(t *testing.T) {
	svc := &stubAuthorizer{err: pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")}
	r := authRouter(svc, 7)

	w := postAuthForm(r, "socket-1", "private-dm-1-2")
	require.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error"])
	// 拒绝响应里绝不能出现授权串
	_, hasAuth := body["auth"]
	assert.False(t, hasAuth)
}

func TestBroadcastAuthBadInput(t *testing.T) {
	svc := &stubAuthorizer{err: pkg.NewAppError(pkg.KindInputInvalid, "socket_id and channel_name required")}
	r := authRouter(svc, 7)

	w := postAuthForm(r, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
