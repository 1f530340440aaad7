package pkg

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// GrantSignature 订阅授权串：key:HMAC-SHA256(socket_id:channel_name[:channel_data])
// 这是传输层客户端校验用的固定格式
func GrantSignature(key, secret, socketID, channelName, channelData string) string {
	payload := socketID + ":" + channelName
	if channelData != "" {
		payload += ":" + channelData
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return key + ":" + hex.EncodeToString(mac.Sum(nil))
}
