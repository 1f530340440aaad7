package pkg

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hmacHex(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGrantSignatureFormat(t *testing.T) {
	sig := GrantSignature("app-key", "app-secret", "socket-1", "private-dm-1-2", "")

	parts := strings.SplitN(sig, ":", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "app-key", parts[0])
	assert.Len(t, parts[1], 64)

	// 无 channel_data 时签名串只有 socket_id:channel_name
	assert.Equal(t, hmacHex("app-secret", "socket-1:private-dm-1-2"), parts[1])
}

func TestGrantSignatureWithChannelData(t *testing.T) {
	data := `{"user_id":"7"}`
	sig := GrantSignature("app-key", "app-secret", "socket-1", "presence-lobby", data)

	parts := strings.SplitN(sig, ":", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, hmacHex("app-secret", "socket-1:presence-lobby:"+data), parts[1])

	// channel_data 参与签名，不同的数据必须给出不同的签名
	other := GrantSignature("app-key", "app-secret", "socket-1", "presence-lobby", `{"user_id":"8"}`)
	assert.NotEqual(t, sig, other)
}

func TestGrantSignatureDeterministic(t *testing.T) {
	a := GrantSignature("k", "s", "sock", "private-text-channel-x", "")
	b := GrantSignature("k", "s", "sock", "private-text-channel-x", "")
	assert.Equal(t, a, b)
}
