package pkg

import "strings"

// 逻辑频道命名是对外的线协议，前缀不能改
const (
	PresencePrefix    = "presence-"
	PrivatePrefix     = "private-"
	DMChannelPrefix   = "private-dm-"
	TextChannelPrefix = "private-text-channel-"
)

// DMChannelName 两个参与者字典序排序后拼出频道名，双方独立计算结果一致
func DMChannelName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return DMChannelPrefix + a + "-" + b
}

// CommunityChannelName 社区内所有文字频道共用一个广播频道，名字里是社区 id 不是频道 id
func CommunityChannelName(communityPublicID string) string {
	return TextChannelPrefix + communityPublicID
}

// DMParticipants 从频道名里解出两个参与者 id；解不出返回 false
func DMParticipants(channelName string) (string, string, bool) {
	suffix, ok := strings.CutPrefix(channelName, DMChannelPrefix)
	if !ok {
		return "", "", false
	}
	parts := strings.Split(suffix, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
