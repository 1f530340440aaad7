package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDMChannelNameIsSymmetric(t *testing.T) {
	// 双方各自计算必须得到同一个频道名
	assert.Equal(t, DMChannelName("100", "42"), DMChannelName("42", "100"))
	assert.Equal(t, "private-dm-100-42", DMChannelName("42", "100"))
	assert.Equal(t, "private-dm-1-2", DMChannelName("1", "2"))
}

func TestCommunityChannelName(t *testing.T) {
	assert.Equal(t, "private-text-channel-abc-123", CommunityChannelName("abc-123"))
}

func TestDMParticipants(t *testing.T) {
	a, b, ok := DMParticipants("private-dm-42-100")
	assert.True(t, ok)
	assert.Equal(t, "42", a)
	assert.Equal(t, "100", b)

	_, _, ok = DMParticipants("private-text-channel-x")
	assert.False(t, ok)

	_, _, ok = DMParticipants("private-dm-42")
	assert.False(t, ok)

	_, _, ok = DMParticipants("private-dm--100")
	assert.False(t, ok)
}
