package service

import (
	"context"
	"testing"

	"gamehub/internal/model"
	"gamehub/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureChannelsSynthesizesDefault(t *testing.T) {
	store := &fakeChannels{}
	svc := &ChannelService{Channels: store}

	list, err := svc.EnsureChannels(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.DefaultChannelName, list[0].Name)
	assert.Equal(t, model.ChannelKindText, list[0].Kind)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, uint64(5), list[0].CommunityID)
	assert.NotEmpty(t, list[0].PublicID)

	// 第二次不再建新的
	again, err := svc.EnsureChannels(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, again, 1)
	assert.Equal(t, list[0].PublicID, again[0].PublicID)
}

func TestResolveEmptyRefFallsBackToFirstChannel(t *testing.T) {
	store := &fakeChannels{channels: []model.Channel{
		{ID: 1, PublicID: "chan-a", CommunityID: 3, Name: "general"},
		{ID: 2, PublicID: "chan-b", CommunityID: 3, Name: "random"},
	}}
	svc := &ChannelService{Channels: store}

	ch, err := svc.Resolve(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, "chan-a", ch.PublicID)
}

func TestResolveUnknownChannel(t *testing.T) {
	store := &fakeChannels{channels: []model.Channel{
		{ID: 1, PublicID: "chan-a", CommunityID: 3},
	}}
	svc := &ChannelService{Channels: store}

	_, err := svc.Resolve(context.Background(), 3, "nope")
	require.Error(t, err)
	assert.Equal(t, "not_found", pkg.ErrKindString(err))

	// 频道存在但属于别的社区，同样不可见
	_, err = svc.Resolve(context.Background(), 9, "chan-a")
	require.Error(t, err)
	assert.Equal(t, "not_found", pkg.ErrKindString(err))
}
