package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gamehub/internal/model"
	"gamehub/internal/perms"
	"gamehub/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type messageFixture struct {
	svc      *MessageService
	messages *fakeMessages
	dms      *fakeDMs
	channels *fakeChannels
	b        *fakeBroadcaster
	log      *opLog
	resolver *fakeResolver
}

func newMessageFixture() *messageFixture {
	log := &opLog{}
	messages := newFakeMessages(log)
	dms := newFakeDMs()
	b := &fakeBroadcaster{log: log}
	resolver := &fakeResolver{set: perms.FullSet()}
	channels := &fakeChannels{
		channels: []model.Channel{
			{ID: 1, PublicID: "chan-1", CommunityID: 1, Name: "general", Kind: model.ChannelKindText},
		},
		nextID: 1,
	}

	svc := &MessageService{
		Messages: messages,
		DMs:      dms,
		Users: &fakeUsers{users: map[uint64]*model.User{
			100: {ID: 100, Username: "alice"},
			42:  {ID: 42, Username: "bob"},
		}},
		Communities: &fakeCommunities{list: []*model.Community{
			{ID: 1, PublicID: "comm-1", OwnerID: 100},
			{ID: 2, PublicID: "comm-2", OwnerID: 100},
		}},
		Channels: &ChannelService{Channels: channels},
		Perms:    resolver,
		B:        b,
		Log:      zap.NewNop().Sugar(),
	}

	return &messageFixture{svc: svc, messages: messages, dms: dms, channels: channels, b: b, log: log, resolver: resolver}
}

func TestSendChannelMessagePersistsBeforeBroadcast(t *testing.T) {
	f := newMessageFixture()

	result, err := f.svc.Send(context.Background(), 100, &SendMessageInput{
		Content:      "hi",
		ChannelID:    "chan-1",
		ServerID:     "comm-1",
		ClientTempID: "tmp-123",
		SocketID:     "sock-1",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Message)
	assert.NotEmpty(t, result.Message.ID)
	assert.NotEqual(t, "tmp-123", result.Message.ID)
	assert.Equal(t, "tmp-123", result.ClientTempID)
	assert.True(t, result.Delivered)
	assert.Equal(t, uint64(100), result.Message.Author.ID)
	assert.Equal(t, "alice", result.Message.Author.Name)

	require.Len(t, f.b.events, 1)
	ev := f.b.events[0]
	assert.Equal(t, "private-text-channel-comm-1", ev.Channel)
	assert.Equal(t, "new_message", ev.Event)
	assert.Equal(t, "sock-1", ev.ExceptSocket)

	// 落库一定先于广播
	assert.Equal(t, []string{"persist", "broadcast"}, f.log.ops)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), 100, &SendMessageInput{
		ChannelID: "chan-1",
		ServerID:  "comm-1",
	})
	require.Error(t, err)
	assert.Equal(t, "input_invalid", pkg.ErrKindString(err))
	assert.Empty(t, f.messages.msgs)
}

func TestSendRejectsMissingTarget(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), 100, &SendMessageInput{Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, "input_invalid", pkg.ErrKindString(err))
}

func TestSendAttachmentOnlyIsValid(t *testing.T) {
	f := newMessageFixture()

	result, err := f.svc.Send(context.Background(), 100, &SendMessageInput{
		Attachments: []model.Attachment{{URL: "http://cdn/f.png", Name: "f.png"}},
		ChannelID:   "chan-1",
		ServerID:    "comm-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message.ID)
}

func TestSendBothTargetsPrefersDM(t *testing.T) {
	f := newMessageFixture()

	result, err := f.svc.Send(context.Background(), 100, &SendMessageInput{
		Content:    "hey",
		ReceiverID: 42,
		ChannelID:  "chan-1",
		ServerID:   "comm-1",
	})
	require.NoError(t, err)

	assert.Len(t, f.dms.dms, 1)
	assert.Empty(t, f.messages.msgs)
	assert.Equal(t, uint64(42), result.Message.ReceiverID)

	require.Len(t, f.b.events, 1)
	assert.Equal(t, pkg.DMChannelName("100", "42"), f.b.events[0].Channel)
}

func TestSendBroadcastDegradedStillSucceeds(t *testing.T) {
	f := newMessageFixture()
	f.b.fail = true

	result, err := f.svc.Send(context.Background(), 100, &SendMessageInput{
		Content:   "hi",
		ChannelID: "chan-1",
		ServerID:  "comm-1",
	})
	require.NoError(t, err)
	assert.False(t, result.Delivered)
	// 广播失败不回滚已写入的消息
	assert.Len(t, f.messages.msgs, 1)
}

func TestSendChannelDeniedWithoutMembership(t *testing.T) {
	f := newMessageFixture()
	f.resolver.set = perms.NewSet()

	_, err := f.svc.Send(context.Background(), 42, &SendMessageInput{
		Content:   "hi",
		ChannelID: "chan-1",
		ServerID:  "comm-1",
	})
	require.Error(t, err)
	assert.Equal(t, "unauthorized", pkg.ErrKindString(err))
	assert.Empty(t, f.messages.msgs)
	assert.Empty(t, f.b.events)
}

func seedChannelMessage(f *messageFixture, publicID string, authorID uint64, content string, createdAt time.Time, replyTo string) {
	f.messages.nextID++
	f.messages.msgs[publicID] = &model.Message{
		ID:          f.messages.nextID,
		PublicID:    publicID,
		ChannelID:   1,
		CommunityID: 1,
		AuthorID:    authorID,
		Content:     content,
		ReplyToID:   replyTo,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestEditOnlyAuthor(t *testing.T) {
	f := newMessageFixture()
	seedChannelMessage(f, "m-1", 100, "hello", time.Now(), "")

	// 管理员权限也不能编辑别人的消息
	_, _, err := f.svc.Edit(context.Background(), 42, "m-1", "hacked", "")
	require.Error(t, err)
	assert.Equal(t, "unauthorized", pkg.ErrKindString(err))

	view, delivered, err := f.svc.Edit(context.Background(), 100, "m-1", "hello again", "sock-2")
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.True(t, view.Edited)
	assert.Equal(t, "hello again", view.Content)

	require.Len(t, f.b.events, 1)
	assert.Equal(t, "message_edited", f.b.events[0].Event)
	assert.Equal(t, "sock-2", f.b.events[0].ExceptSocket)
}

func TestEditDirectEventHasNoChannelField(t *testing.T) {
	f := newMessageFixture()

	result, err := f.svc.Send(context.Background(), 100, &SendMessageInput{Content: "hi", ReceiverID: 42})
	require.NoError(t, err)

	view, _, err := f.svc.Edit(context.Background(), 100, result.Message.ID, "hi again", "")
	require.NoError(t, err)
	assert.True(t, view.Edited)

	// 私聊的编辑事件不带频道字段，连空串都不该出现
	last := f.b.events[len(f.b.events)-1]
	require.Equal(t, "message_edited", last.Event)
	raw, err := json.Marshal(last.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "channelId")

	// 删除事件同理
	_, err = f.svc.Delete(context.Background(), 100, result.Message.ID, "")
	require.NoError(t, err)
	last = f.b.events[len(f.b.events)-1]
	require.Equal(t, "message_deleted", last.Event)
	raw, err = json.Marshal(last.Data)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "channelId")
}

func TestEditUnknownMessage(t *testing.T) {
	f := newMessageFixture()

	_, _, err := f.svc.Edit(context.Background(), 100, "nope", "x", "")
	require.Error(t, err)
	assert.Equal(t, "not_found", pkg.ErrKindString(err))
}

func TestDeleteAuthorization(t *testing.T) {
	f := newMessageFixture()
	seedChannelMessage(f, "m-1", 100, "one", time.Now(), "")
	seedChannelMessage(f, "m-2", 100, "two", time.Now(), "")
	seedChannelMessage(f, "m-3", 100, "three", time.Now(), "")

	// 作者总是可以删
	_, err := f.svc.Delete(context.Background(), 100, "m-1", "")
	require.NoError(t, err)

	// 非作者需要消息管理权限
	f.resolver.set = perms.NewSet(perms.Baseline()...)
	_, err = f.svc.Delete(context.Background(), 42, "m-2", "")
	require.Error(t, err)
	assert.Equal(t, "unauthorized", pkg.ErrKindString(err))

	f.resolver.set = perms.NewSet(perms.ManageMessages)
	_, err = f.svc.Delete(context.Background(), 42, "m-2", "")
	require.NoError(t, err)

	require.Contains(t, f.messages.msgs, "m-3")
	assert.NotContains(t, f.messages.msgs, "m-1")
	assert.NotContains(t, f.messages.msgs, "m-2")

	// 删除事件只带 id 和频道
	last := f.b.events[len(f.b.events)-1]
	assert.Equal(t, "message_deleted", last.Event)
}

func TestListReversesAndEnriches(t *testing.T) {
	f := newMessageFixture()
	base := time.Now().Add(-time.Hour)
	seedChannelMessage(f, "m-old", 100, "first", base, "")
	seedChannelMessage(f, "m-new", 999, "reply", base.Add(time.Minute), "m-old")

	list, err := f.svc.List(context.Background(), 100, "comm-1", "chan-1", 50, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// 存储按新到旧取，返回前反转成旧到新
	assert.Equal(t, "m-old", list[0].ID)
	assert.Equal(t, "m-new", list[1].ID)

	// 查不到的作者用占位名，不报错
	assert.Equal(t, UnknownAuthorName, list[1].Author.Name)
	assert.Equal(t, "alice", list[0].Author.Name)

	// 回复预览只展开一层
	require.NotNil(t, list[1].ReplyTo)
	assert.Equal(t, "m-old", list[1].ReplyTo.ID)
	assert.Equal(t, "first", list[1].ReplyTo.Content)
	assert.Nil(t, list[0].ReplyTo)
}

func TestListSynthesizesDefaultChannel(t *testing.T) {
	f := newMessageFixture()

	// comm-2 没有任何频道，第一次访问必须自愈出默认频道而不是报错
	list, err := f.svc.List(context.Background(), 100, "comm-2", "", 50, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	channels, err := f.channels.ListByCommunity(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, model.DefaultChannelName, channels[0].Name)
	assert.Equal(t, 0, channels[0].Position)
}

func TestListDirectMarksRead(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), 42, &SendMessageInput{Content: "yo", ReceiverID: 100})
	require.NoError(t, err)

	list, err := f.svc.ListDirect(context.Background(), 100, 42, 50, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Author.Name)

	for _, dm := range f.dms.dms {
		assert.True(t, dm.Read)
	}
}

func TestToggleReaction(t *testing.T) {
	f := newMessageFixture()
	seedChannelMessage(f, "m-1", 100, "hello", time.Now(), "")

	reactions, delivered, err := f.svc.ToggleReaction(context.Background(), 42, "m-1", "🔥", "")
	require.NoError(t, err)
	assert.True(t, delivered)
	require.Len(t, reactions, 1)
	assert.Equal(t, []uint64{42}, reactions[0].UserIDs)

	// 再点一次取消
	reactions, _, err = f.svc.ToggleReaction(context.Background(), 42, "m-1", "🔥", "")
	require.NoError(t, err)
	assert.Empty(t, reactions)
}

func TestTypingDirect(t *testing.T) {
	f := newMessageFixture()

	delivered, err := f.svc.Typing(context.Background(), 100, &SendMessageInput{ReceiverID: 42, SocketID: "sock-9"})
	require.NoError(t, err)
	assert.True(t, delivered)

	require.Len(t, f.b.events, 1)
	assert.Equal(t, "typing", f.b.events[0].Event)
	assert.Equal(t, pkg.DMChannelName("42", "100"), f.b.events[0].Channel)
	assert.Equal(t, "sock-9", f.b.events[0].ExceptSocket)
}
