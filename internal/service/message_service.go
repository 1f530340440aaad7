package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"gamehub/internal/broadcast"
	"gamehub/internal/model"
	"gamehub/internal/perms"
	"gamehub/internal/pkg"
	"gamehub/internal/repository/mysql"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnknownAuthorName 作者查不到时的占位，绝不因此报错
const UnknownAuthorName = "Unknown User"

type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByPublicID(ctx context.Context, publicID string) (*model.Message, error)
	FindByPublicIDs(ctx context.Context, publicIDs []string) ([]model.Message, error)
	ListByChannel(ctx context.Context, channelID uint64, limit int, before *time.Time) ([]model.Message, error)
	Update(ctx context.Context, msg *model.Message) error
	Delete(ctx context.Context, id uint64) error
}

type DirectMessageStore interface {
	Create(ctx context.Context, dm *model.DirectMessage) error
	FindByPublicID(ctx context.Context, publicID string) (*model.DirectMessage, error)
	ListBetween(ctx context.Context, a, b uint64, limit int, before *time.Time) ([]model.DirectMessage, error)
	Update(ctx context.Context, dm *model.DirectMessage) error
	Delete(ctx context.Context, id uint64) error
	MarkRead(ctx context.Context, senderID, receiverID uint64) error
}

type CommunityStore interface {
	CommunityFinder
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
}

// AuthorSummary 消息视图里挂的作者摘要
type AuthorSummary struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ReplyPreview 回复预览只展开一层，回复的回复不再递归
type ReplyPreview struct {
	ID      string        `json:"id"`
	Content string        `json:"content"`
	Author  AuthorSummary `json:"author"`
}

// MessageView 对外的消息形态，只暴露 public id
type MessageView struct {
	ID          string             `json:"id"`
	ChannelID   string             `json:"channelId,omitempty"`
	ServerID    string             `json:"serverId,omitempty"`
	ReceiverID  uint64             `json:"receiverId,omitempty"`
	Author      AuthorSummary      `json:"author"`
	Content     string             `json:"content"`
	GifURL      string             `json:"gifUrl,omitempty"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
	Mentions    []uint64           `json:"mentions,omitempty"`
	Reactions   []model.Reaction   `json:"reactions,omitempty"`
	ReplyTo     *ReplyPreview      `json:"replyTo,omitempty"`
	Edited      bool               `json:"edited"`
	Pinned      bool               `json:"pinned"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type SendMessageInput struct {
	Content     string
	ChannelID   string
	ServerID    string
	ReceiverID  uint64
	ReplyToID   string
	Mentions    []uint64
	Attachments []model.Attachment
	GifURL      string

	// ClientTempID 客户端乐观渲染用的相关 id，只回显，绝不落库
	ClientTempID string
	// SocketID 源会话，广播时排除它
	SocketID string
}

// SendResult Delivered=false 表示消息已落库但广播降级
type SendResult struct {
	Message      *MessageView `json:"data"`
	ClientTempID string       `json:"clientTempId,omitempty"`
	Delivered    bool         `json:"delivered"`
}

// 发送目标在入口判定一次，后面全走类型分支，不再反复探测字段
type sendTarget interface{ isSendTarget() }

type dmTarget struct{ receiverID uint64 }

type channelTarget struct{ communityRef, channelRef string }

func (dmTarget) isSendTarget()      {}
func (channelTarget) isSendTarget() {}

// MessageService 消息生命周期协调器：校验 → 鉴权 → 落库 → 广播。
// 顺序不可变：落库成功之前绝不广播
type MessageService struct {
	Messages    MessageStore
	DMs         DirectMessageStore
	Users       UserFinder
	Communities CommunityStore
	Channels    *ChannelService
	Perms       PermissionResolver

	B   broadcast.Broadcaster
	Log *zap.SugaredLogger
}

func NewMessageService(b broadcast.Broadcaster, log *zap.SugaredLogger) *MessageService {
	return &MessageService{
		Messages:    &mysql.MessageRepository{},
		DMs:         &mysql.DirectMessageRepository{},
		Users:       &mysql.UserRepository{},
		Communities: &mysql.CommunityRepository{},
		Channels:    NewChannelService(),
		Perms:       NewPermissionService(),
		B:           b,
		Log:         log,
	}
}

func (s *MessageService) resolveTarget(senderID uint64, in *SendMessageInput) (sendTarget, error) {
	hasDM := in.ReceiverID != 0
	hasChannel := in.ChannelID != "" && in.ServerID != ""

	switch {
	case hasDM && hasChannel:
		// 两种目标同时出现：私聊优先，频道字段忽略
		s.Log.Warnw("payload carries both receiver and channel, treating as dm",
			"sender_id", senderID, "receiver_id", in.ReceiverID, "channel_id", in.ChannelID)
		return dmTarget{receiverID: in.ReceiverID}, nil
	case hasDM:
		return dmTarget{receiverID: in.ReceiverID}, nil
	case hasChannel:
		return channelTarget{communityRef: in.ServerID, channelRef: in.ChannelID}, nil
	default:
		return nil, pkg.NewAppError(pkg.KindInputInvalid, "either receiverId or channelId+serverId required")
	}
}

// Send 创建消息。返回的 SendResult 里回显 clientTempId
func (s *MessageService) Send(ctx context.Context, senderID uint64, in *SendMessageInput) (*SendResult, error) {
	if in.Content == "" && len(in.Attachments) == 0 && in.GifURL == "" {
		return nil, pkg.NewAppError(pkg.KindInputInvalid, "message needs text, attachment or gif")
	}

	target, err := s.resolveTarget(senderID, in)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case dmTarget:
		return s.sendDirect(ctx, senderID, t.receiverID, in)
	case channelTarget:
		return s.sendChannel(ctx, senderID, t, in)
	default:
		return nil, pkg.NewAppError(pkg.KindInputInvalid, "unsupported target")
	}
}

func (s *MessageService) sendDirect(ctx context.Context, senderID, receiverID uint64, in *SendMessageInput) (*SendResult, error) {
	sender, receiver, err := s.loadPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	dm := &model.DirectMessage{
		PublicID:    uuid.NewString(),
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		Content:     in.Content,
		GifURL:      in.GifURL,
		Attachments: in.Attachments,
		ReplyToID:   in.ReplyToID,
	}

	if err := s.DMs.Create(ctx, dm); err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "message persist failed", err)
	}

	view := s.dmView(ctx, dm, summaryOf(sender))
	channel := pkg.DMChannelName(formatID(sender.ID), formatID(receiver.ID))
	delivered := s.publish(ctx, channel, broadcast.EventNewMessage, view, in.SocketID)

	return &SendResult{Message: view, ClientTempID: in.ClientTempID, Delivered: delivered}, nil
}

func (s *MessageService) sendChannel(ctx context.Context, senderID uint64, t channelTarget, in *SendMessageInput) (*SendResult, error) {
	community, err := s.Communities.FindByRef(ctx, t.communityRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.NewAppError(pkg.KindNotFound, "community not found")
		}
		return nil, pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
	}

	if err := s.requirePermission(ctx, senderID, community.PublicID, perms.SendMessages); err != nil {
		return nil, err
	}

	channel, err := s.Channels.Resolve(ctx, community.ID, t.channelRef)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		PublicID:    uuid.NewString(),
		ChannelID:   channel.ID,
		CommunityID: community.ID,
		AuthorID:    senderID,
		Content:     in.Content,
		GifURL:      in.GifURL,
		Attachments: in.Attachments,
		Mentions:    in.Mentions,
		ReplyToID:   in.ReplyToID,
	}

	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "message persist failed", err)
	}

	authors := s.authorSummaries(ctx, collectAuthorIDs([]model.Message{*msg}))
	previews := s.replyPreviews(ctx, []model.Message{*msg})
	view := channelMessageView(msg, channel.PublicID, community.PublicID, authors, previews)

	delivered := s.publish(ctx, pkg.CommunityChannelName(community.PublicID), broadcast.EventNewMessage, view, in.SocketID)

	return &SendResult{Message: view, ClientTempID: in.ClientTempID, Delivered: delivered}, nil
}

type editEvent struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channelId,omitempty"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Edit 只有作者本人能编辑，管理员也不行（删除才有管理员通道）
func (s *MessageService) Edit(ctx context.Context, callerID uint64, publicID, newContent, socketID string) (*MessageView, bool, error) {
	if newContent == "" {
		return nil, false, pkg.NewAppError(pkg.KindInputInvalid, "content required")
	}

	msg, err := s.Messages.FindByPublicID(ctx, publicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.editDirect(ctx, callerID, publicID, newContent, socketID)
	}
	if err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "message lookup failed", err)
	}

	if msg.AuthorID != callerID {
		return nil, false, pkg.NewAppError(pkg.KindUnauthorized, "only the author can edit")
	}

	msg.Content = newContent
	msg.Edited = true
	if err := s.Messages.Update(ctx, msg); err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "message update failed", err)
	}

	community, channelPublicID := s.locateChannelMessage(ctx, msg)

	// 编辑事件只带变化的字段，不发整条消息
	delivered := false
	if community != nil {
		delivered = s.publish(ctx, pkg.CommunityChannelName(community.PublicID), broadcast.EventMessageEdited, editEvent{
			ID:        msg.PublicID,
			ChannelID: channelPublicID,
			Content:   msg.Content,
			UpdatedAt: msg.UpdatedAt,
		}, socketID)
	}

	authors := s.authorSummaries(ctx, []uint64{msg.AuthorID})
	view := channelMessageView(msg, channelPublicID, communityPublicID(community), authors, nil)
	return view, delivered, nil
}

func (s *MessageService) editDirect(ctx context.Context, callerID uint64, publicID, newContent, socketID string) (*MessageView, bool, error) {
	dm, err := s.DMs.FindByPublicID(ctx, publicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkg.NewAppError(pkg.KindNotFound, "message not found")
	}
	if err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "message lookup failed", err)
	}

	if dm.SenderID != callerID {
		return nil, false, pkg.NewAppError(pkg.KindUnauthorized, "only the author can edit")
	}

	dm.Content = newContent
	dm.Edited = true
	if err := s.DMs.Update(ctx, dm); err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "message update failed", err)
	}

	channel := pkg.DMChannelName(formatID(dm.SenderID), formatID(dm.ReceiverID))
	delivered := s.publish(ctx, channel, broadcast.EventMessageEdited, editEvent{
		ID:        dm.PublicID,
		Content:   dm.Content,
		UpdatedAt: dm.UpdatedAt,
	}, socketID)

	view := s.dmView(ctx, dm, s.authorSummaries(ctx, []uint64{dm.SenderID})[dm.SenderID])
	return view, delivered, nil
}

type deleteEvent struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId,omitempty"`
}

// Delete 作者可删；非作者需要消息管理权限。硬删除，无墓碑
func (s *MessageService) Delete(ctx context.Context, callerID uint64, publicID, socketID string) (bool, error) {
	msg, err := s.Messages.FindByPublicID(ctx, publicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.deleteDirect(ctx, callerID, publicID, socketID)
	}
	if err != nil {
		return false, pkg.WrapAppError(pkg.KindPersistence, "message lookup failed", err)
	}

	community, channelPublicID := s.locateChannelMessage(ctx, msg)

	if msg.AuthorID != callerID {
		if community == nil {
			return false, pkg.NewAppError(pkg.KindUnauthorized, "delete denied")
		}
		if err := s.requirePermission(ctx, callerID, community.PublicID, perms.ManageMessages); err != nil {
			return false, err
		}
	}

	if err := s.Messages.Delete(ctx, msg.ID); err != nil {
		return false, pkg.WrapAppError(pkg.KindPersistence, "message delete failed", err)
	}

	delivered := false
	if community != nil {
		delivered = s.publish(ctx, pkg.CommunityChannelName(community.PublicID), broadcast.EventMessageDeleted, deleteEvent{
			ID:        msg.PublicID,
			ChannelID: channelPublicID,
		}, socketID)
	}
	return delivered, nil
}

func (s *MessageService) deleteDirect(ctx context.Context, callerID uint64, publicID, socketID string) (bool, error) {
	dm, err := s.DMs.FindByPublicID(ctx, publicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkg.NewAppError(pkg.KindNotFound, "message not found")
	}
	if err != nil {
		return false, pkg.WrapAppError(pkg.KindPersistence, "message lookup failed", err)
	}

	if dm.SenderID != callerID {
		return false, pkg.NewAppError(pkg.KindUnauthorized, "delete denied")
	}

	if err := s.DMs.Delete(ctx, dm.ID); err != nil {
		return false, pkg.WrapAppError(pkg.KindPersistence, "message delete failed", err)
	}

	channel := pkg.DMChannelName(formatID(dm.SenderID), formatID(dm.ReceiverID))
	delivered := s.publish(ctx, channel, broadcast.EventMessageDeleted, deleteEvent{ID: dm.PublicID}, socketID)
	return delivered, nil
}

// List 频道历史。存储按新到旧取，返回前反转成旧到新给自上而下渲染的客户端
func (s *MessageService) List(ctx context.Context, callerID uint64, communityRef, channelRef string, limit int, before *time.Time) ([]MessageView, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	community, err := s.Communities.FindByRef(ctx, communityRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.NewAppError(pkg.KindNotFound, "community not found")
		}
		return nil, pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
	}

	if err := s.requirePermission(ctx, callerID, community.PublicID, perms.ReadMessageHistory); err != nil {
		return nil, err
	}

	channel, err := s.Channels.Resolve(ctx, community.ID, channelRef)
	if err != nil {
		return nil, err
	}

	msgs, err := s.Messages.ListByChannel(ctx, channel.ID, limit, before)
	if err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "message list failed", err)
	}

	authors := s.authorSummaries(ctx, collectAuthorIDs(msgs))
	previews := s.replyPreviews(ctx, msgs)

	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, *channelMessageView(&msgs[i], channel.PublicID, community.PublicID, authors, previews))
	}
	reverseViews(views)
	return views, nil
}

// ListDirect 私聊历史，顺带把对方发来的消息标记已读
func (s *MessageService) ListDirect(ctx context.Context, callerID, otherID uint64, limit int, before *time.Time) ([]MessageView, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	caller, other, err := s.loadPair(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}

	dms, err := s.DMs.ListBetween(ctx, caller.ID, other.ID, limit, before)
	if err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "message list failed", err)
	}

	if err := s.DMs.MarkRead(ctx, other.ID, caller.ID); err != nil {
		s.Log.Warnw("mark read failed", "user_id", caller.ID, "other_id", other.ID, "err", err)
	}

	summaries := map[uint64]AuthorSummary{
		caller.ID: summaryOf(caller),
		other.ID:  summaryOf(other),
	}

	views := make([]MessageView, 0, len(dms))
	for i := range dms {
		dm := &dms[i]
		v := s.dmView(ctx, dm, summaries[dm.SenderID])
		views = append(views, *v)
	}
	reverseViews(views)
	return views, nil
}

type typingEvent struct {
	UserID    uint64 `json:"userId"`
	Name      string `json:"name"`
	ChannelID string `json:"channelId,omitempty"`
}

// Typing 输入中指示，纯广播，不落库
func (s *MessageService) Typing(ctx context.Context, userID uint64, in *SendMessageInput) (bool, error) {
	target, err := s.resolveTarget(userID, in)
	if err != nil {
		return false, err
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return false, pkg.NewAppError(pkg.KindUnauthenticated, "caller not found")
	}

	switch t := target.(type) {
	case dmTarget:
		channel := pkg.DMChannelName(formatID(userID), formatID(t.receiverID))
		return s.publish(ctx, channel, broadcast.EventTyping, typingEvent{UserID: user.ID, Name: user.Username}, in.SocketID), nil
	case channelTarget:
		community, err := s.Communities.FindByRef(ctx, t.communityRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, pkg.NewAppError(pkg.KindNotFound, "community not found")
			}
			return false, pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
		}
		if err := s.requirePermission(ctx, userID, community.PublicID, perms.SendMessages); err != nil {
			return false, err
		}
		return s.publish(ctx, pkg.CommunityChannelName(community.PublicID), broadcast.EventTyping, typingEvent{
			UserID:    user.ID,
			Name:      user.Username,
			ChannelID: t.channelRef,
		}, in.SocketID), nil
	default:
		return false, pkg.NewAppError(pkg.KindInputInvalid, "unsupported target")
	}
}

type reactionEvent struct {
	ID        string           `json:"id"`
	ChannelID string           `json:"channelId,omitempty"`
	Reactions []model.Reaction `json:"reactions"`
}

// ToggleReaction 表情开关：点过取消，没点过加上
func (s *MessageService) ToggleReaction(ctx context.Context, userID uint64, publicID, emoji, socketID string) ([]model.Reaction, bool, error) {
	if emoji == "" {
		return nil, false, pkg.NewAppError(pkg.KindInputInvalid, "emoji required")
	}

	msg, err := s.Messages.FindByPublicID(ctx, publicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.toggleDirectReaction(ctx, userID, publicID, emoji, socketID)
	}
	if err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "message lookup failed", err)
	}

	community, channelPublicID := s.locateChannelMessage(ctx, msg)
	if community == nil {
		return nil, false, pkg.NewAppError(pkg.KindPersistence, "community lookup failed")
	}
	if err := s.requirePermission(ctx, userID, community.PublicID, perms.AddReactions); err != nil {
		return nil, false, err
	}

	msg.Reactions = toggleReaction(msg.Reactions, emoji, userID)
	if err := s.Messages.Update(ctx, msg); err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "reaction persist failed", err)
	}

	delivered := s.publish(ctx, pkg.CommunityChannelName(community.PublicID), broadcast.EventReaction, reactionEvent{
		ID:        msg.PublicID,
		ChannelID: channelPublicID,
		Reactions: msg.Reactions,
	}, socketID)
	return msg.Reactions, delivered, nil
}

func (s *MessageService) toggleDirectReaction(ctx context.Context, userID uint64, publicID, emoji, socketID string) ([]model.Reaction, bool, error) {
	dm, err := s.DMs.FindByPublicID(ctx, publicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkg.NewAppError(pkg.KindNotFound, "message not found")
	}
	if err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "message lookup failed", err)
	}

	if dm.SenderID != userID && dm.ReceiverID != userID {
		return nil, false, pkg.NewAppError(pkg.KindUnauthorized, "reaction denied")
	}

	dm.Reactions = toggleReaction(dm.Reactions, emoji, userID)
	if err := s.DMs.Update(ctx, dm); err != nil {
		return nil, false, pkg.WrapAppError(pkg.KindPersistence, "reaction persist failed", err)
	}

	channel := pkg.DMChannelName(formatID(dm.SenderID), formatID(dm.ReceiverID))
	delivered := s.publish(ctx, channel, broadcast.EventReaction, reactionEvent{
		ID:        dm.PublicID,
		Reactions: dm.Reactions,
	}, socketID)
	return dm.Reactions, delivered, nil
}

// --- 内部工具 ---

// publish 广播失败不回滚已完成的写入，只降级
func (s *MessageService) publish(ctx context.Context, channel, event string, data any, socketID string) bool {
	if err := s.B.Publish(ctx, channel, event, data, socketID); err != nil {
		s.Log.Warnw("broadcast degraded", "channel", channel, "event", event, "err", err)
		return false
	}
	return true
}

func (s *MessageService) requirePermission(ctx context.Context, userID uint64, communityRef, want string) error {
	_, set, err := s.Perms.Resolve(ctx, userID, communityRef)
	if err != nil {
		return err
	}
	// 空集 = 不是成员，按拒绝处理
	if set.Empty() || !set.Has(want) {
		return pkg.NewAppError(pkg.KindUnauthorized, "permission denied")
	}
	return nil
}

// loadPair 两条独立查询并发发出，各自的失败单独检查，不允许一边的失败
// 把另一边悄悄置空
func (s *MessageService) loadPair(ctx context.Context, aID, bID uint64) (*model.User, *model.User, error) {
	var (
		a, b       *model.User
		aErr, bErr error
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		a, aErr = s.Users.FindByID(ctx, aID)
	}()
	go func() {
		defer wg.Done()
		b, bErr = s.Users.FindByID(ctx, bID)
	}()
	wg.Wait()

	if aErr != nil {
		if errors.Is(aErr, gorm.ErrRecordNotFound) {
			return nil, nil, pkg.NewAppError(pkg.KindUnauthenticated, "caller not found")
		}
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "user lookup failed", aErr)
	}
	if bErr != nil {
		if errors.Is(bErr, gorm.ErrRecordNotFound) {
			return nil, nil, pkg.NewAppError(pkg.KindNotFound, "recipient not found")
		}
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "user lookup failed", bErr)
	}
	return a, b, nil
}

// authorSummaries 一次多键查询拿齐作者，查不到的填占位名
func (s *MessageService) authorSummaries(ctx context.Context, ids []uint64) map[uint64]AuthorSummary {
	out := make(map[uint64]AuthorSummary, len(ids))
	for _, id := range ids {
		out[id] = AuthorSummary{ID: id, Name: UnknownAuthorName}
	}

	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		s.Log.Warnw("author batch lookup failed, using placeholders", "err", err)
		return out
	}
	for i := range users {
		out[users[i].ID] = summaryOf(&users[i])
	}
	return out
}

// replyPreviews 批量解析回复目标，只展开一层
func (s *MessageService) replyPreviews(ctx context.Context, msgs []model.Message) map[string]ReplyPreview {
	var ids []string
	for i := range msgs {
		if msgs[i].ReplyToID != "" {
			ids = append(ids, msgs[i].ReplyToID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	targets, err := s.Messages.FindByPublicIDs(ctx, ids)
	if err != nil {
		s.Log.Warnw("reply preview lookup failed", "err", err)
		return nil
	}

	authors := s.authorSummaries(ctx, collectAuthorIDs(targets))
	out := make(map[string]ReplyPreview, len(targets))
	for i := range targets {
		t := &targets[i]
		out[t.PublicID] = ReplyPreview{
			ID:      t.PublicID,
			Content: t.Content,
			Author:  authors[t.AuthorID],
		}
	}
	return out
}

// locateChannelMessage 找回消息所属的社区和频道 public id，用于广播寻址
func (s *MessageService) locateChannelMessage(ctx context.Context, msg *model.Message) (*model.Community, string) {
	community, err := s.Communities.FindByID(ctx, msg.CommunityID)
	if err != nil {
		s.Log.Warnw("community lookup failed for message", "message_id", msg.PublicID, "err", err)
		return nil, ""
	}

	channelPublicID := ""
	if channels, err := s.Channels.Channels.ListByCommunity(ctx, community.ID); err == nil {
		for i := range channels {
			if channels[i].ID == msg.ChannelID {
				channelPublicID = channels[i].PublicID
				break
			}
		}
	}
	return community, channelPublicID
}

func (s *MessageService) dmView(ctx context.Context, dm *model.DirectMessage, author AuthorSummary) *MessageView {
	v := &MessageView{
		ID:          dm.PublicID,
		ReceiverID:  dm.ReceiverID,
		Author:      author,
		Content:     dm.Content,
		GifURL:      dm.GifURL,
		Attachments: dm.Attachments,
		Reactions:   dm.Reactions,
		Edited:      dm.Edited,
		CreatedAt:   dm.CreatedAt,
		UpdatedAt:   dm.UpdatedAt,
	}
	if dm.ReplyToID != "" {
		if target, err := s.DMs.FindByPublicID(ctx, dm.ReplyToID); err == nil {
			authors := s.authorSummaries(ctx, []uint64{target.SenderID})
			v.ReplyTo = &ReplyPreview{
				ID:      target.PublicID,
				Content: target.Content,
				Author:  authors[target.SenderID],
			}
		}
	}
	return v
}

func channelMessageView(msg *model.Message, channelPublicID, communityPublicID string, authors map[uint64]AuthorSummary, previews map[string]ReplyPreview) *MessageView {
	v := &MessageView{
		ID:          msg.PublicID,
		ChannelID:   channelPublicID,
		ServerID:    communityPublicID,
		Author:      authors[msg.AuthorID],
		Content:     msg.Content,
		GifURL:      msg.GifURL,
		Attachments: msg.Attachments,
		Mentions:    msg.Mentions,
		Reactions:   msg.Reactions,
		Edited:      msg.Edited,
		Pinned:      msg.Pinned,
		CreatedAt:   msg.CreatedAt,
		UpdatedAt:   msg.UpdatedAt,
	}
	if msg.ReplyToID != "" && previews != nil {
		if p, ok := previews[msg.ReplyToID]; ok {
			v.ReplyTo = &p
		}
	}
	return v
}

func summaryOf(u *model.User) AuthorSummary {
	return AuthorSummary{ID: u.ID, Name: u.Username, Avatar: u.AvatarURL}
}

func communityPublicID(c *model.Community) string {
	if c == nil {
		return ""
	}
	return c.PublicID
}

func collectAuthorIDs(msgs []model.Message) []uint64 {
	seen := make(map[uint64]struct{}, len(msgs))
	var ids []uint64
	for i := range msgs {
		if _, ok := seen[msgs[i].AuthorID]; !ok {
			seen[msgs[i].AuthorID] = struct{}{}
			ids = append(ids, msgs[i].AuthorID)
		}
	}
	return ids
}

func toggleReaction(reactions []model.Reaction, emoji string, userID uint64) []model.Reaction {
	for i := range reactions {
		if reactions[i].Emoji != emoji {
			continue
		}
		for j, id := range reactions[i].UserIDs {
			if id == userID {
				reactions[i].UserIDs = append(reactions[i].UserIDs[:j], reactions[i].UserIDs[j+1:]...)
				if len(reactions[i].UserIDs) == 0 {
					return append(reactions[:i], reactions[i+1:]...)
				}
				return reactions
			}
		}
		reactions[i].UserIDs = append(reactions[i].UserIDs, userID)
		return reactions
	}
	return append(reactions, model.Reaction{Emoji: emoji, UserIDs: []uint64{userID}})
}

func reverseViews(views []MessageView) {
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
