package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"gamehub/internal/model"
	"gamehub/internal/pkg"
	"gamehub/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthorizeTimeout 授权检查的时间预算，超时按拒绝处理
const AuthorizeTimeout = 5 * time.Second

type UserFinder interface {
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error)
}

// Grant 授权成功的产物，没有持久化生命周期
type Grant struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

type presenceInfo struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type presenceData struct {
	UserID   string       `json:"user_id"`
	UserInfo presenceInfo `json:"user_info"`
}

// ChannelAuthService 订阅授权。持久层出错一律当拒绝，绝不隐式放行
type ChannelAuthService struct {
	Users UserFinder
	Perms PermissionResolver

	Key    string
	Secret string
	Log    *zap.SugaredLogger
}

func NewChannelAuthService(key, secret string, log *zap.SugaredLogger) *ChannelAuthService {
	return &ChannelAuthService{
		Users:  &mysql.UserRepository{},
		Perms:  NewPermissionService(),
		Key:    key,
		Secret: secret,
		Log:    log,
	}
}

func (s *ChannelAuthService) Authorize(ctx context.Context, userID uint64, channelName, socketID string) (*Grant, error) {
	if socketID == "" || channelName == "" {
		return nil, pkg.NewAppError(pkg.KindInputInvalid, "socket_id and channel_name required")
	}

	ctx, cancel := context.WithTimeout(ctx, AuthorizeTimeout)
	defer cancel()

	switch {
	case strings.HasPrefix(channelName, pkg.PresencePrefix):
		return s.authorizePresence(ctx, userID, channelName, socketID)

	case strings.HasPrefix(channelName, pkg.DMChannelPrefix):
		return s.authorizeDM(userID, channelName, socketID)

	case strings.HasPrefix(channelName, pkg.TextChannelPrefix):
		return s.authorizeTextChannel(ctx, userID, channelName, socketID)

	case strings.HasPrefix(channelName, pkg.PrivatePrefix):
		// 其余 private-* 目前对任何已登录用户放行。
		// 这里缺一套更细的策略，是已知空档，不要在别处"顺手"收紧
		return &Grant{Auth: pkg.GrantSignature(s.Key, s.Secret, socketID, channelName, "")}, nil

	default:
		return nil, pkg.NewAppError(pkg.KindUnauthorized, "unknown channel")
	}
}

// authorizePresence presence 频道对所有已登录用户放行，
// 附带 user_info 供在线名单使用
func (s *ChannelAuthService) authorizePresence(ctx context.Context, userID uint64, channelName, socketID string) (*Grant, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		// 身份查不出来也按拒绝走
		s.Log.Warnw("presence user lookup failed", "user_id", userID, "err", err)
		return nil, pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")
	}

	data, err := json.Marshal(presenceData{
		UserID: strconv.FormatUint(user.ID, 10),
		UserInfo: presenceInfo{
			ID:     user.ID,
			Name:   user.Username,
			Avatar: user.AvatarURL,
		},
	})
	if err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "presence data encode failed", err)
	}

	return &Grant{
		Auth:        pkg.GrantSignature(s.Key, s.Secret, socketID, channelName, string(data)),
		ChannelData: string(data),
	}, nil
}

func (s *ChannelAuthService) authorizeDM(userID uint64, channelName, socketID string) (*Grant, error) {
	a, b, ok := pkg.DMParticipants(channelName)
	if !ok {
		return nil, pkg.NewAppError(pkg.KindInputInvalid, "malformed dm channel name")
	}

	caller := strconv.FormatUint(userID, 10)
	if caller != a && caller != b {
		return nil, pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")
	}

	return &Grant{Auth: pkg.GrantSignature(s.Key, s.Secret, socketID, channelName, "")}, nil
}

// authorizeTextChannel 名字里带的是社区 id：一个社区的所有文字频道
// 共用同一个广播频道，成员身份即可订阅
func (s *ChannelAuthService) authorizeTextChannel(ctx context.Context, userID uint64, channelName, socketID string) (*Grant, error) {
	communityRef := strings.TrimPrefix(channelName, pkg.TextChannelPrefix)

	_, set, err := s.Perms.Resolve(ctx, userID, communityRef)
	if err != nil {
		var ae *pkg.AppError
		if errors.As(err, &ae) && ae.Kind == pkg.KindNotFound {
			return nil, pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")
		}
		s.Log.Warnw("membership check failed, denying", "user_id", userID, "channel", channelName, "err", err)
		return nil, pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")
	}
	if set.Empty() {
		return nil, pkg.NewAppError(pkg.KindUnauthorized, "subscription denied")
	}

	return &Grant{Auth: pkg.GrantSignature(s.Key, s.Secret, socketID, channelName, "")}, nil
}
