package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"gamehub/internal/model"
	"gamehub/internal/perms"

	"gorm.io/gorm"
)

// 内存替身，只实现服务要求的最小面

type fakeCommunities struct {
	list []*model.Community
}

// FindByRef 和真实仓库一样走两把钥匙：先 public id，查不到再按数字主键重试
func (f *fakeCommunities) FindByRef(ctx context.Context, ref string) (*model.Community, error) {
	for _, c := range f.list {
		if c.PublicID == ref {
			return c, nil
		}
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.FindByID(ctx, id)
}

func (f *fakeCommunities) FindByID(_ context.Context, id uint64) (*model.Community, error) {
	for _, c := range f.list {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type membershipKey struct{ communityID, userID uint64 }

type fakeMemberships struct {
	members map[membershipKey]*model.Membership
	roleIDs map[uint64][]uint64

	lastLimit int
}

func (f *fakeMemberships) Find(_ context.Context, communityID, userID uint64) (*model.Membership, error) {
	if m, ok := f.members[membershipKey{communityID, userID}]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberships) RoleIDs(_ context.Context, membershipID uint64, limit int) ([]uint64, error) {
	f.lastLimit = limit
	ids := f.roleIDs[membershipID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakeRoles struct {
	roles map[uint64]model.Role
}

func (f *fakeRoles) FindByIDs(_ context.Context, ids []uint64) ([]model.Role, error) {
	var out []model.Role
	for _, id := range ids {
		if r, ok := f.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[uint64]*model.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []uint64) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeChannels struct {
	channels []model.Channel
	nextID   uint64
}

func (f *fakeChannels) Create(_ context.Context, ch *model.Channel) error {
	f.nextID++
	ch.ID = f.nextID
	f.channels = append(f.channels, *ch)
	return nil
}

func (f *fakeChannels) ListByCommunity(_ context.Context, communityID uint64) ([]model.Channel, error) {
	var out []model.Channel
	for _, ch := range f.channels {
		if ch.CommunityID == communityID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeChannels) FindByPublicID(_ context.Context, communityID uint64, publicID string) (*model.Channel, error) {
	for i := range f.channels {
		if f.channels[i].CommunityID == communityID && f.channels[i].PublicID == publicID {
			ch := f.channels[i]
			return &ch, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// opLog 记录持久化和广播的先后
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

type fakeMessages struct {
	log    *opLog
	msgs   map[string]*model.Message
	nextID uint64
}

func newFakeMessages(log *opLog) *fakeMessages {
	return &fakeMessages{log: log, msgs: make(map[string]*model.Message)}
}

func (f *fakeMessages) Create(_ context.Context, msg *model.Message) error {
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	cp := *msg
	f.msgs[msg.PublicID] = &cp
	if f.log != nil {
		f.log.add("persist")
	}
	return nil
}

func (f *fakeMessages) FindByPublicID(_ context.Context, publicID string) (*model.Message, error) {
	if m, ok := f.msgs[publicID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMessages) FindByPublicIDs(_ context.Context, publicIDs []string) ([]model.Message, error) {
	var out []model.Message
	for _, id := range publicIDs {
		if m, ok := f.msgs[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessages) ListByChannel(_ context.Context, channelID uint64, limit int, before *time.Time) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.msgs {
		if m.ChannelID == channelID {
			out = append(out, *m)
		}
	}
	// 新的在前
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessages) Update(_ context.Context, msg *model.Message) error {
	msg.UpdatedAt = time.Now()
	cp := *msg
	f.msgs[msg.PublicID] = &cp
	return nil
}

func (f *fakeMessages) Delete(_ context.Context, id uint64) error {
	for pid, m := range f.msgs {
		if m.ID == id {
			delete(f.msgs, pid)
			return nil
		}
	}
	return nil
}

type fakeDMs struct {
	dms    map[string]*model.DirectMessage
	nextID uint64
}

func newFakeDMs() *fakeDMs {
	return &fakeDMs{dms: make(map[string]*model.DirectMessage)}
}

func (f *fakeDMs) Create(_ context.Context, dm *model.DirectMessage) error {
	f.nextID++
	dm.ID = f.nextID
	dm.CreatedAt = time.Now()
	dm.UpdatedAt = dm.CreatedAt
	cp := *dm
	f.dms[dm.PublicID] = &cp
	return nil
}

func (f *fakeDMs) FindByPublicID(_ context.Context, publicID string) (*model.DirectMessage, error) {
	if m, ok := f.dms[publicID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDMs) ListBetween(_ context.Context, a, b uint64, limit int, before *time.Time) ([]model.DirectMessage, error) {
	var out []model.DirectMessage
	for _, m := range f.dms {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeDMs) Update(_ context.Context, dm *model.DirectMessage) error {
	dm.UpdatedAt = time.Now()
	cp := *dm
	f.dms[dm.PublicID] = &cp
	return nil
}

func (f *fakeDMs) Delete(_ context.Context, id uint64) error {
	for pid, m := range f.dms {
		if m.ID == id {
			delete(f.dms, pid)
			return nil
		}
	}
	return nil
}

func (f *fakeDMs) MarkRead(_ context.Context, senderID, receiverID uint64) error {
	for _, m := range f.dms {
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			m.Read = true
		}
	}
	return nil
}

type publishedEvent struct {
	Channel      string
	Event        string
	Data         any
	ExceptSocket string
}

type fakeBroadcaster struct {
	log    *opLog
	events []publishedEvent
	fail   bool
}

func (f *fakeBroadcaster) Publish(_ context.Context, channel, event string, data any, exceptSocket string) error {
	if f.fail {
		return errors.New("transport unavailable")
	}
	f.events = append(f.events, publishedEvent{channel, event, data, exceptSocket})
	if f.log != nil {
		f.log.add("broadcast")
	}
	return nil
}

type fakeResolver struct {
	set   perms.Set
	roles []string
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, _ uint64, _ string) ([]string, perms.Set, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.roles, f.set, nil
}
