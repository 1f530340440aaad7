package perms

// 权限词汇表是固定的；ADMINISTRATOR 是哨兵值，展开为全量权限
const (
	Administrator      = "ADMINISTRATOR"
	ViewChannels       = "VIEW_CHANNELS"
	ManageChannels     = "MANAGE_CHANNELS"
	ManageCommunity    = "MANAGE_COMMUNITY"
	ManageRoles        = "MANAGE_ROLES"
	ManageMessages     = "MANAGE_MESSAGES"
	SendMessages       = "SEND_MESSAGES"
	ReadMessages       = "READ_MESSAGES"
	ReadMessageHistory = "READ_MESSAGE_HISTORY"
	ChangeNickname     = "CHANGE_NICKNAME"
	AddReactions       = "ADD_REACTIONS"
	AttachFiles        = "ATTACH_FILES"
	EmbedLinks         = "EMBED_LINKS"
	MentionEveryone    = "MENTION_EVERYONE"
	KickMembers        = "KICK_MEMBERS"
	BanMembers         = "BAN_MEMBERS"
	CreateInvite       = "CREATE_INVITE"
)

var all = []string{
	Administrator,
	ViewChannels,
	ManageChannels,
	ManageCommunity,
	ManageRoles,
	ManageMessages,
	SendMessages,
	ReadMessages,
	ReadMessageHistory,
	ChangeNickname,
	AddReactions,
	AttachFiles,
	EmbedLinks,
	MentionEveryone,
	KickMembers,
	BanMembers,
	CreateInvite,
}

// All 返回完整词汇表的拷贝
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// Baseline 有成员身份但无角色时的保底权限
func Baseline() []string {
	return []string{ViewChannels, ReadMessages, ReadMessageHistory, ChangeNickname, AddReactions}
}

// Valid 判断字符串是否属于词汇表
func Valid(p string) bool {
	for _, v := range all {
		if v == p {
			return true
		}
	}
	return false
}

type Set map[string]struct{}

func NewSet(items ...string) Set {
	s := make(Set, len(items))
	s.Add(items...)
	return s
}

func FullSet() Set {
	return NewSet(all...)
}

func (s Set) Add(items ...string) {
	for _, p := range items {
		s[p] = struct{}{}
	}
}

func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

func (s Set) Empty() bool {
	return len(s) == 0
}

// Slice 返回集合内容，顺序按词汇表固定，便于测试和序列化
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for _, p := range all {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}
