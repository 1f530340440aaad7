package broadcast

import "context"

// Envelope 发到逻辑频道的事件封皮；ExceptSocket 让源会话不收自己的事件
type Envelope struct {
	Event        string `json:"event"`
	Data         any    `json:"data"`
	ExceptSocket string `json:"except_socket,omitempty"`
}

// 事件名是线协议的一部分
const (
	EventNewMessage     = "new_message"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
	EventTyping         = "typing"
	EventReaction       = "reaction"
)

// Broadcaster 进程启动时构造一次并注入，不做包级单例，方便测试替身
type Broadcaster interface {
	Publish(ctx context.Context, channel, event string, data any, exceptSocket string) error
}
