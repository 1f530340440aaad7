package broadcast

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// eventWriter 是 kafka.Writer 的最小面，测试时替换
type eventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Firehose 在正常广播之外把同一份事件落到 kafka 做归档。
// 归档失败只记日志：交付策略和广播降级一致，不影响调用方
type Firehose struct {
	next   Broadcaster
	writer eventWriter
	logger *zap.SugaredLogger
}

func NewFirehose(next Broadcaster, brokers []string, topic string, logger *zap.SugaredLogger) *Firehose {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
	}
	return &Firehose{next: next, writer: w, logger: logger}
}

func (f *Firehose) Publish(ctx context.Context, channel, event string, data any, exceptSocket string) error {
	err := f.next.Publish(ctx, channel, event, data, exceptSocket)

	value, merr := json.Marshal(Envelope{Event: event, Data: data})
	if merr != nil {
		f.logger.Warnw("firehose marshal failed", "channel", channel, "event", event, "err", merr)
		return err
	}
	if werr := f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(channel),
		Value: value,
	}); werr != nil {
		f.logger.Warnw("firehose append failed", "channel", channel, "event", event, "err", werr)
	}

	return err
}

func (f *Firehose) Close() error {
	if w, ok := f.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
