package receiver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
	"github.com/nezferoz/fashion-park-sub001/pkg/pkgports"
)

// KafkaReceiver is the kafka implementation of pkgports.Receiver.
// The decoded value type is generic so different workers can share it
type KafkaReceiver[Value any] struct {
	reader *kafka.Reader
}

func NewKafkaReceiver[Value any](reader *kafka.Reader) pkgports.Receiver[Value, kafka.Message] {
	return &KafkaReceiver[Value]{
		reader: reader,
	}
}

func (k *KafkaReceiver[Value]) Consume(ctx context.Context) (Value, kafka.Message, error) {
	msg, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return *new(Value), kafka.Message{}, fmt.Errorf("error while reading from kafka: %w", err)
	}
	var value Value
	err = json.Unmarshal(msg.Value, &value)
	if err != nil {
		return *new(Value), kafka.Message{}, fmt.Errorf("error while unmarshalling message: %w", err)
	}
	return value, msg, nil
}

func (k *KafkaReceiver[_]) OnSuccess(ctx context.Context, givenMessage kafka.Message) error {
	return k.reader.CommitMessages(ctx, givenMessage)
}

// OnFail commits non-retryable messages so they don't loop forever; retryable
// ones are left uncommitted and will be redelivered on the next rebalance
func (k *KafkaReceiver[_]) OnFail(ctx context.Context, retryable bool, givenMessage kafka.Message) error {
	logger.GetOrCreateLoggerFromCtx(ctx).Warn(ctx, "failed processing a message",
		zap.String("topic", givenMessage.Topic),
		zap.Int64("offset", givenMessage.Offset),
		zap.Bool("retryable", retryable))
	if retryable {
		return nil
	}
	return k.reader.CommitMessages(ctx, givenMessage)
}
