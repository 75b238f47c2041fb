package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

// writer - то, что нужно продюсеру от kafka.Writer.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer - публикация обновлений каталога (утилита импорта, тесты).
type Producer struct {
	writer    writer
	batchSize int
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
		batchSize: 100,
	}
}

// Publish - ключ сообщения = sku: обновления одного товара идут в одну партицию.
func (p *Producer) Publish(ctx context.Context, updates ...domain.ProductUpdate) error {
	for start := 0; start < len(updates); start += p.batchSize {
		end := min(start+p.batchSize, len(updates))

		msgs := make([]kafka.Message, 0, end-start)
		for i := start; i < end; i++ {
			raw, err := json.Marshal(&updates[i])
			if err != nil {
				return fmt.Errorf("marshal update sku=%s: %w", updates[i].SKU, err)
			}
			msgs = append(msgs, kafka.Message{Key: []byte(updates[i].SKU), Value: raw})
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write messages: %w", err)
		}
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
