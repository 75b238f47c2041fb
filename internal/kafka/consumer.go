package kafka

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/internal/usecase"
	"github.com/Gunvolt24/cart-service/pkg/metrics"
	"github.com/Gunvolt24/cart-service/pkg/validate"
	"github.com/segmentio/kafka-go"
)

var _ ports.Worker = (*Consumer)(nil)

// reader - то, что нужно консьюмеру от kafka.Reader.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// messageSaver - разбор и применение обновления каталога.
type messageSaver interface {
	SaveFromMessage(ctx context.Context, raw []byte) error
}

// disposition - судьба сообщения после попытки применить его к каталогу.
type disposition int

const (
	applied disposition = iota // товар сохранён или удалён
	dropped                    // битый JSON или невалидный товар: повтор не поможет
	retry                      // БД недоступна, таймаут и т.п.
)

// classify - ошибки разбора и валидации окончательны, остальное считается временным.
func classify(err error) disposition {
	switch {
	case err == nil:
		return applied
	case errors.Is(err, usecase.ErrInvalidMessage), errors.Is(err, validate.ErrInvalidProduct):
		return dropped
	default:
		return retry
	}
}

// Consumer - читает топик обновлений каталога и применяет их по одному.
// При временной ошибке повторяется то же сообщение: оффсет не двигается,
// пока обновление не применено или не отброшено как невалидное.
type Consumer struct {
	reader         reader
	service        messageSaver
	log            ports.Logger
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

func NewConsumer(cfg *ConsumerConfig, service messageSaver, log ports.Logger) *Consumer {
	c := cfg.withDefaults()
	return &Consumer{
		reader:         kafka.NewReader(c.ReaderConfig()),
		service:        service,
		log:            log,
		processTimeout: c.ProcessTimeout,
		retryInitial:   c.RetryInitial,
		retryMax:       c.RetryMax,
		jitterRand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run - FetchMessage → apply → commit до отмены контекста.
// Ошибка чтения брокера - пауза с backoff и новая попытка.
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "catalog consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	fetchBackoff := newBackoff(c.retryInitial, c.retryMax, c.jitterRand)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d := fetchBackoff.next()
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", err, d)
			if !sleepCtx(ctx, d) {
				return ctx.Err()
			}
			continue
		}
		fetchBackoff.reset()
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if err := c.apply(ctx, rc.Topic, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			// оффсет уйдёт со следующим коммитом или сообщение придёт снова после ребаланса
			c.log.Warnf(ctx, "commit failed partition=%d offset=%d: %v", msg.Partition, msg.Offset, err)
		}
	}
}

// apply - применяет сообщение, повторяя временные ошибки на месте.
// nil - оффсет можно коммитить; ошибка только при отмене ctx.
func (c *Consumer) apply(ctx context.Context, topic string, msg kafka.Message) error {
	b := newBackoff(c.retryInitial, c.retryMax, c.jitterRand)
	for attempt := 1; ; attempt++ {
		err := c.saveOnce(ctx, msg.Value)

		switch classify(err) {
		case applied:
			metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
			return nil
		case dropped:
			metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
			c.log.Warnf(ctx, "invalid message partition=%d offset=%d: %v (skipped)", msg.Partition, msg.Offset, err)
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		d := b.next()
		c.log.Warnf(ctx, "apply failed partition=%d offset=%d attempt=%d: %v (retry in %s)",
			msg.Partition, msg.Offset, attempt, err, d)
		if !sleepCtx(ctx, d) {
			return ctx.Err()
		}
	}
}

// saveOnce - одна попытка с собственным таймаутом.
func (c *Consumer) saveOnce(ctx context.Context, raw []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	defer cancel()
	return c.service.SaveFromMessage(ctx, raw)
}

func (c *Consumer) Close() (err error) {
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
