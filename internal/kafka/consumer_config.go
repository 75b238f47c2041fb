package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultProcessTimeout = 5 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
)

// ConsumerConfig - параметры консьюмера обновлений каталога.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // "first" | "last"

	ProcessTimeout time.Duration // на одну попытку применения
	RetryInitial   time.Duration
	RetryMax       time.Duration
}

// withDefaults - копия с заполненными таймаутами; RetryMax не меньше RetryInitial.
func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.ProcessTimeout <= 0 {
		c.ProcessTimeout = defaultProcessTimeout
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = defaultRetryInitial
	}
	if c.RetryMax <= 0 {
		c.RetryMax = defaultRetryMax
	}
	if c.RetryMax < c.RetryInitial {
		c.RetryMax = c.RetryInitial
	}
	return c
}

// ReaderConfig - kafka.Reader с ручным коммитом: оффсет двигает только консьюмер.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		StartOffset:    startOffset(c.StartOffset),
		CommitInterval: 0,
	}
}

// startOffset - только "first" читает топик с начала; всё остальное - с конца.
func startOffset(s string) int64 {
	if strings.EqualFold(strings.TrimSpace(s), "first") {
		return kafka.FirstOffset
	}
	return kafka.LastOffset
}
