package kafka

import (
	"slices"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestStartOffset(t *testing.T) {
	for in, want := range map[string]int64{
		"first":      kafka.FirstOffset,
		" FiRsT \n":  kafka.FirstOffset,
		"\tFIRST\t":  kafka.FirstOffset,
		"":           kafka.LastOffset,
		"last":       kafka.LastOffset,
		"earliest":   kafka.LastOffset,
		"first-ever": kafka.LastOffset,
	} {
		if got := startOffset(in); got != want {
			t.Errorf("startOffset(%q): want %d, got %d", in, want, got)
		}
	}
}

// Каталог читается с ручным коммитом: CommitInterval == 0.
func TestReaderConfig_CatalogTopic(t *testing.T) {
	cfg := ConsumerConfig{
		Brokers:     []string{"k1:9092", "k2:9092"},
		Topic:       "catalog-updates",
		GroupID:     "cart-service",
		StartOffset: "first",
	}

	rc := cfg.ReaderConfig()
	if !slices.Equal(rc.Brokers, cfg.Brokers) || rc.Topic != cfg.Topic || rc.GroupID != cfg.GroupID {
		t.Fatalf("reader config does not match consumer config: %+v", rc)
	}
	if rc.StartOffset != kafka.FirstOffset {
		t.Fatalf("StartOffset: want first, got %d", rc.StartOffset)
	}
	if rc.CommitInterval != 0 {
		t.Fatalf("offsets must be committed manually, got CommitInterval=%s", rc.CommitInterval)
	}
}

func TestConsumerConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name                           string
		in                             ConsumerConfig
		wantTimeout, wantInit, wantMax time.Duration
	}{
		{"zero values", ConsumerConfig{}, defaultProcessTimeout, defaultRetryInitial, defaultRetryMax},
		{"negative values", ConsumerConfig{ProcessTimeout: -1, RetryInitial: -1, RetryMax: -1}, defaultProcessTimeout, defaultRetryInitial, defaultRetryMax},
		{"explicit", ConsumerConfig{ProcessTimeout: 2 * time.Second, RetryInitial: 100 * time.Millisecond, RetryMax: time.Minute}, 2 * time.Second, 100 * time.Millisecond, time.Minute},
		{"max below initial", ConsumerConfig{RetryInitial: 5 * time.Second, RetryMax: time.Second}, defaultProcessTimeout, 5 * time.Second, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.withDefaults()
			if got.ProcessTimeout != tt.wantTimeout || got.RetryInitial != tt.wantInit || got.RetryMax != tt.wantMax {
				t.Fatalf("want %s/%s/%s, got %s/%s/%s", tt.wantTimeout, tt.wantInit, tt.wantMax,
					got.ProcessTimeout, got.RetryInitial, got.RetryMax)
			}
		})
	}
}
