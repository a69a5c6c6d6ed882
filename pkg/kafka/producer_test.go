package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]int{"year": 2020})
	if err != nil || string(b) != `{"year":2020}` {
		t.Fatalf("unexpected encoding %q err=%v", b, err)
	}
	b, _ = encodeValue("raw")
	if string(b) != "raw" {
		t.Fatalf("strings must pass through, got %q", b)
	}
	if _, err := encodeValue(func() {}); err == nil {
		t.Fatalf("expected marshal error for func value")
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd || parseCompression("bogus") != kafka.Gzip {
		t.Fatalf("compression mapping mismatch")
	}
}
