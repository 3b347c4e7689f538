package consumers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/blog-commerce-backend/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until the context ends
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	fetchErrs []error
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) committedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.committed))
	for _, m := range r.committed {
		keys = append(keys, string(m.Key))
	}
	return keys
}

func newTestConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader: reader,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		topic:  "payment_events",
		done:   make(chan struct{}),
	}
}

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		PaymentTopic:  "test-topic",
		ConsumerGroup: "test-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(context.Background(), logger, cfg)
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader)
	assert.Equal(t, "test-topic", consumer.topic)
	assert.Equal(t, "test-group", consumer.groupID)
	require.NoError(t, consumer.Close())
}

func TestStartOffset(t *testing.T) {
	assert.Equal(t, kafka.FirstOffset, startOffset(0))
	assert.Equal(t, kafka.FirstOffset, startOffset(kafka.FirstOffset))
	assert.Equal(t, kafka.LastOffset, startOffset(kafka.LastOffset))
}

func TestKafkaConsumer_Subscribe(t *testing.T) {
	t.Run("CommitsOnlyHandledMessages", func(t *testing.T) {
		reader := &fakeReader{queue: []kafka.Message{
			{Key: []byte("ok-1")},
			{Key: []byte("fail")},
			{Key: []byte("ok-2")},
		}}
		consumer := newTestConsumer(reader)

		ctx, cancel := context.WithCancel(context.Background())
		var handled sync.WaitGroup
		handled.Add(3)
		handler := func(_ context.Context, key, _ []byte) error {
			defer handled.Done()
			if string(key) == "fail" {
				return errors.New("boom")
			}
			return nil
		}

		require.NoError(t, consumer.Subscribe(ctx, handler))
		handled.Wait()
		cancel()
		<-consumer.Done()

		assert.Equal(t, []string{"ok-1", "ok-2"}, reader.committedKeys())
	})

	t.Run("FetchErrorsAreRetried", func(t *testing.T) {
		reader := &fakeReader{
			fetchErrs: []error{errors.New("leader not available")},
			queue:     []kafka.Message{{Key: []byte("after-error")}},
		}
		consumer := newTestConsumer(reader)

		ctx, cancel := context.WithCancel(context.Background())
		received := make(chan string, 1)
		require.NoError(t, consumer.Subscribe(ctx, func(_ context.Context, key, _ []byte) error {
			received <- string(key)
			return nil
		}))

		select {
		case key := <-received:
			assert.Equal(t, "after-error", key)
		case <-time.After(2 * time.Second):
			t.Fatal("message was not delivered after a fetch error")
		}
		cancel()
		<-consumer.Done()
	})
}

func TestKafkaConsumer_Close(t *testing.T) {
	t.Run("CloseWithNilReader", func(t *testing.T) {
		consumer := &KafkaConsumer{logger: slog.New(slog.NewJSONHandler(os.Stdout, nil))}
		require.NoError(t, consumer.Close())
	})

	t.Run("ClosesReader", func(t *testing.T) {
		reader := &fakeReader{}
		require.NoError(t, newTestConsumer(reader).Close())
		assert.True(t, reader.closed)
	})
}
