package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/messaging"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	Identifier string `json:"identifier"`
	Score      int    `json:"score"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

type mockPublisher struct {
	mu       sync.Mutex
	messages []*message.Message
	topics   []string
	closed   bool
}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, messages...)
	m.topics = append(m.topics, topic)

	return nil
}

func (m *mockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func TestPublishFunc(t *testing.T) {
	t.Run("publishes json payload to the topic", func(t *testing.T) {
		pub := &mockPublisher{}
		publish := messaging.NewPublishFunc[testEvent](pub, "activity.recorded")

		err := publish(&testEvent{Identifier: "u1", Score: 42})

		require.NoError(t, err)
		require.Len(t, pub.messages, 1)
		assert.Equal(t, []string{"activity.recorded"}, pub.topics)

		var got testEvent
		require.NoError(t, json.Unmarshal(pub.messages[0].Payload, &got))
		assert.Equal(t, "u1", got.Identifier)
		assert.Equal(t, 42, got.Score)
	})

	t.Run("publisher group closes the underlying publisher", func(t *testing.T) {
		pub := &mockPublisher{}
		group := messaging.NewPublisherGroup(pub)

		assert.Same(t, message.Publisher(pub), group.Publisher())
		require.NoError(t, group.Shutdown())
		assert.True(t, pub.closed)
	})
}

func TestConsumer(t *testing.T) {
	t.Run("starts and reports its topic", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"score.updated",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)

		err := consumer.Start(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "score.updated", consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			"score.updated",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)

		assert.Error(t, consumer.Start(context.Background()))
	})

	t.Run("acks handled messages", func(t *testing.T) {
		sub := newMockSubscriber()

		var (
			mu       sync.Mutex
			received []testEvent
		)

		consumer := messaging.NewConsumer(
			sub,
			"score.updated",
			func(_ context.Context, event *testEvent) error {
				mu.Lock()
				defer mu.Unlock()
				received = append(received, *event)

				return nil
			},
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		payload, _ := json.Marshal(testEvent{Identifier: "u1", Score: 7})
		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		select {
		case <-msg.Acked():
		case <-time.After(time.Second):
			t.Fatal("message was not acked")
		}

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, received, 1)
		assert.Equal(t, "u1", received[0].Identifier)

		_ = consumer.Shutdown()
	})

	t.Run("nacks undecodable messages", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"score.updated",
			func(_ context.Context, _ *testEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte("not json"))
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("message was not nacked")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks messages when the handler fails", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"score.updated",
			func(_ context.Context, _ *testEvent) error { return errors.New("handler error") },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		payload, _ := json.Marshal(testEvent{Identifier: "u1"})
		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("message was not nacked")
		}

		_ = consumer.Shutdown()
	})
}

type mockRunnable struct {
	started     bool
	shutdown    bool
	startErr    error
	shutdownErr error
}

func (m *mockRunnable) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockRunnable) Shutdown() error {
	m.shutdown = true

	return m.shutdownErr
}

func TestConsumerGroup(t *testing.T) {
	t.Run("starts all consumers", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		consumer1 := &mockRunnable{}
		consumer2 := &mockRunnable{}

		group.Add(consumer1)
		group.Add(consumer2)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, consumer1.started)
		assert.True(t, consumer2.started)
	})

	t.Run("rolls back started consumers on failure", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		consumer1 := &mockRunnable{}
		consumer2 := &mockRunnable{startErr: errors.New("start error")}

		group.Add(consumer1)
		group.Add(consumer2)

		require.Error(t, group.Start(context.Background()))
		assert.True(t, consumer1.started)
		assert.True(t, consumer1.shutdown)
		assert.False(t, consumer2.started)
	})

	t.Run("shutdown stops consumers and closes the subscriber", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())
		consumer := &mockRunnable{}

		group.Add(consumer)
		_ = group.Start(context.Background())

		require.NoError(t, group.Shutdown())
		assert.True(t, consumer.shutdown)
		assert.True(t, sub.closed)
	})
}
