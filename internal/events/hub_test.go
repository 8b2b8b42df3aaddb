package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishOrderAndUnsubscribe(t *testing.T) {
	hub := NewHub()
	var seen []string

	unsubA := hub.Subscribe(TopicTranslationCompleted, func(_ context.Context, evt Event) {
		seen = append(seen, "a:"+evt.Metadata["id"])
	})
	hub.Subscribe(TopicTranslationCompleted, func(_ context.Context, evt Event) {
		seen = append(seen, "b:"+evt.Metadata["id"])
	})
	hub.Subscribe(TopicConfigUpdated, func(context.Context, Event) {
		seen = append(seen, "config")
	})

	hub.Publish(context.Background(), TopicTranslationCompleted, nil, map[string]string{"id": "1"})
	require.Equal(t, []string{"a:1", "b:1"}, seen)

	unsubA()
	unsubA()
	hub.Publish(context.Background(), TopicTranslationCompleted, nil, map[string]string{"id": "2"})
	assert.Equal(t, []string{"a:1", "b:1", "b:2"}, seen)
	assert.Equal(t, 1, hub.Subscribers(TopicTranslationCompleted))
}

func TestHubWildcardSeesEveryTopic(t *testing.T) {
	hub := NewHub()
	var topics []string
	unsub := hub.Subscribe(TopicAll, func(_ context.Context, evt Event) {
		topics = append(topics, evt.Topic)
	})
	hub.Subscribe(TopicConfigUpdated, func(context.Context, Event) {
		topics = append(topics, "direct")
	})

	hub.Publish(context.Background(), TopicConfigUpdated, nil, nil)
	hub.Publish(context.Background(), TopicTranslationCompleted, nil, nil)
	assert.Equal(t, []string{"direct", TopicConfigUpdated, TopicTranslationCompleted}, topics)

	unsub()
	hub.Publish(context.Background(), TopicTranslationCompleted, nil, nil)
	assert.Len(t, topics, 3)
	assert.Equal(t, 0, hub.Subscribers(TopicAll))
}

func TestHubUnsubscribeDuringPublish(t *testing.T) {
	hub := NewHub()
	calls := 0
	var unsub func()
	unsub = hub.Subscribe(TopicConfigUpdated, func(context.Context, Event) {
		calls++
		unsub()
	})
	hub.Publish(context.Background(), TopicConfigUpdated, nil, nil)
	hub.Publish(context.Background(), TopicConfigUpdated, nil, nil)
	assert.Equal(t, 1, calls)
}

func TestHubHandlerPanicIsContained(t *testing.T) {
	hub := NewHub()
	var delivered bool
	hub.Subscribe(TopicTranslationCompleted, func(context.Context, Event) { panic("boom") })
	hub.Subscribe(TopicTranslationCompleted, func(_ context.Context, evt Event) {
		payload, ok := evt.Payload.(TranslationCompleted)
		delivered = ok && payload.Provider == "openai"
	})

	assert.NotPanics(t, func() {
		hub.Publish(context.Background(), TopicTranslationCompleted, TranslationCompleted{Provider: "openai"}, nil)
	})
	assert.True(t, delivered)
}

func TestTranslationCompletedFailed(t *testing.T) {
	evt := TranslationCompleted{Outcomes: map[string]bool{"formal": true, "casual": false, "normal": false}}
	assert.Equal(t, 2, evt.Failed())

	var nilHub *Hub
	assert.NotPanics(t, func() { nilHub.Publish(context.Background(), "x", nil, nil) })
}
