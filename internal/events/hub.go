package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	TopicConfigUpdated        = "config.updated"
	TopicTranslationCompleted = "translation.completed"

	// TopicAll receives every event, after the topic's own subscribers.
	TopicAll = "*"
)

// Event is one published message.
type Event struct {
	Topic     string            `json:"topic"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   any               `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type Handler func(context.Context, Event)

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any, metadata map[string]string)
}

type Subscriber interface {
	Subscribe(topic string, handler Handler) func()
}

type subscription struct {
	id      uint64
	handler Handler
}

// Hub is an in-process pub/sub bus. Handlers run synchronously on the
// publishing goroutine, in subscription order. Subscriber lists are
// copy-on-write so Publish never holds the lock while a handler runs.
type Hub struct {
	mu     sync.Mutex
	topics map[string][]subscription
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string][]subscription)}
}

// Subscribe registers handler for topic (or TopicAll). The returned func
// unsubscribes and is safe to call more than once.
func (h *Hub) Subscribe(topic string, handler Handler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	subs := h.topics[topic]
	next := make([]subscription, len(subs), len(subs)+1)
	copy(next, subs)
	h.topics[topic] = append(next, subscription{id: id, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(topic, id) })
	}
}

func (h *Hub) remove(topic string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[topic]
	next := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(h.topics, topic)
		return
	}
	h.topics[topic] = next
}

// Publish delivers an event to topic subscribers, then to TopicAll ones.
// A panicking handler is logged and does not stop the rest.
func (h *Hub) Publish(ctx context.Context, topic string, payload any, metadata map[string]string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	direct, wildcard := h.topics[topic], h.topics[TopicAll]
	h.mu.Unlock()
	if len(direct) == 0 && len(wildcard) == 0 {
		return
	}

	evt := Event{Topic: topic, Timestamp: time.Now().UTC(), Payload: payload, Metadata: metadata}
	for _, s := range direct {
		deliver(ctx, s.handler, evt)
	}
	if topic == TopicAll {
		return
	}
	for _, s := range wildcard {
		deliver(ctx, s.handler, evt)
	}
}

// Subscribers returns the number of handlers registered for topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

func deliver(ctx context.Context, handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"topic": evt.Topic, "panic": r}).Error("event handler panicked")
		}
	}()
	handler(ctx, evt)
}
