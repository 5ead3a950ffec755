package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

const groupChannelPrefix = "notify:%s"

// Subscriber receives notification payloads fanned out from a group.
type Subscriber interface {
	Deliver(payload []byte)
}

type groupState struct {
	cancel  context.CancelFunc
	clients map[Subscriber]struct{}
}

// Hub fans notifications out to connected clients through Redis pub/sub, so
// every backend instance delivers to its own sockets. One Redis subscription
// is held per group with at least one local client.
type Hub struct {
	redis  *redis.Client
	logger *slog.Logger

	mu     sync.RWMutex
	groups map[string]*groupState

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		redis:  redisClient,
		logger: logger.With("component", "notify-hub"),
		groups: make(map[string]*groupState),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish sends one envelope to a group channel.
func (h *Hub) Publish(ctx context.Context, group string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	channel := fmt.Sprintf(groupChannelPrefix, group)
	if err := h.redis.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	h.logger.Debug("published notification", "group", group, "type", env.Type)
	return nil
}

// Join subscribes a client to the given groups, starting a Redis
// subscription for any group without one.
func (h *Hub) Join(sub Subscriber, groups []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, group := range groups {
		state, ok := h.groups[group]
		if !ok {
			ctx, cancel := context.WithCancel(h.ctx)
			state = &groupState{
				cancel:  cancel,
				clients: make(map[Subscriber]struct{}),
			}
			h.groups[group] = state
			go h.subscribeToGroup(ctx, group)
		}
		state.clients[sub] = struct{}{}
	}
}

// Leave removes a client from every group, tearing down Redis subscriptions
// that no longer have local clients.
func (h *Hub) Leave(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group, state := range h.groups {
		if _, ok := state.clients[sub]; !ok {
			continue
		}
		delete(state.clients, sub)
		if len(state.clients) == 0 {
			state.cancel()
			delete(h.groups, group)
			h.logger.Debug("closed empty group subscription", "group", group)
		}
	}
}

func (h *Hub) subscribeToGroup(ctx context.Context, group string) {
	channel := fmt.Sprintf(groupChannelPrefix, group)

	pubsub := h.redis.Subscribe(ctx, channel)
	defer pubsub.Close()

	h.logger.Debug("subscribed to group", "group", group, "channel", channel)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				h.logger.Error("receive notification", "error", err, "group", group)
				return
			}

			h.fanOut(group, []byte(msg.Payload))
		}
	}
}

func (h *Hub) fanOut(group string, payload []byte) {
	h.mu.RLock()
	state, ok := h.groups[group]
	if !ok {
		h.mu.RUnlock()
		return
	}
	clients := make([]Subscriber, 0, len(state.clients))
	for sub := range state.clients {
		clients = append(clients, sub)
	}
	h.mu.RUnlock()

	for _, sub := range clients {
		sub.Deliver(payload)
	}
}

// GroupCount returns the number of groups with active subscriptions.
func (h *Hub) GroupCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups)
}

// ClientCount returns the number of distinct connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[Subscriber]struct{})
	for _, state := range h.groups {
		for sub := range state.clients {
			seen[sub] = struct{}{}
		}
	}
	return len(seen)
}

func (h *Hub) Close() error {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for group, state := range h.groups {
		state.cancel()
		delete(h.groups, group)
	}
	return nil
}
