package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/core"
)

// Channel names on the shared broadcast backbone, one per event kind.
var channels = []string{
	string(core.EventMessageCreated),
	string(core.EventMessageEdited),
	string(core.EventMessageDeleted),
	string(core.EventRoomCreated),
}

const (
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Bridge relays fan-out events between server processes over Redis
// pub/sub. It publishes locally-originated events and replays everything
// received, its own publishes included, into the local router. Each
// process delivers only to its own connections, so subscribing everywhere
// is what makes the deployment converge.
type Bridge struct {
	client *redis.Client
	router *core.Router
	log    *zerolog.Logger
}

// New builds a bridge over the given Redis client.
func New(client *redis.Client, router *core.Router, logger *zerolog.Logger) *Bridge {
	return &Bridge{
		client: client,
		router: router,
		log:    logger,
	}
}

// Start verifies connectivity and launches the subscription loop. A dead
// backbone at boot is fatal: running split-brain silently is worse than
// not starting. Mid-run drops are retried with backoff instead.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping pubsub backbone: %w", err)
	}

	sub := b.client.Subscribe(ctx, channels...)
	// Force the subscription onto the wire before we report ready.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	go b.consume(ctx, sub)
	b.log.Info().Strs("channels", channels).Msg("propagation bridge subscribed")
	return nil
}

// Publish encodes the event payload and puts it on the channel named by
// its kind. Payload bytes match the server-to-client push data exactly.
func (b *Bridge) Publish(ctx context.Context, ev core.Event) error {
	payload, err := encodePayload(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, string(ev.Kind), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return nil
}

func (b *Bridge) consume(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()

	backoff := initialBackoff
	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn().Err(err).Dur("retry_in", backoff).Msg("pubsub receive failed, serving local members only")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		ev, err := decodeEvent(msg.Channel, []byte(msg.Payload))
		if err != nil {
			b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping undecodable event")
			continue
		}
		b.router.HandleEvent(ev)
	}
}

func encodePayload(ev core.Event) ([]byte, error) {
	var data any
	switch ev.Kind {
	case core.EventMessageCreated, core.EventMessageEdited:
		if ev.Message == nil {
			return nil, fmt.Errorf("event %q carries no payload", ev.Kind)
		}
		data = ev.Message
	case core.EventMessageDeleted:
		if ev.Deleted == nil {
			return nil, fmt.Errorf("event %q carries no payload", ev.Kind)
		}
		data = ev.Deleted
	case core.EventRoomCreated:
		if ev.Room == nil {
			return nil, fmt.Errorf("event %q carries no payload", ev.Kind)
		}
		data = ev.Room
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", ev.Kind, err)
	}
	return raw, nil
}

func decodeEvent(channel string, payload []byte) (core.Event, error) {
	kind := core.EventKind(channel)
	ev := core.Event{Kind: kind}

	switch kind {
	case core.EventMessageCreated, core.EventMessageEdited:
		var msg core.MessagePayload
		if err := json.Unmarshal(payload, &msg); err != nil {
			return core.Event{}, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		ev.Message = &msg
	case core.EventMessageDeleted:
		var ref core.MessageRef
		if err := json.Unmarshal(payload, &ref); err != nil {
			return core.Event{}, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		ev.Deleted = &ref
	case core.EventRoomCreated:
		var room core.RoomPayload
		if err := json.Unmarshal(payload, &room); err != nil {
			return core.Event{}, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		ev.Room = &room
	default:
		return core.Event{}, fmt.Errorf("unknown channel %q", channel)
	}

	return ev, nil
}
