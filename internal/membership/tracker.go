package membership

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/guildmate-bot/guildmate/internal/nats"
)

// ConsumerSource hands out durable JetStream consumers.
type ConsumerSource interface {
	EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error)
}

// Tracker consumes presence events and keeps the roster cache current.
type Tracker struct {
	consumers ConsumerSource
	roster    *Cache
}

// NewTracker creates a Tracker writing into roster.
func NewTracker(consumers ConsumerSource, roster *Cache) *Tracker {
	return &Tracker{consumers: consumers, roster: roster}
}

// Start consumes presence events until ctx is cancelled.
func (t *Tracker) Start(ctx context.Context) error {
	consumer, err := t.consumers.EnsureConsumer(ctx, inats.StreamEvents, "presence-tracker", inats.SubjectPresenceEvent)
	if err != nil {
		return err
	}

	slog.Info("presence tracker started", "consumer", "presence-tracker")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching presence events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			t.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (t *Tracker) handleEvent(ctx context.Context, msg jetstream.Msg) {
	var event inats.PresenceEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("unmarshaling presence event", "error", err)
		_ = msg.Nak()
		return
	}

	err := t.roster.Upsert(ctx, Member{
		JID:      event.JID,
		Status:   event.Status,
		LastSeen: event.Timestamp,
	})
	if err != nil {
		slog.Error("updating roster", "jid", event.JID, "error", err)
		_ = msg.Nak()
		return
	}

	slog.Debug("roster updated", "jid", event.JID, "status", event.Status)
	_ = msg.Ack()
}
