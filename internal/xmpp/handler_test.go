package xmpp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gosrc.io/xmpp/stanza"

	inats "github.com/guildmate-bot/guildmate/internal/nats"
)

type fakePublisher struct {
	inbound  []inats.InboundMessage
	presence []inats.PresenceEvent
}

func (p *fakePublisher) PublishInboundMessage(_ context.Context, msg inats.InboundMessage) error {
	p.inbound = append(p.inbound, msg)
	return nil
}

func (p *fakePublisher) PublishPresenceEvent(_ context.Context, event inats.PresenceEvent) error {
	p.presence = append(p.presence, event)
	return nil
}

type fakeResolver struct {
	consume  bool
	resolved []string
}

func (r *fakeResolver) Resolve(channelID, userID, text string) bool {
	r.resolved = append(r.resolved, channelID+"|"+userID+"|"+text)
	return r.consume
}

type fakeSender struct {
	sent []stanza.Packet
}

func (s *fakeSender) Send(p stanza.Packet) error { s.sent = append(s.sent, p); return nil }
func (s *fakeSender) SendIQ(_ context.Context, _ *stanza.IQ) (chan stanza.IQ, error) {
	return nil, nil
}
func (s *fakeSender) SendRaw(_ string) error { return nil }

func TestHandleMessage_DirectChat(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeResolver{})

	h.HandleMessage(&fakeSender{}, stanza.Message{
		Attrs: stanza.Attrs{From: "alice@example.org/phone", To: "guildmate.example.org", Type: stanza.MessageTypeChat, Id: "m1"},
		Body:  "hello there",
	})

	require.Len(t, pub.inbound, 1)
	msg := pub.inbound[0]
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "alice@example.org", msg.ChannelID)
	assert.Equal(t, "alice@example.org", msg.AuthorID)
	assert.Equal(t, "hello there", msg.Body)
	assert.False(t, msg.ReceivedAt.IsZero())
}

func TestHandleMessage_Groupchat(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeResolver{})

	h.HandleMessage(&fakeSender{}, stanza.Message{
		Attrs: stanza.Attrs{From: "lobby@conference.example.org/alice", Type: stanza.MessageTypeGroupchat},
		Body:  "anyone around?",
	})

	require.Len(t, pub.inbound, 1)
	assert.Equal(t, "lobby@conference.example.org", pub.inbound[0].ChannelID)
	assert.Equal(t, "lobby@conference.example.org/alice", pub.inbound[0].AuthorID)
	assert.NotEmpty(t, pub.inbound[0].ID)
}

func TestHandleMessage_EmptyBodyIgnored(t *testing.T) {
	pub := &fakePublisher{}
	resolver := &fakeResolver{}
	h := NewHandler(pub, resolver)

	h.HandleMessage(&fakeSender{}, stanza.Message{
		Attrs: stanza.Attrs{From: "alice@example.org", Type: stanza.MessageTypeChat},
	})

	assert.Empty(t, pub.inbound)
	assert.Empty(t, resolver.resolved)
}

func TestHandleMessage_ConsumedByConfirmation(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeResolver{consume: true})

	h.HandleMessage(&fakeSender{}, stanza.Message{
		Attrs: stanza.Attrs{From: "alice@example.org", Type: stanza.MessageTypeChat},
		Body:  "yes",
	})

	assert.Empty(t, pub.inbound)
}

func TestHandlePresence_PublishesAvailability(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub, &fakeResolver{})

	h.HandlePresence(&fakeSender{}, stanza.Presence{
		Attrs: stanza.Attrs{From: "alice@example.org/phone"},
	})
	h.HandlePresence(&fakeSender{}, stanza.Presence{
		Attrs: stanza.Attrs{From: "bob@example.org", Type: stanza.PresenceTypeUnavailable},
	})

	require.Len(t, pub.presence, 2)
	assert.Equal(t, "alice@example.org", pub.presence[0].JID)
	assert.Equal(t, "online", pub.presence[0].Status)
	assert.Equal(t, "offline", pub.presence[1].Status)
}

func TestHandlePresence_AutoApprovesSubscribe(t *testing.T) {
	pub := &fakePublisher{}
	sender := &fakeSender{}
	h := NewHandler(pub, &fakeResolver{})

	h.HandlePresence(sender, stanza.Presence{
		Attrs: stanza.Attrs{From: "alice@example.org", To: "guildmate.example.org", Type: stanza.PresenceTypeSubscribe},
	})

	require.Len(t, sender.sent, 1)
	reply, ok := sender.sent[0].(stanza.Presence)
	require.True(t, ok)
	assert.Equal(t, stanza.PresenceTypeSubscribed, reply.Type)
	assert.Equal(t, "alice@example.org", reply.To)
	assert.Empty(t, pub.presence)
}

func TestBareJIDAndResource(t *testing.T) {
	tests := []struct {
		jid      string
		bare     string
		resource string
	}{
		{"alice@example.org/phone", "alice@example.org", "phone"},
		{"alice@example.org", "alice@example.org", ""},
		{"lobby@conference.example.org/alice", "lobby@conference.example.org", "alice"},
		{"", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bare, BareJID(tt.jid), tt.jid)
		assert.Equal(t, tt.resource, Resource(tt.jid), tt.jid)
	}
}

func TestMessageType_RoomHeuristic(t *testing.T) {
	assert.Equal(t, stanza.MessageTypeGroupchat, messageType("lobby@conference.example.org"))
	assert.Equal(t, stanza.MessageTypeGroupchat, messageType("lobby@muc.example.org"))
	assert.Equal(t, stanza.MessageTypeChat, messageType("alice@example.org"))
}
