package platform

import "sync"

// History keeps a bounded ring of recent messages per channel, the
// source material for channel summaries.
type History struct {
	mu       sync.Mutex
	depth    int
	channels map[string][]Event
}

// NewHistory creates a History keeping at most depth messages per channel.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{depth: depth, channels: make(map[string][]Event)}
}

// Record appends ev to its channel's ring, evicting the oldest message
// when the ring is full.
func (h *History) Record(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ring := append(h.channels[ev.ChannelID], ev)
	if len(ring) > h.depth {
		ring = ring[len(ring)-h.depth:]
	}
	h.channels[ev.ChannelID] = ring
}

// Recent returns up to n most recent messages for channelID, oldest first.
func (h *History) Recent(channelID string, n int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ring := h.channels[channelID]
	if n > 0 && len(ring) > n {
		ring = ring[len(ring)-n:]
	}
	out := make([]Event, len(ring))
	copy(out, ring)
	return out
}
