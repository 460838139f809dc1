package platform

import (
	"strings"
	"sync"
)

// ChoiceRegistry routes a pending user's next message in a channel to
// the confirmation that is waiting on it. At most one choice can be
// pending per channel/user pair; registering again replaces the old one.
type ChoiceRegistry struct {
	mu      sync.Mutex
	pending map[string]chan bool
}

// NewChoiceRegistry creates an empty registry.
func NewChoiceRegistry() *ChoiceRegistry {
	return &ChoiceRegistry{pending: make(map[string]chan bool)}
}

func choiceKey(channelID, userID string) string {
	return channelID + "|" + userID
}

// Register marks a choice as pending for the given channel/user pair and
// returns the channel the outcome will be delivered on, plus a cancel
// func that must be called once the waiter is done.
func (r *ChoiceRegistry) Register(channelID, userID string) (<-chan bool, func()) {
	key := choiceKey(channelID, userID)
	ch := make(chan bool, 1)

	r.mu.Lock()
	r.pending[key] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if r.pending[key] == ch {
			delete(r.pending, key)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Resolve delivers text as the outcome of a pending choice. It returns
// true when the message was consumed by a waiter, in which case it must
// not be processed as a normal inbound message. Messages from users
// other than the one the prompt was shown to are never consumed.
func (r *ChoiceRegistry) Resolve(channelID, userID, text string) bool {
	key := choiceKey(channelID, userID)

	r.mu.Lock()
	ch, ok := r.pending[key]
	if ok {
		delete(r.pending, key)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	ch <- affirmative(text)
	return true
}

// Pending reports whether a choice is waiting for the given pair.
func (r *ChoiceRegistry) Pending(channelID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[choiceKey(channelID, userID)]
	return ok
}

func affirmative(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "yeah", "yep", "ok", "okay", "confirm", "sure":
		return true
	default:
		return false
	}
}
