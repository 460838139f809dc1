// Package conversation holds the shared dialogue history consumed by
// completion calls.
//
// The shared state is only ever replaced wholesale: a processing run
// takes a Snapshot, mutates the copy locally, and commits it back on
// success. A run that fails before Commit leaves the shared history
// exactly as it found it.
package conversation

import "sync"

// Store is the bounded, ordered sequence of conversation entries shared
// across processing runs. Insertion order is chronological order.
type Store struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

// NewStore creates a Store that keeps at most max entries, evicting the
// oldest first when the bound is exceeded.
func NewStore(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{max: max}
}

// Snapshot returns a point-in-time copy of the current state for local
// mutation during one run.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return &Snapshot{entries: entries}
}

// Commit atomically replaces the shared state with the snapshot, then
// enforces the length bound by evicting from the front.
func (s *Store) Commit(sn *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, len(sn.entries))
	copy(entries, sn.entries)
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}
	s.entries = entries
}

// Clear empties the shared state. Used for explicit context-pollution
// recovery.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Len returns the number of shared entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the shared state.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Snapshot is a local, mutable copy of the conversation used during one
// processing run. Append operations mutate only the snapshot, never the
// shared state it was taken from.
type Snapshot struct {
	entries []Entry
}

// AppendUser appends e as a user entry.
func (sn *Snapshot) AppendUser(e Entry) {
	e.Role = RoleUser
	sn.entries = append(sn.entries, e)
}

// AppendAssistant appends e as an assistant entry.
func (sn *Snapshot) AppendAssistant(e Entry) {
	e.Role = RoleAssistant
	sn.entries = append(sn.entries, e)
}

// AppendToolResult appends e as a tool-result entry. The entry's
// ToolCallID links it to the originating tool invocation.
func (sn *Snapshot) AppendToolResult(e Entry) {
	e.Role = RoleToolResult
	sn.entries = append(sn.entries, e)
}

// Entries returns the snapshot's entries in order. The returned slice
// must not be mutated.
func (sn *Snapshot) Entries() []Entry {
	return sn.entries
}

// Len returns the number of entries in the snapshot.
func (sn *Snapshot) Len() int {
	return len(sn.entries)
}
