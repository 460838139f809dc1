package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CommitReplacesSharedState(t *testing.T) {
	store := NewStore(20)

	sn := store.Snapshot()
	sn.AppendUser(Entry{Content: "hello"})
	sn.AppendAssistant(Entry{Content: "hi there"})
	store.Commit(sn)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, RoleUser, entries[0].Role)
	assert.Equal(t, "hello", entries[0].Content)
	assert.Equal(t, RoleAssistant, entries[1].Role)
}

func TestStore_BoundEvictsOldestFirst(t *testing.T) {
	const max = 5
	store := NewStore(max)

	sn := store.Snapshot()
	for i := 0; i < max+3; i++ {
		sn.AppendUser(Entry{Content: fmt.Sprintf("msg-%d", i)})
	}
	store.Commit(sn)

	entries := store.Entries()
	require.Len(t, entries, max)
	// The most recently appended max entries remain, oldest evicted.
	assert.Equal(t, "msg-3", entries[0].Content)
	assert.Equal(t, "msg-7", entries[max-1].Content)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store := NewStore(20)

	sn := store.Snapshot()
	sn.AppendUser(Entry{Content: "first"})
	store.Commit(sn)
	before := store.Entries()

	// A run appends to its snapshot but aborts before commit.
	aborted := store.Snapshot()
	aborted.AppendUser(Entry{Content: "never committed"})
	aborted.AppendToolResult(Entry{Content: "{}", ToolCallID: "call-1"})

	assert.Equal(t, before, store.Entries())
	assert.Equal(t, 1, store.Len())
}

func TestStore_SnapshotDoesNotAliasSharedState(t *testing.T) {
	store := NewStore(20)

	sn := store.Snapshot()
	sn.AppendUser(Entry{Content: "a"})
	store.Commit(sn)

	// Mutating a snapshot taken after commit must not leak backwards.
	later := store.Snapshot()
	later.AppendUser(Entry{Content: "b"})

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 2, later.Len())
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(20)

	sn := store.Snapshot()
	sn.AppendUser(Entry{Content: "hello"})
	store.Commit(sn)
	require.Equal(t, 1, store.Len())

	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Entries())
}

func TestStore_ToolResultCarriesCorrelation(t *testing.T) {
	store := NewStore(20)

	sn := store.Snapshot()
	sn.AppendToolResult(Entry{Content: `{"count":42}`, ToolCallID: "call-9", ToolName: "member_count"})
	store.Commit(sn)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, RoleToolResult, entries[0].Role)
	assert.Equal(t, "call-9", entries[0].ToolCallID)
	assert.Equal(t, "member_count", entries[0].ToolName)
}
