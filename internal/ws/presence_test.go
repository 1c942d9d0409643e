package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceAddIsIdempotent(t *testing.T) {
	p := NewPresence()

	assert.True(t, p.Add("u1"))
	assert.False(t, p.Add("u1"))
	assert.Equal(t, []string{"u1"}, p.Snapshot())
}

func TestPresenceRemoveUnknownIsHarmless(t *testing.T) {
	p := NewPresence()
	p.Remove("ghost")
	assert.Empty(t, p.Snapshot())
}

func TestPresenceSnapshotSorted(t *testing.T) {
	p := NewPresence()
	p.Add("charlie")
	p.Add("alice")
	p.Add("bob")

	assert.Equal(t, []string{"alice", "bob", "charlie"}, p.Snapshot())
}

func TestPresenceLifecycle(t *testing.T) {
	p := NewPresence()
	p.Add("u1")
	p.Add("u2")

	assert.True(t, p.IsOnline("u1"))
	p.Remove("u1")
	assert.False(t, p.IsOnline("u1"))
	assert.Equal(t, []string{"u2"}, p.Snapshot())
}
