package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsStartCleared(t *testing.T) {
	reg := NewRegistry()
	flags := reg.For("u1").Snapshot()
	assert.False(t, flags.HasUnreadNotifications)
	assert.False(t, flags.HasNewPosts)
}

func TestRegistryReturnsSameIndicators(t *testing.T) {
	reg := NewRegistry()
	reg.For("u1").SetNewPosts(true)
	assert.True(t, reg.For("u1").Snapshot().HasNewPosts)
	assert.False(t, reg.For("u2").Snapshot().HasNewPosts)
}

func TestSubscriberSeesChangesOnly(t *testing.T) {
	ind := NewRegistry().For("u1")

	var calls []Flags
	cancel := ind.Subscribe(func(f Flags) { calls = append(calls, f) })
	defer cancel()

	ind.SetUnreadNotifications(true)
	ind.SetUnreadNotifications(true) // no change, no callback
	ind.SetNewPosts(true)
	ind.SetUnreadNotifications(false)

	assert.Equal(t, []Flags{
		{HasUnreadNotifications: true},
		{HasUnreadNotifications: true, HasNewPosts: true},
		{HasNewPosts: true},
	}, calls)
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	ind := NewRegistry().For("u1")

	calls := 0
	cancel := ind.Subscribe(func(Flags) { calls++ })

	ind.SetNewPosts(true)
	cancel()
	ind.SetNewPosts(false)

	assert.Equal(t, 1, calls)
}
