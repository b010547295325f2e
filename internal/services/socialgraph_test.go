package services

import (
	"context"
	"testing"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewerID = "super-user"

func newGraphFixture(t *testing.T, users ...*models.User) (*SocialGraph, *fakeUserRepo, *fakeNotificationRepo) {
	t.Helper()
	userRepo := newFakeUserRepo(users...)
	notifRepo := newFakeNotificationRepo()
	coordinator := NewNotificationCoordinator(notifRepo, userRepo, fakeTxn{}, session.NewRegistry(), reviewerID)
	return NewSocialGraph(userRepo, coordinator, fakeTxn{}), userRepo, notifRepo
}

func TestToggleFollowPublicTarget(t *testing.T) {
	graph, users, notifs := newGraphFixture(t,
		&models.User{ID: "alice", Name: "Alice"},
		&models.User{ID: "bob", Name: "Bob"},
	)
	ctx := context.Background()

	state, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, StateFollowing, state)

	bob := users.get("bob")
	alice := users.get("alice")
	assert.Equal(t, []string{"alice"}, bob.Followers)
	assert.Equal(t, []string{"bob"}, alice.Following)
	assert.Equal(t, int64(1), bob.Stats.Followers)
	assert.Equal(t, int64(1), alice.Stats.Following)

	got := notifs.byRecipient("bob")
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationFollow, got[0].Type)
	assert.Equal(t, "alice", got[0].Sender.ID)
}

func TestToggleFollowUnfollows(t *testing.T) {
	graph, users, _ := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	ctx := context.Background()

	_, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)

	state, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	bob := users.get("bob")
	alice := users.get("alice")
	assert.Empty(t, bob.Followers)
	assert.Empty(t, alice.Following)
	assert.Equal(t, int64(0), bob.Stats.Followers)
	assert.Equal(t, int64(0), alice.Stats.Following)
}

func TestToggleFollowPrivateTargetRequests(t *testing.T) {
	graph, users, notifs := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob", IsPrivate: true},
	)
	ctx := context.Background()

	state, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, StateRequested, state)

	bob := users.get("bob")
	assert.Equal(t, []string{"alice"}, bob.FollowRequests)
	assert.Empty(t, bob.Followers)
	assert.Equal(t, int64(0), bob.Stats.Followers)

	got := notifs.byRecipient("bob")
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationFollowRequest, got[0].Type)
}

func TestToggleFollowCancelsPendingRequest(t *testing.T) {
	graph, users, notifs := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob", IsPrivate: true},
	)
	ctx := context.Background()

	_, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)

	state, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	assert.Empty(t, users.get("bob").FollowRequests)
	assert.Empty(t, notifs.byRecipient("bob"))
}

func TestToggleFollowSelf(t *testing.T) {
	graph, _, _ := newGraphFixture(t, &models.User{ID: "alice"})

	_, err := graph.ToggleFollow(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestApproveFollowRequest(t *testing.T) {
	graph, users, notifs := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob", IsPrivate: true},
	)
	ctx := context.Background()

	_, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, graph.ApproveFollowRequest(ctx, "bob", "alice"))

	bob := users.get("bob")
	alice := users.get("alice")
	assert.Equal(t, []string{"alice"}, bob.Followers)
	assert.Equal(t, []string{"bob"}, alice.Following)
	assert.Empty(t, bob.FollowRequests)
	assert.Equal(t, int64(1), bob.Stats.Followers)
	assert.Equal(t, int64(1), alice.Stats.Following)

	// The request notification is gone; the requester got an acceptance.
	assert.Empty(t, notifs.byRecipient("bob"))
	got := notifs.byRecipient("alice")
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationFollow, got[0].Type)
	assert.Equal(t, contentFollowAccepted, got[0].Content)
}

func TestApproveWithoutPendingRequest(t *testing.T) {
	graph, _, _ := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob", IsPrivate: true},
	)

	err := graph.ApproveFollowRequest(context.Background(), "bob", "alice")
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestDeclineFollowRequest(t *testing.T) {
	graph, users, notifs := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob", IsPrivate: true},
	)
	ctx := context.Background()

	_, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, graph.DeclineFollowRequest(ctx, "bob", "alice"))

	bob := users.get("bob")
	assert.Empty(t, bob.FollowRequests)
	assert.Empty(t, bob.Followers)
	assert.Empty(t, users.get("alice").Following)
	assert.Empty(t, notifs.byRecipient("bob"))
}

func TestRelationshipStatesAreExclusive(t *testing.T) {
	// Walking the full request/approve cycle never leaves the actor both
	// following and requested.
	graph, users, _ := newGraphFixture(t,
		&models.User{ID: "alice"},
		&models.User{ID: "bob", IsPrivate: true},
	)
	ctx := context.Background()

	check := func() {
		bob := users.get("bob")
		following := bob.IsFollowedBy("alice")
		requested := bob.HasFollowRequestFrom("alice")
		assert.False(t, following && requested)
	}

	_, err := graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	check()

	require.NoError(t, graph.ApproveFollowRequest(ctx, "bob", "alice"))
	check()

	_, err = graph.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	check()
}

func TestButtonPresentation(t *testing.T) {
	assert.Equal(t, ButtonState{State: StateFollowing, Label: "Mengikuti", Outline: true}, Button(StateFollowing))
	assert.Equal(t, ButtonState{State: StateRequested, Label: "Diminta", Outline: true}, Button(StateRequested))
	assert.Equal(t, ButtonState{State: StateNone, Label: "Ikuti"}, Button(StateNone))
}
