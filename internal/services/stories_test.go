package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStoryRepo struct {
	mu        sync.Mutex
	stories   []models.Story
	seen      map[string]map[string]bool // userID -> storyID
	createErr error
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{seen: make(map[string]map[string]bool)}
}

// add seeds an active story with the given age offset.
func (r *fakeStoryRepo) add(authorID, mediaType string, createdAt time.Time) models.Story {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := models.Story{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Author:    models.Author{ID: authorID},
		MediaType: mediaType,
		CreatedAt: createdAt,
	}
	r.stories = append(r.stories, s)
	return s
}

func (r *fakeStoryRepo) CreateStory(_ context.Context, story *models.Story) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	r.stories = append(r.stories, *story)
	return nil
}

func (r *fakeStoryRepo) GetStoryByID(_ context.Context, id string) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stories {
		if s.ID.Hex() == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStoryRepo) GetActiveStories(_ context.Context) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Oldest first, like the real query.
	out := append([]models.Story{}, r.stories...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeStoryRepo) DeleteStory(_ context.Context, id, authorID string) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.stories {
		if s.ID.Hex() == id && s.AuthorID == authorID {
			r.stories = append(r.stories[:i], r.stories[i+1:]...)
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStoryRepo) MarkSeen(storySeen *models.StorySeen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[storySeen.UserID] == nil {
		r.seen[storySeen.UserID] = make(map[string]bool)
	}
	r.seen[storySeen.UserID][storySeen.StoryID] = true
	return nil
}

func (r *fakeStoryRepo) GetSeenStoryIDs(userID string, storyIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range storyIDs {
		if r.seen[userID][id] {
			out[id] = true
		}
	}
	return out, nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string]string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]string)}
}

func (b *fakeBlobStore) Upload(_ context.Context, path string, r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = string(data)
	return "https://blobs.example/" + path, nil
}

func (b *fakeBlobStore) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, path)
	return nil
}

func (b *fakeBlobStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func TestCreateStoryUploadsMedia(t *testing.T) {
	repo := newFakeStoryRepo()
	blobs := newFakeBlobStore()
	svc := NewStories(repo, blobs)

	author := &models.User{ID: "alice", Name: "Alice"}
	story, err := svc.Create(context.Background(), author, models.MediaVideo, 12,
		"clip.mp4", strings.NewReader("video-bytes"), "video/mp4")
	require.NoError(t, err)

	assert.Equal(t, "alice", story.AuthorID)
	assert.Equal(t, 12, story.Duration)
	assert.True(t, strings.HasPrefix(story.MediaPath, "stories/alice/"))
	assert.True(t, strings.HasSuffix(story.MediaPath, ".mp4"))
	assert.Equal(t, 1, blobs.count())
}

func TestCreateStoryCleansUpBlobOnInsertFailure(t *testing.T) {
	repo := newFakeStoryRepo()
	repo.createErr = errors.New("insert failed")
	blobs := newFakeBlobStore()
	svc := NewStories(repo, blobs)

	_, err := svc.Create(context.Background(), &models.User{ID: "alice"}, models.MediaImage, 0,
		"pic.jpg", strings.NewReader("img"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, 0, blobs.count())
}

func TestDeleteStoryRemovesMedia(t *testing.T) {
	repo := newFakeStoryRepo()
	blobs := newFakeBlobStore()
	svc := NewStories(repo, blobs)
	ctx := context.Background()

	story, err := svc.Create(ctx, &models.User{ID: "alice"}, models.MediaImage, 0,
		"pic.jpg", strings.NewReader("img"), "image/jpeg")
	require.NoError(t, err)

	// Only the author may delete.
	err = svc.Delete(ctx, "mallory", story.ID.Hex())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, 1, blobs.count())

	require.NoError(t, svc.Delete(ctx, "alice", story.ID.Hex()))
	assert.Equal(t, 0, blobs.count())
}

func TestTraysGroupByAuthorInPostingOrder(t *testing.T) {
	repo := newFakeStoryRepo()
	svc := NewStories(repo, newFakeBlobStore())
	now := time.Now()

	a1 := repo.add("alice", models.MediaImage, now.Add(-3*time.Hour))
	a2 := repo.add("alice", models.MediaImage, now.Add(-1*time.Hour))
	b1 := repo.add("bob", models.MediaVideo, now.Add(-2*time.Hour))

	trays, err := svc.Trays(context.Background(), "viewer")
	require.NoError(t, err)
	require.Len(t, trays, 2)

	// Alice's tray holds the newest item overall, so it comes first.
	assert.Equal(t, "alice", trays[0].Author.ID)
	require.Len(t, trays[0].Items, 2)
	assert.Equal(t, a1.ID, trays[0].Items[0].ID)
	assert.Equal(t, a2.ID, trays[0].Items[1].ID)

	assert.Equal(t, "bob", trays[1].Author.ID)
	require.Len(t, trays[1].Items, 1)
	assert.Equal(t, b1.ID, trays[1].Items[0].ID)
}

func TestTraysAllViewedRequiresEveryItem(t *testing.T) {
	repo := newFakeStoryRepo()
	svc := NewStories(repo, newFakeBlobStore())
	ctx := context.Background()
	now := time.Now()

	a1 := repo.add("alice", models.MediaImage, now.Add(-2*time.Hour))
	a2 := repo.add("alice", models.MediaImage, now.Add(-1*time.Hour))

	require.NoError(t, svc.MarkSeen("viewer", a1.ID.Hex()))

	trays, err := svc.Trays(ctx, "viewer")
	require.NoError(t, err)
	require.Len(t, trays, 1)
	assert.False(t, trays[0].AllViewed)

	require.NoError(t, svc.MarkSeen("viewer", a2.ID.Hex()))

	trays, err = svc.Trays(ctx, "viewer")
	require.NoError(t, err)
	assert.True(t, trays[0].AllViewed)
}
