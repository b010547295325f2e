package services

import (
	"context"
	"io"
	"path"
	"sort"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BlobStore is the media storage collaborator. Satisfied by *firebase.App.
type BlobStore interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

// Tray is one author's ordered sequence of active stories, oldest first,
// played as a single session by the story viewer.
type Tray struct {
	Author    models.Author  `json:"author"`
	Items     []models.Story `json:"items"`
	AllViewed bool           `json:"allViewed"`
}

// Stories manages story creation/deletion and tray assembly.
type Stories struct {
	stories repositories.StoryRepository
	blobs   BlobStore
}

// NewStories creates a new Stories service
func NewStories(storyRepo repositories.StoryRepository, blobs BlobStore) *Stories {
	return &Stories{stories: storyRepo, blobs: blobs}
}

// Create uploads the media object and inserts the story document. The blob
// path is kept on the document so deletion can remove both.
func (s *Stories) Create(ctx context.Context, author *models.User, mediaType string, durationSec int, filename string, r io.Reader, contentType string) (*models.Story, error) {
	objectPath := "stories/" + author.ID + "/" + uuid.NewString() + path.Ext(filename)
	url, err := s.blobs.Upload(ctx, objectPath, r, contentType)
	if err != nil {
		return nil, err
	}

	story := &models.Story{
		AuthorID:  author.ID,
		Author:    author.Snapshot(),
		MediaURL:  url,
		MediaType: mediaType,
		MediaPath: objectPath,
	}
	if mediaType == models.MediaVideo {
		story.Duration = durationSec
	}

	if err := s.stories.CreateStory(ctx, story); err != nil {
		// The document is the source of truth; without it the object is orphaned.
		if delErr := s.blobs.Delete(ctx, objectPath); delErr != nil {
			logrus.WithError(delErr).WithField("path", objectPath).Error("Failed to clean up story media after insert failure")
		}
		return nil, err
	}
	return story, nil
}

// Get returns a single story by ID.
func (s *Stories) Get(ctx context.Context, storyID string) (*models.Story, error) {
	return s.stories.GetStoryByID(ctx, storyID)
}

// Delete removes the story document and its media object. Only the author
// may delete; a viewer holding the story open must short-circuit on the
// resulting not-found.
func (s *Stories) Delete(ctx context.Context, actorID, storyID string) error {
	story, err := s.stories.DeleteStory(ctx, storyID, actorID)
	if err != nil {
		return err
	}
	if story.MediaPath != "" {
		if err := s.blobs.Delete(ctx, story.MediaPath); err != nil {
			// Document is gone, so the story is gone; an orphaned blob is tolerable.
			logrus.WithError(err).WithField("path", story.MediaPath).Error("Failed to delete story media")
		}
	}
	return nil
}

// MarkSeen records that the viewer watched the story.
func (s *Stories) MarkSeen(viewerID, storyID string) error {
	return s.stories.MarkSeen(&models.StorySeen{StoryID: storyID, UserID: viewerID})
}

// Trays groups the active stories into per-author trays. Items inside a
// tray are oldest first; trays themselves are ordered by their newest item,
// newest tray first. AllViewed is set when the viewer has seen every item.
func (s *Stories) Trays(ctx context.Context, viewerID string) ([]Tray, error) {
	stories, err := s.stories.GetActiveStories(ctx)
	if err != nil {
		return nil, err
	}

	storyIDs := make([]string, len(stories))
	for i, st := range stories {
		storyIDs[i] = st.ID.Hex()
	}
	seen, err := s.stories.GetSeenStoryIDs(viewerID, storyIDs)
	if err != nil {
		return nil, err
	}

	// Stories arrive oldest first, so appending preserves playback order.
	byAuthor := make(map[string]int)
	trays := make([]Tray, 0)
	for _, st := range stories {
		idx, ok := byAuthor[st.AuthorID]
		if !ok {
			idx = len(trays)
			byAuthor[st.AuthorID] = idx
			trays = append(trays, Tray{Author: st.Author, AllViewed: true})
		}
		trays[idx].Items = append(trays[idx].Items, st)
		if !seen[st.ID.Hex()] {
			trays[idx].AllViewed = false
		}
	}

	// Newest tray first, judged by each tray's newest (last) item.
	sort.SliceStable(trays, func(i, j int) bool {
		li := trays[i].Items[len(trays[i].Items)-1].CreatedAt
		lj := trays[j].Items[len(trays[j].Items)-1].CreatedAt
		return li.After(lj)
	})
	return trays, nil
}
