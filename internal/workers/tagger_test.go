package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/queue"
	"github.com/holthoefer/qmflow/internal/services/ai"
	"github.com/holthoefer/qmflow/internal/store"
)

// mockAIProvider is a mock implementation of ai.Provider
type mockAIProvider struct {
	suggestTagsFunc func(ctx context.Context, noteText string, existingTags []string) ([]string, error)
}

func (m *mockAIProvider) SuggestTags(ctx context.Context, noteText string, existingTags []string) ([]string, error) {
	if m.suggestTagsFunc != nil {
		return m.suggestTagsFunc(ctx, noteText, existingTags)
	}
	return []string{"welding"}, nil
}

func (m *mockAIProvider) SuggestResponsePlan(ctx context.Context, plan *models.ControlPlan) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockAIProvider) ClassifyNavigation(ctx context.Context, utterance string) (string, error) {
	return ai.DestinationUnknown, errors.New("not implemented")
}

var _ ai.Provider = (*mockAIProvider)(nil)

// mockNoteStore is a mock implementation of store.NoteStore
type mockNoteStore struct {
	notes            map[uuid.UUID]*models.Note
	updateErr        error
	distinctTagsErr  error
	distinctTags     []string
	updatedStatuses  []models.TagStatus
}

func newMockNoteStore(notes ...*models.Note) *mockNoteStore {
	m := &mockNoteStore{notes: make(map[uuid.UUID]*models.Note)}
	for _, n := range notes {
		m.notes[n.ID] = n
	}
	return m
}

func (m *mockNoteStore) GetByID(_ context.Context, id uuid.UUID) (*models.Note, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (m *mockNoteStore) Update(_ context.Context, note *models.Note) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedStatuses = append(m.updatedStatuses, note.TagStatus)
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *mockNoteStore) DistinctTags(_ context.Context, _ string) ([]string, error) {
	if m.distinctTagsErr != nil {
		return nil, m.distinctTagsErr
	}
	return m.distinctTags, nil
}

var _ store.NoteStore = (*mockNoteStore)(nil)

func testNote(authorUID string) *models.Note {
	return &models.Note{
		ID:        uuid.New(),
		AuthorUID: authorUID,
		Title:     "torque drift",
		Body:      "torque wrench on station 4 drifting out of spec",
		UserTags:  []string{"station-4"},
		TagStatus: models.TagStatusPending,
	}
}

func TestProcessTagSuggestionJob_Success(t *testing.T) {
	t.Parallel()

	note := testNote("auth0|op-17")
	notes := newMockNoteStore(note)
	provider := &mockAIProvider{
		suggestTagsFunc: func(_ context.Context, _ string, existingTags []string) ([]string, error) {
			if len(existingTags) != 1 || existingTags[0] != "torque" {
				t.Errorf("expected existing tags [torque], got %v", existingTags)
			}
			return []string{"torque", "calibration"}, nil
		},
	}
	notes.distinctTags = []string{"torque"}

	tagger := NewNoteTagger(provider, notes, nil, nil)
	job := queue.NewJob(queue.JobTypeTagSuggestion, note.AuthorUID, &note.ID)

	if err := tagger.ProcessTagSuggestionJob(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := notes.notes[note.ID]
	if updated.TagStatus != models.TagStatusTagged {
		t.Errorf("expected status tagged, got %s", updated.TagStatus)
	}
	// User tags come first and survive the merge
	if len(updated.Tags) != 3 || updated.Tags[0] != "station-4" {
		t.Errorf("expected merged tags starting with user tags, got %v", updated.Tags)
	}
	// pending -> processing -> tagged
	if len(notes.updatedStatuses) != 2 ||
		notes.updatedStatuses[0] != models.TagStatusProcessing ||
		notes.updatedStatuses[1] != models.TagStatusTagged {
		t.Errorf("unexpected status transitions: %v", notes.updatedStatuses)
	}
}

func TestProcessTagSuggestionJob_MissingNoteID(t *testing.T) {
	t.Parallel()

	tagger := NewNoteTagger(&mockAIProvider{}, newMockNoteStore(), nil, nil)
	job := queue.NewJob(queue.JobTypeTagSuggestion, "auth0|op-17", nil)

	if err := tagger.ProcessTagSuggestionJob(context.Background(), job); err == nil {
		t.Error("expected error for missing note id")
	}
}

func TestProcessTagSuggestionJob_NoteNotFound(t *testing.T) {
	t.Parallel()

	tagger := NewNoteTagger(&mockAIProvider{}, newMockNoteStore(), nil, nil)
	noteID := uuid.New()
	job := queue.NewJob(queue.JobTypeTagSuggestion, "auth0|op-17", &noteID)

	err := tagger.ProcessTagSuggestionJob(context.Background(), job)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestProcessTagSuggestionJob_WrongAuthor(t *testing.T) {
	t.Parallel()

	note := testNote("auth0|op-17")
	notes := newMockNoteStore(note)
	tagger := NewNoteTagger(&mockAIProvider{}, notes, nil, nil)
	job := queue.NewJob(queue.JobTypeTagSuggestion, "auth0|op-99", &note.ID)

	if err := tagger.ProcessTagSuggestionJob(context.Background(), job); err == nil {
		t.Error("expected error for mismatched author")
	}
	if notes.notes[note.ID].TagStatus != models.TagStatusPending {
		t.Error("expected note to be untouched")
	}
}

func TestProcessTagSuggestionJob_ProviderErrorResetsStatus(t *testing.T) {
	t.Parallel()

	note := testNote("auth0|op-17")
	notes := newMockNoteStore(note)
	provider := &mockAIProvider{
		suggestTagsFunc: func(context.Context, string, []string) ([]string, error) {
			return nil, &ai.APIError{StatusCode: 429}
		},
	}

	tagger := NewNoteTagger(provider, notes, nil, nil)
	job := queue.NewJob(queue.JobTypeTagSuggestion, note.AuthorUID, &note.ID)

	err := tagger.ProcessTagSuggestionJob(context.Background(), job)
	if err == nil {
		t.Fatal("expected error from provider")
	}
	if !ai.IsRateLimitError(err) {
		t.Errorf("expected rate limit error to propagate, got %v", err)
	}
	if notes.notes[note.ID].TagStatus != models.TagStatusPending {
		t.Errorf("expected status reset to pending, got %s", notes.notes[note.ID].TagStatus)
	}
}

func TestProcessTagSuggestionJob_DistinctTagsFailureTolerated(t *testing.T) {
	t.Parallel()

	note := testNote("auth0|op-17")
	notes := newMockNoteStore(note)
	notes.distinctTagsErr = errors.New("cursor timeout")

	provider := &mockAIProvider{
		suggestTagsFunc: func(_ context.Context, _ string, existingTags []string) ([]string, error) {
			if existingTags != nil {
				t.Errorf("expected nil existing tags on lookup failure, got %v", existingTags)
			}
			return []string{"welding"}, nil
		},
	}

	tagger := NewNoteTagger(provider, notes, nil, nil)
	job := queue.NewJob(queue.JobTypeTagSuggestion, note.AuthorUID, &note.ID)

	if err := tagger.ProcessTagSuggestionJob(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes.notes[note.ID].TagStatus != models.TagStatusTagged {
		t.Error("expected note to be tagged despite vocabulary lookup failure")
	}
}
