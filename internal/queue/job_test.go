package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()

	job := NewJob(JobTypeTagSuggestion, "auth0|op-17", &noteID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeTagSuggestion {
		t.Errorf("Expected job type to be %s, got %s", JobTypeTagSuggestion, job.Type)
	}
	if job.AuthorUID != "auth0|op-17" {
		t.Errorf("Expected author uid to be auth0|op-17, got %s", job.AuthorUID)
	}
	if job.NoteID == nil || *job.NoteID != noteID {
		t.Errorf("Expected note ID to be %s, got %v", noteID, job.NoteID)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no time constraints",
			job:  &Job{ID: uuid.New(), Type: JobTypeTagSuggestion},
			want: true,
		},
		{
			name: "not before in the past",
			job:  &Job{ID: uuid.New(), Type: JobTypeTagSuggestion, NotBefore: &past},
			want: true,
		},
		{
			name: "not before in the future",
			job:  &Job{ID: uuid.New(), Type: JobTypeTagSuggestion, NotBefore: &future},
			want: false,
		},
		{
			name: "not after in the future",
			job:  &Job{ID: uuid.New(), Type: JobTypeTagSuggestion, NotAfter: &future},
			want: true,
		},
		{
			name: "not after in the past",
			job:  &Job{ID: uuid.New(), Type: JobTypeTagSuggestion, NotAfter: &past},
			want: false,
		},
		{
			name: "inside processing window",
			job:  &Job{ID: uuid.New(), Type: JobTypeTagSuggestion, NotBefore: &past, NotAfter: &future},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no expiry",
			job:  &Job{ID: uuid.New()},
			want: false,
		},
		{
			name: "not yet expired",
			job:  &Job{ID: uuid.New(), NotAfter: &future},
			want: false,
		},
		{
			name: "expired",
			job:  &Job{ID: uuid.New(), NotAfter: &past},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeTagSuggestion, "auth0|op-17", nil)

	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("expected retry %d of %d to be allowed", i+1, job.MaxRetries)
		}
		job.IncrementRetry()
	}

	if job.CanRetry() {
		t.Error("expected retries to be exhausted")
	}
	if job.RetryCount != job.MaxRetries {
		t.Errorf("expected retry count %d, got %d", job.MaxRetries, job.RetryCount)
	}
}
