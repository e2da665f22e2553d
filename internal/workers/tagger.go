package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/queue"
	"github.com/holthoefer/qmflow/internal/services/ai"
	"github.com/holthoefer/qmflow/internal/store"
)

// NoteTagger processes tag suggestion jobs
type NoteTagger struct {
	aiProvider ai.Provider
	notes      store.NoteStore
	jobQueue   queue.JobQueue // For re-enqueueing jobs with delays
	logger     *zap.Logger
}

// NewNoteTagger creates a new note tagger
func NewNoteTagger(aiProvider ai.Provider, notes store.NoteStore, jobQueue queue.JobQueue, logger *zap.Logger) *NoteTagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteTagger{
		aiProvider: aiProvider,
		notes:      notes,
		jobQueue:   jobQueue,
		logger:     logger,
	}
}

// ProcessTagSuggestionJob processes a single tag suggestion job
func (w *NoteTagger) ProcessTagSuggestionJob(ctx context.Context, job *queue.Job) error {
	if job.NoteID == nil {
		return fmt.Errorf("note_id is required for tag suggestion job")
	}

	note, err := w.notes.GetByID(ctx, *job.NoteID)
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	// Notes are private; a job may only touch its author's note
	if note.AuthorUID != job.AuthorUID {
		return fmt.Errorf("note does not belong to job author")
	}

	// Mark as processing before the API call. Only pending notes transition;
	// a tagged note being reprocessed keeps its status until the merge lands.
	if note.TagStatus == models.TagStatusPending {
		note.TagStatus = models.TagStatusProcessing
		if err := w.notes.Update(ctx, note); err != nil {
			w.logger.Warn("tag_status_update_failed",
				zap.String("note_id", note.ID.String()),
				zap.Error(err),
			)
		}
	}

	// Existing vocabulary steers suggestions toward reuse; losing it only
	// degrades suggestion quality, so failures are non-fatal
	existingTags, err := w.notes.DistinctTags(ctx, job.AuthorUID)
	if err != nil {
		w.logger.Warn("distinct_tags_failed",
			zap.String("author_uid", job.AuthorUID),
			zap.Error(err),
		)
		existingTags = nil
	}

	aiCtx := context.WithValue(ctx, ai.NoteIDContextKey(), note.ID)
	aiCtx = context.WithValue(aiCtx, ai.UserUIDContextKey(), job.AuthorUID)

	tags, err := w.aiProvider.SuggestTags(aiCtx, note.Body, existingTags)
	if err != nil {
		// Reset to pending so the retry starts from a clean state
		if note.TagStatus == models.TagStatusProcessing {
			note.TagStatus = models.TagStatusPending
			if updateErr := w.notes.Update(ctx, note); updateErr != nil {
				w.logger.Warn("tag_status_reset_failed",
					zap.String("note_id", note.ID.String()),
					zap.Error(updateErr),
				)
			}
		}
		return fmt.Errorf("failed to suggest tags: %w", err)
	}

	note.MergeTags(tags)
	note.TagStatus = models.TagStatusTagged

	if err := w.notes.Update(ctx, note); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	w.logger.Info("note_tagged",
		zap.String("note_id", note.ID.String()),
		zap.Strings("tags", note.Tags),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (w *NoteTagger) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	if !job.ShouldProcess() {
		w.logger.Info("job_not_ready",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			w.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeTagSuggestion:
		if err := w.ProcessTagSuggestionJob(ctx, job); err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		// Unknown job type, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError applies the retry policy for failed jobs. Quota and rate
// limit errors are re-enqueued through the delayed exchange; other errors
// use immediate requeue until retries are exhausted, then dead-letter.
func (w *NoteTagger) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	if ai.IsQuotaError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		w.logger.Warn("job_quota_exceeded",
			zap.String("job_id", job.ID.String()),
			zap.Time("retry_at", notBefore),
			zap.Error(err),
		)

		delayedJob := w.delayedRetry(job, notBefore)

		if ackErr := msg.Ack(); ackErr != nil {
			w.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}

		if w.jobQueue != nil {
			if enqueueErr := w.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			return nil
		}

		// No queue access: the message is already acked, nothing left to do
		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	if ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && w.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := w.delayedRetry(job, notBefore)

			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Warn("job_ack_failed", zap.Error(ackErr))
			}

			if enqueueErr := w.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			w.logger.Warn("job_rate_limited",
				zap.String("job_id", job.ID.String()),
				zap.Time("retry_at", notBefore),
				zap.Duration("delay", retryDelay),
			)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			if nackErr := msg.Nack(true); nackErr != nil {
				w.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	if job.CanRetry() {
		job.IncrementRetry()
		w.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	w.logger.Error("job_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		w.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

// delayedRetry clones a job for delayed re-enqueue with the retry counted
func (w *NoteTagger) delayedRetry(job *queue.Job, notBefore time.Time) *queue.Job {
	return &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		AuthorUID:  job.AuthorUID,
		NoteID:     job.NoteID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}
}
