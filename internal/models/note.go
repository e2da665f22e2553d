package models

import (
	"time"

	"github.com/google/uuid"
)

// TagStatus represents where a note is in the AI tagging pipeline
type TagStatus string

const (
	TagStatusPending    TagStatus = "pending"
	TagStatusProcessing TagStatus = "processing"
	TagStatusTagged     TagStatus = "tagged"
)

// Note represents a private note with AI-assisted tags.
// Notes are always scoped to their author.
type Note struct {
	ID        uuid.UUID `json:"id" bson:"id"`
	AuthorUID string    `json:"author_uid" bson:"author_uid"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Tags      []string  `json:"tags" bson:"tags"`
	UserTags  []string  `json:"user_tags,omitempty" bson:"user_tags,omitempty"`
	TagStatus TagStatus `json:"tag_status" bson:"tag_status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// MergeTags combines AI-suggested tags with the author's own tags.
// User tags always survive; duplicates are dropped case-insensitively.
func (n *Note) MergeTags(aiTags []string) {
	seen := make(map[string]bool, len(n.UserTags)+len(aiTags))
	merged := make([]string, 0, len(n.UserTags)+len(aiTags))
	for _, t := range n.UserTags {
		key := normalizeTag(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	for _, t := range aiTags {
		key := normalizeTag(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	n.Tags = merged
}
