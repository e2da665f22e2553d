package ai

import (
	"context"

	"github.com/holthoefer/qmflow/internal/models"
)

// Provider is the interface for AI providers
type Provider interface {
	// SuggestTags suggests tags for a note body, preferring existing tags
	SuggestTags(ctx context.Context, noteText string, existingTags []string) ([]string, error)

	// SuggestResponsePlan drafts a response plan for a control plan entry
	SuggestResponsePlan(ctx context.Context, plan *models.ControlPlan) (string, error)

	// ClassifyNavigation maps a free-text utterance to an app destination.
	// Returns DestinationUnknown when the utterance does not match any screen.
	ClassifyNavigation(ctx context.Context, utterance string) (string, error)
}

// DestinationUnknown is the fallback navigation target when classification
// cannot match the utterance to a known screen. Callers surface it to the
// user instead of navigating.
const DestinationUnknown = "unknown"

// ProviderFactory creates an AI provider from a configuration map
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
