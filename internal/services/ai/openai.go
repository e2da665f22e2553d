package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxExistingTagsInPrompt caps the number of known tags offered for reuse
	MaxExistingTagsInPrompt = 50
	// MaxSuggestedTags caps how many suggested tags are kept from a response
	MaxSuggestedTags = 8
	// MaxResponsePlanTokens limits the length of a generated response plan
	MaxResponsePlanTokens = 400

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// navigationDestinations lists the screens the assistant may route to.
// Anything else resolves to DestinationUnknown.
var navigationDestinations = []string{
	"workspace",
	"workstations",
	"control-plans",
	"incidents",
	"events",
	"samples",
	"notes",
	"admin",
}

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// SuggestTags suggests tags for a note, preferring reuse of existing tags
func (p *OpenAIProvider) SuggestTags(ctx context.Context, noteText string, existingTags []string) ([]string, error) {
	prompt := buildTagPrompt(noteText, existingTags)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are an assistant that tags quality-management shopfloor notes. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	content, err := p.send(ctx, "suggest_tags", prompt, req)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tags: %w", err)
	}

	tags, err := parseTagResponse(content)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// SuggestResponsePlan drafts a response plan for a control plan entry
func (p *OpenAIProvider) SuggestResponsePlan(ctx context.Context, plan *models.ControlPlan) (string, error) {
	prompt := buildResponsePlanPrompt(plan)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a quality engineer drafting FMEA response plans. Answer with the plan text only, no preamble."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  messages,
		MaxTokens: openai.Int(MaxResponsePlanTokens),
		// Temperature omitted - use model default to avoid "unsupported_value" errors
	}

	content, err := p.send(ctx, "suggest_response_plan", prompt, req)
	if err != nil {
		return "", fmt.Errorf("failed to suggest response plan: %w", err)
	}

	return strings.TrimSpace(content), nil
}

// ClassifyNavigation maps an utterance to one of the known app destinations
func (p *OpenAIProvider) ClassifyNavigation(ctx context.Context, utterance string) (string, error) {
	prompt := buildNavigationPrompt(utterance)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are an in-app navigation assistant. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	content, err := p.send(ctx, "classify_navigation", prompt, req)
	if err != nil {
		return "", fmt.Errorf("failed to classify navigation: %w", err)
	}

	return parseNavigationResponse(content), nil
}

// send performs the completion call with debug request/response logging
func (p *OpenAIProvider) send(ctx context.Context, operation, prompt string, req openai.ChatCompletionNewParams) (string, error) {
	requestID := ExtractRequestID(ctx)
	userUID := ExtractUserUID(ctx)
	noteID := ExtractNoteID(ctx)

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_uid", userUID),
			zap.String("note_id", noteID),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_uid", userUID),
				zap.String("note_id", noteID),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_uid", userUID),
			zap.String("note_id", noteID),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

// parseTagResponse parses a {"tags": [...]} payload, tolerating prose around
// the JSON object, and filters invalid entries.
func parseTagResponse(content string) ([]string, error) {
	var payload struct {
		Tags []string `json:"tags"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("failed to parse tag response: %w", err)
		}
	}

	tags := models.CleanTags(payload.Tags)
	if len(tags) > MaxSuggestedTags {
		tags = tags[:MaxSuggestedTags]
	}
	return tags, nil
}

// parseNavigationResponse parses a {"destination": "..."} payload and falls
// back to DestinationUnknown on anything unparseable or out of range.
func parseNavigationResponse(content string) string {
	var payload struct {
		Destination string `json:"destination"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		start := bytes.Index([]byte(raw), []byte("{"))
		end := bytes.LastIndex([]byte(raw), []byte("}"))
		if start != -1 && end != -1 && end > start {
			raw = raw[start : end+1]
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return DestinationUnknown
		}
	}

	dest := strings.ToLower(strings.TrimSpace(payload.Destination))
	for _, known := range navigationDestinations {
		if dest == known {
			return dest
		}
	}
	return DestinationUnknown
}

func buildTagPrompt(noteText string, existingTags []string) string {
	prompt := fmt.Sprintf(`Suggest tags for the following shopfloor quality note.

Note: "%s"

Respond with a JSON object in this format:
{
  "tags": ["tag1", "tag2"]
}

Guidelines:
- Suggest between 1 and %d short, lowercase tags.
- Tags should name the equipment, defect type, process step, or topic of the note.
- Return only valid JSON.`, noteText, MaxSuggestedTags)

	if len(existingTags) > 0 {
		shown := existingTags
		if len(shown) > MaxExistingTagsInPrompt {
			shown = shown[:MaxExistingTagsInPrompt]
		}
		prompt += "\n\nExisting tags (prefer reusing these when semantically similar):"
		for _, tag := range shown {
			prompt += "\n- " + tag
		}
		prompt += "\n\nOnly create new tags if no existing tag is a good match. Reusing close matches keeps tagging consistent."
	}

	return prompt
}

func buildResponsePlanPrompt(plan *models.ControlPlan) string {
	prompt := fmt.Sprintf(`Draft a concise response plan for the following control plan entry.

Process step: %s
Failure mode: %s
Current controls: %s
Severity: %d/10, Occurrence: %d/10, Detection: %d/10 (RPN %d)`,
		plan.ProcessStep, plan.FailureMode, plan.Controls,
		plan.Severity, plan.Occurrence, plan.Detection, plan.RPN())

	prompt += `

The response plan should state, in 2-4 short sentences, what the operator does when this failure mode is detected: immediate containment, who to notify, and how the affected parts are dispositioned.`

	return prompt
}

func buildNavigationPrompt(utterance string) string {
	prompt := fmt.Sprintf(`Map the user's request to one of the application screens.

User request: "%s"

Screens:`, utterance)

	for _, dest := range navigationDestinations {
		prompt += "\n- " + dest
	}

	prompt += fmt.Sprintf(`
- %s (use this when the request does not match any screen)

Respond with a JSON object in this format:
{
  "destination": "<screen>"
}

Return only valid JSON.`, DestinationUnknown)

	return prompt
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (Provider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		model := config["model"]
		baseURL := config["base_url"]

		return NewOpenAIProviderWithLogger(apiKey, baseURL, model, nil, false), nil
	})
}
