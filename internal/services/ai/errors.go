package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// APIError carries provider error details parsed out of SDK errors.
// IsPermanent distinguishes quota exhaustion from transient rate limits.
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError reports whether err is a transient 429 from the provider.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 && !apiErr.IsPermanent
	}

	s := err.Error()
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many requests")
}

// IsQuotaError reports whether err signals exhausted quota or billing,
// which will not clear on a short retry.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	s := err.Error()
	return strings.Contains(s, "insufficient_quota") ||
		strings.Contains(s, "quota") ||
		strings.Contains(s, "billing")
}

// ExtractAPIError parses 429 details from an SDK error. The OpenAI SDK
// embeds the JSON error body in the message text, so this scans for it.
// Returns nil for anything that is not a 429.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	s := err.Error()
	if !strings.Contains(s, "429") {
		return nil
	}

	apiErr := &APIError{
		StatusCode: 429,
		Message:    s,
		Type:       "rate_limit_error",
	}

	if body, ok := embeddedJSON(s); ok {
		var detail struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		}
		if json.Unmarshal([]byte(body), &detail) == nil {
			apiErr.Message = detail.Message
			apiErr.Type = detail.Type
			apiErr.Code = detail.Code
			apiErr.IsPermanent = detail.Code == "insufficient_quota"
		}
	}

	retryAfter := 60 * time.Second
	if apiErr.IsPermanent {
		retryAfter = time.Hour
	}
	apiErr.RetryAfter = &retryAfter

	return apiErr
}

// embeddedJSON returns the outermost {...} slice of s, if any.
func embeddedJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(s[start:], "}")
	if end == -1 {
		return "", false
	}
	return s[start : start+end+1], true
}

// GetRetryDelay returns the backoff before retrying attempt, scaled by the
// error class. Quota errors back off in hours, rate limits in minutes,
// everything else in seconds.
func GetRetryDelay(err error, attempt int) time.Duration {
	shift := attempt
	if shift < 0 {
		shift = 0
	}
	if shift > 10 {
		shift = 10
	}
	factor := time.Duration(1 << uint(shift))

	switch {
	case IsQuotaError(err):
		return capDelay(time.Hour*factor, 24*time.Hour)
	case IsRateLimitError(err):
		delay := capDelay(60*time.Second*factor, 15*time.Minute)
		if apiErr := ExtractAPIError(err); apiErr != nil && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	default:
		return capDelay(5*time.Second*factor, 5*time.Minute)
	}
}

func capDelay(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}
