package ai

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "api error with 429",
			err:  &APIError{StatusCode: 429},
			want: true,
		},
		{
			name: "api error with 429 but permanent",
			err:  &APIError{StatusCode: 429, IsPermanent: true},
			want: false,
		},
		{
			name: "message mentioning rate limit",
			err:  errors.New("request failed: rate limit reached"),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "permanent api error",
			err:  &APIError{StatusCode: 429, IsPermanent: true},
			want: true,
		},
		{
			name: "insufficient quota code",
			err:  &APIError{Code: "insufficient_quota"},
			want: true,
		},
		{
			name: "message mentioning billing",
			err:  errors.New("billing hard limit reached"),
			want: true,
		},
		{
			name: "plain rate limit",
			err:  &APIError{StatusCode: 429},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsQuotaError(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractAPIError(t *testing.T) {
	t.Parallel()

	t.Run("non 429 error", func(t *testing.T) {
		t.Parallel()

		if got := ExtractAPIError(errors.New("connection refused")); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("429 with json body", func(t *testing.T) {
		t.Parallel()

		err := errors.New(`status 429: {"message": "You exceeded your current quota", "type": "insufficient_quota", "code": "insufficient_quota"}`)
		got := ExtractAPIError(err)
		if got == nil {
			t.Fatal("expected an API error")
		}
		if !got.IsPermanent {
			t.Error("expected quota exhaustion to be permanent")
		}
		if got.Code != "insufficient_quota" {
			t.Errorf("expected code insufficient_quota, got %q", got.Code)
		}
		if got.RetryAfter == nil || *got.RetryAfter != time.Hour {
			t.Errorf("expected 1h retry-after for quota errors, got %v", got.RetryAfter)
		}
	})

	t.Run("plain 429", func(t *testing.T) {
		t.Parallel()

		got := ExtractAPIError(errors.New("status 429 too many requests"))
		if got == nil {
			t.Fatal("expected an API error")
		}
		if got.IsPermanent {
			t.Error("expected plain rate limit to be transient")
		}
		if got.RetryAfter == nil || *got.RetryAfter != 60*time.Second {
			t.Errorf("expected 60s retry-after, got %v", got.RetryAfter)
		}
	})
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{
			name:    "generic error first attempt",
			err:     errors.New("boom"),
			attempt: 0,
			want:    5 * time.Second,
		},
		{
			name:    "generic error grows exponentially",
			err:     errors.New("boom"),
			attempt: 2,
			want:    20 * time.Second,
		},
		{
			name:    "generic error capped",
			err:     errors.New("boom"),
			attempt: 15,
			want:    5 * time.Minute,
		},
		{
			name:    "rate limit first attempt",
			err:     &APIError{StatusCode: 429},
			attempt: 0,
			want:    60 * time.Second,
		},
		{
			name:    "rate limit capped",
			err:     &APIError{StatusCode: 429},
			attempt: 10,
			want:    15 * time.Minute,
		},
		{
			name:    "quota error first attempt",
			err:     &APIError{StatusCode: 429, IsPermanent: true},
			attempt: 0,
			want:    time.Hour,
		},
		{
			name:    "quota error capped at a day",
			err:     &APIError{StatusCode: 429, IsPermanent: true},
			attempt: 10,
			want:    24 * time.Hour,
		},
		{
			name:    "negative attempt treated as zero",
			err:     errors.New("boom"),
			attempt: -3,
			want:    5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := GetRetryDelay(tt.err, tt.attempt); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
