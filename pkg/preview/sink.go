package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Submission is the payload handed to a Sink after a successful validation
// pass.
type Submission struct {
	ID          string            `json:"id"`
	Values      map[string]string `json:"values"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// Sink consumes accepted submissions.
type Sink interface {
	Submit(ctx context.Context, submission Submission) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, submission Submission) error

func (f SinkFunc) Submit(ctx context.Context, submission Submission) error {
	return f(ctx, submission)
}

// RejectedError is returned by sinks that refuse a submission. Fields maps
// field ids (or paths, see render.MapErrors) to messages shown on the form.
type RejectedError struct {
	Fields map[string][]string
	Form   []string
}

func (e *RejectedError) Error() string {
	var parts []string
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(e.Fields[key], ", ")))
	}
	parts = append(parts, e.Form...)
	if len(parts) == 0 {
		return "preview: submission rejected"
	}
	return "preview: submission rejected: " + strings.Join(parts, "; ")
}

// ErrSinkUnavailable can be wrapped by sinks that cannot accept submissions
// at the moment.
var ErrSinkUnavailable = errors.New("preview: sink unavailable")

// LogSink logs every submission at info level. It is the default sink.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Submit(ctx context.Context, submission Submission) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]string, 0, len(submission.Values))
	for key := range submission.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.String(key, submission.Values[key]))
	}

	logger.InfoContext(ctx, "form submitted",
		"submission_id", submission.ID,
		"submitted_at", submission.SubmittedAt,
		slog.Group("values", attrs...),
	)
	return nil
}

// SanitizingSink strips markup from every submitted value before handing the
// submission to Next.
type SanitizingSink struct {
	Next   Sink
	Policy *bluemonday.Policy
}

// NewSanitizingSink wraps next with bluemonday's strict policy.
func NewSanitizingSink(next Sink) *SanitizingSink {
	return &SanitizingSink{Next: next, Policy: bluemonday.StrictPolicy()}
}

func (s *SanitizingSink) Submit(ctx context.Context, submission Submission) error {
	if s.Next == nil {
		return fmt.Errorf("preview: sanitizing sink: %w", ErrSinkUnavailable)
	}
	policy := s.Policy
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}

	cleaned := submission
	cleaned.Values = maps.Clone(submission.Values)
	for key, value := range cleaned.Values {
		cleaned.Values[key] = policy.Sanitize(value)
	}
	return s.Next.Submit(ctx, cleaned)
}
