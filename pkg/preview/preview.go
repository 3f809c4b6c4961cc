package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

const (
	// SuccessNotice is shown after an accepted submission.
	SuccessNotice = "Form submitted successfully!"
	// DefaultNoticeDuration is how long the success notice stays visible.
	DefaultNoticeDuration = 3 * time.Second
	// SubmitFailedMessage is the form-level message shown when the sink
	// fails for reasons other than a rejection.
	SubmitFailedMessage = "Submission failed. Please try again."
)

// Timer is the subset of *time.Timer the preview needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted
// by the default option.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Preview.
type Option func(*Preview)

// WithSink sets the submission sink. Defaults to LogSink.
func WithSink(sink Sink) Option {
	return func(p *Preview) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithRenderer sets the renderer used by Render.
func WithRenderer(renderer render.Renderer) Option {
	return func(p *Preview) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

// WithNoticeDuration overrides DefaultNoticeDuration.
func WithNoticeDuration(d time.Duration) Option {
	return func(p *Preview) {
		if d > 0 {
			p.noticeDuration = d
		}
	}
}

// WithAfterFunc replaces the scheduler used for the notice timer.
func WithAfterFunc(fn AfterFunc) Option {
	return func(p *Preview) {
		if fn != nil {
			p.afterFunc = fn
		}
	}
}

// WithClock replaces the time source stamped on submissions.
func WithClock(now func() time.Time) Option {
	return func(p *Preview) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preview) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNoticeListener registers fn to run whenever the notice changes,
// including when the timer clears it. fn runs with the preview locked and
// must not call back into it.
func WithNoticeListener(fn func(notice string)) Option {
	return func(p *Preview) {
		if fn != nil {
			p.listeners = append(p.listeners, fn)
		}
	}
}

// Result describes the outcome of Submit.
type Result struct {
	Accepted     bool
	SubmissionID string
	Errors       map[string]validation.FieldError
}

// Preview is the live form: the mounted schema, its form state, the
// transient notice and the submit flow. It is safe for concurrent use; the
// notice timer fires on its own goroutine.
type Preview struct {
	mu sync.Mutex

	schema     model.FormSchema
	form       *form.Controller
	revision   int
	formErrors []string

	notice     string
	noticeGen  uint64
	noticeStop Timer

	sink           Sink
	renderer       render.Renderer
	noticeDuration time.Duration
	afterFunc      AfterFunc
	now            func() time.Time
	logger         *slog.Logger
	listeners      []func(string)
	closed         bool
}

// New mounts schema and returns the preview.
func New(schema model.FormSchema, options ...Option) (*Preview, error) {
	p := &Preview{
		noticeDuration: DefaultNoticeDuration,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.sink == nil {
		p.sink = LogSink{Logger: p.logger}
	}

	if err := p.Mount(schema); err != nil {
		return nil, err
	}
	return p, nil
}

// Mount replaces the schema and starts a fresh form: values, field errors
// and form-level errors are dropped. A visible notice is kept until its
// timer fires.
func (p *Preview) Mount(schema model.FormSchema) error {
	controller := form.New()
	if err := controller.RegisterAll(schema); err != nil {
		return fmt.Errorf("preview: mount: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.schema = schema
	p.form = controller
	p.formErrors = nil
	p.revision++
	return nil
}

// Schema returns the mounted schema.
func (p *Preview) Schema() model.FormSchema {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schema
}

// Revision counts mounts; it is rendered as a hidden input so stale
// submissions can be detected.
func (p *Preview) Revision() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revision
}

// Values returns the current values of the mounted fields.
func (p *Preview) Values() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form.Values()
}

// Errors returns the current field errors.
func (p *Preview) Errors() map[string]validation.FieldError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form.Errors()
}

// FormErrors returns form-level messages from the last submit.
func (p *Preview) FormErrors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.formErrors...)
}

// Notice returns the visible notice, or "".
func (p *Preview) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

// Submit stores values, validates every field and, when all pass, hands the
// values to the sink, shows the success notice and clears the form. Failed
// validation is not an error: the result carries the field errors, which
// replace the previous set.
func (p *Preview) Submit(ctx context.Context, values map[string]string) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.form.SetValues(values)
	p.formErrors = nil

	if !p.form.Validate() {
		errs := p.form.Errors()
		p.logger.Debug("submission blocked by validation", "errors", len(errs))
		return Result{Errors: errs}, nil
	}

	submission := Submission{
		ID:          uuid.NewString(),
		Values:      p.form.Values(),
		SubmittedAt: p.now(),
	}
	if err := p.sink.Submit(ctx, submission); err != nil {
		return p.handleSinkError(submission, err)
	}

	p.form.Reset()
	p.showNoticeLocked(SuccessNotice)
	return Result{Accepted: true, SubmissionID: submission.ID}, nil
}

func (p *Preview) handleSinkError(submission Submission, err error) (Result, error) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		mapping := render.MapErrors(p.schema, rejected.Fields)
		for id, messages := range mapping.Fields {
			p.form.SetError(validation.FieldError{
				Field:   id,
				Kind:    validation.KindRejected,
				Message: messages[0],
			})
		}
		p.formErrors = render.MergeFormErrors(mapping.Form, rejected.Form...)
		p.logger.Info("submission rejected by sink",
			"submission_id", submission.ID,
			"field_errors", len(mapping.Fields),
			"form_errors", len(p.formErrors),
		)
		return Result{Errors: p.form.Errors()}, nil
	}

	p.formErrors = []string{SubmitFailedMessage}
	p.logger.Error("submission sink failed",
		"submission_id", submission.ID,
		"error", err,
	)
	return Result{Errors: p.form.Errors()}, fmt.Errorf("preview: submit: %w", err)
}

// showNoticeLocked sets the notice and (re)starts its timer. The generation
// counter keeps a timer that already fired from clearing a newer notice.
func (p *Preview) showNoticeLocked(notice string) {
	if p.noticeStop != nil {
		p.noticeStop.Stop()
		p.noticeStop = nil
	}
	p.noticeGen++
	gen := p.noticeGen
	p.notice = notice
	p.notifyLocked()

	if p.closed {
		return
	}
	p.noticeStop = p.afterFunc(p.noticeDuration, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.noticeGen != gen {
			return
		}
		p.notice = ""
		p.noticeStop = nil
		p.notifyLocked()
	})
}

func (p *Preview) notifyLocked() {
	for _, listener := range p.listeners {
		listener(p.notice)
	}
}

// DismissNotice hides the notice immediately.
func (p *Preview) DismissNotice() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notice == "" {
		return
	}
	if p.noticeStop != nil {
		p.noticeStop.Stop()
		p.noticeStop = nil
	}
	p.noticeGen++
	p.notice = ""
	p.notifyLocked()
}

// Render renders the current state with the configured renderer.
func (p *Preview) Render(ctx context.Context, options render.RenderOptions) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.renderer == nil {
		return nil, errors.New("preview: renderer not configured")
	}

	options.Form = p.form
	options.Notice = p.notice
	options.NoticeDismissAfter = p.noticeDuration
	options.FormErrors = render.MergeFormErrors(p.formErrors, options.FormErrors...)
	options.Hidden = render.MergeHiddenFields(options.Hidden, render.RevisionField(p.revision))

	out, err := p.renderer.Render(ctx, p.schema, options)
	if err != nil {
		return nil, fmt.Errorf("preview: render: %w", err)
	}
	return out, nil
}

// Close cancels the notice timer. The preview stays readable.
func (p *Preview) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.noticeStop != nil {
		p.noticeStop.Stop()
		p.noticeStop = nil
	}
	p.noticeGen++
}
