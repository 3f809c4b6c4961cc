package preview_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
	"github.com/goliatone/go-formpreview/pkg/testsupport"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) preview.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{d: d, fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

// fire runs a timer callback regardless of Stop, modelling a callback that
// was already in flight when the timer was stopped.
func (c *fakeClock) fire(idx int) {
	c.mu.Lock()
	timer := c.timers[idx]
	c.mu.Unlock()
	timer.fn()
}

type recordingSink struct {
	submissions []preview.Submission
	err         error
}

func (s *recordingSink) Submit(_ context.Context, submission preview.Submission) error {
	if s.err != nil {
		return s.err
	}
	s.submissions = append(s.submissions, submission)
	return nil
}

func validValues() map[string]string {
	return map[string]string{
		"name":        "Ada Lovelace",
		"email":       "ada@example.com",
		"companySize": "1-50",
	}
}

func newPreview(t *testing.T, options ...preview.Option) *preview.Preview {
	t.Helper()
	p, err := preview.New(model.DefaultSchema(), options...)
	if err != nil {
		t.Fatalf("new preview: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestSubmit_EmptyRequiredFieldsYieldOneErrorEach(t *testing.T) {
	sink := &recordingSink{}
	p := newPreview(t, preview.WithSink(sink))

	result, err := p.Submit(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected submission to be blocked")
	}

	want := map[string]validation.FieldError{
		"name":        {Field: "name", Kind: validation.KindRequired, Message: validation.RequiredMessage},
		"email":       {Field: "email", Kind: validation.KindRequired, Message: validation.RequiredMessage},
		"companySize": {Field: "companySize", Kind: validation.KindRequired, Message: validation.RequiredMessage},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if len(sink.submissions) != 0 {
		t.Fatal("sink must not receive blocked submissions")
	}
	if p.Notice() != "" {
		t.Fatal("notice must not show on blocked submission")
	}
}

func TestSubmit_RepeatedSubmitsDoNotDuplicateErrors(t *testing.T) {
	p := newPreview(t)

	for i := 0; i < 3; i++ {
		if _, err := p.Submit(testsupport.Context(), map[string]string{"email": "bad"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	errs := p.Errors()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %+v", len(errs), errs)
	}
	if errs["email"].Message != "Please enter a valid email address" {
		t.Fatalf("unexpected email error %+v", errs["email"])
	}
}

func TestSubmit_SuccessShowsNoticeAndClearsValues(t *testing.T) {
	clock := &fakeClock{}
	sink := &recordingSink{}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var notices []string
	p := newPreview(t,
		preview.WithSink(sink),
		preview.WithAfterFunc(clock.AfterFunc),
		preview.WithClock(func() time.Time { return fixed }),
		preview.WithNoticeListener(func(n string) { notices = append(notices, n) }),
	)

	result, err := p.Submit(testsupport.Context(), validValues())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Accepted || result.SubmissionID == "" {
		t.Fatalf("expected accepted submission, got %+v", result)
	}

	if len(sink.submissions) != 1 {
		t.Fatalf("expected one submission, got %d", len(sink.submissions))
	}
	got := sink.submissions[0]
	wantValues := validValues()
	wantValues["comments"] = ""
	if diff := cmp.Diff(wantValues, got.Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if !got.SubmittedAt.Equal(fixed) || got.ID != result.SubmissionID {
		t.Fatalf("unexpected submission metadata %+v", got)
	}

	if p.Notice() != preview.SuccessNotice {
		t.Fatalf("expected success notice, got %q", p.Notice())
	}
	for id, value := range p.Values() {
		if value != "" {
			t.Fatalf("value %q not cleared: %q", id, value)
		}
	}

	if len(clock.timers) != 1 || clock.timers[0].d != 3000*time.Millisecond {
		t.Fatalf("expected one 3000ms timer, got %+v", clock.timers)
	}
	clock.fire(0)
	if p.Notice() != "" {
		t.Fatalf("notice should clear after timer, got %q", p.Notice())
	}
	if diff := cmp.Diff([]string{preview.SuccessNotice, ""}, notices); diff != "" {
		t.Fatalf("notice transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_ResubmitRestartsTimer(t *testing.T) {
	clock := &fakeClock{}
	p := newPreview(t, preview.WithAfterFunc(clock.AfterFunc), preview.WithSink(&recordingSink{}))

	if _, err := p.Submit(testsupport.Context(), validValues()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := p.Submit(testsupport.Context(), validValues()); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if len(clock.timers) != 2 {
		t.Fatalf("expected two timers, got %d", len(clock.timers))
	}
	if !clock.timers[0].stopped {
		t.Fatal("first timer should be stopped on resubmit")
	}

	clock.fire(0)
	if p.Notice() != preview.SuccessNotice {
		t.Fatal("stale timer must not clear the newer notice")
	}
	clock.fire(1)
	if p.Notice() != "" {
		t.Fatal("current timer should clear the notice")
	}
}

func TestSubmit_RealTimerClearsNotice(t *testing.T) {
	p := newPreview(t, preview.WithNoticeDuration(10*time.Millisecond), preview.WithSink(&recordingSink{}))

	if _, err := p.Submit(testsupport.Context(), validValues()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for p.Notice() != "" {
		if time.Now().After(deadline) {
			t.Fatal("notice was not cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmit_SinkRejectionMapsErrors(t *testing.T) {
	sink := &recordingSink{err: &preview.RejectedError{
		Fields: map[string][]string{"/body/email": {"Email already registered"}},
		Form:   []string{"Try again later"},
	}}
	p := newPreview(t, preview.WithSink(sink))

	result, err := p.Submit(testsupport.Context(), validValues())
	if err != nil {
		t.Fatalf("rejection should not be an error: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if got := result.Errors["email"]; got.Kind != validation.KindRejected || got.Message != "Email already registered" {
		t.Fatalf("unexpected email error %+v", got)
	}
	if diff := cmp.Diff([]string{"Try again later"}, p.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if p.Values()["name"] != "Ada Lovelace" {
		t.Fatal("values must be kept on rejection")
	}
}

func TestSubmit_SinkFailureIsSurfaced(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	sink := &recordingSink{err: errors.New("disk full")}
	p := newPreview(t, preview.WithSink(sink), preview.WithLogger(logger))

	_, err := p.Submit(testsupport.Context(), validValues())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
	if diff := cmp.Diff([]string{preview.SubmitFailedMessage}, p.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "submission sink failed") {
		t.Fatalf("expected error log, got %s", logs.String())
	}
}

func TestMount_ResetsStateAndKeepsPreviousOnError(t *testing.T) {
	p := newPreview(t)
	if _, err := p.Submit(testsupport.Context(), map[string]string{"name": "Ada"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	startRevision := p.Revision()

	next := model.FormSchema{
		FormTitle: "Other",
		Fields:    []model.FormField{{ID: "city", Type: model.FieldTypeText, Label: "City"}},
	}
	if err := p.Mount(next); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if len(p.Errors()) != 0 {
		t.Fatal("errors should reset on mount")
	}
	if diff := cmp.Diff(map[string]string{"city": ""}, p.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if p.Revision() != startRevision+1 {
		t.Fatalf("expected revision bump")
	}

	broken := model.FormSchema{
		FormTitle: "Broken",
		Fields: []model.FormField{{
			ID: "x", Type: model.FieldTypeText, Label: "X",
			Validation: &model.ValidationRule{Pattern: "("},
		}},
	}
	if err := p.Mount(broken); err == nil {
		t.Fatal("expected mount error for invalid pattern")
	}
	if p.Schema().FormTitle != "Other" {
		t.Fatal("previous schema should be retained")
	}
}

func TestRender_IncludesStateAndRevision(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	clock := &fakeClock{}
	p := newPreview(t,
		preview.WithRenderer(renderer),
		preview.WithAfterFunc(clock.AfterFunc),
		preview.WithSink(&recordingSink{}),
	)

	if _, err := p.Submit(testsupport.Context(), map[string]string{"email": "x"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	out, err := p.Render(testsupport.Context(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if got := strings.Count(html, `role="alert"`); got != 3 {
		t.Fatalf("expected 3 error lines, got %d", got)
	}
	testsupport.AssertContains(t, html, `name="_revision" value="1"`, `value="x"`)

	if _, err := p.Submit(testsupport.Context(), validValues()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	out, err = p.Render(testsupport.Context(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html = string(out)
	testsupport.AssertContains(t, html, preview.SuccessNotice, `data-dismiss-ms="3000"`)
	testsupport.AssertNotContains(t, html, `role="alert"`, `value="Ada Lovelace"`)
}

func TestClose_StopsTimer(t *testing.T) {
	clock := &fakeClock{}
	p := newPreview(t, preview.WithAfterFunc(clock.AfterFunc), preview.WithSink(&recordingSink{}))
	if _, err := p.Submit(testsupport.Context(), validValues()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	p.Close()
	if !clock.timers[0].stopped {
		t.Fatal("close should stop the timer")
	}
	clock.fire(0)
	if p.Notice() != preview.SuccessNotice {
		t.Fatal("callback after close must be a no-op")
	}
}

func TestSubmit_FixtureSchemaBoundsAndPatterns(t *testing.T) {
	schema := testsupport.MustLoadSchema(t, "testdata/event.json")
	sink := &recordingSink{}
	p, err := preview.New(schema, preview.WithSink(sink))
	if err != nil {
		t.Fatalf("new preview: %v", err)
	}
	t.Cleanup(p.Close)

	result, err := p.Submit(testsupport.Context(), map[string]string{
		"attendees": "40",
		"track":     "go",
		"code":      "abc",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := map[string]validation.FieldError{
		"attendees": {Field: "attendees", Kind: validation.KindMax, Message: "Must be at most 12"},
		"code":      {Field: "code", Kind: validation.KindPattern, Message: "Use four capital letters"},
	}
	if diff := testsupport.CompareGolden(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	result, err = p.Submit(testsupport.Context(), map[string]string{
		"attendees": "3",
		"track":     "web",
		"code":      "GOPH",
	})
	if err != nil {
		t.Fatalf("submit valid: %v", err)
	}
	if !result.Accepted || len(sink.submissions) != 1 {
		t.Fatalf("expected one accepted submission, got %+v", result)
	}
}

func TestLoadSchema_MissingFixture(t *testing.T) {
	if _, err := testsupport.LoadSchema("testdata/missing.json"); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestMount_LookaheadPatternValidates(t *testing.T) {
	schema := model.FormSchema{
		FormTitle: "Account",
		Fields: []model.FormField{{
			ID: "pw", Type: model.FieldTypeText, Label: "Password", Required: true,
			Validation: &model.ValidationRule{Pattern: `^(?=.*\d).{8,}$`, Message: "Needs eight characters and a digit"},
		}},
	}
	p, err := preview.New(schema, preview.WithSink(&recordingSink{}))
	if err != nil {
		t.Fatalf("mount lookahead pattern: %v", err)
	}
	t.Cleanup(p.Close)

	result, err := p.Submit(testsupport.Context(), map[string]string{"pw": "password"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := result.Errors["pw"].Message; got != "Needs eight characters and a digit" {
		t.Fatalf("expected pattern message, got %q", got)
	}

	result, err = p.Submit(testsupport.Context(), map[string]string{"pw": "password9"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("expected accepted submission, got %+v", result.Errors)
	}
}
