package validation

import (
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// PatternTimeout bounds a single pattern evaluation. Backtracking patterns
// can otherwise run for an unbounded time on hostile input.
const PatternTimeout = 250 * time.Millisecond

// matcher is the compiled form of a pattern constraint.
type matcher interface {
	match(value string) bool
}

type ecmaMatcher struct {
	re *regexp2.Regexp
}

// match treats a timed out evaluation as a mismatch.
func (m ecmaMatcher) match(value string) bool {
	ok, err := m.re.MatchString(value)
	return err == nil && ok
}

type re2Matcher struct {
	re *regexp.Regexp
}

func (m re2Matcher) match(value string) bool {
	return m.re.MatchString(value)
}

// compilePattern compiles expr with ECMAScript semantics so lookaheads and
// backreferences behave as they do in a browser. Expressions the ECMAScript
// dialect rejects but RE2 accepts (for example (?P<name>...) groups) fall
// back to the standard library engine. Like a browser RegExp test, matching
// is unanchored unless the pattern anchors itself.
func compilePattern(expr string) (matcher, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err == nil {
		re.MatchTimeout = PatternTimeout
		return ecmaMatcher{re: re}, nil
	}
	if fallback, re2Err := regexp.Compile(expr); re2Err == nil {
		return re2Matcher{re: fallback}, nil
	}
	return nil, err
}
