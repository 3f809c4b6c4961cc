package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goliatone/go-formpreview/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for raw, want := range tests {
		got, err := logging.ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, logging.Config{Level: "info", Format: logging.FormatJSON})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("hello", "k", "v")
	if got := buf.String(); !strings.Contains(got, `"msg":"hello"`) || strings.Contains(got, "hidden") {
		t.Fatalf("unexpected json output %q", got)
	}

	buf.Reset()
	logger, err = logging.New(&buf, logging.Config{Format: logging.FormatText})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("unexpected text output %q", buf.String())
	}

	buf.Reset()
	logger, err = logging.New(&buf, logging.Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("auto")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("auto format should pick json for non-terminals, got %q", buf.String())
	}

	if _, err := logging.New(&buf, logging.Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
