package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
)

func TestRegistryResolveFallsBackToText(t *testing.T) {
	reg := NewDefaultRegistry()

	desc, ok := reg.Resolve("color")
	if !ok {
		t.Fatal("expected fallback descriptor")
	}
	if desc.Type != model.FieldTypeText {
		t.Fatalf("expected text fallback, got %q", desc.Type)
	}

	if _, ok := reg.Descriptor("color"); ok {
		t.Fatal("exact lookup should not fall back")
	}

	for _, tag := range []model.FieldType{"Radio", " radio", "SELECT"} {
		desc, ok = reg.Resolve(tag)
		if !ok || desc.Type != model.FieldTypeText {
			t.Fatalf("tag %q: expected exact matching to fall back to text, got %+v", tag, desc)
		}
	}
}

func TestRegistryTypes(t *testing.T) {
	want := []model.FieldType{"email", "number", "radio", "select", "text", "textarea"}
	if diff := cmp.Diff(want, NewDefaultRegistry().Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryCloneIsolated(t *testing.T) {
	reg := NewDefaultRegistry()
	cloned := reg.Clone()

	custom := func(buf *bytes.Buffer, _ model.FormField, _ ComponentData) error {
		buf.WriteString("custom")
		return nil
	}
	cloned.MustRegister(model.FieldTypeText, Descriptor{Renderer: custom})

	var buf bytes.Buffer
	original, _ := reg.Descriptor(model.FieldTypeText)
	if err := original.Renderer(&buf, model.FormField{ID: "a"}, ComponentData{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() == "custom" {
		t.Fatal("clone mutation leaked into original registry")
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	reg := New()
	if err := reg.Register("", Descriptor{Renderer: inputRenderer}); err == nil {
		t.Fatal("expected error for empty type")
	}
	if err := reg.Register("text", Descriptor{}); err == nil {
		t.Fatal("expected error for nil renderer")
	}
	if _, ok := reg.Resolve("text"); ok {
		t.Fatal("empty registry should not resolve")
	}
}

func TestInputType(t *testing.T) {
	cases := map[model.FieldType]string{
		model.FieldTypeText:   "text",
		model.FieldTypeEmail:  "email",
		model.FieldTypeNumber: "number",
		"date":                "text",
	}
	for fieldType, want := range cases {
		if got := InputType(fieldType); got != want {
			t.Errorf("InputType(%q) = %q, want %q", fieldType, got, want)
		}
	}
}
