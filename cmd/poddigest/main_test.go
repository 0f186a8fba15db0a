package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"poddigest/internal/export"
	"poddigest/internal/output"
)

func TestExportFormatsSkipsUnsupported(t *testing.T) {
	var out, errBuf bytes.Buffer
	formatter := output.NewFormatterWithWriters(&out, &errBuf)

	var rendered []string
	render := func(format string) (string, error) {
		rendered = append(rendered, format)
		return "doc", nil
	}
	save := func(f export.Format, doc string) (string, error) {
		return "digests/digest-2026-08-29." + f.Extension(), nil
	}

	failed := exportFormats(formatter, []string{"markdown", "pdf", "json"}, render, save)
	if failed != 1 {
		t.Fatalf("expected 1 failed format, got %d", failed)
	}
	if len(rendered) != 2 {
		t.Errorf("supported formats should still render, got %v", rendered)
	}
	got := out.String()
	if !strings.Contains(got, "✗ pdf:") {
		t.Errorf("missing per-format failure line:\n%s", got)
	}
	if !strings.Contains(got, "✓ markdown exported to") || !strings.Contains(got, "✓ json exported to") {
		t.Errorf("missing success lines:\n%s", got)
	}
}

func TestExportFormatsRenderFailureIsPerFormat(t *testing.T) {
	var out, errBuf bytes.Buffer
	formatter := output.NewFormatterWithWriters(&out, &errBuf)

	render := func(format string) (string, error) {
		if format == "html" {
			return "", errors.New("template broke")
		}
		return "doc", nil
	}
	save := func(f export.Format, doc string) (string, error) { return "out", nil }

	failed := exportFormats(formatter, []string{"html", "markdown"}, render, save)
	if failed != 1 {
		t.Fatalf("expected 1 failed format, got %d", failed)
	}
	if !strings.Contains(out.String(), "✓ markdown exported to") {
		t.Errorf("markdown should still export:\n%s", out.String())
	}
}

func TestCommandFlags(t *testing.T) {
	transcribe := transcribeCmd()
	for _, name := range []string{"episode-id", "model"} {
		if transcribe.Flags().Lookup(name) == nil {
			t.Errorf("transcribe missing --%s", name)
		}
	}
	digest := digestCmd()
	for _, name := range []string{"episode-id", "provider", "model", "date"} {
		if digest.Flags().Lookup(name) == nil {
			t.Errorf("digest missing --%s", name)
		}
	}
	exportCommand := exportCmd()
	for _, name := range []string{"format", "output", "date", "stdout"} {
		if exportCommand.Flags().Lookup(name) == nil {
			t.Errorf("export missing --%s", name)
		}
	}
}
