package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumePreview/internal/preview"
)

const yamlRecord = `
templateId: elegant
firstName: Ada
lastName: Lovelace
skills: [Math, Engines]
photo: null
workExperiences:
  - position: Analyst
    startDate: "1842-01-01"
`

func TestDecodeRecordAcceptsYAMLAndJSON(t *testing.T) {
	rec, err := decodeRecord([]byte(yamlRecord))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if rec.TemplateID != "elegant" || rec.FirstName != "Ada" || len(rec.Skills) != 2 || len(rec.WorkExperiences) != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !rec.Photo.IsZero() {
		t.Fatal("null photo should decode to none")
	}

	rec, err = decodeRecord([]byte(`{"firstName":"Grace","photo":"https://cdn.example/g.png"}`))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if u, ok := rec.Photo.URL(); !ok || u != "https://cdn.example/g.png" {
		t.Fatalf("photo url = %q", u)
	}

	if _, err := decodeRecord(nil); err != errEmptyInput {
		t.Fatalf("expected errEmptyInput, got %v", err)
	}
	if _, err := decodeRecord([]byte("photo: 12")); err == nil {
		t.Fatal("expected error for numeric photo")
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", []string{"render"}, false},
		{"json", []string{"render", "-f", "JSON", "-w", "397"}, false},
		{"pdf needs output", []string{"render", "--format", "pdf"}, true},
		{"pdf with output", []string{"render", "--format", "pdf", "-o", "cv.pdf"}, false},
		{"unknown format", []string{"render", "--format", "docx"}, true},
		{"stray args", []string{"render", "cv.yaml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunWritesFrameJSON(t *testing.T) {
	opts, err := parseFlags([]string{"render", "-i", "-", "-f", "json", "-w", "397", "-t", "creative"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(opts, strings.NewReader(yamlRecord), &out, discard()); err != nil {
		t.Fatalf("run: %v", err)
	}
	var frame preview.Frame
	if err := json.Unmarshal(out.Bytes(), &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.TemplateID != "creative" || frame.Scale != 0.5 || !frame.Mounted {
		t.Fatalf("unexpected frame %+v", frame)
	}
}

func TestRunWritesHTMLWithPhoto(t *testing.T) {
	dir := t.TempDir()
	photoPath := filepath.Join(dir, "me.png")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	if err := os.WriteFile(photoPath, png, 0o600); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "cv.html")

	opts, err := parseFlags([]string{"render", "--photo", photoPath, "-o", outPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := run(opts, nil, io.Discard, discard()); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	if !strings.Contains(doc, "<!DOCTYPE html>") || !strings.Contains(doc, "data:image/png;base64,") {
		t.Fatalf("unexpected document: %.200s", doc)
	}
}

func TestRunRejectsUnknownTemplate(t *testing.T) {
	opts, err := parseFlags([]string{"render", "-t", "baroque"})
	if err != nil {
		t.Fatal(err)
	}
	if err := run(opts, nil, io.Discard, discard()); err == nil {
		t.Fatal("expected unknown template error")
	}
}

func TestListTemplates(t *testing.T) {
	var out bytes.Buffer
	if err := run(options{listTemplates: true}, nil, &out, discard()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header plus 6 templates, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "modern") {
		t.Fatalf("catalog order broken: %q", lines[1])
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
