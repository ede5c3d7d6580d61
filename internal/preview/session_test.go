package preview

import (
	"strings"
	"testing"
	"time"

	"resumePreview/internal/catalog"
	"resumePreview/internal/photo/objecturl"
	"resumePreview/internal/resume"
)

func withBlob(rec resume.Record, seed byte) resume.Record {
	return rec.WithPhoto(resume.PhotoFromBlob(resume.NewBlob([]byte{0xff, 0xd8, 0xff, seed}, "image/jpeg")))
}

func TestSessionFirstFrameIsUnscaledAndPhotoless(t *testing.T) {
	store := objecturl.NewStore("")
	s := NewSession(store)
	defer s.Close()

	s.Update(withBlob(resume.Sample(), 1))
	s.Resize(397)

	first := s.Render()
	if first.Mounted || first.Scale != 1 {
		t.Fatalf("pre-mount frame: mounted=%v scale=%v", first.Mounted, first.Scale)
	}
	if strings.Contains(first.HTML, "<img") || store.Live() != 0 {
		t.Fatal("photo must not be allocated before mount")
	}

	s.Mount()
	second := s.Render()
	if second.Scale != 0.5 {
		t.Fatalf("mounted scale = %v", second.Scale)
	}
	if !strings.Contains(second.HTML, objecturl.DefaultPrefix) || store.Live() != 1 {
		t.Fatalf("expected allocated photo, live=%d", store.Live())
	}
	if second.Revision <= first.Revision {
		t.Fatal("revision must increase")
	}
}

func TestSessionReleasesOnPhotoChangeAndClose(t *testing.T) {
	store := objecturl.NewStore("")
	s := NewSession(store)
	s.Update(withBlob(resume.Sample(), 1))
	s.Mount()
	s.Render()

	s.Update(withBlob(resume.Sample(), 2))
	s.Render()
	if store.Live() != 1 {
		t.Fatalf("live = %d after photo change", store.Live())
	}

	s.Update(resume.Sample().WithPhoto(resume.PhotoFromURL("https://cdn/p.png")))
	if store.Live() != 0 {
		t.Fatalf("live = %d after switching to url", store.Live())
	}

	s.Update(withBlob(resume.Sample(), 3))
	s.Render()
	s.Close()
	s.Close()
	if store.Live() != 0 {
		t.Fatalf("live = %d after close", store.Live())
	}
}

func TestSessionTemplateSwitchRecreatesHeader(t *testing.T) {
	store := objecturl.NewStore("")
	s := NewSession(store)
	defer s.Close()

	rec := withBlob(resume.Sample(), 1)
	s.Update(rec)
	s.Mount()
	s.Render()
	if store.Live() != 1 {
		t.Fatal("modern header should hold a photo")
	}

	s.Update(rec.WithTemplate(catalog.Classic))
	f := s.Render()
	if store.Live() != 0 || strings.Contains(f.HTML, "<img") {
		t.Fatal("classic header shows no photo and must release it")
	}

	s.Update(rec.WithTemplate(catalog.Elegant))
	f = s.Render()
	if store.Live() != 1 || !strings.Contains(f.HTML, "<img") {
		t.Fatal("elegant header should mount a fresh resolver")
	}
	if f.TemplateID != catalog.Elegant {
		t.Fatalf("template = %q", f.TemplateID)
	}
}

func TestSessionHooks(t *testing.T) {
	var got []string
	s := NewSession(objecturl.NewStore(""), WithHooks(Hooks{
		OnRender: func(id string, _ time.Duration) { got = append(got, id) },
	}))
	defer s.Close()
	s.Update(resume.Sample().WithTemplate("nope"))
	s.Render()
	if len(got) != 1 || got[0] != catalog.DefaultID {
		t.Fatalf("hooks saw %v", got)
	}
}

func TestRenderStaticInlinesPhoto(t *testing.T) {
	f := RenderStatic(withBlob(resume.Sample(), 9), 0)
	if f.Scale != 1 || !f.Mounted {
		t.Fatalf("scale=%v mounted=%v", f.Scale, f.Mounted)
	}
	if !strings.Contains(f.HTML, "data:image/jpeg;base64,") {
		t.Fatal("expected inline photo")
	}
}

func TestDocument(t *testing.T) {
	rec := resume.Sample()
	f := RenderStatic(rec, 0)
	page, err := Document(DocumentTitle(&rec), f)
	if err != nil {
		t.Fatal(err)
	}
	html := string(page)
	for _, want := range []string{"<!DOCTYPE html>", "<title>John Doe</title>", ".rp-canvas", `id="resumePreviewContent"`} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if _, err := Document("x", Frame{}); err == nil {
		t.Fatal("expected error for empty frame")
	}
	if DocumentTitle(&resume.Record{}) != "Resume" {
		t.Fatal("fallback title")
	}
}

func TestSessionResizeReportsChange(t *testing.T) {
	s := NewSession(objecturl.NewStore(""))
	defer s.Close()

	tests := []struct {
		px   float64
		want bool
	}{
		{0, false},
		{397, true},
		{397, false},
		{794, true},
		{-5, true},
		{0, false},
	}
	for i, tt := range tests {
		if got := s.Resize(tt.px); got != tt.want {
			t.Fatalf("step %d: Resize(%v) = %v, want %v", i, tt.px, got, tt.want)
		}
	}

	s.Close()
	if s.Resize(600) {
		t.Fatal("closed session must not report width changes")
	}
	if _, ok := s.Observer().Width().Pixels(); ok {
		t.Fatal("width should be unknown once the session is closed")
	}
}
