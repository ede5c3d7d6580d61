package objecturl

import (
	"strings"
	"testing"

	"resumePreview/internal/photo"
	"resumePreview/internal/resume"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore("")
	ref, err := s.Allocate(resume.NewBlob([]byte("img"), "image/png"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ref, DefaultPrefix) {
		t.Fatalf("ref = %q", ref)
	}
	if s.Live() != 1 {
		t.Fatalf("Live = %d", s.Live())
	}

	data, ct, ok := s.Lookup(strings.TrimPrefix(ref, DefaultPrefix))
	if !ok || string(data) != "img" || ct != "image/png" {
		t.Fatalf("Lookup = %q %q %v", data, ct, ok)
	}

	s.Release(ref)
	s.Release(ref)
	if s.Live() != 0 {
		t.Fatalf("Live after release = %d", s.Live())
	}
	if _, _, ok := s.Lookup(ref); ok {
		t.Fatal("released ref still resolvable")
	}
}

func TestStoreWithResolver(t *testing.T) {
	s := NewStore("/blobs/")
	r := photo.NewResolver(s, nil)
	r.Resolve(resume.PhotoFromBlob(resume.NewBlob([]byte("a"), "image/gif")))
	r.Mount()
	if s.Live() != 1 || !strings.HasPrefix(r.DisplayRef(), "/blobs/") {
		t.Fatalf("live=%d ref=%q", s.Live(), r.DisplayRef())
	}
	r.Resolve(resume.PhotoFromBlob(resume.NewBlob([]byte("b"), "image/gif")))
	if s.Live() != 1 {
		t.Fatalf("previous blob not released, live=%d", s.Live())
	}
	r.Unmount()
	if s.Live() != 0 {
		t.Fatalf("live=%d after unmount", s.Live())
	}
}

func TestStoreRejectsNonImage(t *testing.T) {
	s := NewStore("")
	if _, err := s.Allocate(resume.NewBlob([]byte("x"), "application/pdf")); err == nil {
		t.Fatal("expected error")
	}
	if s.Live() != 0 {
		t.Fatal("rejected blob stored")
	}
}
