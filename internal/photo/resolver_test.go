package photo

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"resumePreview/internal/resume"
)

type recordingAllocator struct {
	next      int
	allocated []string
	released  []string
	fail      error
}

func (a *recordingAllocator) Allocate(b *resume.Blob) (string, error) {
	if a.fail != nil {
		return "", a.fail
	}
	if _, err := ContentType(b); err != nil {
		return "", err
	}
	a.next++
	ref := fmt.Sprintf("ref-%d", a.next)
	a.allocated = append(a.allocated, ref)
	return ref, nil
}

func (a *recordingAllocator) Release(ref string) {
	a.released = append(a.released, ref)
}

func pngBlob(seed byte) resume.Photo {
	return resume.PhotoFromBlob(resume.NewBlob([]byte{0x89, 'P', 'N', 'G', seed}, "image/png"))
}

func TestResolverEmptyBeforeMount(t *testing.T) {
	alloc := &recordingAllocator{}
	r := NewResolver(alloc, nil)
	if got := r.Resolve(pngBlob(1)); got != "" {
		t.Fatalf("pre-mount ref = %q, want empty", got)
	}
	if len(alloc.allocated) != 0 {
		t.Fatal("allocated before mount")
	}
	r.Mount()
	if got := r.DisplayRef(); got != "ref-1" {
		t.Fatalf("DisplayRef = %q", got)
	}
	r.Mount()
	if len(alloc.allocated) != 1 {
		t.Fatal("second Mount must not allocate again")
	}
}

func TestResolverBlobToBlobReleasesPrevious(t *testing.T) {
	alloc := &recordingAllocator{}
	r := NewResolver(alloc, nil)
	r.Mount()
	r.Resolve(pngBlob(1))
	r.Resolve(pngBlob(1))
	if len(alloc.allocated) != 1 {
		t.Fatalf("same content reallocated: %v", alloc.allocated)
	}
	r.Resolve(pngBlob(2))
	if len(alloc.released) != 1 || alloc.released[0] != "ref-1" {
		t.Fatalf("released = %v, want [ref-1]", alloc.released)
	}
	if r.DisplayRef() != "ref-2" {
		t.Fatalf("DisplayRef = %q", r.DisplayRef())
	}
}

func TestResolverBlobToURL(t *testing.T) {
	alloc := &recordingAllocator{}
	r := NewResolver(alloc, nil)
	r.Mount()
	r.Resolve(pngBlob(1))
	got := r.Resolve(resume.PhotoFromURL("https://cdn.example.com/p.png"))
	if got != "https://cdn.example.com/p.png" {
		t.Fatalf("got %q", got)
	}
	if len(alloc.released) != 1 || len(alloc.allocated) != 1 {
		t.Fatalf("allocated %v released %v", alloc.allocated, alloc.released)
	}
	r.Resolve(resume.Photo{})
	r.Unmount()
	if len(alloc.released) != 1 {
		t.Fatalf("URL values must not be released: %v", alloc.released)
	}
}

func TestResolverUnmountReleasesOnce(t *testing.T) {
	alloc := &recordingAllocator{}
	r := NewResolver(alloc, nil)
	r.Resolve(pngBlob(3))
	r.Mount()
	r.Unmount()
	r.Unmount()
	if len(alloc.released) != 1 {
		t.Fatalf("released = %v", alloc.released)
	}
	if r.DisplayRef() != "" {
		t.Fatal("unmounted resolver must not expose a ref")
	}
}

func TestResolverAllocationFailure(t *testing.T) {
	alloc := &recordingAllocator{fail: errors.New("boom")}
	r := NewResolver(alloc, nil)
	r.Mount()
	if got := r.Resolve(pngBlob(1)); got != "" {
		t.Fatalf("got %q, want no photo", got)
	}
	r.Unmount()
	if len(alloc.released) != 0 {
		t.Fatal("failed allocation must not be released")
	}
}

func TestInlineAllocator(t *testing.T) {
	var a InlineAllocator
	ref, err := a.Allocate(resume.NewBlob([]byte("abc"), "image/jpeg"))
	if err != nil {
		t.Fatal(err)
	}
	if ref != "data:image/jpeg;base64,YWJj" {
		t.Fatalf("ref = %q", ref)
	}
	if _, err := a.Allocate(resume.NewBlob(nil, "image/png")); !errors.Is(err, ErrEmptyBlob) {
		t.Fatalf("err = %v, want ErrEmptyBlob", err)
	}
	if _, err := a.Allocate(resume.NewBlob([]byte("hello"), "text/plain")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}
	sniffed, err := a.Allocate(resume.NewBlob([]byte("\x89PNG\r\n\x1a\n0000"), ""))
	if err != nil || !strings.HasPrefix(sniffed, "data:image/png;") {
		t.Fatalf("sniffed = %q, err = %v", sniffed, err)
	}
}
