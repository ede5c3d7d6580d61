package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resumePreview/internal/catalog"
	"resumePreview/internal/database"
	"resumePreview/internal/photo/objecturl"
	"resumePreview/internal/preview"
	"resumePreview/internal/resume"
)

func TestTemplateCatalogRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTemplateHandler(discardLogger())
	r := gin.New()
	r.GET("/v1/templates", h.ListTemplates)
	r.GET("/v1/templates/:id", h.GetTemplate)
	r.GET("/v1/templates/:id/preview", h.PreviewTemplate)

	w := doJSON(t, r, http.MethodGet, "/v1/templates", nil)
	var list struct {
		Items []templateResponse `json:"items"`
	}
	decodeBody(t, w, &list)
	if len(list.Items) != len(catalog.All()) {
		t.Fatalf("expected %d templates, got %d", len(catalog.All()), len(list.Items))
	}
	if list.Items[0].ID != catalog.DefaultID || !list.Items[0].Default {
		t.Fatalf("default template should be first: %+v", list.Items[0])
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/templates/unknown", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/templates/creative/preview?width=397", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var frame preview.Frame
	decodeBody(t, w, &frame)
	if frame.TemplateID != "creative" || frame.Scale != 0.5 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if !strings.Contains(frame.HTML, "#7c3aed") {
		t.Fatal("preview should use the template accent color")
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/templates/creative/preview?width=wide", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestPreviewRecordInlinesBlobAndLinksKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := database.NewResumeStore(newTestDB(t))
	h := NewPreviewHandler(store, newPhotoLinker(newFakeStorage(), 0, discardLogger()), discardLogger())
	r := gin.New()
	r.POST("/v1/preview", asUser(4), h.RenderRecord)

	rec := resume.Sample()
	rec.Photo = resume.PhotoFromBlob(resume.NewBlob(pngBytes, "image/png"))
	w := doJSON(t, r, http.MethodPost, "/v1/preview", gin.H{"record": rec})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var frame preview.Frame
	decodeBody(t, w, &frame)
	if frame.Scale != 1 || !frame.Mounted {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if !strings.Contains(frame.HTML, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes)) {
		t.Fatal("blob photo should be inlined")
	}

	rec.Photo = resume.PhotoFromURL("user-assets/4/me.png")
	w = doJSON(t, r, http.MethodPost, "/v1/preview", gin.H{"record": rec})
	decodeBody(t, w, &frame)
	if !strings.Contains(frame.HTML, "https://storage.test/user-assets/4/me.png") {
		t.Fatal("stored key should be presigned")
	}

	rec.Photo = resume.PhotoFromURL("user-assets/5/other.png")
	w = doJSON(t, r, http.MethodPost, "/v1/preview", gin.H{"record": rec})
	decodeBody(t, w, &frame)
	if strings.Contains(frame.HTML, "<img") {
		t.Fatal("another user's key must not render")
	}
}

func TestPreviewSavedResumeAsDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := database.NewResumeStore(newTestDB(t))
	model, err := store.Create(context.Background(), 4, resume.Sample().WithTemplate("classic"), 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewPreviewHandler(store, newPhotoLinker(nil, 0, discardLogger()), discardLogger())
	r := gin.New()
	r.GET("/v1/resumes/:id/preview", asUser(4), h.RenderResume)

	w := doJSON(t, r, http.MethodGet, "/v1/resumes/"+uintString(model.ID)+"/preview?format=html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{"<title>John Doe</title>", `id="resumePreviewContent"`, `data-template="classic"`} {
		if !strings.Contains(body, want) {
			t.Errorf("document missing %q", want)
		}
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/resumes/999/preview", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestServeBlob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	blobs := objecturl.NewStore(objecturl.DefaultPrefix)
	ref, err := blobs.Allocate(resume.NewBlob(pngBytes, ""))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	r := gin.New()
	r.GET("/v1/blobs/:ref", NewBlobHandler(blobs).ServeBlob)

	w := doJSON(t, r, http.MethodGet, ref, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	blobs.Release(ref)
	if w := doJSON(t, r, http.MethodGet, ref, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after release got %d", w.Code)
	}
}
