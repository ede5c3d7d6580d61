package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumePreview/internal/database"
	"resumePreview/internal/errcode"
	"resumePreview/internal/resume"
	"resumePreview/internal/tasks"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

type fakeObjects struct {
	objects  map[string][]byte
	uploaded map[string]string
	readErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, uploaded: map[string]string{}}
}

func (o *fakeObjects) ReadObject(_ context.Context, key string, _ int64) ([]byte, string, error) {
	if o.readErr != nil {
		return nil, "", o.readErr
	}
	data, ok := o.objects[key]
	if !ok {
		return nil, "", minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return data, "application/octet-stream", nil
}

func (o *fakeObjects) UploadFile(_ context.Context, name string, r io.Reader, _ int64, contentType string) (*minio.UploadInfo, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	o.uploaded[name] = contentType
	return &minio.UploadInfo{Key: name}, nil
}

type fakePrinter struct {
	documents []string
	err       error
	thumbnail []byte
}

func (p *fakePrinter) Print(_ context.Context, document []byte) (Output, error) {
	p.documents = append(p.documents, string(document))
	if p.err != nil {
		return Output{}, p.err
	}
	return Output{PDF: []byte("%PDF-1.7"), Thumbnail: p.thumbnail}, nil
}

type fakeNotifier struct {
	sent []Notification
	to   []uint
}

func (n *fakeNotifier) Notify(_ context.Context, userID uint, msg Notification) error {
	n.to = append(n.to, userID)
	n.sent = append(n.sent, msg)
	return nil
}

type fixture struct {
	handler  *Handler
	store    *database.ResumeStore
	objects  *fakeObjects
	printer  *fakePrinter
	notifier *fakeNotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	f := fixture{
		store:    database.NewResumeStore(db),
		objects:  newFakeObjects(),
		printer:  &fakePrinter{thumbnail: []byte("jpeg")},
		notifier: &fakeNotifier{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.handler = NewHandler(f.store, f.objects, f.printer, f.notifier, logger, 0)
	return f
}

func exportTask(t *testing.T, resumeID, userID uint) *asynq.Task {
	t.Helper()
	task, err := tasks.NewExportTask(resumeID, userID, "corr-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestExportInlinesStoredPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := resume.Sample()
	rec.Photo = resume.PhotoFromURL("user-assets/3/me.png")
	f.objects.objects["user-assets/3/me.png"] = pngBytes
	model, err := f.store.Create(ctx, 3, rec, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := f.handler.ProcessTask(ctx, exportTask(t, model.ID, 3)); err != nil {
		t.Fatalf("process: %v", err)
	}

	doc := f.printer.documents[0]
	for _, want := range []string{"data:image/png;base64,", `id="resumePreviewContent"`, "zoom: 1", "<title>John Doe</title>"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	reloaded, err := f.store.Get(ctx, model.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != database.StatusCompleted || !strings.HasPrefix(reloaded.PdfKey, "generated-resumes/3/") {
		t.Fatalf("unexpected resume state %+v", reloaded)
	}
	if f.objects.uploaded[reloaded.PdfKey] != "application/pdf" {
		t.Fatal("pdf not uploaded")
	}
	if reloaded.PreviewKey == "" || f.objects.uploaded[reloaded.PreviewKey] != "image/jpeg" {
		t.Fatalf("thumbnail not stored: %q", reloaded.PreviewKey)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.sent))
	}
	n := f.notifier.sent[0]
	if n.Type != "export" || n.Status != StatusCompleted || n.ErrorCode != errcode.OK || n.CorrelationID != "corr-1" || f.notifier.to[0] != 3 {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestExportMissingPhotoWarns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := resume.Sample()
	rec.Photo = resume.PhotoFromURL("user-assets/3/gone.png")
	model, err := f.store.Create(ctx, 3, rec, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := f.handler.ProcessTask(ctx, exportTask(t, model.ID, 3)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if strings.Contains(f.printer.documents[0], "<img") {
		t.Fatal("missing photo must not render")
	}
	n := f.notifier.sent[0]
	if n.ErrorCode != errcode.ResourceMissing || len(n.MissingKeys) != 1 || n.MissingKeys[0] != "user-assets/3/gone.png" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestExportForeignPhotoKeyDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := resume.Sample()
	rec.Photo = resume.PhotoFromURL("user-assets/4/theirs.png")
	f.objects.objects["user-assets/4/theirs.png"] = pngBytes
	model, err := f.store.Create(ctx, 3, rec, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := f.handler.ProcessTask(ctx, exportTask(t, model.ID, 3)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if strings.Contains(f.printer.documents[0], "data:image") {
		t.Fatal("another user's photo must not be inlined")
	}
}

func TestExportFailureNotifiesOnFinalAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	model, err := f.store.Create(ctx, 3, resume.Sample(), 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.printer.err = errors.New("chromium crashed")

	f.handler.finalAttempt = func(context.Context) bool { return false }
	if err := f.handler.ProcessTask(ctx, exportTask(t, model.ID, 3)); err == nil {
		t.Fatal("expected error")
	}
	if len(f.notifier.sent) != 0 {
		t.Fatal("no notification before the final attempt")
	}

	f.handler.finalAttempt = func(context.Context) bool { return true }
	if err := f.handler.ProcessTask(ctx, exportTask(t, model.ID, 3)); err == nil {
		t.Fatal("expected error")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Status != StatusError || f.notifier.sent[0].ErrorCode != errcode.SystemError {
		t.Fatalf("unexpected notifications %+v", f.notifier.sent)
	}
	reloaded, _ := f.store.Get(ctx, model.ID)
	if reloaded.Status != database.StatusFailed {
		t.Fatalf("status %q", reloaded.Status)
	}
}

func TestExportSkipsMissingResume(t *testing.T) {
	f := newFixture(t)
	if err := f.handler.ProcessTask(context.Background(), exportTask(t, 404, 1)); err != nil {
		t.Fatalf("missing resume should be skipped, got %v", err)
	}
	if len(f.printer.documents) != 0 {
		t.Fatal("nothing should be printed")
	}

	bad := asynq.NewTask(tasks.TypeResumeExport, []byte("{"))
	if err := f.handler.ProcessTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
