package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumePreview/internal/api/middleware"
	"resumePreview/internal/auth"
	"resumePreview/internal/database"
)

type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	types    map[string]string
	deleted  []string
	prefixes []string
	params   map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploaded: map[string][]byte{},
		types:    map[string]string{},
	}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, contentType string) (*minio.UploadInfo, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[objectName] = b
	s.types[objectName] = contentType
	return &minio.UploadInfo{Key: objectName, Size: int64(len(b))}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/" + objectKey + "?sig=1", nil
}

func (s *fakeStorage) GeneratePresignedURLWithParams(_ context.Context, objectKey string, _ time.Duration, params map[string]string) (string, error) {
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
	return "https://storage.test/" + objectKey + "?sig=2", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func (s *fakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes = append(s.prefixes, prefix)
	return nil
}

type fakeQueue struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (q *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	q.opts = append(q.opts, opts)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(q.tasks)), Type: task.Type()}, nil
}

type fakeScanner struct {
	err     error
	scanned int
}

func (s *fakeScanner) Scan(r io.Reader) error {
	s.scanned++
	_, _ = io.Copy(io.Discard, r)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newUnreachableRedis 返回一个连不上的客户端，计数与锁定逻辑在此时放行。
func newUnreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	svc, err := auth.NewAuthService(privatePEM, publicPEM, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

// asUser 模拟鉴权中间件。
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func newMultipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// pngBytes 是一个最小的 PNG 文件头，足以让内容嗅探识别为 image/png。
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
