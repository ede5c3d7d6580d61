package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumePreview/internal/api/middleware"
	"resumePreview/internal/auth"
	"resumePreview/internal/config"
	"resumePreview/internal/photo/objecturl"
)

// ObjectStore 是 API 用到的对象存储能力，由 storage.Client 实现。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// TaskEnqueuer 由 asynq.Client 实现。
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// VirusScanner 扫描上传内容，发现威胁时返回 ErrMaliciousFile。
type VirusScanner interface {
	Scan(r io.Reader) error
}

var ErrMaliciousFile = errors.New("malicious file detected")

// ClamdScanner 通过 clamd 的 INSTREAM 扫描。
type ClamdScanner struct {
	Addr string
}

func (s ClamdScanner) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := clamd.NewClamd(s.Addr).ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	for result := range results {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			return fmt.Errorf("%w: %s", ErrMaliciousFile, result.Description)
		default:
			return fmt.Errorf("clamd status %s: %s", result.Status, result.Description)
		}
	}
	return nil
}

// Deps 汇总路由需要的全部依赖。
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Queue   TaskEnqueuer
	Auth    *auth.AuthService
	Redis   redis.UniversalClient
	Storage ObjectStore
	Blobs   *objecturl.Store
	Scanner VirusScanner
	Logger  *slog.Logger
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	default:
		return 0, false
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func loggerFrom(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	return middleware.LoggerFromContextOr(c, fallback)
}
