package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumePreview/internal/config"
)

// ErrObjectTooLarge 表示对象超过调用方给出的读取上限。
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// Client 封装 MinIO：照片、导出的 PDF 与缩略图都存放在同一个私有 Bucket。
// 预签名链接由 publicClient 生成，主机名对浏览器可达。
type Client struct {
	internalClient *minio.Client
	publicClient   *minio.Client
	bucketName     string
	logger         *slog.Logger
}

// NewClient 根据配置初始化客户端，并确保目标 Bucket 存在。
func NewClient(cfg config.MinIOConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bucketLookup, err := parseBucketLookup(cfg.BucketLookup)
	if err != nil {
		return nil, err
	}

	internalClient, err := newMinioClient(cfg, cfg.Endpoint, cfg.UseSSL, bucketLookup)
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	public, err := url.Parse(cfg.PublicEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse minio public endpoint: %w", err)
	}
	if public.Host == "" {
		return nil, errors.New("invalid minio public endpoint, host missing")
	}
	publicClient, err := newMinioClient(cfg, public.Host, public.Scheme == "https", bucketLookup)
	if err != nil {
		return nil, fmt.Errorf("init public minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ensureBucket(ctx, internalClient, cfg); err != nil {
		return nil, err
	}

	return &Client{
		internalClient: internalClient,
		publicClient:   publicClient,
		bucketName:     cfg.Bucket,
		logger:         logger.With(slog.String("component", "storage"), slog.String("bucket", cfg.Bucket)),
	}, nil
}

func parseBucketLookup(raw string) (minio.BucketLookupType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return minio.BucketLookupAuto, nil
	case "dns":
		return minio.BucketLookupDNS, nil
	case "path":
		return minio.BucketLookupPath, nil
	default:
		return minio.BucketLookupAuto, fmt.Errorf("invalid minio bucket lookup %q", raw)
	}
}

func newMinioClient(cfg config.MinIOConfig, endpoint string, secure bool, lookup minio.BucketLookupType) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
}

func ensureBucket(ctx context.Context, client *minio.Client, cfg config.MinIOConfig) error {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if !cfg.AutoCreateBucket {
		return fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
	}
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
	}
	return nil
}

// UploadFile 将对象上传到私有 Bucket。
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	info, err := c.internalClient.PutObject(ctx, c.bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", objectName, err)
	}
	return &info, nil
}

// ReadObject 读取整个对象并返回其 Content-Type，缺省为 application/octet-stream。
// 对象不存在时返回的错误满足 IsNoSuchKey，超过 maxBytes 时返回 ErrObjectTooLarge。
func (c *Client) ReadObject(ctx context.Context, objectKey string, maxBytes int64) ([]byte, string, error) {
	obj, err := c.internalClient.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object %q: %w", objectKey, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat object %q: %w", objectKey, err)
	}
	if maxBytes > 0 && stat.Size > maxBytes {
		return nil, "", fmt.Errorf("%w: %q is %d bytes, limit %d", ErrObjectTooLarge, objectKey, stat.Size, maxBytes)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read object %q: %w", objectKey, err)
	}
	contentType := stat.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// GeneratePresignedURL 生成对象的限时下载链接。
func (c *Client) GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error) {
	return c.GeneratePresignedURLWithParams(ctx, objectKey, duration, nil)
}

// GeneratePresignedURLWithParams 生成带响应参数（如 response-content-disposition）的限时链接。
func (c *Client) GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error) {
	var v url.Values
	if len(params) > 0 {
		v = make(url.Values, len(params))
		for k, val := range params {
			v.Set(k, val)
		}
	}
	presignedURL, err := c.publicClient.PresignedGetObject(ctx, c.bucketName, objectKey, duration, v)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}

// DeleteObject 删除指定对象，对象不存在视为成功。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil && !IsNoSuchKey(err) {
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// DeletePrefix 批量删除前缀下的全部对象，删除简历时清理它的导出产物。
// 已不存在的对象被忽略，其余失败汇总为一个错误。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}

	listed := c.internalClient.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var listErr error
	toRemove := make(chan minio.ObjectInfo)
	go func() {
		defer close(toRemove)
		for object := range listed {
			if object.Err != nil {
				listErr = object.Err
				continue
			}
			toRemove <- object
		}
	}()

	var failed []error
	for res := range c.internalClient.RemoveObjects(ctx, c.bucketName, toRemove, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && !IsNoSuchKey(res.Err) {
			failed = append(failed, fmt.Errorf("%s: %w", res.ObjectName, res.Err))
		}
	}
	if listErr != nil {
		return fmt.Errorf("list objects under %q: %w", prefix, listErr)
	}
	if len(failed) == 0 {
		return nil
	}

	c.logger.Error("delete objects under prefix failed",
		slog.String("prefix", prefix),
		slog.Int("failed_count", len(failed)),
	)
	return fmt.Errorf("delete objects under %q: %w", prefix, errors.Join(failed...))
}
