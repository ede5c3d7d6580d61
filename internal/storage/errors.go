package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// IsNoSuchKey 判断错误是否表示对象不存在。导出任务据此把缺失的照片降级为告警而不是重试。
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch strings.ToLower(strings.TrimSpace(resp.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
		if resp.StatusCode != 0 {
			return false
		}
	}
	// 经网关转发后可能只剩错误文本。
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchkey") ||
		strings.Contains(lower, "specified key does not exist")
}
