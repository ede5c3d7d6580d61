package tasks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeExport = "resume:export"
)

// ExportPayload 描述导出 PDF 所需的最小信息。
type ExportPayload struct {
	ResumeID      uint   `json:"resume_id"`
	UserID        uint   `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewExportTask 构造一个简历导出任务。
func NewExportTask(resumeID, userID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportPayload{
		ResumeID:      resumeID,
		UserID:        userID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeExport, payload), nil
}

// ParseExportPayload 解析任务负载，缺少简历 ID 的任务无法重试成功。
func ParseExportPayload(t *asynq.Task) (ExportPayload, error) {
	var p ExportPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return ExportPayload{}, fmt.Errorf("unmarshal export payload: %w: %w", err, asynq.SkipRetry)
	}
	if p.ResumeID == 0 {
		return ExportPayload{}, fmt.Errorf("export payload: %w: %w", errors.New("resume id missing"), asynq.SkipRetry)
	}
	return p, nil
}
