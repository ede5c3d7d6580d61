package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumePreview/internal/resume"
)

// 导出状态。
const (
	StatusDraft     = "draft"
	StatusQueued    = "queued"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:64"`
	PasswordHash string   `gorm:"size:255"`
	Resumes      []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 保存一份简历记录。Content 是 resume.Record 的 JSON，
// TemplateID 冗余一份便于列表展示。
type Resume struct {
	gorm.Model
	Title      string         `gorm:"size:255"`
	TemplateID string         `gorm:"size:32"`
	Content    datatypes.JSON `gorm:"type:jsonb"`
	UserID     uint           `gorm:"index"`
	User       User           `gorm:"constraint:OnDelete:CASCADE"`
	PdfKey     string         `gorm:"size:512"`
	PreviewKey string         `gorm:"size:512"`
	Status     string         `gorm:"size:32"`
}

// Record 解码简历内容。
func (r *Resume) Record() (resume.Record, error) {
	var rec resume.Record
	if len(r.Content) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(r.Content, &rec); err != nil {
		return resume.Record{}, fmt.Errorf("decode resume %d content: %w", r.ID, err)
	}
	return rec, nil
}

// SetRecord 写入简历内容并同步标题与模板。
func (r *Resume) SetRecord(rec resume.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode resume content: %w", err)
	}
	r.Content = datatypes.JSON(data)
	r.Title = rec.Title
	r.TemplateID = rec.TemplateID
	return nil
}
