package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resumePreview/internal/resume"
)

// ErrResumeLimit 表示用户的简历数量已达上限。
var ErrResumeLimit = errors.New("resume limit reached")

// ResumeStore 封装简历表的读写，API 与 Worker 共用。
type ResumeStore struct {
	db *gorm.DB
}

// NewResumeStore 构造存储。
func NewResumeStore(db *gorm.DB) *ResumeStore {
	return &ResumeStore{db: db}
}

// Create 保存新简历，maxPerUser <= 0 表示不限。
func (s *ResumeStore) Create(ctx context.Context, userID uint, rec resume.Record, maxPerUser int) (*Resume, error) {
	if maxPerUser > 0 {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&Resume{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count resumes: %w", err)
		}
		if count >= int64(maxPerUser) {
			return nil, ErrResumeLimit
		}
	}

	model := Resume{UserID: userID, Status: StatusDraft}
	if err := model.SetRecord(rec); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}
	return &model, nil
}

// ListByUser 按最近更新排序返回用户的全部简历。
func (s *ResumeStore) ListByUser(ctx context.Context, userID uint) ([]Resume, error) {
	var resumes []Resume
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return resumes, nil
}

// GetForUser 返回属于该用户的简历，不存在时返回 gorm.ErrRecordNotFound。
func (s *ResumeStore) GetForUser(ctx context.Context, id, userID uint) (*Resume, error) {
	var model Resume
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// Get 按主键读取，供 Worker 使用。
func (s *ResumeStore) Get(ctx context.Context, id uint) (*Resume, error) {
	var model Resume
	if err := s.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// UpdateRecord 覆盖简历内容。
func (s *ResumeStore) UpdateRecord(ctx context.Context, model *Resume, rec resume.Record) error {
	if err := model.SetRecord(rec); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(model).Updates(map[string]any{
		"title":       model.Title,
		"template_id": model.TemplateID,
		"content":     model.Content,
	}).Error; err != nil {
		return fmt.Errorf("update resume %d: %w", model.ID, err)
	}
	return nil
}

// SetTemplate 只替换模板，其余内容保持不变。
func (s *ResumeStore) SetTemplate(ctx context.Context, model *Resume, templateID string) error {
	rec, err := model.Record()
	if err != nil {
		return err
	}
	return s.UpdateRecord(ctx, model, rec.WithTemplate(templateID))
}

// Delete 软删除简历。
func (s *ResumeStore) Delete(ctx context.Context, model *Resume) error {
	if err := s.db.WithContext(ctx).Delete(model).Error; err != nil {
		return fmt.Errorf("delete resume %d: %w", model.ID, err)
	}
	return nil
}

// MarkStatus 更新导出状态。
func (s *ResumeStore) MarkStatus(ctx context.Context, id uint, status string) error {
	if err := s.db.WithContext(ctx).Model(&Resume{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("mark resume %d %s: %w", id, status, err)
	}
	return nil
}

// MarkExported 记录 PDF 对象并把状态置为完成。
func (s *ResumeStore) MarkExported(ctx context.Context, id uint, pdfKey string) error {
	if err := s.db.WithContext(ctx).Model(&Resume{}).
		Where("id = ?", id).
		Updates(map[string]any{"pdf_key": pdfKey, "status": StatusCompleted}).Error; err != nil {
		return fmt.Errorf("mark resume %d exported: %w", id, err)
	}
	return nil
}

// SetPreviewKey 记录缩略图对象。
func (s *ResumeStore) SetPreviewKey(ctx context.Context, id uint, key string) error {
	if err := s.db.WithContext(ctx).Model(&Resume{}).
		Where("id = ?", id).
		Update("preview_key", key).Error; err != nil {
		return fmt.Errorf("set resume %d preview: %w", id, err)
	}
	return nil
}
