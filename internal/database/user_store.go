package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrUsernameTaken 表示用户名已被占用。
var ErrUsernameTaken = errors.New("username already taken")

// UserStore 封装账号表，供认证接口与运维命令共用。
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create 写入新账号。用户名的唯一性先查询一次，唯一索引兜底并发注册。
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	if _, err := s.ByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := User{Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// ByUsername 未找到时返回 gorm.ErrRecordNotFound。
func (s *UserStore) ByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// ByID 未找到时返回 gorm.ErrRecordNotFound。
func (s *UserStore) ByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// SetPasswordHash 替换账号的密码哈希。
func (s *UserStore) SetPasswordHash(ctx context.Context, id uint, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
