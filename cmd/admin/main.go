// Command admin 在数据库中直接创建账号或重置密码，初始密码只打印一次。
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"gorm.io/gorm"

	"resumePreview/internal/auth"
	"resumePreview/internal/config"
	"resumePreview/internal/database"
)

var errUserNotFound = errors.New("user not found")

func main() {
	var (
		username = flag.StringP("username", "u", "", "账号用户名（必填）")
		reset    = flag.Bool("reset", false, "为已有账号生成新密码")
		length   = flag.Int("password-bytes", 24, "随机密码的字节数")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	u := strings.TrimSpace(*username)
	if u == "" {
		logger.Error("missing required flag: --username")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config failed", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.InitDatabase(cfg.Database, logger)
	if err != nil {
		logger.Error("init database failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migrate database failed", slog.Any("error", err))
		os.Exit(1)
	}

	password, err := provision(context.Background(), database.NewUserStore(db), u, *reset, *length)
	if err != nil {
		logger.Error("provision account failed", slog.String("username", u), slog.Any("error", err))
		os.Exit(1)
	}
	printCredentials(os.Stdout, u, password, *reset)
}

// provision 创建账号，reset 为 true 时改为重置已有账号的密码。返回明文密码。
func provision(ctx context.Context, users *database.UserStore, username string, reset bool, passwordBytes int) (string, error) {
	password, err := generateRandomPassword(passwordBytes)
	if err != nil {
		return "", err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	if !reset {
		if _, err := users.Create(ctx, username, hashed); err != nil {
			return "", err
		}
		return password, nil
	}

	user, err := users.ByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", errUserNotFound, username)
	}
	if err != nil {
		return "", err
	}
	if err := users.SetPasswordHash(ctx, user.ID, hashed); err != nil {
		return "", err
	}
	return password, nil
}

func printCredentials(w io.Writer, username, password string, reset bool) {
	if reset {
		fmt.Fprintln(w, "已重置账号密码：")
	} else {
		fmt.Fprintln(w, "已创建账号：")
	}
	fmt.Fprintf(w, "用户名: %s\n", username)
	fmt.Fprintf(w, "密码: %s\n", password)
	fmt.Fprintln(w, "提示：该密码仅显示一次，请妥善保存。")
}

// generateRandomPassword 的结果不超过 bcrypt 的 72 字节上限。
func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 || bytesLen > 48 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
