package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer 写入 iss 声明，校验时要求一致。
const Issuer = "resume-preview"

// clockLeeway 容忍 API 与 worker 之间的少量时钟偏差。
const clockLeeway = 30 * time.Second

// 令牌类型，写入 token_type 声明。
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrEmptyToken     = errors.New("token string is empty")
	ErrWrongTokenType = errors.New("unexpected token type")
	// ErrMissingTokenID 表示刷新令牌缺少 jti，无法加入黑名单。
	ErrMissingTokenID = errors.New("refresh token missing jti")
)

// AuthService 签发并校验 RS256 令牌。私钥只在 API 进程加载。
type AuthService struct {
	privateKey      *rsa.PrivateKey
	publicKey       *rsa.PublicKey
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

// TokenPair 封装访问令牌与刷新令牌。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims 是令牌中的业务字段。
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewAuthService 解析 PEM 密钥并构造服务实例。
func NewAuthService(privateKeyPEM, publicKeyPEM []byte, accessTTL, refreshTTL time.Duration) (*AuthService, error) {
	if len(privateKeyPEM) == 0 {
		return nil, errors.New("private key pem is required")
	}
	if len(publicKeyPEM) == 0 {
		return nil, errors.New("public key pem is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}
	if !privateKey.PublicKey.Equal(publicKey) {
		return nil, errors.New("public key does not match private key")
	}

	return &AuthService{
		privateKey:      privateKey,
		publicKey:       publicKey,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		now:             time.Now,
	}, nil
}

// NewAuthServiceFromFiles 从磁盘读取 PEM 密钥。
func NewAuthServiceFromFiles(privateKeyPath, publicKeyPath string, accessTTL, refreshTTL time.Duration) (*AuthService, error) {
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	publicPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return NewAuthService(privatePEM, publicPEM, accessTTL, refreshTTL)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	return CheckPasswordHash(password, hash)
}

// GenerateTokenPair 创建访问令牌与刷新令牌。只有刷新令牌带 jti，登出时据此拉黑。
func (s *AuthService) GenerateTokenPair(userID uint) (TokenPair, error) {
	now := s.now()
	accessToken, err := s.sign(userID, TokenTypeAccess, "", now, s.accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.sign(userID, TokenTypeRefresh, uuid.NewString(), now, s.refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateToken 校验签名、签发方与有效期，不检查令牌类型。
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateAccessToken 供 HTTP 中间件与实时预览握手使用。
func (s *AuthService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	return s.validateType(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken 额外要求 jti 存在。
func (s *AuthService) ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	claims, err := s.validateType(tokenString, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrMissingTokenID
	}
	return claims, nil
}

func (s *AuthService) validateType(tokenString, want string) (*TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: %q", ErrWrongTokenType, claims.TokenType)
	}
	return claims, nil
}

func (s *AuthService) sign(userID uint, tokenType, jti string, now time.Time, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func (s *AuthService) RefreshTokenTTL() time.Duration {
	return s.refreshTokenTTL
}
