package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

var (
	// ErrBadCredentials 邮箱或密码不匹配.
	ErrBadCredentials = errors.New("auth: bad credentials")
	// ErrInvalidSession 令牌无效、过期或已吊销.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// revokedPrefix 吊销表键前缀，值无意义，TTL 与令牌剩余有效期一致.
const revokedPrefix = "session:revoked:"

const roleAdmin = "admin"

// Claims 会话令牌载荷.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session 新签发的会话.
type Session struct {
	Token     string
	ID        string
	Email     string
	ExpiresAt time.Time
}

// Sessions 签发与校验 HS256 会话令牌，吊销记录保存在 KV 中.
type Sessions struct {
	cfg     configs.AuthConfig
	revoked kv.KVStore
	now     func() time.Time
}

// NewSessions 创建会话管理器；revoked 为 nil 时登出只清除 Cookie.
func NewSessions(cfg configs.AuthConfig, revoked kv.KVStore) *Sessions {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = configs.DefaultSessionTTL
	}

	if cfg.CookieName == "" {
		cfg.CookieName = configs.DefaultCookieName
	}

	return &Sessions{cfg: cfg, revoked: revoked, now: time.Now}
}

// SetClock 替换时钟，用于测试.
func (s *Sessions) SetClock(now func() time.Time) {
	s.now = now
}

// CookieName 会话 Cookie 名称.
func (s *Sessions) CookieName() string { return s.cfg.CookieName }

// CookieSecure 是否只在 HTTPS 下发送 Cookie.
func (s *Sessions) CookieSecure() bool { return s.cfg.CookieSecure }

// TTL 会话有效期.
func (s *Sessions) TTL() time.Duration { return s.cfg.SessionTTL }

// Login 校验管理员凭据并签发会话.
func (s *Sessions) Login(email, password string) (Session, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1

	if !emailOK || !passOK || s.cfg.AdminEmail == "" {
		return Session{}, ErrBadCredentials
	}

	return s.Issue(email)
}

// Issue 为指定邮箱签发管理员会话.
func (s *Sessions) Issue(email string) (Session, error) {
	now := s.now().UTC()
	exp := now.Add(s.cfg.SessionTTL)
	id := uuid.NewString()

	claims := Claims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   email,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}

	return Session{Token: token, ID: id, Email: email, ExpiresAt: exp}, nil
}

// Parse 校验令牌签名、有效期与吊销状态.
func (s *Sessions) Parse(ctx context.Context, token string) (Principal, *Claims, error) {
	claims, err := s.parseClaims(token)
	if err != nil {
		return Anonymous(), nil, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.Exists(ctx, revokedPrefix+claims.ID)
		if err != nil {
			return Anonymous(), nil, fmt.Errorf("check revocation: %w", err)
		}

		if revoked {
			return Anonymous(), nil, ErrInvalidSession
		}
	}

	if claims.Role != roleAdmin {
		return Anonymous(), claims, nil
	}

	return AdminPrincipal(claims.Subject, claims.ID), claims, nil
}

func (s *Sessions) parseClaims(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.SessionSecret), nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Revoke 吊销令牌直到其过期；令牌本身无效时视为成功.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	if s.revoked == nil || token == "" {
		return nil
	}

	claims, err := s.parseClaims(token)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.revoked.Set(ctx, revokedPrefix+claims.ID, []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}
