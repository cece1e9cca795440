// Package auth 提供管理员会话：签发、校验、吊销会话令牌，以及请求级别的 Principal.
package auth

import "context"

// Role 请求方角色.
type Role int

const (
	RoleAnonymous Role = iota
	RoleAdmin
)

// String 返回角色的字符串表示.
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}

	return "anonymous"
}

// Principal 当前请求的身份.
type Principal struct {
	Email string
	Role  Role
	// SessionID 会话令牌的 jti，匿名时为空.
	SessionID string
}

// Anonymous 未登录的身份.
func Anonymous() Principal {
	return Principal{Role: RoleAnonymous}
}

// AdminPrincipal 管理员身份.
func AdminPrincipal(email, sessionID string) Principal {
	return Principal{Email: email, Role: RoleAdmin, SessionID: sessionID}
}

// IsAdmin 是否为管理员.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalKey struct{}

// WithPrincipal 把身份写入 context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext 读取 context 中的身份，缺省为匿名.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}

	return Anonymous()
}
