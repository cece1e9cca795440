package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin123"
	DefaultSessionSecret = "change-me-ebookshelf-session-secret"
	DefaultSessionTTL    = 8 * time.Hour
	DefaultCookieName    = "ebookshelf_session"
	DefaultSessionIssuer = "ebookshelf"
)

// AuthConfig 管理员凭据与会话 Cookie 配置.
// 只有一个管理员账号，密码按配置原文比较.
type AuthConfig struct {
	AdminEmail    string        `mapstructure:"admin_email"    rule:"required,email"`
	AdminPassword string        `mapstructure:"admin_password" rule:"required"`
	SessionSecret string        `mapstructure:"session_secret" rule:"required,min=16"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"    rule:"min=1m"`
	CookieName    string        `mapstructure:"cookie_name"    rule:"required"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	Issuer        string        `mapstructure:"issuer"`
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.admin_email", DefaultAdminEmail)
	v.SetDefault("auth.admin_password", DefaultAdminPassword)
	v.SetDefault("auth.session_secret", DefaultSessionSecret)
	v.SetDefault("auth.session_ttl", DefaultSessionTTL)
	v.SetDefault("auth.cookie_name", DefaultCookieName)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.issuer", DefaultSessionIssuer)
}
