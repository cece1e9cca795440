package configs

// redactedValue 打印配置时替代敏感字段的占位符.
const redactedValue = "******"

// Redacted 返回隐藏了密码、密钥的副本，用于打印或日志.
func (c AppConfig) Redacted() AppConfig {
	mask := func(s *string) {
		if *s != "" {
			*s = redactedValue
		}
	}

	mask(&c.Auth.AdminPassword)
	mask(&c.Auth.SessionSecret)
	mask(&c.DB.Password)
	mask(&c.Blob.S3.SecretAccessKey)
	mask(&c.KV.Redis.Password)
	mask(&c.KV.NATS.Password)
	mask(&c.MQ.Common.Password)
	mask(&c.MQ.Redis.Password)

	return c
}
