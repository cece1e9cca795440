package configs

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// BlobType 封面与 PDF 的存储后端类型.
type BlobType string

const (
	BlobLocal BlobType = "local" // 本地文件系统，经 /uploads 对外提供
	BlobS3    BlobType = "s3"    // MinIO / S3 兼容对象存储
)

const (
	DefaultBlobRoot       = "uploads"  // 本地存储根目录
	DefaultBlobURLPrefix  = "/uploads" // 本地文件的公开访问前缀
	DefaultS3Endpoint     = "localhost:9000"
	DefaultS3AccessKeyID  = "minioadmin"
	DefaultS3SecretKey    = "minioadmin"
	DefaultS3UseSSL       = false
	DefaultS3BucketName   = "ebookshelf"
	DefaultS3Region       = "us-east-1"
	DefaultS3CreateBucket = true
)

// BlobConfig 文件存储配置.
type BlobConfig struct {
	Type      BlobType `mapstructure:"type"       rule:"oneof=local s3"`
	Root      string   `mapstructure:"root"`       // 本地后端根目录
	URLPrefix string   `mapstructure:"url_prefix"` // 本地后端公开访问前缀
	S3        S3Config `mapstructure:"s3"`
}

// S3Config MinIO S3存储配置.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
	CreateBucket    bool   `mapstructure:"create_bucket"`
	PublicURL       string `mapstructure:"public_url"` // 为空时使用 endpoint/bucket 拼接
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// GetPublicBaseURL 返回对象公开访问地址的前缀，不带尾部斜杠.
func (c *S3Config) GetPublicBaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}

	return c.GetEndpointURL() + "/" + c.BucketName
}

// setDefaults 设置文件存储配置的默认值.
func (c *BlobConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("blob.type", BlobLocal)
	v.SetDefault("blob.root", DefaultBlobRoot)
	v.SetDefault("blob.url_prefix", DefaultBlobURLPrefix)

	v.SetDefault("blob.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("blob.s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("blob.s3.secret_access_key", DefaultS3SecretKey)
	v.SetDefault("blob.s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("blob.s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("blob.s3.region", DefaultS3Region)
	v.SetDefault("blob.s3.create_bucket", DefaultS3CreateBucket)
	v.SetDefault("blob.s3.public_url", "")
}
