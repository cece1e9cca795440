package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/ebookshelf/pkg/configs"
	nlog "github.com/yeisme/ebookshelf/pkg/log"
)

// S3Store 基于 MinIO 客户端的对象存储后端.
type S3Store struct {
	client *minio.Client
	bucket string
	mapper refMapper
}

var _ Store = (*S3Store)(nil)

func init() {
	RegisterStoreFactory(configs.BlobS3, func(ctx context.Context, cfg configs.BlobConfig) (Store, error) {
		return NewS3Store(ctx, cfg.S3)
	})
}

// NewS3Store 初始化 MinIO 客户端，按配置在 bucket 不存在时创建.
func NewS3Store(ctx context.Context, cfg configs.S3Config) (*S3Store, error) {
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		cfg.Endpoint = u.Host

		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("ebookshelf", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("bucket %s does not exist", cfg.BucketName)
		}

		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &S3Store{
		client: cli,
		bucket: cfg.BucketName,
		mapper: refMapper{base: cfg.GetPublicBaseURL()},
	}, nil
}

// Store 上传对象；key 由调用方生成且带随机前缀，上传前确认不存在.
func (s *S3Store) Store(ctx context.Context, content io.Reader, size int64, contentType, key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, key)
	} else if !isNoSuchKey(err) {
		return "", fmt.Errorf("stat object %s: %w", key, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if size <= 0 {
		size = -1
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.mapper.ref(key), nil
}

// Key 还原对象 key.
func (s *S3Store) Key(reference string) (string, error) {
	return s.mapper.key(reference)
}

// Remove 删除对象；S3 删除不存在的对象同样返回成功.
func (s *S3Store) Remove(ctx context.Context, reference string) error {
	key, err := s.mapper.key(reference)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

// List 递归列出 prefix 下的对象.
func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, info.Err)
		}

		objects = append(objects, Object{
			Key:          info.Key,
			Reference:    s.mapper.ref(info.Key),
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}

	return objects, nil
}

// HealthCheck 通过检查 bucket 验证连接.
func (s *S3Store) HealthCheck(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s not found", s.bucket)
	}

	return nil
}

// Type 返回后端类型.
func (s *S3Store) Type() configs.BlobType {
	return configs.BlobS3
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)

	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
