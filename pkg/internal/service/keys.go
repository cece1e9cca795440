package service

import (
	"crypto/rand"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// 对象键的命名空间.
const (
	CoverPrefix = "covers"
	PDFPrefix   = "pdfs"
)

// maxNameLen 保留的原始文件名最大长度.
const maxNameLen = 96

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewULID 生成按时间有序的 ULID.
func NewULID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// SanitizeName 只保留 [A-Za-z0-9._-]，其余字符替换为下划线.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}

	var b strings.Builder

	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if len(out) > maxNameLen {
		out = out[len(out)-maxNameLen:]
	}

	if out == "" {
		out = "file"
	}

	return out
}

// BlobKey 生成 <prefix>/<ULID>-<文件名> 形式的对象键.
func BlobKey(prefix, name string, now time.Time) string {
	return prefix + "/" + NewULID(now) + "-" + SanitizeName(name)
}
