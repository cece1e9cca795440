package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/ebookshelf/pkg/internal/service"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"cover.png":            "cover.png",
		"my cover (1).png":     "my_cover__1_.png",
		"Étranger.pdf":         "_tranger.pdf",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\book.pdf`: "book.pdf",
		"":                     "file",
		"a-b_c.d":              "a-b_c.d",
	}

	for in, want := range cases {
		if got := service.SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBlobKeyIsUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 1000)

	for range 1000 {
		key := service.BlobKey(service.PDFPrefix, "same.pdf", now)
		if !strings.HasPrefix(key, "pdfs/") || !strings.HasSuffix(key, "-same.pdf") {
			t.Fatalf("unexpected key %q", key)
		}

		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key %q", key)
		}

		seen[key] = struct{}{}
	}
}

func TestErrorKinds(t *testing.T) {
	err := service.InvalidID("abc")

	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}

	if errors.Is(err, service.ErrNotFound) {
		t.Error("invalid input must not match not found")
	}

	if got := service.KindOf(err).HTTPStatus(); got != 400 {
		t.Errorf("status = %d, want 400", got)
	}

	if got := service.KindOf(errors.New("boom")); got != service.KindUpstream {
		t.Errorf("KindOf(plain) = %s, want upstream", got)
	}

	wrapped := errors.Join(errors.New("ctx"), service.Unauthorized("login", service.CodeBadCredential, "bad"))
	if service.KindOf(wrapped).HTTPStatus() != 401 {
		t.Errorf("wrapped unauthorized should map to 401")
	}
}
