package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/auth"
	"github.com/yeisme/ebookshelf/pkg/internal/handle"
	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/router"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/testutil"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
	"github.com/yeisme/ebookshelf/pkg/middleware"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret-pass"
)

type server struct {
	t      *testing.T
	engine *gin.Engine
	repo   *repository.EbookRepository
}

func newServer(t *testing.T) *server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	repo := repository.NewEbookRepository(db.DB)
	blobs, _ := testutil.NewBlobStore(t)
	store := testutil.NewKV(t)

	catalogCfg := testutil.DefaultCatalogConfig()
	catalogCfg.CacheEnabled = true
	catalogCfg.CacheTTL = time.Minute

	sessions := auth.NewSessions(configs.AuthConfig{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		SessionSecret: "router-test-session-secret",
		CookieName:    configs.DefaultCookieName,
	}, store)

	h := handle.New(handle.Deps{
		Catalog:  service.NewCatalogService(repo, store, catalogCfg),
		Admin:    service.NewAdminService(repo, blobs, service.WithGeneration(service.NewGeneration(store))),
		Sessions: sessions,
		DB:       db,
		Blob:     blobs,
		KV:       store,
	})

	e := gin.New()
	e.Use(middleware.RequestIDMiddleware(), middleware.SessionMiddleware(sessions))

	api := e.Group("/api")
	router.Register(api, h)
	router.RegisterHealthCheckRoute(api, h)
	require.True(t, router.RegisterUploadsRoute(e, blobs))

	return &server{t: t, engine: e, repo: repo}
}

func (s *server) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func (s *server) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func (s *server) login() *http.Cookie {
	s.t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, adminEmail, adminPassword)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := s.do(req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == configs.DefaultCookieName {
			return c
		}
	}

	s.t.Fatal("session cookie not set")

	return nil
}

type part struct {
	name     string
	filename string
	body     string
}

func multipartRequest(t *testing.T, method, target string, parts ...part) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.name, p.body))
			continue
		}

		fw, err := mw.CreateFormFile(p.name, p.filename)
		require.NoError(t, err)

		_, err = io.WriteString(fw, p.body)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func seedBooks(t *testing.T, repo *repository.EbookRepository, n int) []uint {
	t.Helper()

	books := make([]model.Ebook, 0, n)
	for i := range n {
		books = append(books, testutil.Book(i, fmt.Sprintf("Book %02d", i), "Author"))
	}

	return testutil.Seed(t, repo, books...)
}

func TestListEnvelope(t *testing.T) {
	s := newServer(t)
	seedBooks(t, s.repo, 10)

	w := s.get("/api/ebooks?page=2&pageSize=4")
	require.Equal(t, http.StatusOK, w.Code)

	env := decode[types.Envelope](t, w)
	assert.Len(t, env.Items, 4)
	assert.EqualValues(t, 10, env.Total)
	assert.Equal(t, 2, env.Page)
	assert.Equal(t, 4, env.PageSize)
	assert.Equal(t, 3, env.Pages)
	assert.True(t, env.HasPrev)
	assert.True(t, env.HasNext)
	assert.Equal(t, "Book 05", env.Items[0].Title)
}

func TestListEmptyCatalogReturnsArray(t *testing.T) {
	s := newServer(t)

	w := s.get("/api/ebooks")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	env := decode[types.Envelope](t, w)
	assert.Equal(t, 1, env.Pages)
	assert.Equal(t, configs.DefaultPageSize, env.PageSize)
	assert.False(t, env.HasNext)
}

func TestListMalformedPaginationIsNormalized(t *testing.T) {
	s := newServer(t)
	seedBooks(t, s.repo, 3)

	env := decode[types.Envelope](t, s.get("/api/ebooks?page=abc&pageSize=-3"))
	assert.Equal(t, 1, env.Page)
	assert.Equal(t, configs.DefaultPageSize, env.PageSize)

	env = decode[types.Envelope](t, s.get("/api/ebooks?page=99&pageSize=500"))
	assert.Equal(t, 1, env.Page)
	assert.Equal(t, configs.DefaultMaxPageSize, env.PageSize)
	assert.Len(t, env.Items, 3)
}

func TestListLangAlias(t *testing.T) {
	s := newServer(t)

	en := testutil.Book(0, "Dune", "Frank Herbert")
	en.Language = "en"
	testutil.Seed(t, s.repo, en, testutil.Book(1, "Candide", "Voltaire"))

	for _, q := range []string{"lang=en", "language=en"} {
		env := decode[types.Envelope](t, s.get("/api/ebooks?"+q))
		require.Len(t, env.Items, 1, q)
		assert.Equal(t, "Dune", env.Items[0].Title)
	}
}

func TestListSearchMatchesAnyTextField(t *testing.T) {
	s := newServer(t)

	a := testutil.Book(0, "Le Petit Prince", "Saint-Exupéry")
	a.Categories = "jeunesse"
	testutil.Seed(t, s.repo, a, testutil.Book(1, "Germinal", "Zola"))

	env := decode[types.Envelope](t, s.get("/api/ebooks?q="+url.QueryEscape("PETIT")))
	require.Len(t, env.Items, 1)

	env = decode[types.Envelope](t, s.get("/api/ebooks?category=Jeun"))
	require.Len(t, env.Items, 1)
	assert.Equal(t, "Le Petit Prince", env.Items[0].Title)
}

func TestGetEbook(t *testing.T) {
	s := newServer(t)
	ids := seedBooks(t, s.repo, 1)

	w := s.get(fmt.Sprintf("/api/ebooks/%d", ids[0]))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book 00", decode[model.Ebook](t, w).Title)

	w = s.get("/api/ebooks/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(service.KindNotFound), decode[types.ErrorResponse](t, w).Error)

	w = s.get("/api/ebooks/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(service.KindInvalidInput), decode[types.ErrorResponse](t, w).Error)
}

func TestDeleteWithoutSessionIsRejected(t *testing.T) {
	s := newServer(t)
	ids := seedBooks(t, s.repo, 1)

	w := s.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/ebooks/%d", ids[0]), nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	resp := decode[types.ErrorResponse](t, w)
	assert.False(t, resp.OK)
	assert.Equal(t, string(service.KindUnauthorized), resp.Error)
	assert.Equal(t, service.CodeAdminRequired, resp.Code)

	assert.Equal(t, http.StatusOK, s.get(fmt.Sprintf("/api/ebooks/%d", ids[0])).Code)
}

func TestCreateWithoutSessionIsRejected(t *testing.T) {
	s := newServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/ebooks",
		part{name: "title", body: "Dune"},
		part{name: "author", body: "Frank Herbert"},
		part{name: "pdf", filename: "dune.pdf", body: "%PDF"},
	)

	w := s.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	n, err := s.repo.Count(req.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginAndMe(t *testing.T) {
	s := newServer(t)

	me := decode[types.MeResponse](t, s.get("/api/me"))
	assert.False(t, me.IsAdmin)
	assert.Nil(t, me.Email)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(url.Values{"email": {adminEmail}, "password": {"wrong"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := s.do(req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.CodeBadCredential, decode[types.ErrorResponse](t, w).Code)

	cookie := s.login()
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	me = decode[types.MeResponse](t, s.get("/api/me", cookie))
	assert.True(t, me.IsAdmin)
	require.NotNil(t, me.Email)
	assert.Equal(t, adminEmail, *me.Email)
}

func TestLoginMissingFields(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":""}`))
	req.Header.Set("Content-Type", "application/json")

	w := s.do(req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[types.ErrorResponse](t, w)
	assert.Equal(t, string(service.KindValidation), resp.Error)
	assert.ElementsMatch(t, []string{"email", "password"}, resp.Fields)
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newServer(t)
	ids := seedBooks(t, s.repo, 1)
	cookie := s.login()

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.OKResponse](t, w).OK)

	w = s.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/ebooks/%d", ids[0]), nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLifecycle(t *testing.T) {
	s := newServer(t)
	cookie := s.login()

	// 先填充列表缓存，写操作之后必须看到新数据.
	env := decode[types.Envelope](t, s.get("/api/ebooks"))
	require.Zero(t, env.Total)

	w := s.do(multipartRequest(t, http.MethodPost, "/api/ebooks",
		part{name: "title", body: "  Dune "},
		part{name: "author", body: "Frank Herbert"},
		part{name: "price_cents", body: "1299"},
		part{name: "categories", body: "sf"},
		part{name: "cover", filename: "dune cover.png", body: "png"},
		part{name: "pdf", filename: "dune.pdf", body: "%PDF-dune"},
	), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	created := decode[types.CreateEbookResponse](t, w)
	require.True(t, created.OK)
	require.NotZero(t, created.ID)

	env = decode[types.Envelope](t, s.get("/api/ebooks"))
	require.EqualValues(t, 1, env.Total)

	book := env.Items[0]
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, configs.DefaultLanguage, book.Language)
	assert.EqualValues(t, 1299, book.PriceCents)
	require.NotNil(t, book.CoverPath)
	assert.True(t, strings.HasPrefix(*book.CoverPath, "/uploads/covers/"))
	assert.True(t, strings.HasPrefix(book.PDFPath, "/uploads/pdfs/"))

	pdf := s.get(book.PDFPath)
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "%PDF-dune", pdf.Body.String())

	path := fmt.Sprintf("/api/ebooks/%d", created.ID)

	w = s.do(multipartRequest(t, http.MethodPut, path, part{name: "title", body: "Dune Messiah"}), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[types.UpdateEbookResponse](t, w).Updated)

	got := decode[model.Ebook](t, s.get(path))
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, book.PDFPath, got.PDFPath)

	w = s.do(httptest.NewRequest(http.MethodDelete, path, nil), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[types.DeleteEbookResponse](t, w).Deleted)

	assert.Equal(t, http.StatusNotFound, s.get(path).Code)
	assert.Equal(t, http.StatusNotFound, s.get(book.PDFPath).Code)
	assert.Zero(t, decode[types.Envelope](t, s.get("/api/ebooks")).Total)
}

func TestCreateValidation(t *testing.T) {
	s := newServer(t)
	cookie := s.login()

	w := s.do(multipartRequest(t, http.MethodPost, "/api/ebooks",
		part{name: "title", body: "Dune"},
		part{name: "author", body: "   "},
	), cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[types.ErrorResponse](t, w)
	assert.Equal(t, string(service.KindValidation), resp.Error)
	assert.ElementsMatch(t, []string{"author", "pdf"}, resp.Fields)

	w = s.do(multipartRequest(t, http.MethodPost, "/api/ebooks",
		part{name: "title", body: "Dune"},
		part{name: "author", body: "Frank Herbert"},
		part{name: "price_cents", body: "twelve"},
		part{name: "pdf", filename: "dune.pdf", body: "%PDF"},
	), cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"price_cents"}, decode[types.ErrorResponse](t, w).Fields)
}

func TestUpdateMissingEbook(t *testing.T) {
	s := newServer(t)
	cookie := s.login()

	w := s.do(multipartRequest(t, http.MethodPut, "/api/ebooks/42", part{name: "title", body: "x"}), cookie)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, service.CodeEbookNotFound, decode[types.ErrorResponse](t, w).Code)
}

func TestDeleteMissingEbook(t *testing.T) {
	s := newServer(t)
	cookie := s.login()

	w := s.do(httptest.NewRequest(http.MethodDelete, "/api/ebooks/42", nil), cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthRoutes(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/health", "/api/health/db", "/api/health/blob", "/api/health/kv"} {
		assert.Equal(t, http.StatusOK, s.get(path).Code, path)
	}

	assert.Equal(t, http.StatusServiceUnavailable, s.get("/api/health/mq").Code)
}

// unavailableCatalog 模拟数据库不可用.
type unavailableCatalog struct{}

func (unavailableCatalog) QueryPage(context.Context, types.EbookFilter, int, int) ([]model.Ebook, int64, error) {
	return nil, 0, errors.New("dial tcp: connection refused")
}

func (unavailableCatalog) GetByID(context.Context, uint) (model.Ebook, error) {
	return model.Ebook{}, errors.New("dial tcp: connection refused")
}

func TestListEbooksUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := testutil.NewKV(t)
	sessions := auth.NewSessions(configs.AuthConfig{
		SessionSecret: "router-test-session-secret",
		CookieName:    configs.DefaultCookieName,
	}, store)

	h := handle.New(handle.Deps{
		Catalog:  service.NewCatalogService(unavailableCatalog{}, nil, testutil.DefaultCatalogConfig()),
		Sessions: sessions,
	})

	e := gin.New()
	e.Use(middleware.RequestIDMiddleware(), middleware.SessionMiddleware(sessions))
	router.Register(e.Group("/api"), h)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ebooks?page=3&pageSize=5", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	var env types.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	assert.Empty(t, env.Items)
	assert.EqualValues(t, 0, env.Total)
	assert.Equal(t, 1, env.Page)
	assert.Equal(t, 5, env.PageSize)
	assert.Equal(t, 1, env.Pages)
	assert.False(t, env.HasPrev)
	assert.False(t, env.HasNext)
	assert.Equal(t, "upstream_error", env.Error)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
