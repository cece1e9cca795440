package handle

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/internal/service"
)

func newMultipart(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	for k, v := range files {
		fw, err := mw.CreateFormFile(k, k+".bin")
		require.NoError(t, err)

		_, err = io.WriteString(fw, v)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/ebooks", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	return r
}

func TestUpdateInputOnlyCarriesPresentFields(t *testing.T) {
	r := newMultipart(t, map[string]string{"title": "New", "price_cents": ""}, map[string]string{"cover": "png"})

	form, err := parseForm(httptest.NewRecorder(), r, "update", DefaultMaxUploadBytes)
	require.NoError(t, err)
	defer form.Close()

	in, err := form.updateInput("update")
	require.NoError(t, err)

	require.NotNil(t, in.Title)
	assert.Equal(t, "New", *in.Title)
	assert.Nil(t, in.Author)
	assert.Nil(t, in.Description)
	require.NotNil(t, in.PriceCents)
	assert.Zero(t, *in.PriceCents)
	require.NotNil(t, in.Cover)
	assert.EqualValues(t, 3, in.Cover.Size)
	assert.Nil(t, in.PDF)
}

func TestEmptyFileIsIgnored(t *testing.T) {
	r := newMultipart(t, map[string]string{"title": "T", "author": "A"}, map[string]string{"pdf": ""})

	form, err := parseForm(httptest.NewRecorder(), r, "create", DefaultMaxUploadBytes)
	require.NoError(t, err)
	defer form.Close()

	in, err := form.createInput("create")
	require.NoError(t, err)
	assert.Nil(t, in.PDF)
}

func TestPriceMustBeNumeric(t *testing.T) {
	r := newMultipart(t, map[string]string{"price_cents": "12.5"}, nil)

	form, err := parseForm(httptest.NewRecorder(), r, "create", DefaultMaxUploadBytes)
	require.NoError(t, err)
	defer form.Close()

	_, err = form.createInput("create")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))

	var se *service.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"price_cents"}, se.Fields)
}

func TestURLEncodedForm(t *testing.T) {
	body := url.Values{"title": {"Candide"}, "author": {"Voltaire"}}.Encode()
	r := httptest.NewRequest(http.MethodPut, "/api/ebooks/1", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := parseForm(httptest.NewRecorder(), r, "update", DefaultMaxUploadBytes)
	require.NoError(t, err)
	defer form.Close()

	in, err := form.updateInput("update")
	require.NoError(t, err)
	require.NotNil(t, in.Author)
	assert.Equal(t, "Voltaire", *in.Author)
	assert.Nil(t, in.Cover)
}

func TestBodyOverLimit(t *testing.T) {
	r := newMultipart(t, map[string]string{"title": "T"}, map[string]string{"pdf": strings.Repeat("x", 4096)})

	_, err := parseForm(httptest.NewRecorder(), r, "create", 1024)
	require.Error(t, err)

	var se *service.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, service.KindValidation, se.Kind)
	assert.Equal(t, service.CodeTooLarge, se.Code)
}
