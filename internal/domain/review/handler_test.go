package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *testEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := setupTestEnv(t)
	r := gin.New()
	NewHandler(env.service, "uploads").RegisterRoutes(r, r)
	return r, env
}

func doJSONRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doUpload(r http.Handler, id int64, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, _ := w.CreatePart(h)
	_, _ = part.Write(data)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reviews/%d/image", id), body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type detailList struct {
	Detail []struct {
		Loc  []string `json:"loc"`
		Msg  string   `json:"msg"`
		Type string   `json:"type"`
	} `json:"detail"`
}

var createBody = map[string]any{
	"author_name":        "ann",
	"author_telegram_id": int64(9007199254740993),
	"media_type":         "movie",
	"media_title":        "Arrival",
	"media_year":         2016,
	"rating":             9,
	"text":               "quiet and smart",
	"contains_spoilers":  true,
}

func createViaAPI(t *testing.T, r http.Handler) ReviewResponse {
	t.Helper()
	rr := doJSONRequest(r, http.MethodPost, "/reviews", createBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[ReviewResponse](t, rr)
}

func TestHandler_Create(t *testing.T) {
	r, _ := setupTestRouter(t)

	rv := createViaAPI(t, r)
	assert.NotZero(t, rv.ID)
	assert.Equal(t, MediaMovie, rv.MediaType)
	assert.True(t, rv.ContainsSpoilers)
	assert.Nil(t, rv.ImageURL)
	require.NotNil(t, rv.AuthorTelegramID)
	assert.Equal(t, int64(9007199254740993), *rv.AuthorTelegramID)
}

func TestHandler_CreateValidation(t *testing.T) {
	r, _ := setupTestRouter(t)

	body := map[string]any{}
	for k, v := range createBody {
		body[k] = v
	}
	body["rating"] = 11
	body["media_type"] = "game"
	delete(body, "text")

	rr := doJSONRequest(r, http.MethodPost, "/reviews", body)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	got := decode[detailList](t, rr)
	fields := map[string]string{}
	for _, d := range got.Detail {
		require.Len(t, d.Loc, 2)
		assert.Equal(t, "body", d.Loc[0])
		fields[d.Loc[1]] = d.Type
	}
	assert.Equal(t, map[string]string{
		"rating":     "less_than_equal",
		"media_type": "enum",
		"text":       "missing",
	}, fields)
}

func TestHandler_CreateMalformedJSON(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost, "/reviews", `{"rating": "ten"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	got := decode[detailList](t, rr)
	require.Len(t, got.Detail, 1)
	assert.Equal(t, []string{"body", "rating"}, got.Detail[0].Loc)

	rr = doJSONRequest(r, http.MethodPost, "/reviews", `{"rating":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandler_GetNotFound(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodGet, "/reviews/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail":"Review not found"}`, rr.Body.String())

	rr = doJSONRequest(r, http.MethodGet, "/reviews/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandler_List(t *testing.T) {
	r, _ := setupTestRouter(t)
	createViaAPI(t, r)
	createViaAPI(t, r)

	rr := doJSONRequest(r, http.MethodGet, "/reviews?media_type=movie&min_rating=5&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]ReviewResponse](t, rr), 1)

	rr = doJSONRequest(r, http.MethodGet, "/reviews?author_name=nobody", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	for _, q := range []string{"limit=0", "limit=101", "offset=-1", "min_rating=11", "media_type=game", "limit=x"} {
		rr = doJSONRequest(r, http.MethodGet, "/reviews?"+q, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, q)
	}
}

func TestHandler_Update(t *testing.T) {
	r, _ := setupTestRouter(t)
	rv := createViaAPI(t, r)
	path := fmt.Sprintf("/reviews/%d", rv.ID)

	rr := doJSONRequest(r, http.MethodPatch, path, `{"rating": 4, "media_year": null, "author_telegram_id": null}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[ReviewResponse](t, rr)
	assert.Equal(t, 4, got.Rating)
	assert.Nil(t, got.MediaYear)
	assert.Nil(t, got.AuthorTelegramID)
	assert.Equal(t, "Arrival", got.MediaTitle)

	rr = doJSONRequest(r, http.MethodPatch, path, `{"rating": null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = doJSONRequest(r, http.MethodPatch, path, `{"rating": 0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = doJSONRequest(r, http.MethodPatch, "/reviews/999", `{"rating": 5}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_UploadAccepted(t *testing.T) {
	r, env := setupTestRouter(t)
	rv := createViaAPI(t, r)

	rr := doUpload(r, rv.ID, "photo.jpg", "image/jpeg", jpegBytes(10))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := decode[ReviewResponse](t, rr)
	require.NotNil(t, got.ImageURL)
	assert.Regexp(t, fmt.Sprintf(`^/uploads/reviews/%d/[0-9a-f]{32}\.jpg$`, rv.ID), *got.ImageURL)

	rel := strings.TrimPrefix(*got.ImageURL, "/uploads/")
	data, err := os.ReadFile(filepath.Join(env.store.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, jpegBytes(10), data)
}

func TestHandler_UploadRejections(t *testing.T) {
	r, env := setupTestRouter(t)
	rv := createViaAPI(t, r)

	cases := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		detail      string
	}{
		{"plain text disguised as jpeg", "fake.jpg", "image/jpeg", []byte("just some text in a file"), "invalid image file format"},
		{"declared non image", "notes.txt", "text/plain", jpegBytes(10), "file must be an image"},
		{"too large", "big.jpg", "image/jpeg", jpegBytes(6 * 1024 * 1024), "file too large, maximum size is 5MB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doUpload(r, rv.ID, tc.filename, tc.contentType, tc.data)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"detail":%q}`, tc.detail), rr.Body.String())
		})
	}

	assert.NoDirExists(t, env.reviewDir(rv.ID))
}

func TestHandler_UploadJustOverCeiling(t *testing.T) {
	r, _ := setupTestRouter(t)
	rv := createViaAPI(t, r)

	rr := doUpload(r, rv.ID, "big.jpg", "image/jpeg", jpegBytes(5*1024*1024+1))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "5MB")
}

func TestHandler_UploadMissingReview(t *testing.T) {
	r, env := setupTestRouter(t)

	rr := doUpload(r, 4242, "photo.jpg", "image/jpeg", jpegBytes(10))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail":"Review not found"}`, rr.Body.String())
	assert.NoDirExists(t, filepath.Join(env.store.Root(), "reviews"))
}

func TestHandler_UploadWithoutFile(t *testing.T) {
	r, _ := setupTestRouter(t)
	rv := createViaAPI(t, r)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.WriteField("other", "x")
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reviews/%d/image", rv.ID), body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"file"`)
}

func TestHandler_DeleteRemovesAssets(t *testing.T) {
	r, env := setupTestRouter(t)
	rv := createViaAPI(t, r)
	require.Equal(t, http.StatusOK, doUpload(r, rv.ID, "a.png", "image/png", []byte("\x89PNG\r\n\x1a\nrest")).Code)
	require.DirExists(t, env.reviewDir(rv.ID))

	rr := doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/reviews/%d", rv.ID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NoDirExists(t, env.reviewDir(rv.ID))

	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/reviews/%d", rv.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
