package httpapi

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ADevelopere/storagegate/internal/logging"
	"github.com/ADevelopere/storagegate/internal/server/auth"
	"github.com/ADevelopere/storagegate/internal/server/blobstore"
	"github.com/ADevelopere/storagegate/internal/server/config"
	"github.com/ADevelopere/storagegate/internal/server/models"
	"github.com/ADevelopere/storagegate/internal/server/repositories/files"
	"github.com/ADevelopere/storagegate/internal/server/repositories/tokens"
	"github.com/ADevelopere/storagegate/internal/server/storage"
)

const (
	testJWTSecret  = "test-jwt-secret"
	testCronSecret = "test-cron-secret"
)

type apiFixture struct {
	srv    *httptest.Server
	tokens *tokens.InMemoryRepository
	files  *files.InMemoryRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	tokenRepo := tokens.NewInMemoryRepository()
	fileRepo := files.NewInMemoryRepository()
	blobs, err := blobstore.NewLocal(t.TempDir())
	require.NoError(t, err)

	log := logging.NewJSONLogger()
	svc := storage.NewService(tokenRepo, fileRepo, blobs, log)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.JWTSecret = testJWTSecret
	cfg.CronSecret = testCronSecret

	server := NewServer(cfg, log, svc)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &apiFixture{srv: srv, tokens: tokenRepo, files: fileRepo}
}

func (f *apiFixture) issueToken(t *testing.T, tok *models.SignedURLToken) {
	t.Helper()
	require.NoError(t, f.tokens.Create(context.Background(), tok))
}

func md5b64(data []byte) string {
	sum := md5.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// uploadToken builds a live token for the given payload.
func uploadToken(id, path string, data []byte, protected bool) *models.SignedURLToken {
	return &models.SignedURLToken{
		ID:          id,
		FilePath:    path,
		ContentType: "text/plain",
		FileSize:    int64(len(data)),
		ContentMD5:  md5b64(data),
		IsProtected: protected,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func (f *apiFixture) doUpload(t *testing.T, tokenID string, data []byte, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, f.srv.URL+"/storage/upload/"+tokenID, bytes.NewReader(data))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func defaultUploadHeaders(data []byte) map[string]string {
	return map[string]string{
		"Content-Type": "text/plain",
		"Content-MD5":  md5b64(data),
	}
}

func (f *apiFixture) doDownload(t *testing.T, path string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/storage/files/"+path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("hello world")
	f.issueToken(t, uploadToken("tok-1", "docs/readme.txt", data, false))

	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Path        string `json:"path"`
		ContentType string `json:"contentType"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &result))
	assert.Equal(t, "docs/readme.txt", result.Path)
	assert.Equal(t, "text/plain", result.ContentType)

	dl := f.doDownload(t, "docs/readme.txt", nil)
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "text/plain", dl.Header.Get("Content-Type"))
	assert.Equal(t, fmt.Sprint(len(data)), dl.Header.Get("Content-Length"))
	assert.Equal(t, data, readBody(t, dl))
}

func TestUploadTokenSingleUse(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("once only")
	f.issueToken(t, uploadToken("tok-1", "a/b.txt", data, false))

	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadUnknownToken(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("x")

	resp := f.doUpload(t, "no-such-token", data, defaultUploadHeaders(data))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadExpiredTokenStaysUnused(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("late")
	tok := uploadToken("tok-1", "a.txt", data, false)
	tok.ExpiresAt = time.Now().Add(-time.Minute)
	f.issueToken(t, tok)

	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// an expired presentation does not consume the token
	stored, err := f.tokens.GetByID(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, stored.Used)
}

func TestUploadContentTypeMismatchClaimsToken(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("typed")
	f.issueToken(t, uploadToken("tok-1", "a.txt", data, false))

	headers := defaultUploadHeaders(data)
	headers["Content-Type"] = "application/json"
	resp := f.doUpload(t, "tok-1", data, headers)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// the failed attempt spent the capability
	stored, err := f.tokens.GetByID(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, stored.Used)

	resp = f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadMissingMD5(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("no digest")
	f.issueToken(t, uploadToken("tok-1", "a.txt", data, false))

	resp := f.doUpload(t, "tok-1", data, map[string]string{"Content-Type": "text/plain"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadMD5MismatchLeavesNoArtifact(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("real payload")
	f.issueToken(t, uploadToken("tok-1", "a.txt", data, false))

	headers := map[string]string{
		"Content-Type": "text/plain",
		"Content-MD5":  md5b64([]byte("some other payload")),
	}
	resp := f.doUpload(t, "tok-1", data, headers)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	dl := f.doDownload(t, "a.txt", nil)
	assert.Equal(t, http.StatusNotFound, dl.StatusCode)
	dl.Body.Close()
}

func TestUploadBodyLargerThanDeclared(t *testing.T) {
	f := newAPIFixture(t)
	declared := []byte("small")
	f.issueToken(t, uploadToken("tok-1", "a.txt", declared, false))

	big := bytes.Repeat([]byte("x"), len(declared)*10)
	headers := defaultUploadHeaders(big)
	resp := f.doUpload(t, "tok-1", big, headers)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	resp.Body.Close()
}

func TestDownloadMissingFile(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.doDownload(t, "nope/missing.bin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDownloadProtectedFile(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("secret contents")
	f.issueToken(t, uploadToken("tok-1", "private/doc.txt", data, true))

	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// anonymous request is refused
	dl := f.doDownload(t, "private/doc.txt", nil)
	assert.Equal(t, http.StatusForbidden, dl.StatusCode)
	dl.Body.Close()

	// a garbage bearer token stays anonymous
	dl = f.doDownload(t, "private/doc.txt", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusForbidden, dl.StatusCode)
	dl.Body.Close()

	// a valid caller token opens the file
	jwt, err := auth.GenerateToken("user-1", []byte(testJWTSecret), time.Hour)
	require.NoError(t, err)
	dl = f.doDownload(t, "private/doc.txt", map[string]string{"Authorization": "Bearer " + jwt})
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, data, readBody(t, dl))
}

func TestDownloadRangeConcatenation(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("The quick brown fox jumps over the lazy dog")
	f.issueToken(t, uploadToken("tok-1", "fox.txt", data, false))
	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	mid := len(data) / 2

	first := f.doDownload(t, "fox.txt", map[string]string{
		"Range": fmt.Sprintf("bytes=0-%d", mid-1),
	})
	require.Equal(t, http.StatusPartialContent, first.StatusCode)
	assert.Equal(t, fmt.Sprintf("bytes 0-%d/%d", mid-1, len(data)), first.Header.Get("Content-Range"))
	firstHalf := readBody(t, first)

	second := f.doDownload(t, "fox.txt", map[string]string{
		"Range": fmt.Sprintf("bytes=%d-", mid),
	})
	require.Equal(t, http.StatusPartialContent, second.StatusCode)
	assert.Equal(t, fmt.Sprintf("bytes %d-%d/%d", mid, len(data)-1, len(data)), second.Header.Get("Content-Range"))
	secondHalf := readBody(t, second)

	assert.Equal(t, data, append(firstHalf, secondHalf...))
}

func TestDownloadRangeUnsatisfiable(t *testing.T) {
	f := newAPIFixture(t)
	data := bytes.Repeat([]byte("z"), 1024)
	f.issueToken(t, uploadToken("tok-1", "big.bin", data, false))
	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	dl := f.doDownload(t, "big.bin", map[string]string{"Range": "bytes=5000-10000"})
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, dl.StatusCode)
	assert.Equal(t, "bytes */1024", dl.Header.Get("Content-Range"))
	dl.Body.Close()
}

func TestDownloadMalformedRangeServesFull(t *testing.T) {
	f := newAPIFixture(t)
	data := []byte("whole thing")
	f.issueToken(t, uploadToken("tok-1", "w.txt", data, false))
	resp := f.doUpload(t, "tok-1", data, defaultUploadHeaders(data))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	dl := f.doDownload(t, "w.txt", map[string]string{"Range": "bytes=oops"})
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, data, readBody(t, dl))
}

func TestManualCleanup(t *testing.T) {
	f := newAPIFixture(t)
	expired := uploadToken("old-1", "a.txt", []byte("a"), false)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	f.issueToken(t, expired)
	f.issueToken(t, uploadToken("live-1", "b.txt", []byte("b"), false))

	resp, err := f.srv.Client().Post(f.srv.URL+"/storage/cleanup", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result cleanupResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &result))
	assert.Equal(t, int64(1), result.DeletedCount)

	// the purge is idempotent
	resp, err = f.srv.Client().Post(f.srv.URL+"/storage/cleanup", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(readBody(t, resp), &result))
	assert.Equal(t, int64(0), result.DeletedCount)

	// the live token survived
	_, err = f.tokens.GetByID(context.Background(), "live-1")
	assert.NoError(t, err)
}

func TestCronCleanupAuth(t *testing.T) {
	f := newAPIFixture(t)
	expired := uploadToken("old-1", "a.txt", []byte("a"), false)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	f.issueToken(t, expired)

	post := func(authHeader string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/cron/cleanup-signed-urls", nil)
		require.NoError(t, err)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		resp, err := f.srv.Client().Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := readBody(t, resp)
	assert.True(t, strings.Contains(string(body), "missing authentication token"))

	resp = post("Bearer wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = post("Bearer " + testCronSecret)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result cleanupResponse
	require.NoError(t, json.Unmarshal(readBody(t, resp), &result))
	assert.Equal(t, int64(1), result.DeletedCount)
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	resp, err := f.srv.Client().Get(f.srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(readBody(t, resp)))
}
