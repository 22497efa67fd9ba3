package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yushengtzou/yushengtzou.github.io/internal/authservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/blogservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
	"github.com/yushengtzou/yushengtzou.github.io/internal/uploadservice"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "Test_1234!"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig(t *testing.T) *Config {
	dir := t.TempDir()

	return &Config{
		Port:              "0",
		Environment:       "development",
		Version:           "test",
		TrustedOrigins:    []string{"http://localhost:3000"},
		SiteBaseURL:       "https://yushengtzou.github.io",
		Author:            blogservice.DefaultAuthor,
		DataFile:          filepath.Join(dir, "data", "blogPosts.json"),
		UploadDir:         filepath.Join(dir, "uploads"),
		StoreDriver:       "file",
		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   15 * time.Minute,
		AdminUsername:     "admin",
		AdminTokenTTL:     time.Hour,
	}
}

// newTestApplication wires the file store, uploader and authenticator without any external service.
// A non-empty password enables admin authentication.
func newTestApplication(t *testing.T, cfg *Config, password string) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(b)
	}

	authenticator, err := authservice.NewAuthenticator(cfg.AdminUsername, hash, cfg.AdminTokenTTL, cache)
	require.NoError(t, err)

	store := blogservice.NewFileStore(cfg.DataFile, logger)

	return &application{
		config:        cfg,
		logger:        logger,
		cache:         cache,
		store:         store,
		postService:   blogservice.NewPostService(store, cache, nil, logger, cfg.Author),
		uploader:      uploadservice.NewUploader(cfg.UploadDir, uploadservice.DefaultMaxFileSize, logger),
		authenticator: authenticator,
	}
}

func readResponse(t *testing.T, res *http.Response, dst any) (int, http.Header) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	if dst != nil {
		err = json.Unmarshal(responseBody, dst)
		if err != nil {
			t.Fatalf("could not decode %q: %v", responseBody, err)
		}
	}

	return res.StatusCode, res.Header
}

func (ts *testServer) do(t *testing.T, req *http.Request, token *string, dst any) (int, http.Header) {
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res, dst)
}

func (ts *testServer) get(t *testing.T, path string, dst any) (int, http.Header) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, req, nil, dst)
}

func (ts *testServer) sendJSON(t *testing.T, method, path string, payload any, token *string, dst any) (int, http.Header) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(jsonPayload))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return ts.do(t, req, token, dst)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token *string, dst any) (int, http.Header) {
	return ts.sendJSON(t, http.MethodPost, path, payload, token, dst)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token *string, dst any) (int, http.Header) {
	return ts.sendJSON(t, http.MethodPut, path, payload, token, dst)
}

func (ts *testServer) delete(t *testing.T, path string, token *string, dst any) (int, http.Header) {
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	return ts.do(t, req, token, dst)
}

type multipartFile struct {
	filename    string
	contentType string
	content     []byte
}

func (ts *testServer) sendMultipart(t *testing.T, method, path string, fields map[string]string, file *multipartFile, token *string, dst any) (int, http.Header) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadservice.FieldImage, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(file.content); err != nil {
			t.Fatal(err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(method, ts.URL+path, &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return ts.do(t, req, token, dst)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
