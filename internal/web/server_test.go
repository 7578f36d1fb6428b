package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/core"
	"github.com/JonMunkholm/crmport/internal/store/memory"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   100 * time.Millisecond,
			Timeout:       10 * time.Second,
			HistorySize:   10,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	s := NewServer(core.NewService(store, cfg.Import), cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, store
}

// multipartBody builds a form with one "file" field.
func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postFile(t *testing.T, s *Server, path, filename, content string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := get(s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "OK", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestImport_Success(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	rec := postFile(t, s, "/api/import/csv", "accounts.csv", "Company Name,Industry\nAcme,Tools\nBeta,Retail\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, msgImportOK, body["message"])
	assert.NotContains(t, body, "errors")
	assert.Equal(t, []any{}, body["warnings"])
	assert.Equal(t, float64(2), body["imported"].(map[string]any)["accounts"])

	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestImport_ValidationFailure(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	rec := postFile(t, s, "/api/import/csv", "opportunities.csv",
		"Company Name,Opportunity Name,Stage,Probability\nAcme,Deal,Proposal,150\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[importResponse](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, msgImportFailed, body.Message)
	assert.Equal(t, []string{"opportunities.csv: Row 2: Probability must be between 0 and 100"}, body.Errors)
	assert.Equal(t, 0, body.Imported[core.EntityOpportunities])

	accounts, _ := store.ListAccounts(context.Background())
	assert.Empty(t, accounts)
}

func TestImport_HTMXSummary(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := postFile(t, s, "/api/import/csv", "accounts.csv", "Company Name\nAcme\n", "HX-Request", "true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "import-summary success")
	assert.Contains(t, rec.Body.String(), "<span>Accounts</span> <strong>1</strong>")
}

func TestImport_RequestErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxFileSize = 512
	s, _ := newTestServer(t, cfg)

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import/csv", strings.NewReader("plain"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE004", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("wrong field name", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("upload", "accounts.csv")
		_, _ = fw.Write([]byte("Company Name\nAcme\n"))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/import/csv", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE004", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		rec := postFile(t, s, "/api/import/csv", "accounts.xlsx", "Company Name\nAcme\n")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "FILE006", body.Code)
		assert.NotEmpty(t, body.Action)
	})

	t.Run("too large", func(t *testing.T) {
		rec := postFile(t, s, "/api/import/csv", "accounts.csv", "Company Name\n"+strings.Repeat("Acme\n", 200))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE001", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("htmx error fragment", func(t *testing.T) {
		rec := postFile(t, s, "/api/import/csv", "notes.txt", "x", "HX-Request", "true")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `class="alert alert-error"`)
		assert.Contains(t, rec.Body.String(), "FILE006")
	})
}

func TestValidate(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	archive, err := tabular.WriteArchive([]tabular.Member{
		{Name: "accounts.csv", Content: []byte("Company Name\nAcme\n")},
		{Name: "notes.csv", Content: []byte("Foo,Bar\n1,2\n")},
	})
	require.NoError(t, err)

	rec := postFile(t, s, "/api/import/validate", "bundle.zip", string(archive))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[validateResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, msgValidated, body.Message)
	require.Len(t, body.Results, 2)
	assert.True(t, body.Results[0].Valid)
	assert.Equal(t, core.DataTypeUnknown, body.Results[1].DataType)

	accounts, _ := store.ListAccounts(context.Background())
	assert.Empty(t, accounts, "validation never writes")
}

func TestValidate_CorruptArchive(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := postFile(t, s, "/api/import/validate", "bundle.zip", "definitely not a zip")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE007", decode[ErrorResponse](t, rec).Code)
}

func TestValidate_HTMXTable(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := postFile(t, s, "/api/import/validate", "accounts.csv", "Company Name\n\"\"\n", "HX-Request", "true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Invalid</td>")
	assert.Contains(t, rec.Body.String(), "Company Name is required")
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := postFile(t, s, "/api/import/csv", "accounts.csv", "Company Name\nAcme\n")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(s, "/api/export/csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="CRM_Data_Export_`)
	assert.Equal(t, rec.Header().Get("Content-Length"), strconv.Itoa(rec.Body.Len()))

	members, err := tabular.ReadArchive(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, members, 4)
	assert.Contains(t, string(members[0].Content), "Acme")
}

func TestExportSample(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := get(s, "/api/export/sample")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="CRM_Import_Template.zip"`, rec.Header().Get("Content-Disposition"))

	members, err := tabular.ReadArchive(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, members, 4)
}

func TestImportHistory(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	postFile(t, s, "/api/import/csv", "first.csv", "Company Name\nAcme\n")
	postFile(t, s, "/api/import/csv", "second.csv", "Company Name\nBeta\n")

	rec := get(s, "/api/import/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs    []core.ImportRun   `json:"runs"`
		Limiter core.LimiterStatus `json:"limiter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "second.csv", body.Runs[0].FileName)
	assert.Equal(t, 2, body.Limiter.MaxConcurrent)
	assert.Equal(t, 0, body.Limiter.Active)
}

func TestImportRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 1}
	s, _ := newTestServer(t, cfg)

	rec := postFile(t, s, "/api/import/validate", "accounts.csv", "Company Name\nAcme\n")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postFile(t, s, "/api/import/validate", "accounts.csv", "Company Name\nAcme\n")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)

	// Export routes keep the general budget.
	assert.Equal(t, http.StatusOK, get(s, "/api/export/sample").Code)
}

func TestRateLimiterWindow(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rl := s.newRateLimiter(2, time.Minute)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"), "budgets are per IP")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.allow("1.1.1.1"), "window reset")
}
