package explain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/explain", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerReturnsExplanation(t *testing.T) {
	var got string
	h := NewHandler(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		got = prompt
		return "Eczema is a common skin condition.", nil
	}), nil)

	rec := post(t, h, `{"prompt":"Explain eczema"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Explain eczema", got)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Eczema is a common skin condition.", resp.Explanation)
}

func TestHandlerRequiresPrompt(t *testing.T) {
	called := false
	h := NewHandler(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		called = true
		return "", nil
	}), nil)

	for _, body := range []string{`{}`, `{"prompt":""}`, `not json`, ``} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Prompt is required"}`, rec.Body.String())
	}
	assert.False(t, called)
}

func TestHandlerProviderFailure(t *testing.T) {
	calls := 0
	h := NewHandler(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	}), nil)

	rec := post(t, h, `{"prompt":"Explain eczema"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate explanation","details":"quota exceeded"}`, rec.Body.String())
	assert.Equal(t, 1, calls, "provider calls are never retried")
}

func TestUnavailable(t *testing.T) {
	rec := post(t, NewHandler(Unavailable(ErrNoAPIKey), nil), `{"prompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "GOOGLE_AI_API_KEY is not set")
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGeminiGenerate(t *testing.T) {
	var path, key string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"A short explanation."}]}}]}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.Model())

	text, err := g.Generate(context.Background(), "Explain eczema")
	require.NoError(t, err)
	assert.Equal(t, "A short explanation.", text)
	assert.Contains(t, path, "gemini-pro:generateContent")
	assert.Equal(t, "test-key", key)
	assert.Contains(t, body, "contents")
}

func TestGeminiGenerateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), Config{APIKey: "bad", Model: "gemini-1.5-flash", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "Explain eczema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}
