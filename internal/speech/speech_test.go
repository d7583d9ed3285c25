package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path  string
	key   string
	body  synthesizeRequest
	calls int
}

func fakeElevenLabs(t *testing.T, status int, audio string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		c.path = r.URL.Path
		c.key = r.Header.Get("xi-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &c.body)
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			io.WriteString(w, `{"detail":{"status":"quota_exceeded"}}`)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, audio)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	srv, c := fakeElevenLabs(t, http.StatusOK, "ID3-audio")
	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}, nil)

	res := client.Synthesize(context.Background(), "Your results are ready.")
	audio, ok := res.(Audio)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, []byte("ID3-audio"), audio.Data)
	assert.Equal(t, "audio/mpeg", audio.ContentType)

	assert.Equal(t, "/v1/text-to-speech/"+DefaultVoiceID, c.path)
	assert.Equal(t, "k", c.key)
	assert.Equal(t, "Your results are ready.", c.body.Text)
	assert.Equal(t, DefaultModelID, c.body.ModelID)
	assert.Equal(t, DefaultVoiceSettings(), c.body.VoiceSettings)
}

func TestSynthesizeMissingKey(t *testing.T) {
	srv, c := fakeElevenLabs(t, http.StatusOK, "audio")
	client := NewClient(Config{BaseURL: srv.URL}, nil)

	res := client.Synthesize(context.Background(), "hello")
	assert.IsType(t, NoAudioAvailable{}, res)
	assert.Zero(t, c.calls)
}

func TestSynthesizeProviderError(t *testing.T) {
	srv, c := fakeElevenLabs(t, http.StatusTooManyRequests, "")
	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)

	res := client.Synthesize(context.Background(), "hello")
	none, ok := res.(NoAudioAvailable)
	require.True(t, ok)
	assert.Contains(t, none.Reason, "429")
	assert.Equal(t, 1, c.calls)
}

func TestSynthesizeOversizeAudio(t *testing.T) {
	srv, _ := fakeElevenLabs(t, http.StatusOK, "0123456789")

	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxAudioSize: 9}, nil)
	assert.Equal(t, NoAudioAvailable{Reason: "audio too large"}, client.Synthesize(context.Background(), "hello"))

	client = NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxAudioSize: 10}, nil)
	audio, ok := client.Synthesize(context.Background(), "hello").(Audio)
	require.True(t, ok)
	assert.Len(t, audio.Data, 10)
}

func TestSynthesizeTransportError(t *testing.T) {
	srv, _ := fakeElevenLabs(t, http.StatusOK, "audio")
	url := srv.URL
	srv.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: url}, nil)
	assert.IsType(t, NoAudioAvailable{}, client.Synthesize(context.Background(), "hello"))
}

func TestHandler(t *testing.T) {
	srv, _ := fakeElevenLabs(t, http.StatusOK, "ID3-audio")
	h := Handler(NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/speech", strings.NewReader(`{"text":"hello"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ID3-audio", rec.Body.String())
}

func TestHandlerFallback(t *testing.T) {
	h := Handler(NewClient(Config{}, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/speech", strings.NewReader(`{"text":"hello"}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "local", rec.Header().Get(FallbackHeader))
	assert.Zero(t, rec.Body.Len())
}

func TestHandlerRequiresText(t *testing.T) {
	h := Handler(NewClient(Config{}, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/speech", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
