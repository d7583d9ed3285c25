package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// FallbackHeader tells clients to speak the text locally
const FallbackHeader = "X-Speech-Fallback"

// Synthesizer is implemented by Client
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) Result
}

// Request is the body of POST /api/speech
type Request struct {
	Text string `json:"text"`
}

// Handler serves synthesized audio, or 204 with FallbackHeader when none is available
func Handler(s Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Text is required"})
			return
		}

		switch res := s.Synthesize(r.Context(), req.Text).(type) {
		case Audio:
			w.Header().Set("Content-Type", res.ContentType)
			w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
			w.WriteHeader(http.StatusOK)
			w.Write(res.Data)
		default:
			w.Header().Set(FallbackHeader, "local")
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
