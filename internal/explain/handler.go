package explain

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxRequestBody bounds the prompt payload
const maxRequestBody = 1 << 20

// Request is the body of POST /api/explain
type Request struct {
	Prompt string `json:"prompt"`
}

// Response is the successful reply
type Response struct {
	Explanation string `json:"explanation"`
}

// ErrorResponse is the failure reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler serves explanation requests
type Handler struct {
	gen    Generator
	logger *zap.Logger
}

// NewHandler creates an explanation handler
func NewHandler(gen Generator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: gen, logger: logger}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	// a malformed body is treated like a missing prompt
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req)
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Prompt is required"})
		return
	}

	explanation, err := h.gen.Generate(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("error generating explanation", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to generate explanation",
			Details: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, Response{Explanation: explanation})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
