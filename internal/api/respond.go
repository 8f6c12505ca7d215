package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zeebo/blake3"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
	"github.com/FocuswithJustin/JuniperReader/internal/reader"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error. Message is safe to show to readers.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total int `json:"total,omitempty"`
}

// etag returns a strong validator for body.
func etag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// writeBody writes a successful response with an ETag, answering 304 when
// the client already has it.
func writeBody(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	tag := etag(body)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

func respond(w http.ResponseWriter, r *http.Request, data any, meta *APIMeta) {
	body, err := json.Marshal(APIResponse{Success: true, Data: data, Meta: meta})
	if err != nil {
		logging.ErrorContext(r.Context(), "response_encode_failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "INTERNAL", reader.MsgSearchFailed)
		return
	}
	writeBody(w, r, "application/json", append(body, '\n'))
}

func jsonEncode(buf *bytes.Buffer, v any) error {
	return json.NewEncoder(buf).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	var buf bytes.Buffer
	_ = jsonEncode(&buf, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// classify maps a reader error to an HTTP status and error code.
func classify(err error) (int, string) {
	var ve *cerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, cerrors.ErrEmptyResult):
		return http.StatusNotFound, "NO_RESULTS"
	case errors.Is(err, cerrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, cerrors.ErrUnsupported):
		return http.StatusNotImplemented, "UNSUPPORTED"
	case errors.Is(err, cerrors.ErrTransport):
		return http.StatusBadGateway, "UPSTREAM_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func respondReaderError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "error", err.Error())
	}
	respondError(w, status, code, reader.UserMessage(err))
}
