package errors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
)

// APIError is the body of every failed request. RequestID echoes the id the
// request logger recorded, so a client report can be matched to a log line.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
	RequestID     string `json:"request_id,omitempty"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	Write(w, status, APIError{
		Code:      code,
		Message:   message,
		RequestID: requestID(r),
	})
}

// WriteRateLimited answers 429 and mirrors retryAfterSec in the Retry-After
// header.
func WriteRateLimited(w http.ResponseWriter, r *http.Request, code, message string, retryAfterSec int64) {
	if retryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSec, 10))
	}
	Write(w, http.StatusTooManyRequests, RateLimitError{
		Code:          code,
		Message:       message,
		RetryAfterSec: retryAfterSec,
		RequestID:     requestID(r),
	})
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	return middleware.GetReqID(r.Context())
}
