// Package apierr writes the JSON error body shared by every endpoint:
//
//	{"error": "<message>", "code": "<code>", "details": "<hint>"}
package apierr

import (
	"encoding/json"
	"net/http"
)

const (
	CodeStoreUnavailable = "store_unavailable"
	CodeDecodeFailure    = "decode_failure"
	CodeIOFailure        = "io_failure"
	CodeNotFound         = "not_found"
	CodeInvalidFileName  = "invalid_file_name"
	CodeInvalidRequest   = "invalid_request"
	CodePayloadTooLarge  = "payload_too_large"
	CodeUnauthorized     = "unauthorized"
	CodeRateLimited      = "rate_limited"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// Body is the JSON shape of an error response.
type Body struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func Write(w http.ResponseWriter, status int, code, message, details string) {
	WriteJSON(w, status, Body{Error: message, Code: code, Details: details})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
