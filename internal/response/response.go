// Package response provides small helpers for writing JSON API responses
// with a consistent envelope structure.
package response

import (
	"encoding/json"
	"net/http"
	"time"
)

// JSONResponse is the common response envelope for all API endpoints.
//
// Error is a plain message so form clients can show it directly; Stage names
// the pipeline step that failed (upload, session, dispatch, persist, delivery).
type JSONResponse struct {
	Success   bool        `json:"success"`
	Logs      []string    `json:"logs,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Stage     string      `json:"stage,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// RespondJSON writes a successful JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	resp := JSONResponse{
		Success:   true,
		Data:      payload,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	writeJSON(w, status, resp)
}

// RespondLogs writes a successful response carrying the step logs of a request.
func RespondLogs(w http.ResponseWriter, status int, logs []string, payload interface{}) {
	resp := JSONResponse{
		Success:   true,
		Logs:      logs,
		Data:      payload,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	writeJSON(w, status, resp)
}

// RespondError writes an error JSON response with the given status code and message.
func RespondError(w http.ResponseWriter, status int, msg string) {
	RespondStageError(w, status, msg, "", nil)
}

// RespondStageError writes an error response naming the failed stage and
// the logs gathered before the failure.
func RespondStageError(w http.ResponseWriter, status int, msg, stage string, logs []string) {
	resp := JSONResponse{
		Success:   false,
		Logs:      logs,
		Error:     msg,
		Stage:     stage,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	writeJSON(w, status, resp)
}

// writeJSON encodes v as JSON and writes it to the response writer.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
