package response

import (
	"encoding/json"
	"strings"
	"time"

	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
)

type HealthPayload struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Success   bool          `json:"success"`
	Data      HealthPayload `json:"data"`
	Timestamp string        `json:"timestamp"`
}

// SessionPayload describes the WhatsApp session as seen by this service.
type SessionPayload struct {
	Session        string `json:"session"`
	Ready          bool   `json:"ready"`
	Status         string `json:"status,omitempty"`
	LoginCode      string `json:"loginCode,omitempty"`
	MonitorRunning bool   `json:"monitorRunning"`
}

type SessionResponse struct {
	Success   bool           `json:"success"`
	Data      SessionPayload `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type MonitorControlPayload struct {
	Message string `json:"message"`
}

type MonitorControlResponse struct {
	Success   bool                  `json:"success"`
	Data      MonitorControlPayload `json:"data"`
	Timestamp string                `json:"timestamp"`
}

type StepDTO struct {
	Content string `json:"content"`
	Status  string `json:"status"`
	Result  string `json:"result,omitempty"`
}

type ImageStepDTO struct {
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
	Status  string `json:"status"`
	Result  string `json:"result,omitempty"`
}

// OutcomeDTO is the public-facing representation of a dispatch outcome.
type OutcomeDTO struct {
	ID           string       `json:"id"`
	PhoneNumber  string       `json:"phoneNumber"`
	TextMessage  StepDTO      `json:"textMessage"`
	ImageMessage ImageStepDTO `json:"imageMessage"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SendResponse documents the POST /send success body.
type SendResponse struct {
	Success   bool       `json:"success"`
	Logs      []string   `json:"logs"`
	Data      OutcomeDTO `json:"data"`
	Timestamp string     `json:"timestamp"`
}

// ErrorResponse documents every error body.
type ErrorResponse struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error"`
	Stage     string   `json:"stage,omitempty"`
	Logs      []string `json:"logs,omitempty"`
	Timestamp string   `json:"timestamp"`
}

type DispatchesPayload struct {
	Items []OutcomeDTO `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type DispatchesResponse struct {
	Success   bool              `json:"success"`
	Data      DispatchesPayload `json:"data"`
	Timestamp string            `json:"timestamp"`
}

// FromDomainOutcome converts a domain outcome into its DTO.
func FromDomainOutcome(o *domain.Outcome) OutcomeDTO {
	return OutcomeDTO{
		ID:          o.ID.String(),
		PhoneNumber: o.Destination,
		TextMessage: StepDTO{
			Content: o.Text.Content,
			Status:  string(o.Text.Status),
			Result:  o.Text.Result,
		},
		ImageMessage: ImageStepDTO{
			URL:     o.Image.URL,
			Caption: o.Image.Caption,
			Status:  string(o.Image.Status),
			Result:  o.Image.Result,
		},
		CreatedAt: o.CreatedAt,
	}
}

// FromDomainOutcomes converts domain outcomes into DTOs.
func FromDomainOutcomes(items []*domain.Outcome) []OutcomeDTO {
	out := make([]OutcomeDTO, len(items))
	for i, o := range items {
		out[i] = FromDomainOutcome(o)
	}
	return out
}

// GatewaySessionResponse is the gateway's session status body.
type GatewaySessionResponse struct {
	Status   string `json:"status"`
	QRCode   string `json:"qrcode,omitempty"`
	URLCode  string `json:"urlcode,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// GatewaySendResponse is the gateway's reply to a send action.
type GatewaySendResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Failed reports whether the body carries an error indicator.
func (r GatewaySendResponse) Failed() bool {
	if strings.EqualFold(r.Status, "error") {
		return true
	}
	switch strings.TrimSpace(string(r.Error)) {
	case "", "null", "false", `""`:
		return false
	default:
		return true
	}
}

// Reason extracts a human-readable rejection reason.
func (r GatewaySendResponse) Reason() string {
	if r.Message != "" {
		return r.Message
	}

	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(r.Error, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Text != "" {
			return obj.Text
		}
	}

	raw := strings.TrimSpace(string(r.Error))
	if raw == "true" {
		return ""
	}
	return raw
}
