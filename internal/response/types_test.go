package response

import (
	"encoding/json"
	"testing"
)

func TestGatewaySendResponse_FailedAndReason(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFailed bool
		wantReason string
	}{
		{"success", `{"status":"success","response":{"id":"x"}}`, false, ""},
		{"status error", `{"status":"error","message":"number not on whatsapp"}`, true, "number not on whatsapp"},
		{"error string", `{"error":"blocked"}`, true, "blocked"},
		{"error object", `{"error":{"text":"invalid wid"}}`, true, "invalid wid"},
		{"error true", `{"error":true}`, true, ""},
		{"error false", `{"status":"success","error":false}`, false, ""},
		{"error null", `{"error":null}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r GatewaySendResponse
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if r.Failed() != tt.wantFailed {
				t.Errorf("Failed() = %v, want %v", r.Failed(), tt.wantFailed)
			}
			if tt.wantFailed && r.Reason() != tt.wantReason {
				t.Errorf("Reason() = %q, want %q", r.Reason(), tt.wantReason)
			}
		})
	}
}
