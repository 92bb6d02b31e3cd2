package dispatch

import (
	"errors"
	"testing"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name     string
		number   string
		text     string
		wantDest string
		wantErr  error
	}{
		{"plain digits", "15551234567", "hello", "15551234567", nil},
		{"formatted", "+1 (555) 123-4567", "hello", "15551234567", nil},
		{"no digits", "abc", "hello", "", ErrEmptyDestination},
		{"empty number", "", "hello", "", ErrEmptyDestination},
		{"blank text", "15551234567", "   ", "", ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.number, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if req.Destination != tt.wantDest {
				t.Errorf("destination = %q, want %q", req.Destination, tt.wantDest)
			}
		})
	}
}

func TestNewOutcome(t *testing.T) {
	req, _ := NewRequest("15551234567", "hello")

	o := NewOutcome(req, "cap")
	if o.Text.Status != StatusNotSent || o.Image.Status != StatusNotSent {
		t.Fatalf("new outcome steps should start not-sent: %+v", o)
	}
	if o.Image.Caption != "" {
		t.Errorf("caption should be empty without an image, got %q", o.Image.Caption)
	}

	o = NewOutcome(req.WithImage("/public/uploads/a.png", "/tmp/a.png"), "cap")
	if o.Image.Caption != "cap" || o.Image.URL != "/public/uploads/a.png" {
		t.Errorf("image step = %+v", o.Image)
	}
}

func TestClassify(t *testing.T) {
	if Classify(true) != StatusSent {
		t.Errorf("ok result should classify as sent")
	}
	if Classify(false) != StatusFailed {
		t.Errorf("error result should classify as failed")
	}
}
