// Package whatsapp is the contract between this service and the WhatsApp
// web-automation gateway that owns the browser session, plus an HTTP
// implementation of that contract.
package whatsapp

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// UserSuffix is the addressing suffix the web client uses for one-to-one chats.
const UserSuffix = "@c.us"

// ChatID turns a normalized phone number into a routing address.
// Addresses that already carry a server part (a group "...@g.us" or a full
// "...@c.us" id) are returned unchanged; form input never does, since the
// destination is reduced to digits first, but other callers of the client
// may pass chat ids directly.
func ChatID(number string) string {
	if strings.Contains(number, "@") {
		return number
	}
	return number + UserSuffix
}

// StartOptions are passed to the gateway when a session is started.
type StartOptions struct {
	Headless       bool
	DisableWelcome bool

	// SessionDir is where the gateway keeps session artifacts, keyed by
	// session id, so a restart can skip the login code.
	SessionDir string

	// PollInterval is how often session status is polled while starting.
	PollInterval time.Duration
}

// Client starts sessions against the messaging web client.
type Client interface {
	// Start begins the start-up sequence for sessionID and blocks until the
	// session is usable, ctx ends, or the gateway reports a terminal failure.
	// Login codes and status changes are published on events.
	Start(ctx context.Context, sessionID string, events *Bus, opts StartOptions) (Handle, error)
}

// Handle is a live, authenticated session.
//
// A returned error means the call itself failed (transport, timeout, gateway
// fault). A send the gateway rejected is reported through Result instead.
type Handle interface {
	SendText(ctx context.Context, address, text string) (Result, error)
	SendImage(ctx context.Context, address, filePath, caption string) (Result, error)
	Status(ctx context.Context) (string, error)
}

// Result is either Ok(payload) or Err(reason).
type Result struct {
	payload json.RawMessage
	reason  string
	failed  bool
}

// Ok wraps a successful gateway payload.
func Ok(payload json.RawMessage) Result {
	return Result{payload: payload}
}

// Err wraps a rejected send. payload may be nil.
func Err(reason string, payload json.RawMessage) Result {
	if reason == "" {
		reason = "unknown error"
	}
	return Result{payload: payload, reason: reason, failed: true}
}

func (r Result) OK() bool                  { return !r.failed }
func (r Result) Reason() string            { return r.reason }
func (r Result) Payload() json.RawMessage { return r.payload }

// Raw renders the result as JSON for logs and records.
func (r Result) Raw() string {
	if !r.failed {
		if len(r.payload) == 0 {
			return "null"
		}
		return string(r.payload)
	}

	out := struct {
		Error   string          `json:"error"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}{Error: r.reason}
	if json.Valid(r.payload) {
		out.Payload = r.payload
	}

	b, err := json.Marshal(out)
	if err != nil {
		return `{"error":"unencodable result"}`
	}
	return string(b)
}
