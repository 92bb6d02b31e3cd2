// Package dispatch holds the domain model for a single WhatsApp dispatch:
// the incoming request, the per-step outcome and its invariants.
package dispatch

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusNotSent Status = "not-sent"
)

var (
	// ErrEmptyDestination is returned when the number has no digits.
	ErrEmptyDestination = errors.New("destination phone number is required")
	// ErrEmptyText is returned when the message body is blank.
	ErrEmptyText = errors.New("message text is required")
)

// Request is a transient dispatch request built from one form submission.
type Request struct {
	Destination string
	Text        string

	// ImageURL and ImagePath are empty when no image was uploaded.
	ImageURL  string
	ImagePath string
}

// NewRequest normalizes the destination to its digits and enforces that
// both destination and text are present.
func NewRequest(number, text string) (Request, error) {
	dest := NormalizeNumber(number)
	if dest == "" {
		return Request{}, ErrEmptyDestination
	}
	if strings.TrimSpace(text) == "" {
		return Request{}, ErrEmptyText
	}
	return Request{Destination: dest, Text: text}, nil
}

// WithImage attaches a stored image to the request.
func (r Request) WithImage(url, path string) Request {
	r.ImageURL = url
	r.ImagePath = path
	return r
}

// HasImage reports whether the request carries an image reference.
func (r Request) HasImage() bool {
	return r.ImagePath != ""
}

// NormalizeNumber strips everything but digits, so "+1 (555) 123-4567"
// becomes "15551234567".
func NormalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Step is the outcome of one send step.
type Step struct {
	Content string
	Status  Status
	Result  string
}

// ImageStep is the outcome of the optional image send.
type ImageStep struct {
	URL     string
	Caption string
	Status  Status
	Result  string
}

// Outcome is the immutable record of one dispatch. It is written once to the
// repository and never updated.
type Outcome struct {
	ID          uuid.UUID
	Destination string
	Text        Step
	Image       ImageStep
	CreatedAt   time.Time
}

// NewOutcome starts an outcome for req with every step marked not-sent.
func NewOutcome(req Request, caption string) *Outcome {
	o := &Outcome{
		ID:          uuid.New(),
		Destination: req.Destination,
		Text: Step{
			Content: req.Text,
			Status:  StatusNotSent,
		},
		Image: ImageStep{
			URL:    req.ImageURL,
			Status: StatusNotSent,
		},
		CreatedAt: time.Now(),
	}
	if req.HasImage() {
		o.Image.Caption = caption
	}
	return o
}

// Classify maps a send result to sent or failed.
func Classify(ok bool) Status {
	if ok {
		return StatusSent
	}
	return StatusFailed
}

// Delivered reports whether the text step reached the recipient.
func (o *Outcome) Delivered() bool {
	return o.Text.Status == StatusSent
}
