package service

import (
	"context"
	"fmt"
	"time"

	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"github.com/oggyb/wa-dispatch/internal/metrics"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
)

const (
	StepText  = "text"
	StepImage = "image"
)

// DefaultSendTimeout bounds each gateway send when none is configured.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher sends the text and then the optional image of one request.
type Dispatcher struct {
	caption     string
	sendTimeout time.Duration
}

func NewDispatcher(caption string, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Dispatcher{caption: caption, sendTimeout: sendTimeout}
}

// Dispatch runs the steps strictly in order. The image is sent only after the
// text send resolved, whatever its status. A send that returns an error
// aborts the remaining steps with a *DispatchError.
func (d *Dispatcher) Dispatch(ctx context.Context, h whatsapp.Handle, req domain.Request) (*domain.Outcome, []string, error) {
	out := domain.NewOutcome(req, d.caption)
	address := whatsapp.ChatID(req.Destination)
	var logs []string

	res, err := d.send(ctx, StepText, func(ctx context.Context) (whatsapp.Result, error) {
		return h.SendText(ctx, address, req.Text)
	})
	if err != nil {
		return nil, logs, &DispatchError{Step: StepText, Partial: out, Err: err}
	}
	out.Text.Status = domain.Classify(res.OK())
	out.Text.Result = res.Raw()
	logs = append(logs, fmt.Sprintf("Message sent to %s: %s", req.Destination, out.Text.Result))

	if !req.HasImage() {
		return out, logs, nil
	}

	res, err = d.send(ctx, StepImage, func(ctx context.Context) (whatsapp.Result, error) {
		return h.SendImage(ctx, address, req.ImagePath, d.caption)
	})
	if err != nil {
		return nil, logs, &DispatchError{Step: StepImage, Partial: out, Err: err}
	}
	out.Image.Status = domain.Classify(res.OK())
	out.Image.Result = res.Raw()
	logs = append(logs, fmt.Sprintf("Image sent to %s: %s", req.Destination, out.Image.Result))

	return out, logs, nil
}

func (d *Dispatcher) send(ctx context.Context, step string, fn func(context.Context) (whatsapp.Result, error)) (whatsapp.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	res, err := fn(ctx)
	metrics.SendDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	return res, err
}
