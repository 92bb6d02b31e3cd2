package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oggyb/wa-dispatch/internal/request"
	"github.com/oggyb/wa-dispatch/internal/response"
	"go.uber.org/zap"
)

// Session statuses reported by the gateway.
const (
	StatusConnected       = "CONNECTED"
	StatusQRCode          = "QRCODE"
	StatusFailed          = "FAILED"
	StatusQRReadFail      = "QRREADFAIL"
	StatusAutoCloseCalled = "AUTOCLOSECALLED"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultSendTimeout  = 30 * time.Second
)

// GatewayClient talks to a WhatsApp web-automation gateway over HTTP.
// The gateway runs the headless browser and keeps session artifacts on disk.
type GatewayClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Client = (*GatewayClient)(nil)

// NewGatewayClient creates a client for the gateway at baseURL. token is
// sent as a bearer token when non-empty.
func NewGatewayClient(baseURL, token string, logger *zap.Logger) *GatewayClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// No client-wide timeout: session start is long-lived and bounded by ctx.
		httpClient: &http.Client{},
		logger:     logger.Named("gateway"),
	}
}

// withTimeout wraps the context with a timeout if it doesn't already have one.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Start opens sessionID on the gateway and polls its status until it is
// connected. Each new login code is published once.
func (c *GatewayClient) Start(ctx context.Context, sessionID string, events *Bus, opts StartOptions) (Handle, error) {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	c.logger.Info("starting session", zap.String("session", sessionID), zap.Bool("headless", opts.Headless))

	st, err := c.startSession(ctx, sessionID, opts)
	if err != nil {
		return nil, err
	}

	var lastStatus, lastCode string
	for {
		status := strings.ToUpper(strings.TrimSpace(st.Status))

		if status != lastStatus {
			events.Publish(Event{Kind: EventStatus, Session: sessionID, Status: status})
			lastStatus = status
		}

		switch status {
		case StatusConnected:
			c.logger.Info("session connected", zap.String("session", sessionID))
			return &gatewayHandle{client: c, session: sessionID}, nil

		case StatusQRCode:
			if st.QRCode != "" && st.QRCode != lastCode {
				events.Publish(Event{
					Kind:    EventLoginCode,
					Session: sessionID,
					Status:  status,
					Code:    st.QRCode,
					URLCode: st.URLCode,
					Attempt: st.Attempts,
				})
				lastCode = st.QRCode
			}

		case StatusFailed, StatusQRReadFail, StatusAutoCloseCalled:
			return nil, fmt.Errorf("session %s ended with status %s", sessionID, status)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for session %s (last status %q): %w", sessionID, status, ctx.Err())
		case <-time.After(poll):
		}

		st, err = c.sessionStatus(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
}

// Health checks whether the gateway is reachable.
func (c *GatewayClient) Health(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	status, _, err := c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("health: non-2xx status: %d", status)
	}
	return nil
}

func (c *GatewayClient) sessionURL(sessionID, action string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.baseURL, url.PathEscape(sessionID), action)
}

func (c *GatewayClient) startSession(ctx context.Context, sessionID string, opts StartOptions) (*response.GatewaySessionResponse, error) {
	payload := request.StartSessionRequest{
		Headless:       opts.Headless,
		DisableWelcome: opts.DisableWelcome,
		SessionDir:     opts.SessionDir,
	}
	return c.readSession(c.do(ctx, http.MethodPost, c.sessionURL(sessionID, "start-session"), payload))
}

func (c *GatewayClient) sessionStatus(ctx context.Context, sessionID string) (*response.GatewaySessionResponse, error) {
	return c.readSession(c.do(ctx, http.MethodGet, c.sessionURL(sessionID, "status-session"), nil))
}

func (c *GatewayClient) readSession(status int, raw []byte, err error) (*response.GatewaySessionResponse, error) {
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("gateway returned non-2xx status %d: %s", status, truncate(raw))
	}

	var st response.GatewaySessionResponse
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to parse session status: %w", err)
	}
	return &st, nil
}

// do sends a JSON request and returns the status code and raw body.
func (c *GatewayClient) do(ctx context.Context, method, endpoint string, in any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal gateway payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return 0, nil, fmt.Errorf("gateway request timeout or canceled: %w", err)
		}
		return 0, nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// gatewayHandle is a connected gateway session.
type gatewayHandle struct {
	client  *GatewayClient
	session string
}

func (h *gatewayHandle) SendText(ctx context.Context, address, text string) (Result, error) {
	return h.send(ctx, "send-message", request.SendTextRequest{
		Phone:   address,
		Message: text,
	})
}

// SendImage reads filePath and sends it inline as a base64 data URI, so the
// gateway does not need access to this service's upload directory.
func (h *gatewayHandle) SendImage(ctx context.Context, address, filePath, caption string) (Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("read image %s: %w", filePath, err)
	}

	mime := http.DetectContentType(data)
	return h.send(ctx, "send-image", request.SendImageRequest{
		Phone:    address,
		Base64:   "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		Filename: filepath.Base(filePath),
		Caption:  caption,
	})
}

func (h *gatewayHandle) Status(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	st, err := h.client.sessionStatus(ctx, h.session)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(st.Status)), nil
}

// send posts one send action. Gateway faults (5xx, unreadable body) are
// errors; a rejection the gateway explains in JSON is an Err result.
func (h *gatewayHandle) send(ctx context.Context, action string, payload any) (Result, error) {
	ctx, cancel := withTimeout(ctx, defaultSendTimeout)
	defer cancel()

	start := time.Now()
	status, raw, err := h.client.do(ctx, http.MethodPost, h.client.sessionURL(h.session, action), payload)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", action, err)
	}

	h.client.logger.Debug("send completed",
		zap.String("action", action),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if status >= 500 {
		return Result{}, fmt.Errorf("%s: gateway returned status %d: %s", action, status, truncate(raw))
	}

	var parsed response.GatewaySendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("%s: failed to parse gateway response (status %d): %w", action, status, err)
	}

	if parsed.Failed() || status < 200 || status >= 300 {
		reason := parsed.Reason()
		if reason == "" {
			reason = fmt.Sprintf("gateway returned status %d", status)
		}
		return Err(reason, raw), nil
	}

	if len(parsed.Response) > 0 {
		return Ok(parsed.Response), nil
	}
	return Ok(raw), nil
}
