package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/domain"
)

const MsgNoAuthority = "No notification endpoint configured"

// Dispatcher posts notifications to {BaseURL}/notifications/send.
//
// Sends are fire-and-forget: a failure is reported in the Result and logged,
// never retried.
type Dispatcher struct {
	baseURL string
	token   string
	client  *http.Client
	timeout time.Duration
	log     *logrus.Entry
	wg      sync.WaitGroup
}

type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(d *Dispatcher) { d.log = l.WithField("module", "notify") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// NewDispatcher creates a dispatcher. An empty baseURL makes every send fail
// locally with MsgNoAuthority.
func NewDispatcher(baseURL, token string, timeout time.Duration, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		log:     logrus.StandardLogger().WithField("module", "notify"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send resolves the gateway for company and posts the message.
func (d *Dispatcher) Send(ctx context.Context, ch Channel, company domain.Company, sys domain.SystemIntegrations, to Recipient, msg Message) Result {
	p, res := Build(ch, company, sys, to, msg)
	if res != nil {
		d.log.WithFields(logrus.Fields{"tenant_id": company.ID, "channel": ch}).Warn(res.Message)
		return *res
	}
	return d.Post(ctx, p)
}

// Go is Send on a background goroutine with its own timeout. Wait blocks
// until every Go call has finished.
func (d *Dispatcher) Go(ch Channel, company domain.Company, sys domain.SystemIntegrations, to Recipient, msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		d.Send(ctx, ch, company, sys, to, msg)
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Post sends an already built payload.
func (d *Dispatcher) Post(ctx context.Context, p Payload) Result {
	log := d.log.WithField("channel", p.Type)
	if d.baseURL == "" {
		log.Warn(MsgNoAuthority)
		return Result{Message: MsgNoAuthority}
	}
	if err := Validate(p); err != nil {
		log.WithError(err).Warn("notification rejected locally")
		return Result{Message: err.Error()}
	}

	res, err := d.post(ctx, p)
	if err != nil {
		log.WithError(err).Warn("notification failed")
		return Result{Message: err.Error()}
	}
	log.WithField("success", res.Success).Info("notification sent")
	return res
}

func (d *Dispatcher) post(ctx context.Context, p Payload) (Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/notifications/send", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		if resp.StatusCode >= 300 {
			return Result{}, fmt.Errorf("server error: %s", resp.Status)
		}
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		if res.Message == "" {
			res.Message = "Server Error"
		}
		res.Success = false
	}
	return res, nil
}
