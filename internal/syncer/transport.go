package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/procount/internal/domain"
)

// Batch is the request body of one push.
type Batch struct {
	TenantID string                    `json:"tenantId"`
	Changes  []domain.PendingOperation `json:"changes"`
}

// Transport delivers a batch to the remote authority. A nil error means the
// authority acknowledged every operation in the batch.
type Transport interface {
	Push(ctx context.Context, batch Batch) error
}

// ConnectivityProbe reports whether the remote authority is reachable.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// HTTPTransport pushes batches to {BaseURL}/sync and probes {BaseURL}/health.
type HTTPTransport struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewHTTPTransport returns a transport for baseURL with the given request
// timeout. A trailing slash on baseURL is ignored.
func NewHTTPTransport(baseURL, token string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Push implements Transport.
func (t *HTTPTransport) Push(ctx context.Context, batch Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return &SyncError{
			Code:      ErrCodeTransport,
			Message:   "request failed",
			TenantID:  batch.TenantID,
			BatchSize: len(batch.Changes),
			Err:       err,
		}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	code := ErrCodeRejected
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		code = ErrCodeUnauthorized
	}
	return &SyncError{
		Code:      code,
		Message:   strings.TrimSpace(string(msg)),
		TenantID:  batch.TenantID,
		Status:    resp.StatusCode,
		BatchSize: len(batch.Changes),
	}
}

// Online implements ConnectivityProbe with GET {BaseURL}/health.
func (t *HTTPTransport) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
