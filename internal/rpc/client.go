package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy bounds retry behavior. It is immutable per client instance.
type RetryPolicy struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	BackoffMax time.Duration
}

// DefaultRetryPolicy mirrors the upstream node's recommended pacing.
var DefaultRetryPolicy = RetryPolicy{
	Timeout:    15 * time.Second,
	MaxRetries: 3,
	Backoff:    300 * time.Millisecond,
	BackoffMax: 2 * time.Second,
}

// Client issues JSON-RPC requests against one ledger-node endpoint with
// bounded retry and typed error classification.
type Client struct {
	endpoint   string
	httpClient *http.Client
	policy     RetryPolicy
	logger     *zap.Logger
	nextID     atomic.Uint64
}

// NewClient builds a Client for the endpoint. A nil logger is replaced
// with a no-op logger.
func NewClient(endpoint string, policy RetryPolicy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultRetryPolicy.Timeout
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.Backoff <= 0 {
		policy.Backoff = DefaultRetryPolicy.Backoff
	}
	if policy.BackoffMax < policy.Backoff {
		policy.BackoffMax = DefaultRetryPolicy.BackoffMax
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		policy:     policy,
		logger:     logger,
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call runs one method with retry. Transport errors retry with backoff;
// protocol errors surface immediately.
func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(c.policy.Backoff, c.policy.BackoffMax, attempt-1)
			c.logger.Debug("retrying rpc call",
				zap.String("method", method),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return &TransportError{Op: method, Err: ctx.Err()}
			case <-timer.C:
			}
		}

		err := c.callOnce(ctx, method, params, result)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) callOnce(ctx context.Context, method string, params, result interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: method, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return &ProtocolError{Method: method, Code: resp.StatusCode, Message: "unexpected http status"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method, Err: err}
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return &ProtocolError{Method: method, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("parse %s result: %w", method, err)
		}
	}
	return nil
}

// backoffDelay computes min(base*2^attempt, limit) plus up to 25% jitter.
func backoffDelay(base, limit time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt && delay < limit; i++ {
		delay *= 2
	}
	if delay > limit {
		delay = limit
	}
	return delay + time.Duration(rand.Int63n(int64(delay)/4+1))
}

// GetLatestLedger returns the node's latest ledger sequence.
func (c *Client) GetLatestLedger(ctx context.Context) (LatestLedger, error) {
	var out LatestLedger
	if err := c.call(ctx, "getLatestLedger", nil, &out); err != nil {
		return LatestLedger{}, err
	}
	return out, nil
}

// GetHealth returns node liveness and the retained ledger range.
func (c *Client) GetHealth(ctx context.Context) (Health, error) {
	var out Health
	if err := c.call(ctx, "getHealth", nil, &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

// GetEvents runs an event query.
func (c *Client) GetEvents(ctx context.Context, req GetEventsRequest) (GetEventsResponse, error) {
	var out GetEventsResponse
	if err := c.call(ctx, "getEvents", req, &out); err != nil {
		return GetEventsResponse{}, err
	}
	return out, nil
}

// GetTransaction looks up a transaction by hash.
func (c *Client) GetTransaction(ctx context.Context, hash string) (TransactionInfo, error) {
	params := struct {
		Hash string `json:"hash"`
	}{Hash: hash}

	var out TransactionInfo
	if err := c.call(ctx, "getTransaction", params, &out); err != nil {
		return TransactionInfo{}, err
	}
	return out, nil
}

// GetLedgerEntries fetches raw ledger entries by base64-encoded keys.
func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (GetLedgerEntriesResponse, error) {
	params := struct {
		Keys []string `json:"keys"`
	}{Keys: keys}

	var out GetLedgerEntriesResponse
	if err := c.call(ctx, "getLedgerEntries", params, &out); err != nil {
		return GetLedgerEntriesResponse{}, err
	}
	return out, nil
}

// SimulateTransaction runs a contract-call simulation. Single attempt, no
// retry: callers use it for simple balance/metadata reads.
func (c *Client) SimulateTransaction(ctx context.Context, txBase64 string) (SimulateResult, error) {
	params := struct {
		Transaction string `json:"transaction"`
	}{Transaction: txBase64}

	var out SimulateResult
	if err := c.callOnce(ctx, "simulateTransaction", params, &out); err != nil {
		return SimulateResult{}, err
	}
	return out, nil
}
