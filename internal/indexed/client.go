// Package indexed queries a pre-indexed secondary event source over REST.
// Records come back already normalized, so no wire-value decoding is
// needed on this path.
package indexed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"activityScope/internal/model"
)

// Query selects events from the indexed source.
type Query struct {
	Type       string
	Account    string
	ContractID string
	Limit      int
	Order      string
	Cursor     string
}

// Client is a thin REST client for the indexed source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client for the base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type wireEvent struct {
	ID           string `json:"id"`
	TxHash       string `json:"tx_hash"`
	ContractID   string `json:"contract_id"`
	Ledger       uint32 `json:"ledger"`
	Timestamp    int64  `json:"timestamp"`
	Type         string `json:"type"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
	Amount       string `json:"amount"`
	Direction    string `json:"direction,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	SacSymbol    string `json:"sac_symbol,omitempty"`
	SacName      string `json:"sac_name,omitempty"`
	IsRefund     bool   `json:"is_refund,omitempty"`
}

type eventsResponse struct {
	Events []wireEvent `json:"events"`
	Cursor string      `json:"cursor,omitempty"`
}

// Events fetches normalized events matching the query.
func (c *Client) Events(ctx context.Context, q Query) ([]model.ActivityEvent, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Account != "" {
		params.Set("account", q.Account)
	}
	if q.ContractID != "" {
		params.Set("contract_id", q.ContractID)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}

	endpoint := c.baseURL + "/events"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indexed events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("indexed events: unexpected status %d", resp.StatusCode)
	}

	var payload eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse events response: %w", err)
	}

	events := make([]model.ActivityEvent, 0, len(payload.Events))
	for _, ev := range payload.Events {
		events = append(events, model.ActivityEvent{
			ID:           ev.ID,
			TxHash:       ev.TxHash,
			ContractID:   ev.ContractID,
			Ledger:       ev.Ledger,
			Timestamp:    ev.Timestamp,
			Type:         model.ActivityType(ev.Type),
			From:         ev.From,
			To:           ev.To,
			Amount:       ev.Amount,
			Direction:    model.Direction(ev.Direction),
			Counterparty: ev.Counterparty,
			SacSymbol:    ev.SacSymbol,
			SacName:      ev.SacName,
			IsRefund:     ev.IsRefund,
		})
	}
	return events, nil
}

// Health probes the indexed source's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("indexed health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("indexed health: unexpected status %d", resp.StatusCode)
	}
	return nil
}
