package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the card processor over its REST API. Charges are sent
// with an idempotency key so a retried request never double-bills.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type ChargeRequest struct {
	UserID         int64
	AmountCents    int64
	Currency       string
	Description    string
	IdempotencyKey string
}

type ChargeResult struct {
	ProviderRef string
	Declined    bool
	Reason      string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type chargePayload struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	CustomerRef string `json:"customer_ref"`
}

type chargeResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if c.httpClient == nil {
		return ChargeResult{}, fmt.Errorf("http client is nil")
	}

	body, err := json.Marshal(chargePayload{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		CustomerRef: fmt.Sprintf("user-%d", req.UserID),
	})
	if err != nil {
		return ChargeResult{}, fmt.Errorf("marshal charge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return ChargeResult{}, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ChargeResult{}, fmt.Errorf("read charge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ChargeResult{}, fmt.Errorf("charge failed: status %d body %s", resp.StatusCode, string(raw))
	}

	var parsed chargeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ChargeResult{}, fmt.Errorf("decode charge response: %w", err)
	}

	switch parsed.Status {
	case "succeeded":
		return ChargeResult{ProviderRef: parsed.ID}, nil
	case "declined":
		return ChargeResult{ProviderRef: parsed.ID, Declined: true, Reason: parsed.Message}, nil
	default:
		return ChargeResult{}, fmt.Errorf("unexpected charge status %q", parsed.Status)
	}
}
