// Package gateway implements the outbound client for the KHQR-style
// push-payment provider. The provider issues a QR payload plus an opaque md5
// confirmation key per bill, and exposes a status endpoint keyed by that md5.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"retail-pos/internal/core"
)

// Client talks to the payment gateway over HTTP. Both calls are bounded by
// the client timeout; a checkout holding a database transaction never waits
// longer than that on the gateway.
type Client struct {
	baseURL    string
	merchantID string
	token      string
	httpClient *http.Client
}

func New(baseURL, merchantID, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		merchantID: merchantID,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateQRRequest struct {
	MerchantID string `json:"merchant_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	BillNumber string `json:"bill_number"`
}

type generateQRResponse struct {
	QRString string `json:"qr_string"`
	MD5      string `json:"md5"`
}

// GenerateQR requests a payment QR for the given amount, tagged with the
// sale's invoice number. The returned confirmation key is the gateway's md5
// handle for later status lookups.
func (c *Client) GenerateQR(ctx context.Context, amount decimal.Decimal, billNumber string) (*core.QRArtifact, error) {
	var resp generateQRResponse
	err := c.post(ctx, "/v1/generate_qr", generateQRRequest{
		MerchantID: c.merchantID,
		Amount:     amount.StringFixed(2),
		Currency:   "USD",
		BillNumber: billNumber,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.QRString == "" || resp.MD5 == "" {
		return nil, fmt.Errorf("gateway returned empty QR artifact: %w", core.ErrGatewayUnavailable)
	}
	return &core.QRArtifact{Payload: resp.QRString, ConfirmationKey: resp.MD5}, nil
}

type checkConfirmationRequest struct {
	MD5 string `json:"md5"`
}

type checkConfirmationResponse struct {
	ResponseCode int    `json:"responseCode"` // 0 = found/acknowledged
	Hash         string `json:"hash"`
	ExternalRef  string `json:"externalRef"`
}

// CheckConfirmation asks the gateway whether the payment behind the given
// confirmation key has been acknowledged.
func (c *Client) CheckConfirmation(ctx context.Context, confirmationKey string) (*core.ConfirmationStatus, error) {
	var resp checkConfirmationResponse
	err := c.post(ctx, "/v1/check_transaction_by_md5", checkConfirmationRequest{MD5: confirmationKey}, &resp)
	if err != nil {
		return nil, err
	}
	return &core.ConfirmationStatus{
		Acknowledged: resp.ResponseCode == 0,
		ExternalRef:  resp.ExternalRef,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call %s failed: %v: %w", path, err, core.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway call %s returned status %d: %w", path, resp.StatusCode, core.ErrGatewayUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response from %s: %v: %w", path, err, core.ErrGatewayUnavailable)
	}
	return nil
}
