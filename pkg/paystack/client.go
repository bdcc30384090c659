package paystack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.paystack.co"

var (
	// ErrMissingSecretKey means PAYSTACK_SECRET_KEY is not configured.
	ErrMissingSecretKey = errors.New("paystack secret key is not configured")
	// ErrMissingWebhookSecret means PAYSTACK_WEBHOOK_SECRET is not configured.
	ErrMissingWebhookSecret = errors.New("paystack webhook secret is not configured")
	// ErrProviderUnavailable wraps network and timeout failures talking to
	// the provider. Callers should treat it as retryable.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)

type Client struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	HTTPClient    *http.Client
}

// NewFromEnv builds a client from process configuration. Missing secrets
// are not fatal here; each call checks for the secret it needs so the
// failure surfaces as an explicit error on the request path.
func NewFromEnv() *Client {
	return &Client{
		SecretKey:     os.Getenv("PAYSTACK_SECRET_KEY"),
		WebhookSecret: os.Getenv("PAYSTACK_WEBHOOK_SECRET"),
		BaseURL:       defaultBaseURL,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// InitializeTransaction starts a checkout for the given amount and returns
// the provider's redirect URL. The reference is generated locally so the
// return page can poll verification before the webhook lands.
func (c *Client) InitializeTransaction(email string, amountKobo int64, metadata Metadata) (*InitializeData, error) {
	if c.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	payload := map[string]interface{}{
		"email":     email,
		"amount":    amountKobo,
		"reference": uuid.New().String(),
		"metadata":  metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	envelope, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var data InitializeData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("could not decode initialize response: %v", err)
	}

	return &data, nil
}

// VerifyTransaction fetches the provider's view of a transaction by
// reference. A non-"success" status in the returned data is not an error;
// the caller decides what it means.
func (c *Client) VerifyTransaction(reference string) (*TransactionData, error) {
	if c.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, errors.New("payment reference is required")
	}

	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	envelope, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var data TransactionData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("could not decode verify response: %v", err)
	}

	return &data, nil
}

func (c *Client) do(req *http.Request) (*apiEnvelope, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("could not decode provider response: %v", err)
	}

	if !envelope.Status {
		return nil, fmt.Errorf("provider rejected the request: %s", envelope.Message)
	}

	return &envelope, nil
}

// ValidateWebhookSignature recomputes the hex HMAC-SHA512 of the raw
// webhook body and compares it against the X-Signature header in constant
// time. The caller must pass the exact bytes it will later parse.
func (c *Client) ValidateWebhookSignature(payload []byte, signature string) (bool, error) {
	if c.WebhookSecret == "" {
		return false, ErrMissingWebhookSecret
	}
	if signature == "" {
		return false, nil
	}

	mac := hmac.New(sha512.New, []byte(c.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
