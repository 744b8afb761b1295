// Package mpesa is the client for the Daraja mobile-money gateway.
// It owns the OAuth token lifecycle, request signing, phone number
// normalization, and the gateway's field length limits.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	// requestTimeout bounds every gateway call. A timeout is a hard
	// failure for that call; there is no retry built into the client.
	requestTimeout = 30 * time.Second
)

// Gateway field length limits. Over-long values are truncated, not rejected.
const (
	maxAccountReference = 12
	maxTransactionDesc  = 20
	maxRemarks          = 100
	maxOccasion         = 100
)

// Config holds gateway credentials and environment selection.
type Config struct {
	ConsumerKey       string
	ConsumerSecret    string
	Passkey           string
	Shortcode         string
	InitiatorName     string
	InitiatorPassword string
	Sandbox           bool
	CallbackBaseURL   string

	// BaseURL overrides the host selected by Sandbox. Tests point it
	// at a local server.
	BaseURL string
	// HTTPClient overrides the default 30s-timeout client.
	HTTPClient *http.Client
	// Now overrides the clock used for timestamps and token expiry.
	Now func() time.Time
}

// Client issues signed requests against the mobile-money gateway.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	now        func() time.Time
}

// NewClient creates a gateway client. The token source is owned by the
// client and lives as long as it does.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Sandbox {
			baseURL = sandboxBaseURL
		} else {
			baseURL = productionBaseURL
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     newCachedTokenSource(httpClient, baseURL, cfg.ConsumerKey, cfg.ConsumerSecret, now),
		now:        now,
	}
}

// WithTokenSource swaps the token source; tests substitute a fake.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	c.tokens = ts
	return c
}

// generatePassword derives the per-request signing password:
// base64(shortcode + passkey + timestamp), timestamp YYYYMMDDHHMMSS.
// Recomputed fresh for every signed call.
func (c *Client) generatePassword() (password, timestamp string) {
	timestamp = c.now().Format("20060102150405")
	password = base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))
	return password, timestamp
}

// STKPush initiates a push payment: the gateway prompts the payer's
// device to authorize the charge. The eventual outcome arrives on the
// callback URL.
func (c *Client) STKPush(ctx context.Context, phone string, amount float64, accountReference, transactionDesc, callbackURL string) (*STKPushResponse, error) {
	password, timestamp := c.generatePassword()
	phone = NormalizePhone(phone)

	if callbackURL == "" {
		callbackURL = c.cfg.CallbackBaseURL + "/api/mpesa/callback"
	}

	payload := map[string]interface{}{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            int(amount),
		"PartyA":            phone,
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       callbackURL,
		"AccountReference":  truncate(accountReference, maxAccountReference),
		"TransactionDesc":   truncate(transactionDesc, maxTransactionDesc),
	}

	var resp STKPushResponse
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QuerySTKStatus asks the gateway for the current state of a push request.
func (c *Client) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	password, timestamp := c.generatePassword()

	payload := map[string]interface{}{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	}

	var resp STKQueryResponse
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// B2CPayment sends an outbound disbursement to a customer wallet.
func (c *Client) B2CPayment(ctx context.Context, phone string, amount float64, remarks, occasion string) (*B2CResponse, error) {
	phone = NormalizePhone(phone)

	payload := map[string]interface{}{
		"InitiatorName":      c.cfg.InitiatorName,
		"SecurityCredential": c.securityCredential(),
		"CommandID":          "BusinessPayment",
		"Amount":             int(amount),
		"PartyA":             c.cfg.Shortcode,
		"PartyB":             phone,
		"Remarks":            truncate(remarks, maxRemarks),
		"QueueTimeOutURL":    c.cfg.CallbackBaseURL + "/api/mpesa/b2c/timeout",
		"ResultURL":          c.cfg.CallbackBaseURL + "/api/mpesa/b2c/result",
		"Occasion":           truncate(occasion, maxOccasion),
	}

	var resp B2CResponse
	if err := c.post(ctx, "/mpesa/b2c/v1/paymentrequest", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterC2BURLs registers the confirmation and validation URLs for
// customer-initiated payments.
func (c *Client) RegisterC2BURLs(ctx context.Context, confirmationURL, validationURL string) (*C2BRegisterResponse, error) {
	payload := map[string]interface{}{
		"ShortCode":       c.cfg.Shortcode,
		"ResponseType":    "Completed",
		"ConfirmationURL": confirmationURL,
		"ValidationURL":   validationURL,
	}

	var resp C2BRegisterResponse
	if err := c.post(ctx, "/mpesa/c2b/v1/registerurl", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// securityCredential returns the B2C initiator credential. Sandbox takes
// the plain initiator password; production requires RSA encryption with
// the gateway public key, which is out of scope here.
func (c *Client) securityCredential() string {
	return c.cfg.InitiatorPassword
}

// post issues an authenticated JSON request. Any transport error or
// non-2xx status is fatal for the call and propagates to the caller,
// which is responsible for persisting failure state.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrGatewayRequest, resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrGatewayRequest, err)
	}
	return nil
}
