package momo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tikiti/pkg/cache"
)

// API families exposed by the MoMo platform. Collection receives payments,
// disbursement sends them (refunds).
const (
	APICollection   = "collection"
	APIDisbursement = "disbursement"
)

// Environments accepted by the X-Target-Environment header.
var Environments = []string{
	"sandbox",
	"mtnuganda",
	"mtnghana",
	"mtnivorycoast",
	"mtnzambia",
	"mtncameroon",
	"mtnbenin",
	"mtncongo",
	"mtnswaziland",
	"mtnguineaconakry",
	"mtnsouthafrica",
	"mtnliberia",
}

// Credentials is the per-merchant MoMo configuration. The disbursement key is
// optional; without it refunds are not offered.
type Credentials struct {
	BaseURL         string
	Environment     string
	APIUserID       string
	APISecret       string
	CollectionKey   string
	DisbursementKey string
}

func (c Credentials) subscriptionKey(api string) string {
	if api == APIDisbursement {
		return c.DisbursementKey
	}
	return c.CollectionKey
}

// RefundSupported reports whether the disbursement API family is configured.
func (c Credentials) RefundSupported() bool {
	return c.DisbursementKey != ""
}

// Client talks to the MoMo REST API. Bearer tokens are kept in the injected
// cache store, keyed by a hash of the credentials that produced them.
type Client struct {
	creds  Credentials
	tokens cache.Store
	client *http.Client
}

func NewClient(creds Credentials, tokens cache.Store) *Client {
	return &Client{
		creds:  creds,
		tokens: tokens,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Credentials() Credentials {
	return c.creds
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenSafetyMargin is subtracted from the provider TTL so cached tokens
// vanish before they actually expire.
const tokenSafetyMargin = 120 * time.Second

// Token returns a bearer token for the given API family. A cached token is
// returned as-is; its entry was written with a shortened TTL, so anything
// still in the cache is valid. On a miss the token endpoint is called with
// basic auth and the raw response cached for expires_in minus the margin.
func (c *Client) Token(ctx context.Context, api string) (string, error) {
	subKey := c.creds.subscriptionKey(api)
	sum := sha256.Sum256([]byte(subKey + c.creds.APIUserID + c.creds.APISecret + api))
	cacheKey := "momo_token_" + hex.EncodeToString(sum[:])

	if raw, ok := c.tokens.Get(cacheKey); ok {
		var tok tokenResponse
		if err := json.Unmarshal(raw, &tok); err == nil && tok.AccessToken != "" {
			return tok.AccessToken, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/"+api+"/token/"), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.creds.APIUserID, c.creds.APISecret)
	req.Header.Set("Ocp-Apim-Subscription-Key", subKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("momo token: %d %s", resp.StatusCode, string(raw))
	}
	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", err
	}
	c.tokens.Set(cacheKey, raw, time.Duration(tok.ExpiresIn)*time.Second-tokenSafetyMargin)
	return tok.AccessToken, nil
}

// Party identifies the paying customer.
type Party struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

// PayRequest is the body for /collection/v1_0/requesttopay.
type PayRequest struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payer        Party  `json:"payer"`
	PayerMessage string `json:"payerMessage"`
	PayeeNote    string `json:"payeeNote"`
}

// RefundRequest is the body for /disbursement/v2_0/refund.
type RefundRequest struct {
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	ExternalID          string `json:"externalId"`
	ReferenceIDToRefund string `json:"referenceIdToRefund"`
	PayerMessage        string `json:"payerMessage"`
	PayeeNote           string `json:"payeeNote"`
}

// RequestToPay submits a charge under the given reference id. The reference
// acts as the idempotency key; the provider resolves the charge
// asynchronously and reports via callback or polling.
func (c *Client) RequestToPay(ctx context.Context, reference, callbackURL string, body PayRequest) error {
	return c.post(ctx, APICollection, "/collection/v1_0/requesttopay", reference, callbackURL, body)
}

// Refund submits a refund under the given reference id via the disbursement
// API family.
func (c *Client) Refund(ctx context.Context, reference, callbackURL string, body RefundRequest) error {
	return c.post(ctx, APIDisbursement, "/disbursement/v2_0/refund", reference, callbackURL, body)
}

// PaymentStatus fetches the current charge state for a reference. The raw
// payload is returned so callers can merge it into the stored attempt info.
func (c *Client) PaymentStatus(ctx context.Context, reference string) (map[string]interface{}, error) {
	return c.status(ctx, APICollection, "/collection/v1_0/requesttopay/"+reference)
}

// RefundStatus fetches the current refund state for a reference.
func (c *Client) RefundStatus(ctx context.Context, reference string) (map[string]interface{}, error) {
	return c.status(ctx, APIDisbursement, "/disbursement/v1_0/refund/"+reference)
}

func (c *Client) post(ctx context.Context, api, path, reference, callbackURL string, body interface{}) error {
	token, err := c.Token(ctx, api)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Reference-Id", reference)
	req.Header.Set("X-Target-Environment", c.creds.Environment)
	if callbackURL != "" {
		req.Header.Set("X-Callback-Url", callbackURL)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.creds.subscriptionKey(api))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("momo %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) status(ctx context.Context, api, path string) (map[string]interface{}, error) {
	token, err := c.Token(ctx, api)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Target-Environment", c.creds.Environment)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.creds.subscriptionKey(api))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("momo %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	var out map[string]interface{}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.creds.BaseURL, "/") + path
}
