package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ledger-utility-service/internal/api"
)

// Client calls the ledger utility service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	verbose    bool
}

func NewClient(baseURL string, timeout time.Duration, verbose bool) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		verbose: verbose,
	}
}

// CloseIdleConnections releases pooled keep-alive connections
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// envelope mirrors api.Envelope with the payload left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// CheckHealth returns the plain-text health message
func (c *Client) CheckHealth(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check-health", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health check returned status %d: %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}

// GenerateKeyPair asks the service for a fresh keypair
func (c *Client) GenerateKeyPair(ctx context.Context) (api.KeyPairResponse, error) {
	var out api.KeyPairResponse
	err := c.post(ctx, "/keypair", nil, &out)
	return out, err
}

// CreateToken builds an InitializeMint instruction
func (c *Client) CreateToken(ctx context.Context, req api.CreateTokenRequest) (api.InstructionResponse, error) {
	var out api.InstructionResponse
	err := c.post(ctx, "/token/create", req, &out)
	return out, err
}

// MintToken builds a MintTo instruction
func (c *Client) MintToken(ctx context.Context, req api.MintTokenRequest) (api.InstructionResponse, error) {
	var out api.InstructionResponse
	err := c.post(ctx, "/token/mint", req, &out)
	return out, err
}

// SignMessage signs a message with a base58 secret key
func (c *Client) SignMessage(ctx context.Context, req api.SignMessageRequest) (api.SignMessageResponse, error) {
	var out api.SignMessageResponse
	err := c.post(ctx, "/message/sign", req, &out)
	return out, err
}

// VerifyMessage checks a base64 signature against a base58 public key
func (c *Client) VerifyMessage(ctx context.Context, req api.VerifyMessageRequest) (api.VerifyMessageResponse, error) {
	var out api.VerifyMessageResponse
	err := c.post(ctx, "/message/verify", req, &out)
	return out, err
}

// post sends payload as JSON and decodes the envelope's data into out.
// Failure envelopes are returned as *api.Error.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		requestBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(requestBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.verbose {
		log.Debug().Str("url", url).Msg("calling ledger utility service")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(responseBody, &env); err != nil {
		return fmt.Errorf("service returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	if !env.Success {
		return &api.Error{Code: env.Code, Message: env.Error}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}

	return nil
}
