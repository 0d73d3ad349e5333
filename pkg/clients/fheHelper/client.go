// Package fheHelper provides a client for the FHE helper sidecar.
//
// The helper exposes a small HTTP API that encrypts capacity values under
// the cluster's homomorphic key. The scheduler never sees key material or
// plaintext structure of the ciphertext; it only ferries bytes to the
// contract.
package fheHelper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/canteen-cloud/canteen-node/pkg/encryption"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	// BaseURL of the helper service, e.g. "http://localhost:9300"
	BaseURL string
	// Timeout is the maximum duration for HTTP requests
	Timeout time.Duration
}

type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	config     *Config
}

type encryptRequest struct {
	Value uint64 `json:"value"`
}

type encryptResponse struct {
	Ciphertext string `json:"ciphertext"`
}

func NewClient(config *Config, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		logger:     logger,
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// EncryptCapacity encrypts a capacity value through the helper service.
func (c *Client) EncryptCapacity(ctx context.Context, capacityMb uint64) (*encryption.Ciphertext, error) {
	body, err := json.Marshal(&encryptRequest{Value: capacityMb})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal encrypt request: %w", err)
	}

	url := c.config.BaseURL + "/encrypt"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fhe helper request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fhe helper response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fhe helper returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed encryptResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fhe helper response: %w", err)
	}

	data, err := hexutil.Decode(parsed.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("fhe helper returned invalid ciphertext hex: %w", err)
	}

	c.logger.Sugar().Debugw("Encrypted capacity",
		"capacityMb", capacityMb,
		"ciphertextBytes", len(data),
	)
	return encryption.NewCiphertext(data), nil
}
