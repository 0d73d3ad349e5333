package fheHelper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/canteen-cloud/canteen-node/pkg/encryption"
)

func TestEncryptCapacity(t *testing.T) {
	logger := zaptest.NewLogger(t)

	var gotValue uint64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/encrypt", r.URL.Path)

		var req encryptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotValue = req.Value

		_ = json.NewEncoder(w).Encode(&encryptResponse{Ciphertext: "0xdeadbeef"})
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL}, logger)

	ct, err := client.EncryptCapacity(context.Background(), 4096)
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), gotValue)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, ct.WireFormat())
	assert.Equal(t, 4, ct.Size())

	var _ encryption.Encryptor = client
}

func TestEncryptCapacity_ServerError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "keygen not finished", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL}, logger)

	_, err := client.EncryptCapacity(context.Background(), 100)
	assert.ErrorContains(t, err, "status 503")
}

func TestEncryptCapacity_InvalidHex(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(&encryptResponse{Ciphertext: "not-hex"})
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL}, logger)

	_, err := client.EncryptCapacity(context.Background(), 100)
	assert.ErrorContains(t, err, "invalid ciphertext hex")
}
