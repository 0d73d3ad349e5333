package ethereum

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

type EthereumClientConfig struct {
	BaseUrl string
}

// EthereumClient wraps a lazily dialed JSON-RPC connection to the ledger
// provider. The same underlying connection backs both the typed contract
// caller and the raw RPC surface needed for provider-custodied accounts.
type EthereumClient struct {
	config *EthereumClientConfig
	logger *zap.Logger

	mu        sync.Mutex
	rpcClient *rpc.Client
}

func NewEthereumClient(config *EthereumClientConfig, logger *zap.Logger) *EthereumClient {
	return &EthereumClient{
		config: config,
		logger: logger,
	}
}

func (ec *EthereumClient) dial(ctx context.Context) (*rpc.Client, error) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.rpcClient != nil {
		return ec.rpcClient, nil
	}

	client, err := rpc.DialContext(ctx, ec.config.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial provider at %s: %w", ec.config.BaseUrl, err)
	}
	ec.logger.Sugar().Infow("Connected to ledger provider", "url", ec.config.BaseUrl)

	ec.rpcClient = client
	return client, nil
}

// GetEthereumContractCaller returns the typed client used for contract
// reads and transaction construction.
func (ec *EthereumClient) GetEthereumContractCaller() (*ethclient.Client, error) {
	client, err := ec.dial(context.Background())
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(client), nil
}

// GetRPCClient returns the raw JSON-RPC client. Custodied-mode signing
// submits eth_sendTransaction calls through it.
func (ec *EthereumClient) GetRPCClient() (*rpc.Client, error) {
	return ec.dial(context.Background())
}

// ListAccounts returns the accounts custodied by the provider node.
func (ec *EthereumClient) ListAccounts(ctx context.Context) ([]string, error) {
	client, err := ec.dial(ctx)
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("failed to list provider accounts: %w", err)
	}
	return accounts, nil
}

func (ec *EthereumClient) Close() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.rpcClient != nil {
		ec.rpcClient.Close()
		ec.rpcClient = nil
	}
}
