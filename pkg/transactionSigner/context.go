package transactionSigner

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const receiptPollInterval = 500 * time.Millisecond

// SigningContext provides the functionality both signing modes share.
type SigningContext struct {
	ethClient *ethclient.Client
	logger    *zap.Logger
	chainID   *big.Int
}

func NewSigningContext(ethClient *ethclient.Client, logger *zap.Logger) (*SigningContext, error) {
	chainID, err := ethClient.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &SigningContext{
		ethClient: ethClient,
		logger:    logger,
		chainID:   chainID,
	}, nil
}

// waitForReceipt polls until a transaction is mined. Both signing modes
// confirm synchronously, so the caller owns the blocking behavior via ctx.
func (sc *SigningContext) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := sc.ethClient.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for receipt of %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
