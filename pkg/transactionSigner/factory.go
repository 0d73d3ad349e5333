package transactionSigner

import (
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// CreateSigner builds the signer matching the resolved identity. The
// branch on the identity tag replaces any runtime inspection of account
// shapes.
func CreateSigner(
	identity *Identity,
	ethClient *ethclient.Client,
	rpcClient *rpc.Client,
	logger *zap.Logger,
) (TransactionSigner, error) {
	signingContext, err := NewSigningContext(ethClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create signing context: %w", err)
	}

	switch identity.Kind {
	case IdentitySelfSigned:
		return NewPrivateKeySigner(identity, signingContext)
	case IdentityCustodied:
		return NewCustodiedSigner(identity, rpcClient, signingContext)
	default:
		return nil, fmt.Errorf("unsupported identity kind: %s", identity.Kind)
	}
}
