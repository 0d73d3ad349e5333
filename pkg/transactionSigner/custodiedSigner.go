package transactionSigner

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// custodiedGasLimit matches the fixed gas allowance development-chain
// deployments run registration calls with.
const custodiedGasLimit = uint64(6_000_000)

// CustodiedSigner implements TransactionSigner for an account the provider
// node itself controls: calls are submitted with eth_sendTransaction and
// signed inside the node, never locally.
type CustodiedSigner struct {
	*SigningContext
	rpcClient   *rpc.Client
	fromAddress common.Address
}

func NewCustodiedSigner(identity *Identity, rpcClient *rpc.Client, signingContext *SigningContext) (*CustodiedSigner, error) {
	if identity.Kind != IdentityCustodied {
		return nil, fmt.Errorf("identity is not provider-custodied")
	}

	return &CustodiedSigner{
		SigningContext: signingContext,
		rpcClient:      rpcClient,
		fromAddress:    identity.Address,
	}, nil
}

func (cs *CustodiedSigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{
		From:     cs.fromAddress,
		Context:  ctx,
		NoSend:   true,
		GasLimit: custodiedGasLimit,
		// The provider signs; pass the transaction through untouched.
		Signer: func(_ common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
	}, nil
}

func (cs *CustodiedSigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	call := map[string]interface{}{
		"from": cs.fromAddress.Hex(),
		"to":   tx.To().Hex(),
		"gas":  hexutil.EncodeUint64(custodiedGasLimit),
		"data": hexutil.Encode(tx.Data()),
	}

	var txHash common.Hash
	if err := cs.rpcClient.CallContext(ctx, &txHash, "eth_sendTransaction", call); err != nil {
		return nil, fmt.Errorf("provider rejected transaction: %w", err)
	}

	cs.logger.Sugar().Debugw("Submitted custodied transaction",
		"txHash", txHash.Hex(),
		"from", cs.fromAddress.Hex(),
	)

	return cs.waitForReceipt(ctx, txHash)
}

func (cs *CustodiedSigner) GetFromAddress() common.Address {
	return cs.fromAddress
}
