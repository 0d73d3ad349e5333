package transactionSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PrivateKeySigner implements TransactionSigner with a locally held ECDSA
// key: it fetches the current gas price and the account's next nonce,
// signs the transaction itself, and submits it raw.
type PrivateKeySigner struct {
	*SigningContext
	privateKey  *ecdsa.PrivateKey
	fromAddress common.Address
}

func NewPrivateKeySigner(identity *Identity, signingContext *SigningContext) (*PrivateKeySigner, error) {
	if identity.Kind != IdentitySelfSigned || identity.PrivateKey == nil {
		return nil, fmt.Errorf("identity does not carry a signing key")
	}

	return &PrivateKeySigner{
		SigningContext: signingContext,
		privateKey:     identity.PrivateKey,
		fromAddress:    identity.Address,
	}, nil
}

func (pks *PrivateKeySigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(pks.privateKey, pks.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.NoSend = true
	opts.Context = ctx
	return opts, nil
}

func (pks *PrivateKeySigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	gasPrice, err := pks.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	nonce, err := pks.ethClient.PendingNonceAt(ctx, pks.fromAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account nonce: %w", err)
	}

	gasLimit, err := pks.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:     pks.fromAddress,
		To:       tx.To(),
		GasPrice: gasPrice,
		Value:    tx.Value(),
		Data:     tx.Data(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	rebuilt := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      addGasBuffer(gasLimit),
		To:       tx.To(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	})

	signedTx, err := types.SignTx(rebuilt, types.LatestSignerForChainID(pks.chainID), pks.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := pks.ethClient.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send raw transaction: %w", err)
	}

	pks.logger.Sugar().Debugw("Sent self-signed transaction",
		"txHash", signedTx.Hash().Hex(),
		"nonce", nonce,
		"gasLimit", signedTx.Gas(),
	)

	return pks.waitForReceipt(ctx, signedTx.Hash())
}

func (pks *PrivateKeySigner) GetFromAddress() common.Address {
	return pks.fromAddress
}

// addGasBuffer pads the estimate; estimates fail semi-regularly with out
// of gas under load.
func addGasBuffer(gasLimit uint64) uint64 {
	return 6 * gasLimit / 5
}
