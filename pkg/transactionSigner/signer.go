package transactionSigner

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransactionSigner abstracts how ledger transactions get executed. The
// custodied implementation hands calls to an account the provider node
// controls; the self-signed implementation signs locally with an ECDSA key
// and submits the raw transaction. Both block until a receipt is mined.
type TransactionSigner interface {
	// GetTransactOpts returns options for constructing unsigned
	// transactions (NoSend is always set).
	GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error)

	// SignAndSendTransaction executes a constructed transaction and waits
	// for its receipt.
	SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

	// GetFromAddress returns the account the transactions run under.
	GetFromAddress() common.Address
}
