package caller

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/canteen-cloud/canteen-node/pkg/contractCaller"
	"github.com/canteen-cloud/canteen-node/pkg/contracts"
	"github.com/canteen-cloud/canteen-node/pkg/encryption"
	"github.com/canteen-cloud/canteen-node/pkg/transactionSigner"
)

// ContractCaller talks to one resolved contract variant through a bound
// contract and a transaction signer.
type ContractCaller struct {
	contract    *bind.BoundContract
	variantName string
	address     common.Address
	ethclient   *ethclient.Client
	signer      transactionSigner.TransactionSigner
	logger      *zap.Logger
}

// NewContractCaller resolves the contract variant at address by probing
// the known variants in order with a harmless read. The first variant that
// answers wins; order is the tie-break rule.
func NewContractCaller(
	contractAddress string,
	ethclient *ethclient.Client,
	signer transactionSigner.TransactionSigner,
	logger *zap.Logger,
) (*ContractCaller, error) {
	address := common.HexToAddress(contractAddress)

	variants, err := contracts.LoadVariants()
	if err != nil {
		return nil, fmt.Errorf("failed to load contract variants: %w", err)
	}

	for _, variant := range variants {
		bound := bind.NewBoundContract(address, *variant.ABI, ethclient, ethclient, ethclient)

		var probe []interface{}
		err := bound.Call(&bind.CallOpts{Context: context.Background()}, &probe, "getMembersCount")
		if err != nil {
			logger.Sugar().Debugw("Contract variant did not resolve",
				"variant", variant.Name,
				"address", address.Hex(),
				"error", err,
			)
			continue
		}

		logger.Sugar().Infow("Resolved cluster contract",
			"variant", variant.Name,
			"address", address.Hex(),
		)
		return &ContractCaller{
			contract:    bound,
			variantName: variant.Name,
			address:     address,
			ethclient:   ethclient,
			signer:      signer,
			logger:      logger,
		}, nil
	}

	return nil, fmt.Errorf("no contract variant resolved at %s", address.Hex())
}

// VariantName returns which contract variant resolved.
func (cc *ContractCaller) VariantName() string {
	return cc.variantName
}

func (cc *ContractCaller) GetMemberImages(ctx context.Context, host string) ([]string, error) {
	var out []interface{}
	if err := cc.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getMemberImages", host); err != nil {
		return nil, fmt.Errorf("%w: getMemberImages for %s: %v", contractCaller.ErrLedgerRead, host, err)
	}
	return decodeMemberImages(out)
}

func (cc *ContractCaller) GetMemberDetails(ctx context.Context, host string) (*contractCaller.MemberDetails, error) {
	var out []interface{}
	if err := cc.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getMemberDetails", host); err != nil {
		return nil, fmt.Errorf("%w: getMemberDetails for %s: %v", contractCaller.ErrLedgerRead, host, err)
	}
	return decodeMemberDetails(out)
}

func (cc *ContractCaller) RegisterMember(ctx context.Context, host string, capacity *encryption.Ciphertext) error {
	details, err := cc.GetMemberDetails(ctx, host)
	if err == nil && details.Active {
		cc.logger.Sugar().Infow("Node already registered", "host", host)
		return nil
	}

	receipt, err := cc.submit(ctx, "addMember", host, capacity.WireFormat())
	if err != nil {
		// The contract rejects duplicate registrations with a revert;
		// a concurrent prior attempt reaching the chain first is fine.
		if isRevert(err) {
			cc.logger.Sugar().Infow("Registration reverted, node already registered", "host", host)
			return nil
		}
		return fmt.Errorf("failed to register member %s: %w", host, err)
	}

	cc.logger.Sugar().Infow("Node registered",
		"host", host,
		"ciphertextBytes", capacity.Size(),
		"txHash", receipt.TxHash.Hex(),
	)
	return nil
}

func (cc *ContractCaller) UpdateMemberMemory(ctx context.Context, host string, capacity *encryption.Ciphertext) error {
	receipt, err := cc.submit(ctx, "updateMemberMemory", host, capacity.WireFormat())
	if err != nil {
		return fmt.Errorf("failed to update member memory for %s: %w", host, err)
	}

	cc.logger.Sugar().Infow("Capacity updated on ledger",
		"host", host,
		"txHash", receipt.TxHash.Hex(),
	)
	return nil
}

func (cc *ContractCaller) RemoveMember(ctx context.Context, host string) error {
	details, err := cc.GetMemberDetails(ctx, host)
	if err != nil {
		return err
	}
	if !details.Active {
		cc.logger.Sugar().Infow("Node not registered, skipping unregistration", "host", host)
		return nil
	}

	receipt, err := cc.submit(ctx, "removeMember", host)
	if err != nil {
		return fmt.Errorf("failed to remove member %s: %w", host, err)
	}

	cc.logger.Sugar().Infow("Node unregistered",
		"host", host,
		"txHash", receipt.TxHash.Hex(),
	)
	return nil
}

func (cc *ContractCaller) GetMembersCount(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := cc.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getMembersCount"); err != nil {
		return 0, fmt.Errorf("%w: getMembersCount: %v", contractCaller.ErrLedgerRead, err)
	}
	return decodeMembersCount(out)
}

func (cc *ContractCaller) GetMemberAt(ctx context.Context, index uint64) (string, error) {
	var out []interface{}
	if err := cc.contract.Call(&bind.CallOpts{Context: ctx}, &out, "members", new(big.Int).SetUint64(index)); err != nil {
		return "", fmt.Errorf("%w: members(%d): %v", contractCaller.ErrLedgerRead, index, err)
	}
	return decodeMemberHost(out)
}

// The decode helpers never index past what the call actually returned: a
// variant with a narrower return shape surfaces as ErrLedgerRead, not a
// panic.

func decodeMemberImages(out []interface{}) ([]string, error) {
	if len(out) < 1 {
		return nil, fmt.Errorf("%w: getMemberImages returned %d outputs, want 1", contractCaller.ErrLedgerRead, len(out))
	}
	images, ok := out[0].([]string)
	if !ok {
		return nil, fmt.Errorf("%w: getMemberImages returned unexpected type %T", contractCaller.ErrLedgerRead, out[0])
	}
	return images, nil
}

func decodeMemberDetails(out []interface{}) (*contractCaller.MemberDetails, error) {
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: getMemberDetails returned %d outputs, want at least 2", contractCaller.ErrLedgerRead, len(out))
	}

	details := &contractCaller.MemberDetails{}
	if s, ok := out[0].(string); ok {
		details.ImageName = s
	}
	if b, ok := out[1].(bool); ok {
		details.Active = b
	}
	if len(out) > 2 {
		if mem, ok := out[2].([]byte); ok {
			details.EncryptedMemory = mem
		}
	}
	return details, nil
}

func decodeMembersCount(out []interface{}) (uint64, error) {
	if len(out) < 1 {
		return 0, fmt.Errorf("%w: getMembersCount returned %d outputs, want 1", contractCaller.ErrLedgerRead, len(out))
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("%w: getMembersCount returned unexpected type %T", contractCaller.ErrLedgerRead, out[0])
	}
	return count.Uint64(), nil
}

func decodeMemberHost(out []interface{}) (string, error) {
	if len(out) < 1 {
		return "", fmt.Errorf("%w: members returned %d outputs, want 1", contractCaller.ErrLedgerRead, len(out))
	}
	host, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: members returned unexpected type %T", contractCaller.ErrLedgerRead, out[0])
	}
	return host, nil
}

// submit constructs an unsigned transaction for a method, hands it to the
// signer, and checks the mined receipt's status.
func (cc *ContractCaller) submit(ctx context.Context, method string, args ...interface{}) (*types.Receipt, error) {
	opts, err := cc.signer.GetTransactOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transact opts: %w", err)
	}

	tx, err := cc.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to construct %s transaction: %w", method, err)
	}

	receipt, err := cc.signer.SignAndSendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s: %w", method, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		cc.logger.Sugar().Errorw("Transaction mined with failure status",
			"method", method,
			"txHash", receipt.TxHash.Hex(),
		)
		return nil, fmt.Errorf("%w: %s (tx %s)", contractCaller.ErrTransactionFailed, method, receipt.TxHash.Hex())
	}
	return receipt, nil
}

func isRevert(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "revert")
}
