package transactionSigner

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// IdentityKind tags the two signing modes.
type IdentityKind int

const (
	// IdentityCustodied means the provider node holds the account and
	// executes calls without a local signature.
	IdentityCustodied IdentityKind = iota
	// IdentitySelfSigned means a locally held ECDSA key signs raw
	// transactions.
	IdentitySelfSigned
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityCustodied:
		return "custodied"
	case IdentitySelfSigned:
		return "self-signed"
	default:
		return "unknown"
	}
}

// Identity is the tagged variant describing this node's ledger account.
// Exactly one of PrivateKey (self-signed) or Address alone (custodied) is
// meaningful for a given Kind.
type Identity struct {
	Kind       IdentityKind
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

// ResolveIdentity decides the signing mode once at start-up. A configured
// private key selects self-signed mode; otherwise the first
// provider-custodied account is used.
func ResolveIdentity(privateKeyHex string, custodiedAccounts []string) (*Identity, error) {
	if privateKeyHex != "" {
		privateKey, err := parsePrivateKey(privateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return &Identity{
			Kind:       IdentitySelfSigned,
			Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
			PrivateKey: privateKey,
		}, nil
	}

	if len(custodiedAccounts) == 0 {
		return nil, fmt.Errorf("no private key configured and provider custodies no accounts")
	}
	return &Identity{
		Kind:    IdentityCustodied,
		Address: common.HexToAddress(custodiedAccounts[0]),
	}, nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}
