package contractCaller

import (
	"context"

	"github.com/pkg/errors"

	"github.com/canteen-cloud/canteen-node/pkg/encryption"
)

var (
	// ErrLedgerRead marks transient read failures. Callers must treat a
	// read failure as "no change", never as an empty assignment.
	ErrLedgerRead = errors.New("ledger read failed")

	// ErrTransactionFailed marks a mined transaction with a non-success
	// receipt status.
	ErrTransactionFailed = errors.New("transaction failed")
)

// MemberDetails is the registration record the contract keeps per node.
type MemberDetails struct {
	ImageName       string
	Active          bool
	EncryptedMemory []byte
}

// IContractCaller is the read/write surface of the cluster contract.
type IContractCaller interface {
	// GetMemberImages returns the ordered image assignment for a node.
	GetMemberImages(ctx context.Context, host string) ([]string, error)

	// GetMemberDetails returns the node's registration record; used to
	// keep registration and unregistration idempotent.
	GetMemberDetails(ctx context.Context, host string) (*MemberDetails, error)

	// RegisterMember registers the node with its encrypted capacity.
	// Registering an already-registered node is success, not an error.
	RegisterMember(ctx context.Context, host string, capacity *encryption.Ciphertext) error

	// UpdateMemberMemory pushes a new encrypted capacity value.
	UpdateMemberMemory(ctx context.Context, host string, capacity *encryption.Ciphertext) error

	// RemoveMember unregisters the node. A node the contract already
	// shows inactive is a no-op.
	RemoveMember(ctx context.Context, host string) error

	// GetMembersCount returns the total number of member slots, active
	// and inactive. Reporting surface.
	GetMembersCount(ctx context.Context) (uint64, error)

	// GetMemberAt returns the host id stored at a member slot.
	GetMemberAt(ctx context.Context, index uint64) (string, error)
}
