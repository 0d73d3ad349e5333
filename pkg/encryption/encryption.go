// Package encryption defines the boundary to the homomorphic-encryption
// collaborator. The scheduler treats ciphertexts as opaque: it encrypts a
// capacity value and forwards the wire form to the ledger, nothing more.
package encryption

import "context"

// Ciphertext is an opaque encrypted capacity value.
type Ciphertext struct {
	data []byte
}

func NewCiphertext(data []byte) *Ciphertext {
	return &Ciphertext{data: data}
}

// WireFormat returns the byte form submitted as a transaction argument.
func (c *Ciphertext) WireFormat() []byte {
	return c.data
}

func (c *Ciphertext) Size() int {
	return len(c.data)
}

// Encryptor turns a capacity quantity into a ciphertext.
type Encryptor interface {
	EncryptCapacity(ctx context.Context, capacityMb uint64) (*Ciphertext, error)
}
