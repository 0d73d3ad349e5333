package transactionSigner

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentity_SelfSigned(t *testing.T) {
	privateKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	privateKeyHex := "0x" + common.Bytes2Hex(crypto.FromECDSA(privateKey))

	identity, err := ResolveIdentity(privateKeyHex, nil)
	require.NoError(t, err)

	assert.Equal(t, IdentitySelfSigned, identity.Kind)
	assert.Equal(t, crypto.PubkeyToAddress(privateKey.PublicKey), identity.Address)
	assert.NotNil(t, identity.PrivateKey)
}

func TestResolveIdentity_SelfSignedWithoutPrefix(t *testing.T) {
	privateKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	privateKeyHex := common.Bytes2Hex(crypto.FromECDSA(privateKey))

	identity, err := ResolveIdentity(privateKeyHex, nil)
	require.NoError(t, err)
	assert.Equal(t, IdentitySelfSigned, identity.Kind)
}

func TestResolveIdentity_Custodied(t *testing.T) {
	accounts := []string{
		"0x90F79bf6EB2c4f870365E785982E1f101E93b906",
		"0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65",
	}

	identity, err := ResolveIdentity("", accounts)
	require.NoError(t, err)

	assert.Equal(t, IdentityCustodied, identity.Kind)
	assert.Equal(t, common.HexToAddress(accounts[0]), identity.Address)
	assert.Nil(t, identity.PrivateKey)
}

func TestResolveIdentity_NoAccounts(t *testing.T) {
	_, err := ResolveIdentity("", nil)
	assert.Error(t, err)
}

func TestResolveIdentity_InvalidKey(t *testing.T) {
	_, err := ResolveIdentity("not-a-key", nil)
	assert.ErrorContains(t, err, "failed to parse private key")
}

func TestIdentityKindString(t *testing.T) {
	assert.Equal(t, "custodied", IdentityCustodied.String())
	assert.Equal(t, "self-signed", IdentitySelfSigned.String())
}
