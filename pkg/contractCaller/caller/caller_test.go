package caller

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canteen-cloud/canteen-node/pkg/contractCaller"
)

func TestDecodeMemberImages(t *testing.T) {
	images, err := decodeMemberImages([]interface{}{[]string{"nginx:latest", "redis:7"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"nginx:latest", "redis:7"}, images)

	_, err = decodeMemberImages([]interface{}{})
	assert.ErrorIs(t, err, contractCaller.ErrLedgerRead)

	_, err = decodeMemberImages([]interface{}{42})
	assert.ErrorIs(t, err, contractCaller.ErrLedgerRead)
}

func TestDecodeMemberDetails(t *testing.T) {
	details, err := decodeMemberDetails([]interface{}{"nginx:latest", true, []byte{0xde, 0xad}})
	require.NoError(t, err)
	assert.Equal(t, "nginx:latest", details.ImageName)
	assert.True(t, details.Active)
	assert.Equal(t, []byte{0xde, 0xad}, details.EncryptedMemory)

	// The two-output shape (no encrypted memory) still decodes.
	details, err = decodeMemberDetails([]interface{}{"", false})
	require.NoError(t, err)
	assert.False(t, details.Active)
	assert.Nil(t, details.EncryptedMemory)

	// Narrower shapes fail closed instead of panicking.
	for _, out := range [][]interface{}{nil, {}, {"only-one"}} {
		_, err = decodeMemberDetails(out)
		assert.ErrorIs(t, err, contractCaller.ErrLedgerRead)
	}
}

func TestDecodeMembersCount(t *testing.T) {
	count, err := decodeMembersCount([]interface{}{big.NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	_, err = decodeMembersCount([]interface{}{})
	assert.ErrorIs(t, err, contractCaller.ErrLedgerRead)

	_, err = decodeMembersCount([]interface{}{"3"})
	assert.ErrorIs(t, err, contractCaller.ErrLedgerRead)
}

func TestDecodeMemberHost(t *testing.T) {
	host, err := decodeMemberHost([]interface{}{"QmNodeA"})
	require.NoError(t, err)
	assert.Equal(t, "QmNodeA", host)

	_, err = decodeMemberHost([]interface{}{})
	assert.ErrorIs(t, err, contractCaller.ErrLedgerRead)
}
