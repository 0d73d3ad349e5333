package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContractAbi(t *testing.T) {
	for _, name := range VariantNames {
		t.Run(name, func(t *testing.T) {
			parsed, err := GetContractAbi(name)
			require.NoError(t, err)

			for _, method := range []string{
				"addMember",
				"updateMemberMemory",
				"removeMember",
				"getMemberImages",
				"getMemberDetails",
				"getMembersCount",
				"members",
			} {
				_, ok := parsed.Methods[method]
				assert.True(t, ok, "method %s missing from %s", method, name)
			}
		})
	}
}

func TestGetContractAbi_Unknown(t *testing.T) {
	_, err := GetContractAbi("NoSuchContract")
	assert.Error(t, err)
}

func TestLoadVariants_Order(t *testing.T) {
	variants, err := LoadVariants()
	require.NoError(t, err)
	require.Len(t, variants, 2)

	// Probe order is the tie-break rule: the plain contract is tried
	// before the FHEVM variant.
	assert.Equal(t, ContractName_Canteen, variants[0].Name)
	assert.Equal(t, ContractName_CanteenFHEVM, variants[1].Name)
}
