// Package contracts embeds the ABI definitions of the cluster contract
// variants. Variant order is significant: resolution probes the list in
// order and the first variant that answers on-chain wins.
package contracts

import (
	"embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abis
var abis embed.FS

const (
	ContractName_Canteen      = "Canteen"
	ContractName_CanteenFHEVM = "CanteenFHEVM"
)

// VariantNames lists the known contract variants in probe order. A literal
// ordered slice, not a map: first match wins.
var VariantNames = []string{
	ContractName_Canteen,
	ContractName_CanteenFHEVM,
}

// Variant pairs a contract variant name with its parsed ABI.
type Variant struct {
	Name string
	ABI  *abi.ABI
}

// GetContractAbi loads and parses the embedded ABI for a variant.
func GetContractAbi(contractName string) (*abi.ABI, error) {
	abiFile := fmt.Sprintf("abis/%s.json", contractName)
	abiBytes, err := abis.ReadFile(abiFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded ABI file %s: %w", abiFile, err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(abiBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", contractName, err)
	}
	return &parsedABI, nil
}

// LoadVariants returns all known variants in probe order.
func LoadVariants() ([]*Variant, error) {
	variants := make([]*Variant, 0, len(VariantNames))
	for _, name := range VariantNames {
		parsed, err := GetContractAbi(name)
		if err != nil {
			return nil, err
		}
		variants = append(variants, &Variant{Name: name, ABI: parsed})
	}
	return variants, nil
}
