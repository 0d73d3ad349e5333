package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CANTEEN_"

	Debug           = "debug"
	ProviderUrl     = "provider-url"
	ContractAddress = "contract-address"
	PrivateKey      = "private-key"
	NodeId          = "node-id"
	NodePort        = "node-port"
	MemoryMb        = "memory-mb"
	PollInterval    = "poll-interval"
	DockerHost      = "docker-host"
	FheHelperUrl    = "fhe-helper-url"
)

// SchedulerConfig is the immutable start-up configuration of the node agent.
type SchedulerConfig struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Ledger connection
	ProviderUrl     string `json:"providerUrl" yaml:"providerUrl"`
	ContractAddress string `json:"contractAddress" yaml:"contractAddress"`

	// PrivateKey selects the signing mode: empty means the provider node
	// custodies the account, non-empty means local ECDSA signing.
	PrivateKey string `json:"privateKey,omitempty" yaml:"privateKey,omitempty"`

	// NodeId is the peer identifier this node registers under.
	NodeId string `json:"nodeId" yaml:"nodeId"`

	// NodePort is this node's base network port, used to offset the host
	// port search window.
	NodePort int `json:"nodePort" yaml:"nodePort"`

	// MemoryMb is the total schedulable capacity reported at registration.
	MemoryMb uint64 `json:"memoryMb" yaml:"memoryMb"`

	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`

	DockerHost   string `json:"dockerHost,omitempty" yaml:"dockerHost,omitempty"`
	FheHelperUrl string `json:"fheHelperUrl" yaml:"fheHelperUrl"`
}

func NewSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Debug:           viper.GetBool(KebabToSnakeCase(Debug)),
		ProviderUrl:     viper.GetString(KebabToSnakeCase(ProviderUrl)),
		ContractAddress: viper.GetString(KebabToSnakeCase(ContractAddress)),
		PrivateKey:      viper.GetString(KebabToSnakeCase(PrivateKey)),
		NodeId:          viper.GetString(KebabToSnakeCase(NodeId)),
		NodePort:        viper.GetInt(KebabToSnakeCase(NodePort)),
		MemoryMb:        viper.GetUint64(KebabToSnakeCase(MemoryMb)),
		PollInterval:    viper.GetDuration(KebabToSnakeCase(PollInterval)),
		DockerHost:      viper.GetString(KebabToSnakeCase(DockerHost)),
		FheHelperUrl:    viper.GetString(KebabToSnakeCase(FheHelperUrl)),
	}
}

func (c *SchedulerConfig) Validate() error {
	if c.ProviderUrl == "" {
		return fmt.Errorf("provider-url is required")
	}
	if c.ContractAddress == "" {
		return fmt.Errorf("contract-address is required")
	}
	if c.NodeId == "" {
		return fmt.Errorf("node-id is required")
	}
	if c.NodePort <= 0 {
		return fmt.Errorf("node-port must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	return nil
}

// KebabToSnakeCase maps flag names onto viper/env keys.
func KebabToSnakeCase(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}
